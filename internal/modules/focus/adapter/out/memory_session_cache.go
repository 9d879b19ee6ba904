package out

import (
	"sort"
	"sync"

	"moodquest/internal/modules/focus/domain"
	focusout "moodquest/internal/modules/focus/port/out"
)

// MemorySessionCache is the injectable in-memory session store. All mutation
// is synchronous; a write is visible to the next read on any surface.
type MemorySessionCache struct {
	mu       sync.RWMutex
	sessions map[string]domain.WorkSession
}

func NewMemorySessionCache() *MemorySessionCache {
	return &MemorySessionCache{sessions: make(map[string]domain.WorkSession)}
}

func (c *MemorySessionCache) All() []domain.WorkSession {
	c.mu.RLock()
	defer c.mu.RUnlock()
	all := make([]domain.WorkSession, 0, len(c.sessions))
	for _, s := range c.sessions {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].StartedAt.Equal(all[j].StartedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].StartedAt.Before(all[j].StartedAt)
	})
	return all
}

func (c *MemorySessionCache) Get(sessionID string) (domain.WorkSession, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[sessionID]
	return s, ok
}

func (c *MemorySessionCache) ByWork(ref domain.WorkRef) (domain.WorkSession, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.sessions {
		if s.Work == ref {
			return s, true
		}
	}
	return domain.WorkSession{}, false
}

// Upsert inserts or replaces by session id. Terminal sessions are never
// held: upserting one is a removal.
func (c *MemorySessionCache) Upsert(session domain.WorkSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.upsertLocked(session)
}

func (c *MemorySessionCache) UpsertMany(sessions []domain.WorkSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range sessions {
		c.upsertLocked(s)
	}
}

func (c *MemorySessionCache) upsertLocked(session domain.WorkSession) {
	if session.ID == "" {
		return
	}
	if session.Status.Terminal() {
		delete(c.sessions, session.ID)
		return
	}
	c.sessions[session.ID] = session
}

func (c *MemorySessionCache) Remove(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, sessionID)
}

var _ focusout.SessionCache = (*MemorySessionCache)(nil)
