package timer

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"moodquest/internal/modules/focus/domain"
	"moodquest/internal/platform/clock"
	"moodquest/internal/ui/theme"
)

// Mode selects the presentation of the one shared timer component. Every
// surface is the same model over the same reconciler, so two surfaces
// showing one session can never disagree.
type Mode int

const (
	// ModeWidget is the one-line status-bar timer visible on every tab.
	ModeWidget Mode = iota
	// ModeInline is the compact cell rendered inside a session list row.
	ModeInline
	// ModeFull is the full-screen timer. It is the single designated
	// surface that auto-completes an expired session.
	ModeFull
)

// SessionSource is the read-only slice of the session cache a timer needs.
type SessionSource interface {
	Get(sessionID string) (domain.WorkSession, bool)
}

// TickMsg is one second of a timer's tick chain. Tag scopes it to one view
// instance, Seq to one chain, so a stale chain dies the moment a new one
// starts and two views never consume each other's ticks.
type TickMsg struct {
	Tag string
	Seq int
}

// AutoCompleteMsg asks the app to complete an expired session. Emitted at
// most once per session id.
type AutoCompleteMsg struct {
	SessionID string
}

type Model struct {
	tag    string
	mode   Mode
	source SessionSource
	clock  clock.Clock

	sessionID string
	seq       int
	fired     map[string]struct{}
	interval  time.Duration
	width     int
}

func New(tag string, mode Mode, source SessionSource, clk clock.Clock) Model {
	return Model{
		tag:      tag,
		mode:     mode,
		source:   source,
		clock:    clk,
		fired:    make(map[string]struct{}),
		interval: time.Second,
	}
}

func (m Model) SessionID() string { return m.sessionID }

// Track points the view at a session and restarts its tick chain.
func (m *Model) Track(sessionID string) tea.Cmd {
	m.sessionID = sessionID
	return m.Sync()
}

// Sync restarts the tick chain against the current cache state. The app
// calls it after every lifecycle result and every background refresh: the
// old chain is orphaned by the bumped Seq, and a new chain starts only if
// the session is still active.
func (m *Model) Sync() tea.Cmd {
	m.seq++
	session, ok := m.source.Get(m.sessionID)
	if !ok || session.Status != domain.StatusActive {
		return nil
	}
	cmds := []tea.Cmd{m.tickCmd()}
	if cmd := m.autoCompleteCmd(session); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *Model) tickCmd() tea.Cmd {
	tag, seq := m.tag, m.seq
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return TickMsg{Tag: tag, Seq: seq}
	})
}

// autoCompleteCmd is the one-shot latch: only the full surface fires, only
// for expired timed sessions, and only once per session id no matter how
// many ticks arrive after expiry.
func (m *Model) autoCompleteCmd(session domain.WorkSession) tea.Cmd {
	if m.mode != ModeFull || !domain.Expired(session, m.clock.Now()) {
		return nil
	}
	if _, done := m.fired[session.ID]; done {
		return nil
	}
	m.fired[session.ID] = struct{}{}
	sessionID := session.ID
	return func() tea.Msg { return AutoCompleteMsg{SessionID: sessionID} }
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case TickMsg:
		if msg.Tag != m.tag || msg.Seq != m.seq {
			return m, nil
		}
		session, ok := m.source.Get(m.sessionID)
		if !ok || session.Status != domain.StatusActive {
			// Session gone or frozen: let the chain die. Sync restarts
			// it when the session comes back.
			return m, nil
		}
		cmds := []tea.Cmd{m.tickCmd()}
		if cmd := m.autoCompleteCmd(session); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

func (m Model) View() string {
	session, ok := m.source.Get(m.sessionID)
	if !ok {
		return ""
	}
	return Render(m.mode, session, m.clock.Now(), m.width)
}

// Render derives a session's presentation at one instant, purely from the
// reconciler. The sessions list reuses it for inline rows without owning a
// timer model per row.
func Render(mode Mode, session domain.WorkSession, now time.Time, width int) string {
	snap := domain.Reconcile(session, now)
	style := stateStyle(session, snap)

	switch mode {
	case ModeWidget:
		return style.Render("● "+session.Work.String()) + " " + style.Render(snap.Clock())

	case ModeInline:
		label := snap.Clock()
		switch {
		case session.Status == domain.StatusPaused:
			label += " paused"
		case snap.Overtime:
			label += " overtime"
		case snap.NoTimer:
			label += " elapsed"
		}
		return style.Render(label)

	case ModeFull:
		clockLine := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(bigClock(snap.Clock()))
		header := theme.Title.Render(session.Work.String())
		state := style.Render(stateLabel(session, snap))
		plan := theme.Muted.Render(planLabel(session, snap))
		body := lipgloss.JoinVertical(lipgloss.Center, header, "", clockLine, "", state, plan)
		pane := theme.PaneActive
		if width > 4 {
			pane = pane.Width(width - 4)
		}
		return pane.Render(lipgloss.PlaceHorizontal(max(width-8, 1), lipgloss.Center, body))
	}
	return ""
}

func stateStyle(session domain.WorkSession, snap domain.Snapshot) lipgloss.Style {
	switch {
	case session.Status == domain.StatusPaused:
		return theme.Paused
	case snap.Overtime:
		return theme.Overtime
	default:
		return theme.Running
	}
}

func stateLabel(session domain.WorkSession, snap domain.Snapshot) string {
	switch {
	case session.Status == domain.StatusPaused:
		return "paused"
	case snap.Overtime:
		return "overtime"
	case snap.NoTimer:
		return "tracking"
	default:
		return "focusing"
	}
}

func planLabel(session domain.WorkSession, snap domain.Snapshot) string {
	if snap.NoTimer || session.PlannedDuration == nil {
		return "no timer"
	}
	return fmt.Sprintf("planned %dm", *session.PlannedDuration)
}

// bigClock spaces the glyphs out; the full surface wants presence, not a
// row of nine characters lost in the pane.
func bigClock(clock string) string {
	out := make([]rune, 0, len(clock)*2)
	for i, r := range clock {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, r)
	}
	return string(out)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
