package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"moodquest/internal/modules/focus/domain"
	focusout "moodquest/internal/modules/focus/port/out"
	apperrors "moodquest/internal/platform/errors"
	"moodquest/internal/platform/id"
)

type HTTPSessionAPI struct {
	baseURL string
	token   string
	ids     id.Generator
	client  *http.Client
}

func NewHTTPSessionAPI(baseURL, token string, ids id.Generator) *HTTPSessionAPI {
	return &HTTPSessionAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		ids:     ids,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// wireSession is the server representation. The planned-duration sentinel
// (>= 480 minutes means untimed) lives only here; the domain type carries an
// explicit optional instead.
type wireSession struct {
	ID                     string    `json:"id"`
	TaskID                 string    `json:"task_id,omitempty"`
	SubtaskID              string    `json:"subtask_id,omitempty"`
	PlannedDurationMinutes int       `json:"planned_duration_minutes"`
	Status                 string    `json:"status"`
	StartedAt              time.Time `json:"started_at"`
	ElapsedMinutesAtPause  int       `json:"elapsed_minutes_at_pause"`
}

func (w wireSession) toDomain() domain.WorkSession {
	var planned *int
	if w.PlannedDurationMinutes < domain.NoTimerThresholdMinutes {
		v := w.PlannedDurationMinutes
		planned = &v
	}
	return domain.WorkSession{
		ID:              w.ID,
		Work:            domain.WorkRef{TaskID: w.TaskID, SubtaskID: w.SubtaskID},
		PlannedDuration: planned,
		Status:          domain.Status(w.Status),
		StartedAt:       w.StartedAt.UTC(),
		ElapsedAtPause:  w.ElapsedMinutesAtPause,
	}
}

func plannedToWire(planned *int) int {
	if planned == nil {
		return domain.NoTimerThresholdMinutes
	}
	return *planned
}

type wireError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (a *HTTPSessionAPI) Active(ctx context.Context) ([]domain.WorkSession, error) {
	var out struct {
		Sessions []wireSession `json:"sessions"`
	}
	if err := a.do(ctx, http.MethodGet, "/v1/sessions/active", nil, &out); err != nil {
		return nil, err
	}
	sessions := make([]domain.WorkSession, 0, len(out.Sessions))
	for _, w := range out.Sessions {
		sessions = append(sessions, w.toDomain())
	}
	return sessions, nil
}

func (a *HTTPSessionAPI) Start(ctx context.Context, work domain.WorkRef, plannedMinutes *int) (domain.WorkSession, error) {
	body := map[string]any{
		"planned_duration_minutes": plannedToWire(plannedMinutes),
	}
	if work.TaskID != "" {
		body["task_id"] = work.TaskID
	}
	if work.SubtaskID != "" {
		body["subtask_id"] = work.SubtaskID
	}
	var out wireSession
	if err := a.do(ctx, http.MethodPost, "/v1/sessions", body, &out); err != nil {
		return domain.WorkSession{}, err
	}
	return out.toDomain(), nil
}

func (a *HTTPSessionAPI) Pause(ctx context.Context, sessionID string) (domain.WorkSession, error) {
	return a.transition(ctx, sessionID, "pause", nil)
}

func (a *HTTPSessionAPI) Resume(ctx context.Context, sessionID string) (domain.WorkSession, error) {
	return a.transition(ctx, sessionID, "resume", nil)
}

func (a *HTTPSessionAPI) Complete(ctx context.Context, sessionID string, markWorkDone bool) (domain.WorkSession, json.RawMessage, error) {
	var out struct {
		Session wireSession     `json:"session"`
		Rewards json.RawMessage `json:"rewards"`
	}
	body := map[string]any{"mark_work_done": markWorkDone}
	if err := a.do(ctx, http.MethodPost, "/v1/sessions/"+sessionID+"/complete", body, &out); err != nil {
		return domain.WorkSession{}, nil, err
	}
	return out.Session.toDomain(), out.Rewards, nil
}

func (a *HTTPSessionAPI) Cancel(ctx context.Context, sessionID string) (domain.WorkSession, error) {
	return a.transition(ctx, sessionID, "cancel", nil)
}

func (a *HTTPSessionAPI) Extend(ctx context.Context, sessionID string, extraMinutes int) (domain.WorkSession, error) {
	return a.transition(ctx, sessionID, "extend", map[string]any{"extra_minutes": extraMinutes})
}

func (a *HTTPSessionAPI) transition(ctx context.Context, sessionID, action string, body map[string]any) (domain.WorkSession, error) {
	var out wireSession
	if err := a.do(ctx, http.MethodPost, "/v1/sessions/"+sessionID+"/"+action, body, &out); err != nil {
		return domain.WorkSession{}, err
	}
	return out.toDomain(), nil
}

func (a *HTTPSessionAPI) do(ctx context.Context, method, path string, body, out any) error {
	var payload *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", a.ids.New())
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("session api %s %s: %w", method, path, apperrors.ErrAPIUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp, "session api")
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode session api response: %w", err)
	}
	return nil
}

// decodeAPIError maps the service's {error, code} body onto client
// sentinels, falling back to the raw message.
func decodeAPIError(resp *http.Response, surface string) error {
	var werr wireError
	_ = json.NewDecoder(resp.Body).Decode(&werr)
	switch werr.Code {
	case "session_exists":
		return apperrors.ErrSessionExists
	case "session_not_found":
		return apperrors.ErrSessionNotFound
	case "session_finished":
		return apperrors.ErrSessionFinished
	case "invalid_input":
		return fmt.Errorf("%s: %s: %w", surface, werr.Error, apperrors.ErrInvalidInput)
	}
	if werr.Error != "" {
		return fmt.Errorf("%s: %s (http %d)", surface, werr.Error, resp.StatusCode)
	}
	return fmt.Errorf("%s: http %d", surface, resp.StatusCode)
}

var _ focusout.SessionAPI = (*HTTPSessionAPI)(nil)
