package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"moodquest/internal/modules/checkin/domain"
	checkinout "moodquest/internal/modules/checkin/port/out"
	apperrors "moodquest/internal/platform/errors"
	"moodquest/internal/platform/id"
)

// HTTPCheckinAPI serves all three first-load collaborators (retroactive
// rewards, daily bonus, mood) from the same service endpoint.
type HTTPCheckinAPI struct {
	baseURL string
	token   string
	ids     id.Generator
	client  *http.Client
}

func NewHTTPCheckinAPI(baseURL, token string, ids id.Generator) *HTTPCheckinAPI {
	return &HTTPCheckinAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		ids:     ids,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *HTTPCheckinAPI) ClaimCatchUp(ctx context.Context) (domain.CatchUp, error) {
	var out struct {
		LevelsGained int   `json:"levels_gained"`
		XP           int   `json:"xp"`
	}
	if err := a.do(ctx, http.MethodPost, "/v1/rewards/catch-up/claim", nil, &out); err != nil {
		return domain.CatchUp{}, err
	}
	return domain.CatchUp{LevelsGained: out.LevelsGained, XP: out.XP}, nil
}

func (a *HTTPCheckinAPI) UnlockedGenres(ctx context.Context) ([]string, error) {
	var out struct {
		Genres []string `json:"genres"`
	}
	if err := a.do(ctx, http.MethodGet, "/v1/rewards/genres/unlocked", nil, &out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}

func (a *HTTPCheckinAPI) Status(ctx context.Context) (domain.BonusStatus, error) {
	var out struct {
		Eligible bool `json:"eligible"`
		Streak   int  `json:"streak"`
		Amount   int  `json:"amount"`
	}
	if err := a.do(ctx, http.MethodGet, "/v1/daily-bonus", nil, &out); err != nil {
		return domain.BonusStatus{}, err
	}
	return domain.BonusStatus{Eligible: out.Eligible, Streak: out.Streak, Amount: out.Amount}, nil
}

func (a *HTTPCheckinAPI) Claim(ctx context.Context) (domain.BonusClaim, error) {
	var out struct {
		Amount int `json:"amount"`
		Streak int `json:"streak"`
	}
	if err := a.do(ctx, http.MethodPost, "/v1/daily-bonus/claim", nil, &out); err != nil {
		return domain.BonusClaim{}, err
	}
	return domain.BonusClaim{Amount: out.Amount, Streak: out.Streak}, nil
}

func (a *HTTPCheckinAPI) Latest(ctx context.Context) (domain.MoodStatus, error) {
	var out struct {
		HasEntry bool      `json:"has_entry"`
		LoggedAt time.Time `json:"logged_at"`
		Score    int       `json:"score"`
		FirstDay bool      `json:"first_day"`
	}
	if err := a.do(ctx, http.MethodGet, "/v1/mood/latest", nil, &out); err != nil {
		return domain.MoodStatus{}, err
	}
	if !out.HasEntry && !out.FirstDay {
		return domain.MoodStatus{}, apperrors.ErrNoMoodEntry
	}
	return domain.MoodStatus{
		HasEntry: out.HasEntry,
		LoggedAt: out.LoggedAt.UTC(),
		Score:    out.Score,
		FirstDay: out.FirstDay,
	}, nil
}

func (a *HTTPCheckinAPI) Log(ctx context.Context, score int) error {
	body := map[string]any{"score": score}
	return a.do(ctx, http.MethodPost, "/v1/mood", body, nil)
}

func (a *HTTPCheckinAPI) do(ctx context.Context, method, path string, body, out any) error {
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
		return fmt.Errorf("checkin api %s %s: %w", method, path, apperrors.ErrAPIUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var werr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&werr)
		if werr.Error != "" {
			return fmt.Errorf("checkin api: %s (http %d)", werr.Error, resp.StatusCode)
		}
		return fmt.Errorf("checkin api: http %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode checkin api response: %w", err)
	}
	return nil
}

var (
	_ checkinout.RewardsAPI = (*HTTPCheckinAPI)(nil)
	_ checkinout.BonusAPI   = (*HTTPCheckinAPI)(nil)
	_ checkinout.MoodAPI    = (*HTTPCheckinAPI)(nil)
)
