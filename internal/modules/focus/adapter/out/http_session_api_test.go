package out_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	adapterout "moodquest/internal/modules/focus/adapter/out"
	"moodquest/internal/modules/focus/domain"
	apperrors "moodquest/internal/platform/errors"
	"moodquest/internal/platform/id"
)

func TestHTTPSessionAPINormalizesUntimedSentinel(t *testing.T) {
	t.Parallel()
	var gotPlanned float64
	var gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/sessions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotRequestID = r.Header.Get("X-Request-ID")
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotPlanned = body["planned_duration_minutes"].(float64)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":                       "sess-1",
			"task_id":                  "t1",
			"planned_duration_minutes": 480,
			"status":                   "active",
			"started_at":               "2026-03-01T09:00:00Z",
		})
	}))
	defer srv.Close()

	api := adapterout.NewHTTPSessionAPI(srv.URL, "token", id.RandomHex{})
	s, err := api.Start(context.Background(), domain.WorkRef{TaskID: "t1"}, nil)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if gotPlanned != 480 {
		t.Fatalf("untimed start must send the 480 sentinel, sent %v", gotPlanned)
	}
	if gotRequestID == "" {
		t.Fatalf("every call must carry a request id")
	}
	if !s.Untimed() {
		t.Fatalf("a 480-minute wire session must decode as untimed")
	}
}

func TestHTTPSessionAPIMapsErrorCodes(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "task already has a session",
			"code":  "session_exists",
		})
	}))
	defer srv.Close()

	api := adapterout.NewHTTPSessionAPI(srv.URL, "", id.RandomHex{})
	planned := 25
	_, err := api.Start(context.Background(), domain.WorkRef{TaskID: "t1"}, &planned)
	if !errors.Is(err, apperrors.ErrSessionExists) {
		t.Fatalf("expected ErrSessionExists, got %v", err)
	}
}

func TestHTTPSessionAPITransportFailure(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	api := adapterout.NewHTTPSessionAPI(srv.URL, "", id.RandomHex{})
	_, err := api.Active(context.Background())
	if !errors.Is(err, apperrors.ErrAPIUnavailable) {
		t.Fatalf("expected ErrAPIUnavailable, got %v", err)
	}
}
