package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/ecocampmy/campsite-chat-service/internal/chatbot"
	"github.com/ecocampmy/campsite-chat-service/internal/health"
	"github.com/ecocampmy/campsite-chat-service/internal/lifecycle"
	"github.com/ecocampmy/campsite-chat-service/internal/models"
	"github.com/ecocampmy/campsite-chat-service/internal/reply"
	"github.com/ecocampmy/campsite-chat-service/internal/store"
)

type fakeStore struct {
	sites   []models.CampSite
	results []models.CampSite
	err     error
}

func (f *fakeStore) ListAll(ctx context.Context) ([]models.CampSite, error) {
	return f.sites, f.err
}

func (f *fakeStore) Search(ctx context.Context, filter store.Filter, limit int) ([]models.CampSite, error) {
	return f.results, f.err
}

type fakeForecast struct{}

func (fakeForecast) FiveDay(ctx context.Context, lat, lon float64) ([]models.DayForecast, error) {
	return nil, errors.New("not configured")
}

type fakeComposer struct{ text string }

func (f fakeComposer) Generated(ctx context.Context, history []models.ChatMessage, candidates []models.CampSite, message string) string {
	return f.text
}

func newTestHandler(st *fakeStore, cfg *HealthConfig) (*Handler, *health.Tracker) {
	bot := chatbot.New(st, fakeForecast{}, fakeComposer{text: "generated answer"}, zap.NewNop())
	tracker := &health.Tracker{}
	return NewHandler(bot, tracker, cfg, zap.NewNop(), 500), tracker
}

func postChat(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/chatbot", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.PostChat(rec, req)
	return rec
}

func decodeAnswer(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.Answer
}

func TestPostChat_GeneratedAnswer(t *testing.T) {
	st := &fakeStore{results: []models.CampSite{{ID: 1, Name: "Lata Berkoh", State: "Pahang"}}}
	h, _ := newTestHandler(st, nil)

	rec := postChat(t, h, `{"message":"free campsites in Pahang with a waterfall"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := decodeAnswer(t, rec); got != "generated answer" {
		t.Fatalf("answer = %q", got)
	}
}

func TestPostChat_MalformedBody(t *testing.T) {
	h, _ := newTestHandler(&fakeStore{}, nil)
	rec := postChat(t, h, `{"message":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := decodeAnswer(t, rec); got != invalidMessage {
		t.Fatalf("answer = %q", got)
	}
}

func TestPostChat_EmptyMessage(t *testing.T) {
	h, _ := newTestHandler(&fakeStore{}, nil)
	rec := postChat(t, h, `{"message":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPostChat_StoreErrorYieldsApology(t *testing.T) {
	h, tracker := newTestHandler(&fakeStore{err: errors.New("db down")}, nil)
	rec := postChat(t, h, `{"message":"campsites please"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := decodeAnswer(t, rec); got != reply.Apology {
		t.Fatalf("answer = %q, want apology", got)
	}
	if errs, total := tracker.ErrorRate(time.Minute); errs != 1 || total != 1 {
		t.Fatalf("tracker = (%d, %d), want (1, 1)", errs, total)
	}
}

func TestPostChat_HistoryAccepted(t *testing.T) {
	st := &fakeStore{results: []models.CampSite{{ID: 1, Name: "Lata Berkoh"}}}
	h, _ := newTestHandler(st, nil)
	rec := postChat(t, h, `{"message":"more like that","history":[{"sender":"user","text":"hi"},{"sender":"bot","text":"hello"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestGetHealth_Healthy(t *testing.T) {
	h, _ := newTestHandler(&fakeStore{}, &HealthConfig{
		DegradedWindow:   time.Minute,
		DegradedErrorPct: 50,
		StorePing:        func() error { return nil },
	})
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	h.GetHealth(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"healthy"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestGetHealth_StoreUnreachable(t *testing.T) {
	h, _ := newTestHandler(&fakeStore{}, &HealthConfig{
		StorePing: func() error { return errors.New("refused") },
	})
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	h.GetHealth(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"store":"unhealthy"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestGetHealth_DegradedErrorRate(t *testing.T) {
	h, tracker := newTestHandler(&fakeStore{}, &HealthConfig{
		DegradedWindow:   time.Minute,
		DegradedErrorPct: 50,
	})
	tracker.RecordError()
	tracker.RecordError()
	tracker.RecordSuccess()

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	h.GetHealth(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"degraded"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestGetHealth_ShuttingDown(t *testing.T) {
	lifecycle.SetShuttingDown(true)
	defer lifecycle.SetShuttingDown(false)

	h, _ := newTestHandler(&fakeStore{}, nil)
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	h.GetHealth(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"shutting-down"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}
