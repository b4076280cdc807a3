package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/splitledger/splitledger/internal/auth"
	"github.com/splitledger/splitledger/internal/models"
)

// captureHandler collects slog records so tests can inspect log attrs.
type captureHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func requestAttr(t *testing.T, h *captureHandler, key string) (string, bool) {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.records {
		if r.Message != "http request" {
			continue
		}
		var val string
		var found bool
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == key {
				val = a.Value.String()
				found = true
				return false
			}
			return true
		})
		return val, found
	}
	t.Fatal("No http request record logged")
	return "", false
}

func TestRequestLoggerAuthenticatedUser(t *testing.T) {
	capture := &captureHandler{}
	prev := slog.Default()
	slog.SetDefault(slog.New(capture))
	t.Cleanup(func() { slog.SetDefault(prev) })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	token, err := jwtManager.Generate(&models.User{ID: "user-1", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequestLogger(RequireAuth(jwtManager)(inner))

	req := httptest.NewRequest(http.MethodGet, "/api/expenses/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}
	userID, ok := requestAttr(t, capture, "user_id")
	if !ok || userID != "user-1" {
		t.Errorf("Expected user_id attr %q, got %q (found=%v)", "user-1", userID, ok)
	}
}

func TestRequestLoggerAnonymousRequest(t *testing.T) {
	capture := &captureHandler{}
	prev := slog.Default()
	slog.SetDefault(slog.New(capture))
	t.Cleanup(func() { slog.SetDefault(prev) })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	handler := RequestLogger(RequireAuth(jwtManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))

	req := httptest.NewRequest(http.MethodGet, "/api/expenses/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401, got %d", rec.Code)
	}
	userID, _ := requestAttr(t, capture, "user_id")
	if userID != "" {
		t.Errorf("Expected empty user_id for rejected request, got %q", userID)
	}
}
