package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logUser is a mutable slot the logger places in the context before
// authentication runs. RequireAuth sits further down the chain and
// derives its own context, which the logger never sees; filling the slot
// instead lets the log line carry the authenticated user.
type logUser struct {
	id string
}

const logUserKey contextKey = "log_user"

func setLogUser(ctx context.Context, userID string) {
	if slot, ok := ctx.Value(logUserKey).(*logUser); ok {
		slot.id = userID
	}
}

// RequestLogger logs every request with method, path, status, user ID and
// duration.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		user := &logUser{}
		r = r.WithContext(context.WithValue(r.Context(), logUserKey, user))

		next.ServeHTTP(rec, r)

		level := slog.LevelInfo
		if rec.status >= 500 {
			level = slog.LevelError
		} else if rec.status >= 400 {
			level = slog.LevelWarn
		}
		slog.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"user_id", user.id,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
