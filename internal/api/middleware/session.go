package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/task-tracker/internal/api/shared"
	"github.com/phrazzld/task-tracker/internal/platform/logger"
	"github.com/phrazzld/task-tracker/internal/session"
)

// SessionAcquirer hands out request-scoped database sessions.
type SessionAcquirer interface {
	Acquire(ctx context.Context) (*session.Session, error)
}

// NewSessionMiddleware gives every request its own database session and
// releases it when the handler returns. The release is deferred, so it also
// runs while a handler panic unwinds towards the recoverer.
func NewSessionMiddleware(provider SessionAcquirer, base *slog.Logger) func(http.Handler) http.Handler {
	if provider == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("session provider cannot be nil")
	}
	if base == nil {
		base = slog.Default()
	}
	base = base.With(slog.String("component", "session_middleware"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.FromContextOrDefault(r.Context(), base)

			sess, err := provider.Acquire(r.Context())
			if err != nil {
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
					shared.GenericErrorMessage, err)
				return
			}
			defer func() {
				if err := sess.Release(); err != nil {
					log.Error("failed to release database session", slog.String("error", err.Error()))
				}
			}()

			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), sess)))
		})
	}
}
