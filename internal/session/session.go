package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phrazzld/task-tracker/internal/store"
)

// Provider hands out sessions backed by connections from a *sql.DB pool.
type Provider struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewProvider creates a session provider over db.
func NewProvider(db *sql.DB, logger *slog.Logger) *Provider {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Provider{
		db:     db,
		logger: logger.With(slog.String("component", "session_provider")),
	}
}

// Acquire pins one connection from the pool. It blocks until a connection
// is free or ctx is done. The caller must call Release.
func (p *Provider) Acquire(ctx context.Context) (*Session, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire database session: %w", err)
	}

	return &Session{
		conn:       conn,
		acquiredAt: time.Now(),
		logger:     p.logger,
	}, nil
}

// Session is one pinned database connection. It is not safe to share
// across requests.
type Session struct {
	conn       *sql.Conn
	acquiredAt time.Time
	logger     *slog.Logger

	releaseOnce sync.Once
	releaseErr  error
	released    atomic.Bool
}

// DB returns the session's connection for use by stores.
func (s *Session) DB() store.DB {
	return s.conn
}

// Released reports whether Release has been called.
func (s *Session) Released() bool {
	return s.released.Load()
}

// Release returns the connection to the pool. Calling it again is a no-op
// that returns the first result.
func (s *Session) Release() error {
	s.releaseOnce.Do(func() {
		s.released.Store(true)
		if err := s.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			s.releaseErr = fmt.Errorf("failed to release database session: %w", err)
		}
		s.logger.Debug("database session released",
			slog.Int64("held_ms", time.Since(s.acquiredAt).Milliseconds()))
	})
	return s.releaseErr
}

type contextKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	if ctx == nil {
		return nil, false
	}
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}

// DBFromContext returns the connection of the session in ctx, or fallback
// when ctx carries no live session.
func DBFromContext(ctx context.Context, fallback store.DB) store.DB {
	if s, ok := FromContext(ctx); ok && !s.Released() {
		return s.DB()
	}
	return fallback
}
