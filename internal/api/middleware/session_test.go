package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/task-tracker/internal/api/middleware"
	"github.com/phrazzld/task-tracker/internal/api/shared"
	"github.com/phrazzld/task-tracker/internal/platform/logger"
	"github.com/phrazzld/task-tracker/internal/session"
	"github.com/phrazzld/task-tracker/internal/store"
	"github.com/phrazzld/task-tracker/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingAcquirer struct{}

func (failingAcquirer) Acquire(context.Context) (*session.Session, error) {
	return nil, errors.New("pool exhausted: dial tcp 10.1.2.3:5432")
}

func TestNewSessionMiddleware_NilProviderPanics(t *testing.T) {
	assert.Panics(t, func() { middleware.NewSessionMiddleware(nil, nil) })
}

func TestSessionMiddleware_ReleasesAfterEveryOutcome(t *testing.T) {
	db := testdb.OpenSQLite(t)
	provider := session.NewProvider(db, nil)

	var sawSession bool
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewSessionMiddleware(provider, nil))
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		_, sawSession = session.FromContext(r.Context())
		assert.Equal(t, 1, db.Stats().InUse, "session is held while the handler runs")
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
	})
	r.Get("/panic", func(w http.ResponseWriter, r *http.Request) {
		_ = session.DBFromContext(r.Context(), db)
		panic("handler blew up")
	})

	tests := []struct {
		path           string
		expectedStatus int
	}{
		{path: "/ok", expectedStatus: http.StatusOK},
		{path: "/missing", expectedStatus: http.StatusNotFound},
		{path: "/panic", expectedStatus: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))

			assert.Equal(t, tc.expectedStatus, w.Code)
			assert.Equal(t, 0, db.Stats().InUse, "session must be released")
		})
	}
	assert.True(t, sawSession)

	// The single SQLite connection must be usable again afterwards.
	var one int
	require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
}

func TestSessionMiddleware_AcquireFailure(t *testing.T) {
	called := false
	handler := middleware.NewSessionMiddleware(failingAcquirer{}, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }),
	)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks", nil))

	assert.False(t, called)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, shared.GenericErrorMessage, resp.Error)
	assert.NotContains(t, w.Body.String(), "10.1.2.3")
}

func TestSessionMiddleware_SessionIsPerRequest(t *testing.T) {
	db := testdb.OpenSQLite(t)
	provider := session.NewProvider(db, nil)

	var seen []store.DB
	handler := middleware.NewSessionMiddleware(provider, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, session.DBFromContext(r.Context(), nil))
		}),
	)

	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tasks", nil))
	}

	require.Len(t, seen, 2)
	assert.NotSame(t, seen[0], seen[1])
}

func TestTraceMiddleware(t *testing.T) {
	log, logs := logger.GetTestLogger(t)

	var traceID string
	handler := middleware.NewTraceMiddleware(log)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID = shared.GetTraceID(r.Context())
			logger.FromContextOrDefault(r.Context(), log).Info("inside handler")
		}),
	)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tasks", nil))

	require.Len(t, traceID, 32)
	logger.AssertLogField(t, logs, "trace_id", traceID)
	logger.AssertLogContains(t, logs, "inside handler")
}
