package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

func TestRequireSessionRefusesAnonymous(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: log.ParseLevel("debug"), Output: &buf})
	s := &Server{sessions: auth.NewSessions(testSessionSecret, time.Hour, false)}

	h := s.requireSession(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("protected handler ran without a session")
	}))

	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	ctx := withRequestContext(log.NewContext(req.Context(), logger), &RequestContext{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(ctx))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Contains(t, buf.String(), core.ErrUnauthorized.Error())
}

func TestRequestContextStoreIsReused(t *testing.T) {
	env := newTestEnv(t)
	rc := &RequestContext{db: env.db}

	first, err := rc.Store(context.Background())
	assert.NoError(t, err)
	second, err := rc.Store(context.Background())
	assert.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int64(1), env.db.acquired.Load())

	rc.close()
	rc.close()
	assert.Equal(t, int64(1), env.db.released.Load())
}
