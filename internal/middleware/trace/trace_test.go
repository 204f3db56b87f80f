package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/log"
)

func newRouter(t *testing.T, seen *string) http.Handler {
	t.Helper()
	logger := log.New(log.Config{Level: log.ParseLevel("debug"), Output: &bytes.Buffer{}})

	r := chi.NewRouter()
	r.Use(NewMiddleware(logger, func(*http.Request) string { return "127.0.0.1" }).Middleware)
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		*seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})
	return r
}

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var seen string
	h := newRouter(t, &seen)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	id := rec.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, seen)
}

func TestMiddlewareKeepsValidIncomingID(t *testing.T) {
	var seen string
	h := newRouter(t, &seen)

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, incoming)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, incoming, seen)

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid\r\n")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid\r\n", seen)
}

func TestGetRequestIDEmpty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", GetRequestID(req.Context()))
}
