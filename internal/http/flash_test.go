package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlashRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	setFlash(rec, httptest.NewRequest(http.MethodGet, "/", nil), flashSuccess, "Saved")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	rec = httptest.NewRecorder()
	setFlash(rec, req, flashDanger, "Careful")
	next := rec.Result().Cookies()
	require.Len(t, next, 1)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(next[0])
	rec = httptest.NewRecorder()
	got := consumeFlashes(rec, req)

	assert.Equal(t, []flashMessage{
		{Category: flashSuccess, Message: "Saved"},
		{Category: flashDanger, Message: "Careful"},
	}, got)

	expired := rec.Result().Cookies()
	require.Len(t, expired, 1)
	assert.Equal(t, -1, expired[0].MaxAge)
}

func TestFlashIgnoresGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookieName, Value: "%%%"})
	assert.Nil(t, consumeFlashes(httptest.NewRecorder(), req))
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "a\tb", sanitizeInput("  a\tb\x00\x07 "))
}

func TestFlashNotRepeated(t *testing.T) {
	rec := httptest.NewRecorder()
	setFlash(rec, httptest.NewRequest(http.MethodGet, "/", nil), flashDanger, "Please log in first")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	rec = httptest.NewRecorder()
	setFlash(rec, req, flashDanger, "Please log in first")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	assert.Len(t, readFlashes(req), 1)
}
