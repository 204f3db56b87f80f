package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"slices"
)

const flashCookieName = "fintrack_flash"

const (
	flashSuccess = "success"
	flashDanger  = "danger"
)

type flashMessage struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// setFlash queues a notice for the next rendered page. Notices already queued
// on the request are kept; an identical one is not repeated.
func setFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	msg := flashMessage{Category: category, Message: message}
	msgs := readFlashes(r)
	if !slices.Contains(msgs, msg) {
		msgs = append(msgs, msg)
	}
	b, err := json.Marshal(msgs)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(b),
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// consumeFlashes returns the queued notices and expires the cookie.
func consumeFlashes(w http.ResponseWriter, r *http.Request) []flashMessage {
	msgs := readFlashes(r)
	if _, err := r.Cookie(flashCookieName); err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return msgs
}

func readFlashes(r *http.Request) []flashMessage {
	c, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var msgs []flashMessage
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil
	}
	return msgs
}
