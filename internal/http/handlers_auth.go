package http

import (
	"errors"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	rc, ok := s.resolveSession(w, r)
	if !ok {
		return
	}
	if rc.Authenticated() {
		http.Redirect(w, r, "/summary", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "index.html", pageData{})
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login.html", pageData{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	st, ok := s.store(w, r)
	if !ok {
		return
	}
	creds := credentialsFrom(r)

	u, err := s.accounts.Authenticate(r.Context(), st, creds)
	if errors.Is(err, core.ErrAuthenticationFailed) {
		observeAuth(log.OpLogin, false)
		s.render(w, r, http.StatusUnauthorized, "login.html",
			pageData{Form: map[string]string{"username": creds.Username}},
			flashMessage{Category: flashDanger, Message: "Login failed. Check username and password."})
		return
	}
	if err != nil {
		s.serverError(w, r, "Login error", err)
		return
	}

	if err := s.sessions.Issue(w, u.ID); err != nil {
		s.serverError(w, r, "Failed to issue session", err)
		return
	}
	observeAuth(log.OpLogin, true)
	setFlash(w, r, flashSuccess, "Logged in successfully!")
	http.Redirect(w, r, "/summary", http.StatusSeeOther)
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register.html", pageData{})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	st, ok := s.store(w, r)
	if !ok {
		return
	}
	creds := credentialsFrom(r)
	form := map[string]string{"username": creds.Username}

	_, err := s.accounts.Register(r.Context(), st, creds)
	switch {
	case errors.Is(err, core.ErrDuplicateUsername):
		observeAuth(log.OpRegister, false)
		s.render(w, r, http.StatusConflict, "register.html", pageData{Form: form},
			flashMessage{Category: flashDanger, Message: "Username already exists."})
		return
	case err != nil:
		s.serverError(w, r, "Registration error", err)
		return
	}

	observeAuth(log.OpRegister, true)
	setFlash(w, r, flashSuccess, "Registration successful!")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	observeAuth(log.OpLogout, true)
	log.FromContext(r.Context()).WithComponent(log.ComponentAuth).InfoContext(r.Context(), "Logged out")
	setFlash(w, r, flashSuccess, "Logged out successfully!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// credentialsFrom reads the submitted pair verbatim; usernames differing only
// in whitespace are distinct accounts.
func credentialsFrom(r *http.Request) core.Credentials {
	return core.Credentials{
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	}
}

// sanitizeInput trims whitespace and drops control characters other than
// tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
