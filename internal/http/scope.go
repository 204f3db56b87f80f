package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// RequestContext is the per-request state handlers work with: who is asking
// and the database handle reserved for this request.
type RequestContext struct {
	UserID int64 // zero when anonymous or not yet resolved

	claimed  int64 // user id carried by the session cookie
	resolved bool

	db      Database
	store   *storage.Queries
	release func()
}

func (rc *RequestContext) Authenticated() bool {
	return rc != nil && rc.UserID != 0
}

// Store returns the request's database handle. The connection is reserved on
// first use and every later call returns the same handle.
func (rc *RequestContext) Store(ctx context.Context) (*storage.Queries, error) {
	if rc.store != nil {
		return rc.store, nil
	}
	store, release, err := rc.db.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	rc.store, rc.release = store, release
	return store, nil
}

func (rc *RequestContext) close() {
	if rc.release != nil {
		rc.release()
	}
	rc.store, rc.release = nil, nil
}

type requestContextKey struct{}

func withRequestContext(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// requestContextFrom returns the RequestContext installed by requestScope.
func requestContextFrom(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(requestContextKey{}).(*RequestContext)
	return rc
}

// requestScope reads the session cookie and installs a RequestContext. No
// connection is taken until a handler asks for one; whatever was taken is
// released however the handler returns.
func (s *Server) requestScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := s.sessions.UserID(r)
		if err != nil {
			if err != auth.ErrNoSession {
				log.FromContext(ctx).DebugContext(ctx, "Session cookie rejected", log.FieldError, err)
			}
			userID = 0
		}

		rc := &RequestContext{claimed: userID, db: s.db}
		defer rc.close()

		if userID != 0 {
			ctx = log.NewContext(ctx, log.FromContext(ctx).With(log.FieldUserID, userID))
		}
		next.ServeHTTP(w, r.WithContext(withRequestContext(ctx, rc)))
	})
}

// store returns the request's database handle, answering 503 when no
// connection can be reserved.
func (s *Server) store(w http.ResponseWriter, r *http.Request) (*storage.Queries, bool) {
	ctx := r.Context()
	st, err := requestContextFrom(ctx).Store(ctx)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Failed to acquire database connection", log.FieldError, err)
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return nil, false
	}
	return st, true
}

// resolveSession confirms the session's user still exists and sets UserID. A
// session for a user that is gone is cleared and treated as anonymous. It
// returns false after writing an error response.
func (s *Server) resolveSession(w http.ResponseWriter, r *http.Request) (*RequestContext, bool) {
	ctx := r.Context()
	rc := requestContextFrom(ctx)
	if rc.resolved || rc.claimed == 0 {
		rc.resolved = true
		return rc, true
	}

	st, ok := s.store(w, r)
	if !ok {
		return nil, false
	}
	u, err := st.GetUserByID(ctx, rc.claimed)
	if errors.Is(err, core.ErrNotFound) {
		log.FromContext(ctx).WithComponent(log.ComponentAuth).InfoContext(ctx, "Session names an unknown user")
		s.sessions.Clear(w)
		rc.resolved = true
		return rc, true
	}
	if err != nil {
		s.serverError(w, r, "Failed to resolve session", fmt.Errorf("lookup session user: %w", err))
		return nil, false
	}
	rc.UserID = u.ID
	rc.resolved = true
	return rc, true
}

// requireSession sends anonymous visitors to the login page with a notice.
// The wrapped handler does not run for them.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc, ok := s.resolveSession(w, r)
		if !ok {
			return
		}
		if !rc.Authenticated() {
			log.FromContext(r.Context()).DebugContext(r.Context(), "Protected route refused",
				log.FieldPath, r.URL.Path, log.FieldError, core.ErrUnauthorized)
			setFlash(w, r, flashDanger, "Please log in first")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
