package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const SessionCookieName = "fintrack_session"

var ErrNoSession = errors.New("no session")

// SessionClaims is the payload of the session token. Subject holds the user id.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// Sessions issues and reads HS256-signed session cookies.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessions(secret string, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

// Token signs a session token for userID.
func (s *Sessions) Token(userID int64) (string, error) {
	now := s.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  strconv.FormatInt(userID, 10),
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns the user id it carries.
func (s *Sessions) Parse(token string) (int64, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, fmt.Errorf("parse session token: %w", err)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("parse session subject %q: invalid user id", claims.Subject)
	}
	return id, nil
}

// Issue sets the session cookie for userID, replacing any previous identity.
func (s *Sessions) Issue(w http.ResponseWriter, userID int64) error {
	token, err := s.Token(userID)
	if err != nil {
		return err
	}
	c := &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if s.ttl > 0 {
		c.MaxAge = int(s.ttl.Seconds())
	}
	http.SetCookie(w, c)
	return nil
}

// UserID returns the user id of the request's session, or ErrNoSession.
// Tampered, expired or malformed cookies count as no session.
func (s *Sessions) UserID(r *http.Request) (int64, error) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return 0, ErrNoSession
	}
	id, err := s.Parse(c.Value)
	if err != nil {
		return 0, errors.Join(ErrNoSession, err)
	}
	return id, nil
}

// Clear removes the session cookie. It is safe without a session.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
