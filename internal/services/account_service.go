package services

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// AccountService registers users and checks their credentials.
type AccountService struct {
	hasher auth.Hasher
}

func NewAccountService(hasher auth.Hasher) *AccountService {
	return &AccountService{hasher: hasher}
}

// Register hashes the password and creates the user with the username as
// submitted. There is no password or username policy. A taken username
// returns core.ErrDuplicateUsername and leaves the existing row untouched.
func (s *AccountService) Register(ctx context.Context, st Store, c core.Credentials) (core.User, error) {
	username := c.Username

	hash, err := s.hasher.Hash(c.Password)
	if err != nil {
		return core.User{}, err
	}

	logger := log.FromContext(ctx).WithComponent(log.ComponentAuth)
	u, err := st.CreateUser(ctx, username, hash)
	if errors.Is(err, core.ErrDuplicateUsername) {
		logger.InfoContext(ctx, "Registration rejected, username taken", log.FieldUsername, username)
		return core.User{}, err
	}
	if err != nil {
		return core.User{}, fmt.Errorf("register %q: %w", username, err)
	}

	logger.InfoContext(ctx, "User registered", log.FieldUserID, u.ID, log.FieldUsername, u.Username)
	return u, nil
}

// Authenticate returns the user when the password verifies. Unknown users and
// wrong passwords both yield core.ErrAuthenticationFailed.
func (s *AccountService) Authenticate(ctx context.Context, st Store, c core.Credentials) (core.User, error) {
	logger := log.FromContext(ctx).WithComponent(log.ComponentAuth)
	username := c.Username

	u, err := st.GetUserByUsername(ctx, username)
	if errors.Is(err, core.ErrNotFound) {
		logger.InfoContext(ctx, "Login failed", log.FieldUsername, username)
		return core.User{}, core.ErrAuthenticationFailed
	}
	if err != nil {
		return core.User{}, fmt.Errorf("lookup user %q: %w", username, err)
	}

	if !s.hasher.Verify(u.PasswordHash, c.Password) {
		logger.InfoContext(ctx, "Login failed", log.FieldUsername, username)
		return core.User{}, core.ErrAuthenticationFailed
	}

	logger.InfoContext(ctx, "Login succeeded", log.FieldUserID, u.ID)
	return u, nil
}
