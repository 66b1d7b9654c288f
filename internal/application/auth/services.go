package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/bryanwahyu/cp-analyzer/internal/domain/storage"
	"github.com/bryanwahyu/cp-analyzer/internal/domain/tenants"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// Service issues and resolves session tokens. Tokens live in the
// session store and expire with its TTL.
type Service struct {
	Sessions storage.Store
}

// Login validates credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	if !tenants.Authenticate(username, password) {
		return "", ErrInvalidCredentials
	}
	token := uuid.New().String()
	if err := s.Sessions.Set(ctx, storage.SessionKey(token), []byte(username)); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve maps a bearer token back to its username.
func (s *Service) Resolve(ctx context.Context, token string) (string, bool) {
	v, ok := s.Sessions.Get(ctx, storage.SessionKey(token))
	if !ok {
		return "", false
	}
	return string(v), true
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.Sessions.Delete(ctx, storage.SessionKey(token))
}

// ActiveView remembers which assessment a user last opened; the flag is
// one-shot, reading it clears it.
func (s *Service) ActiveView(ctx context.Context, username string) (string, bool, error) {
	key := storage.ActiveViewKey(username)
	v, ok := s.Sessions.Get(ctx, key)
	if !ok {
		return "", false, nil
	}
	if err := s.Sessions.Delete(ctx, key); err != nil {
		return "", false, err
	}
	return string(v), true, nil
}

func (s *Service) SetActiveView(ctx context.Context, username, assessmentID string) error {
	return s.Sessions.Set(ctx, storage.ActiveViewKey(username), []byte(assessmentID))
}
