// Package session holds the signed-in credential and profile for the client.
//
// A Session is created explicitly and handed to every component that needs the
// bearer token; there is no process-wide storage. Begin runs when OTP
// verification succeeds, End on logout or when the backend answers 401.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/itsneelabh/campusbite/pkg/logger"
	"github.com/itsneelabh/campusbite/pkg/memory"
	"github.com/itsneelabh/campusbite/pkg/models"
)

// Storage keys, kept compatible with the mobile client
const (
	TokenKey = "authToken"
	UserKey  = "user"
)

// Session reads and writes credentials through a memory.Store
type Session struct {
	store  memory.Store
	logger logger.Logger
	mu     sync.Mutex
}

// New creates a session over store
func New(store memory.Store, log logger.Logger) *Session {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Session{store: store, logger: log}
}

// Begin records a fresh credential and profile
func (s *Session) Begin(ctx context.Context, token string, user models.User) error {
	if token == "" {
		return errors.New("session: empty token")
	}
	profile, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(ctx, TokenKey, token, 0); err != nil {
		return fmt.Errorf("session: store token: %w", err)
	}
	if err := s.store.Set(ctx, UserKey, string(profile), 0); err != nil {
		return fmt.Errorf("session: store user: %w", err)
	}

	s.logger.Info("Session started", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

// Token returns the stored bearer token, or "" when signed out
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.store.Get(ctx, TokenKey)
	if errors.Is(err, memory.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session: read token: %w", err)
	}
	return token, nil
}

// User returns the stored profile, or nil when signed out
func (s *Session) User(ctx context.Context) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.store.Get(ctx, UserKey)
	if errors.Is(err, memory.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: read user: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("session: decode user: %w", err)
	}
	return &user, nil
}

// IsAuthenticated reports whether a token is stored
func (s *Session) IsAuthenticated(ctx context.Context) (bool, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return false, err
	}
	return token != "", nil
}

// End clears the credential and profile. Safe to call when already signed out.
func (s *Session) End(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := errors.Join(
		s.store.Delete(ctx, TokenKey),
		s.store.Delete(ctx, UserKey),
	)
	if err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}

	s.logger.Info("Session ended", nil)
	return nil
}
