package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"easydish/internal/storage"
)

// SessionKey is the storage key holding the current access token.
const SessionKey = "easydish-auth"

// Listener receives the current user, or nil after sign-out.
type Listener func(u *User)

// Session persists the access token and notifies listeners whenever the
// signed-in user changes.
type Session struct {
	verifier *Verifier
	kv       storage.KV
	logger   *slog.Logger

	mu        sync.Mutex
	user      *User
	listeners []Listener
}

// NewSession creates a signed-out session.
func NewSession(verifier *Verifier, kv storage.KV, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{verifier: verifier, kv: kv, logger: logger}
}

// Restore loads the persisted token, if any. An expired or tampered token is
// discarded and leaves the session signed out.
func (s *Session) Restore(ctx context.Context) (*User, error) {
	token, err := s.kv.Get(ctx, SessionKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.set(nil)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	u, err := s.verifier.Verify(string(token))
	if err != nil {
		s.logger.Info("discarding stored session", slog.String("error", err.Error()))
		if err := s.kv.Delete(ctx, SessionKey); err != nil {
			return nil, fmt.Errorf("failed to clear session: %w", err)
		}
		s.set(nil)
		return nil, nil
	}

	s.set(u)
	return u, nil
}

// SignIn verifies token, persists it and announces the user.
func (s *Session) SignIn(ctx context.Context, token string) (*User, error) {
	u, err := s.verifier.Verify(token)
	if err != nil {
		return nil, err
	}
	if err := s.kv.Set(ctx, SessionKey, []byte(token)); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	s.set(u)
	return u, nil
}

// SignOut forgets the token and announces a nil user.
func (s *Session) SignOut(ctx context.Context) error {
	if err := s.kv.Delete(ctx, SessionKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.set(nil)
	return nil
}

// User returns the signed-in user, or nil.
func (s *Session) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Subscribe registers l and immediately calls it with the current user.
func (s *Session) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	u := s.user
	s.mu.Unlock()

	l(u)
}

func (s *Session) set(u *User) {
	s.mu.Lock()
	s.user = u
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(u)
	}
}
