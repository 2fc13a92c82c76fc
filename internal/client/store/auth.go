package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophstore/internal/client/models"
	"github.com/dmitrijs2005/gophstore/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/gophstore/internal/common"
)

// AuthState is the part of the sign-in state that survives restarts.
// Raw tokens are deliberately absent; they live only in the cookie jar.
type AuthState struct {
	IsAuthenticated bool         `json:"isAuthenticated"`
	Role            string       `json:"role,omitempty"`
	TokenExpiry     string       `json:"tokenExpiry,omitempty"`
	User            *models.User `json:"user,omitempty"`
}

// AuthStore is the authoritative record of sign-in state.
//
// Expiry instants are only handed to the cookie jar; the store never
// decides on its own that a token expired. A 401 from the backend is what
// triggers renewal (see client.HTTPClient).
type AuthStore struct {
	mu      sync.Mutex
	state   AuthState
	jar     cookies.Jar
	persist Persister
	secure  bool
}

// NewAuthStore loads the persisted auth blob. secure marks the token
// cookies as HTTPS-only.
func NewAuthStore(ctx context.Context, jar cookies.Jar, p Persister, secure bool) (*AuthStore, error) {
	s := &AuthStore{jar: jar, persist: p, secure: secure}
	if _, err := p.Load(ctx, common.AuthStorageKey, &s.state); err != nil {
		return nil, fmt.Errorf("loading auth state: %w", err)
	}
	return s, nil
}

// State returns a copy of the current state.
func (s *AuthStore) State() AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *AuthStore) snapshot() AuthState {
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// Login stores the token pair as cookies and marks the session
// authenticated. user may be nil.
func (s *AuthStore) Login(ctx context.Context, tr models.TokenResponse, user *models.User) error {
	if tr.Token == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.jar.Set(ctx, cookies.TokenPair(tr, s.secure)...); err != nil {
		return fmt.Errorf("storing tokens: %w", err)
	}

	next := AuthState{
		IsAuthenticated: true,
		Role:            tr.Role,
		TokenExpiry:     tr.ExpiredAt,
	}
	if user != nil {
		u := *user
		next.User = &u
	}
	s.state = next

	return s.save(ctx)
}

// SetUser replaces the cached profile.
func (s *AuthStore) SetUser(ctx context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.User = &user
	return s.save(ctx)
}

// Logout drops the tokens and resets the state. The in-memory reset always
// happens; storage errors are reported afterwards.
func (s *AuthStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logoutLocked(ctx)
}

func (s *AuthStore) logoutLocked(ctx context.Context) error {
	s.state = AuthState{}

	errRemove := s.jar.Remove(ctx, common.AccessTokenCookieName, common.RefreshTokenCookieName)
	if errRemove != nil {
		errRemove = fmt.Errorf("removing tokens: %w", errRemove)
	}
	return errors.Join(errRemove, s.save(ctx))
}

// CheckAuth reports whether an access token cookie is present. When the
// store believed it was signed in but the cookie is gone (expired or
// cleared elsewhere), it logs out to get back in sync.
func (s *AuthStore) CheckAuth(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.jar.Get(ctx, common.AccessTokenCookieName)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return false, fmt.Errorf("reading access token: %w", err)
	}
	present := err == nil

	if !present && s.state.IsAuthenticated {
		if err := s.logoutLocked(ctx); err != nil {
			return false, err
		}
	}
	return present, nil
}

func (s *AuthStore) save(ctx context.Context) error {
	if err := s.persist.Save(ctx, common.AuthStorageKey, s.state); err != nil {
		return fmt.Errorf("saving auth state: %w", err)
	}
	return nil
}
