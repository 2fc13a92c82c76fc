package services

import (
	"context"
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/gophstore/internal/client/client"
	"github.com/dmitrijs2005/gophstore/internal/client/models"
	"github.com/dmitrijs2005/gophstore/internal/client/store"
	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// AuthService defines the sign-in operations of the CLI.
//
// Input is validated before any network call. A successful Login or
// CompleteOAuth leaves the token pair in the cookie jar and the profile in
// the auth store.
type AuthService interface {
	Register(ctx context.Context, fullName, email, password string) error
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	CheckAuth(ctx context.Context) (bool, error)
	OAuthURL(provider string) (string, error)
	CompleteOAuth(ctx context.Context, callbackURL string) error
	State() store.AuthState
}

type authService struct {
	client client.Client
	auth   *store.AuthStore
	log    logging.Logger
}

func NewAuthService(c client.Client, auth *store.AuthStore, log logging.Logger) AuthService {
	return &authService{client: c, auth: auth, log: log}
}

func (s *authService) Register(ctx context.Context, fullName, email, password string) error {
	fullName = strings.TrimSpace(fullName)
	if n := len([]rune(fullName)); n < 3 || n > 100 {
		return invalid("name must be 3 to 100 characters")
	}
	if err := validateCredentials(email, password); err != nil {
		return err
	}

	_, err := s.client.Register(ctx, models.RegisterRequest{FullName: fullName, Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("registering: %w", err)
	}
	s.log.Info(ctx, "registered", "email", email)
	return nil
}

func (s *authService) Login(ctx context.Context, email, password string) error {
	if err := validateCredentials(email, password); err != nil {
		return err
	}

	tr, err := s.client.Login(ctx, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("signing in: %w", err)
	}

	user := userFromToken(tr.Token)
	user.Email = email
	if err := s.auth.Login(ctx, tr, &user); err != nil {
		return err
	}
	s.log.Info(ctx, "signed in", "email", email, "role", tr.Role)
	return nil
}

func (s *authService) Logout(ctx context.Context) error {
	return s.auth.Logout(ctx)
}

func (s *authService) CheckAuth(ctx context.Context) (bool, error) {
	return s.auth.CheckAuth(ctx)
}

func (s *authService) OAuthURL(provider string) (string, error) {
	return s.client.OAuthURL(strings.ToLower(strings.TrimSpace(provider)))
}

// CompleteOAuth signs in with the tokens the backend put on the OAuth
// redirect URL.
func (s *authService) CompleteOAuth(ctx context.Context, callbackURL string) error {
	u, err := url.Parse(strings.TrimSpace(callbackURL))
	if err != nil {
		return invalid("callback url: %v", err)
	}
	q := u.Query()
	tr := models.TokenResponse{
		Token:                 q.Get("token"),
		ExpiredAt:             q.Get("expired_at"),
		RefreshToken:          q.Get("refresh_token"),
		RefreshTokenExpiredAt: q.Get("refresh_token_expired_at"),
		Role:                  q.Get("role"),
	}
	if tr.Token == "" {
		return invalid("callback url carries no token")
	}

	user := userFromToken(tr.Token)
	if err := s.auth.Login(ctx, tr, &user); err != nil {
		return err
	}
	s.log.Info(ctx, "signed in with oauth", "email", user.Email)
	return nil
}

func (s *authService) State() store.AuthState {
	return s.auth.State()
}

func validateCredentials(email, password string) error {
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return invalid("invalid email address")
	}
	if n := len(password); n < 6 || n > 100 {
		return invalid("password must be 6 to 100 characters")
	}
	return nil
}

// userFromToken reads profile claims from an access token without
// verifying it. The backend is the only party that checks signatures.
func userFromToken(token string) models.User {
	var u models.User

	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(strings.TrimPrefix(token, common.BearerPrefix), claims)
	if err != nil {
		return u
	}

	for _, k := range []string{"full_name", "name"} {
		if v, ok := claims[k].(string); ok && v != "" {
			u.FullName = v
			break
		}
	}
	if v, ok := claims["email"].(string); ok {
		u.Email = v
	}
	for _, k := range []string{"user_id", "id", "sub"} {
		if v, ok := claims[k].(float64); ok {
			u.ID = int64(v)
			break
		}
	}
	if v, ok := claims["provider"].(string); ok {
		u.Provider = v
	}
	return u
}
