// Package models defines the client-side view of the shop backend's JSON
// payloads and the locally persisted cart line.
package models

// TokenResponse is returned by login, OAuth callback and token refresh.
// Expiry fields are RFC 3339 instants.
type TokenResponse struct {
	Message               string `json:"message,omitempty"`
	Token                 string `json:"token"`
	ExpiredAt             string `json:"expired_at"`
	RefreshToken          string `json:"refresh_token"`
	RefreshTokenExpiredAt string `json:"refresh_token_expired_at"`
	Role                  string `json:"role"`
}

type User struct {
	ID        int64  `json:"id,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	Email     string `json:"email"`
	Provider  string `json:"provider,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body shape of every non-2xx backend answer.
type ErrorResponse struct {
	Error string `json:"error"`
}
