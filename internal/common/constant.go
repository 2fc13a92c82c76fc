// Package common contains shared constants and sentinel errors used across
// GophStore components.
package common

// Cookie names of the token pair kept in the local cookie jar.
const (
	AccessTokenCookieName  = "access_token"
	RefreshTokenCookieName = "refresh_token"
)

// Keys of the JSON blobs kept in the local metadata table.
const (
	AuthStorageKey = "auth-storage"
	CartStorageKey = "cart"
	CookieSaltKey  = "cookie_salt"
)

// HTTP header names used on outbound requests.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	BearerPrefix            = "Bearer "
)
