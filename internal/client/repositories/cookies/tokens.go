package cookies

import (
	"time"

	"github.com/dmitrijs2005/gophstore/internal/client/models"
	"github.com/dmitrijs2005/gophstore/internal/common"
)

// TokenPair converts a token response into the access/refresh cookie pair.
// Each cookie expires at the instant the backend reported for it; an
// unparsable instant leaves a session cookie.
func TokenPair(tr models.TokenResponse, secure bool) []Cookie {
	return []Cookie{
		{
			Name:     common.AccessTokenCookieName,
			Value:    tr.Token,
			Expires:  ParseExpiry(tr.ExpiredAt),
			SameSite: SameSiteStrict,
			Secure:   secure,
		},
		{
			Name:     common.RefreshTokenCookieName,
			Value:    tr.RefreshToken,
			Expires:  ParseExpiry(tr.RefreshTokenExpiredAt),
			SameSite: SameSiteStrict,
			Secure:   secure,
		},
	}
}

// ParseExpiry parses an RFC 3339 instant, returning the zero time on failure.
func ParseExpiry(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
