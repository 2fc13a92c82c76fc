// Package cookies keeps the token cookies the request client reads and
// writes. It mirrors the browser cookie store: values carry an absolute
// expiry and a same-site policy, and an expired cookie reads as absent.
package cookies

import (
	"context"
	"time"
)

type SameSite string

const (
	SameSiteStrict SameSite = "strict"
	SameSiteLax    SameSite = "lax"
)

// Cookie is one named value. A zero Expires means a session cookie that
// lives until removed.
type Cookie struct {
	Name     string
	Value    string
	Expires  time.Time
	SameSite SameSite
	Secure   bool
}

// Expired reports whether c is past its expiry at now.
func (c Cookie) Expired(now time.Time) bool {
	return !c.Expires.IsZero() && !now.Before(c.Expires)
}

// Jar is the cookie storage medium.
// Get returns common.ErrorNotFound when the cookie is absent or expired.
type Jar interface {
	Get(ctx context.Context, name string) (Cookie, error)
	Set(ctx context.Context, cookies ...Cookie) error
	Remove(ctx context.Context, names ...string) error
}
