package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophstore/internal/client/models"
	"github.com/dmitrijs2005/gophstore/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/logging"
	"golang.org/x/sync/singleflight"
)

var errNoRefreshToken = errors.New("no refresh token")

type retriedKey struct{}

// withRetried marks ctx as belonging to a request that was already
// replayed after a token renewal.
func withRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey{}, true)
}

func retried(ctx context.Context) bool {
	v, _ := ctx.Value(retriedKey{}).(bool)
	return v
}

// bearer returns the Authorization value for token. Tokens issued by the
// backend may already carry the prefix.
func bearer(token string) string {
	if strings.HasPrefix(token, common.BearerPrefix) {
		return token
	}
	return common.BearerPrefix + token
}

type refreshFunc func(ctx context.Context, refreshToken string) (models.TokenResponse, error)

// authTransport attaches the access token and renews it on a 401.
type authTransport struct {
	next          http.RoundTripper
	jar           cookies.Jar
	refresh       refreshFunc
	secure        bool
	onAuthExpired func(ctx context.Context)
	log           logging.Logger
	group         singleflight.Group
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	out := req.Clone(ctx)
	sent := t.accessToken(ctx)
	if sent != "" {
		out.Header.Set(common.AuthorizationHeaderName, bearer(sent))
	}

	resp, err := t.next.RoundTrip(out)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	// The renewed token was refused too. The session is over; the response
	// goes back untouched so the caller sees the backend's message.
	if retried(ctx) {
		t.expire(ctx)
		return resp, nil
	}

	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		return resp, nil
	}

	err = t.renew(ctx, sent)
	if errors.Is(err, errNoRefreshToken) {
		return resp, nil
	}
	drain(resp)
	if err != nil {
		t.expire(ctx)
		return nil, fmt.Errorf("%w: token refresh: %w", ErrUnauthorized, err)
	}

	replay := req.Clone(withRetried(ctx))
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		replay.Body = body
	}
	return t.RoundTrip(replay)
}

func (t *authTransport) accessToken(ctx context.Context) string {
	c, err := t.jar.Get(ctx, common.AccessTokenCookieName)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			t.log.Warn(ctx, "reading access token", "error", err)
		}
		return ""
	}
	return c.Value
}

// renew exchanges the refresh token for a new pair and stores it. rejected
// is the access token the server refused; if the jar already holds a
// different one, another request renewed it in the meantime. Concurrent
// callers wait for the same exchange.
func (t *authTransport) renew(ctx context.Context, rejected string) error {
	_, err, shared := t.group.Do(common.RefreshTokenCookieName, func() (any, error) {
		ctx := context.WithoutCancel(ctx)

		if cur := t.accessToken(ctx); cur != "" && cur != rejected {
			return nil, nil
		}

		rc, err := t.jar.Get(ctx, common.RefreshTokenCookieName)
		if errors.Is(err, common.ErrorNotFound) || (err == nil && rc.Value == "") {
			return nil, errNoRefreshToken
		}
		if err != nil {
			return nil, fmt.Errorf("reading refresh token: %w", err)
		}

		tr, err := t.refresh(ctx, rc.Value)
		if err != nil {
			return nil, err
		}
		if tr.Token == "" {
			return nil, common.ErrNoToken
		}
		if err := t.jar.Set(ctx, cookies.TokenPair(tr, t.secure)...); err != nil {
			return nil, fmt.Errorf("storing refreshed tokens: %w", err)
		}
		t.log.Debug(ctx, "access token refreshed", "expires", tr.ExpiredAt)
		return nil, nil
	})
	if shared {
		t.log.Debug(ctx, "joined in-flight token refresh")
	}
	return err
}

// expire drops both tokens and tells the application to sign in again.
func (t *authTransport) expire(ctx context.Context) {
	if err := t.jar.Remove(ctx, common.AccessTokenCookieName, common.RefreshTokenCookieName); err != nil {
		t.log.Error(ctx, "purging tokens", "error", err)
	}
	t.log.Warn(ctx, "session expired")
	if t.onAuthExpired != nil {
		t.onAuthExpired(ctx)
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
