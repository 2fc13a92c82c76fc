package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophstore/internal/client/client"
	"github.com/dmitrijs2005/gophstore/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errPasswordMismatch = fmt.Errorf("%w: passwords do not match", common.ErrorValidation)

// Register prompts for the account details and creates the account.
// It does not sign in; the user logs in afterwards.
func (a *App) Register(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter full name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(a.out, "Repeat password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(password) != string(confirm) {
		return errPasswordMismatch
	}

	if err := a.auth.Register(ctx, name, email, string(password)); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Account created. You can log in now.")
	return nil
}

// Login prompts for email and password and opens a session.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.Login(ctx, email, string(password)); err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.log.Warn(ctx, "login failed, server unavailable", "err", err)
		}
		return err
	}

	a.greet()
	return nil
}

// OAuth prints the provider's sign-in address and waits for the address
// the browser was redirected to afterwards.
func (a *App) OAuth(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("oauth <%s>", strings.Join(client.OAuthProviders, "|"))
	}

	u, err := a.auth.OAuthURL(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Open this address in your browser and sign in:")
	fmt.Fprintln(a.out, "  "+u)

	callback, err := getSimpleText(a.reader, "Paste the address you were redirected to (empty to cancel)", a.out)
	if err != nil {
		return err
	}
	if callback == "" {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	if err := a.auth.CompleteOAuth(ctx, callback); err != nil {
		return err
	}

	a.greet()
	return nil
}

// Logout ends the session. The cart is kept.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) greet() {
	st := a.auth.State()
	if st.User != nil && st.User.FullName != "" {
		fmt.Fprintf(a.out, "Welcome, %s!\n", st.User.FullName)
		return
	}
	fmt.Fprintln(a.out, "Login successful.")
}
