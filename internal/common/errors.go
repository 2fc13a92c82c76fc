// Package common defines shared constants and sentinel errors used across
// the client layers of GophStore. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Validation errors raised before any network call.
	ErrorValidation = errors.New("validation error")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
	ErrNoToken      = errors.New("no token")
)
