// Package client contains the HTTP side of the GophStore client.
//
// # Overview
//
// The package provides:
//  1. HTTPClient, the single choke point for backend calls. It speaks the
//     auth, product, order and payment JSON contracts and normalizes every
//     failure into an error callers can match.
//  2. An authenticating transport that attaches the bearer token from the
//     cookie jar and, on a 401, renews the token pair once and replays the
//     request. Concurrent 401s share one renewal.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations),
//     wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Non-2xx answers become *APIError. Common conditions are exposed as
// sentinel errors that callers can match with errors.Is: ErrUnavailable,
// ErrUnauthorized, ErrNotFound.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept
// context.Context and honor cancellation and timeouts.
package client
