// Package gateway abstracts the hosted payment widget. The payment flow only
// depends on Widget, so tests substitute a scripted implementation.
package gateway

import (
	"context"
	"errors"
)

// ErrUnavailable means no widget is configured.
var ErrUnavailable = errors.New("payment system not available")

// Result is the payload the gateway reports with an outcome.
type Result struct {
	Status        string
	TransactionID string
	Message       string
}

// Callbacks receive exactly one outcome per Open.
type Callbacks struct {
	OnSuccess func(Result)
	OnPending func(Result)
	OnError   func(Result)
	OnClose   func()
}

func (cb Callbacks) success(r Result) {
	if cb.OnSuccess != nil {
		cb.OnSuccess(r)
	}
}

func (cb Callbacks) pending(r Result) {
	if cb.OnPending != nil {
		cb.OnPending(r)
	}
}

func (cb Callbacks) fail(r Result) {
	if cb.OnError != nil {
		cb.OnError(r)
	}
}

func (cb Callbacks) closed() {
	if cb.OnClose != nil {
		cb.OnClose()
	}
}

// Widget opens a checkout session for a gateway session token. An error
// from Open means no callback will fire.
type Widget interface {
	Open(ctx context.Context, token string, cb Callbacks) error
}
