package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophstore/internal/client/gateway"
	"github.com/dmitrijs2005/gophstore/internal/common"
)

var (
	ErrInvalidInput = fmt.Errorf("%w: invalid input", common.ErrorValidation)
	ErrEmptyCart    = fmt.Errorf("%w: cart is empty", common.ErrorValidation)

	ErrNotAuthenticated = errors.New("not signed in")
	ErrCartNotCleared   = errors.New("order created but the cart could not be cleared")
	ErrOrderNotFound    = errors.New("order not found")

	ErrOrderClosed        = errors.New("order is no longer payable")
	ErrWidgetOpen         = errors.New("payment window is already open")
	ErrReloginRequired    = errors.New("customer email is missing, please sign in again")
	ErrPaymentNotReady    = errors.New("payment is not available yet, try again")
	ErrPaymentUnavailable = gateway.ErrUnavailable
	ErrPaymentFailed      = errors.New("payment failed")
	ErrFlowClosed         = errors.New("payment view closed")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
