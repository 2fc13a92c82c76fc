package store

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophstore/internal/common"
)

var (
	ErrInvalidQuantity = fmt.Errorf("%w: quantity must be at least 1", common.ErrorValidation)
	ErrOutOfStock      = fmt.Errorf("%w: product is out of stock", common.ErrorValidation)
	ErrEmptyToken      = errors.New("token response carries no access token")
)
