package core

import (
	"errors"
	"fmt"
)

// Error categories. Callers classify failures with errors.Is against these.
var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrFormat      = errors.New("format error")
	ErrPersistence = errors.New("persistence error")
)

var (
	ErrInvalidDate       = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrInvalidAmount     = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInvalidType       = fmt.Errorf("%w: invalid type", ErrValidation)
	ErrEmptyCategory     = fmt.Errorf("%w: empty category", ErrValidation)
	ErrDuplicateCategory = fmt.Errorf("%w: category already exists", ErrValidation)
	ErrEmptyParty        = fmt.Errorf("%w: empty party", ErrValidation)
	ErrOverpayment       = fmt.Errorf("%w: payment exceeds balance", ErrValidation)
	ErrMissingRange      = fmt.Errorf("%w: both from and to dates are required", ErrValidation)
)
