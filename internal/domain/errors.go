package domain

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrUnavailable        = errors.New("item unavailable")
	ErrLimitReached       = errors.New("quantity limit reached")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrMobileMismatch     = errors.New("mobile number does not match admin contact")
	ErrInvalidPin         = errors.New("pin must be exactly 4 digits")
)
