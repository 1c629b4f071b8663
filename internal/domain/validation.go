package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const MinMobileDigits = 10

func ParsePrice(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: price %q is not a number", ErrInvalidInput, raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	return v, nil
}

func ValidatePrice(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: price must be a non-negative number", ErrInvalidInput)
	}
	return nil
}

func ValidateMobile(mobile string) error {
	m := strings.TrimSpace(mobile)
	if len(m) < MinMobileDigits || !allDigits(m) {
		return fmt.Errorf("%w: mobile number needs at least %d digits", ErrInvalidInput, MinMobileDigits)
	}
	return nil
}

func ValidatePin(pin string) error {
	if len(pin) != 4 || !allDigits(pin) {
		return ErrInvalidPin
	}
	return nil
}

func ParsePaymentMode(raw string) (PaymentMode, error) {
	switch m := PaymentMode(strings.ToUpper(strings.TrimSpace(raw))); m {
	case PaymentOnline, PaymentCashDesk:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown payment mode %q", ErrInvalidInput, raw)
}

func ParseOrderStatus(raw string) (OrderStatus, error) {
	switch s := OrderStatus(strings.ToUpper(strings.TrimSpace(raw))); s {
	case StatusAwaitingCash, StatusConfirmed, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return s, nil
	}
	return "", fmt.Errorf("%w: unknown order status %q", ErrInvalidInput, raw)
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
