package repository

import (
	"context"
	"fmt"
	"strings"

	"canteen-system/internal/domain"
)

func (c *Canteen) SetStaffPin(ctx context.Context, pin string) error {
	if err := domain.ValidatePin(pin); err != nil {
		return err
	}
	_, err := c.mutate(ctx, "set_staff_pin", func(doc *domain.Document) (bool, error) {
		doc.StaffPin = pin
		return true, nil
	})
	return err
}

func (c *Canteen) SetAdminContact(ctx context.Context, mobile string) error {
	mobile = strings.TrimSpace(mobile)
	if err := domain.ValidateMobile(mobile); err != nil {
		return err
	}
	_, err := c.mutate(ctx, "set_admin_contact", func(doc *domain.Document) (bool, error) {
		doc.AdminMobile = mobile
		return true, nil
	})
	return err
}

// SetPaymentConfig rejects an all-empty config, which a load would replace
// with the defaults.
func (c *Canteen) SetPaymentConfig(ctx context.Context, cfg domain.PaymentConfig) error {
	if cfg.IsZero() {
		return fmt.Errorf("%w: payment config is empty", domain.ErrInvalidInput)
	}
	_, err := c.mutate(ctx, "set_payment_config", func(doc *domain.Document) (bool, error) {
		doc.PaymentConfig = cfg
		return true, nil
	})
	return err
}

// CheckStaffPin compares against the stored PIN in plaintext. There is no
// rate limiting.
func (c *Canteen) CheckStaffPin(ctx context.Context, pin string) bool {
	return pin != "" && pin == c.store.Load(ctx).StaffPin
}

// ResetStaffPin sets a new PIN when mobile matches the stored admin contact.
func (c *Canteen) ResetStaffPin(ctx context.Context, mobile, newPin string) error {
	if err := domain.ValidatePin(newPin); err != nil {
		return err
	}
	_, err := c.mutate(ctx, "reset_staff_pin", func(doc *domain.Document) (bool, error) {
		if mobile == "" || mobile != doc.AdminMobile {
			return false, domain.ErrMobileMismatch
		}
		doc.StaffPin = newPin
		return true, nil
	})
	if err == nil {
		c.lg.Info("staff_pin_reset", nil)
	}
	return err
}
