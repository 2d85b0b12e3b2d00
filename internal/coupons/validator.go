package coupons

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/shopingo/internal/models"
)

var (
	// ErrNotFound means no coupon exists for the code.
	ErrNotFound = errors.New("coupon not found")
	// ErrNotValid means the coupon exists but is inactive or outside
	// its validity window.
	ErrNotValid = errors.New("coupon is not valid or expired")
)

// Repo resolves coupon codes. Lookups are case-insensitive and return
// (nil, nil) when no coupon matches.
type Repo interface {
	ByCode(ctx context.Context, code string) (*models.Coupon, error)
}

// Validator decides whether a coupon code is usable at a given instant.
type Validator struct {
	repo Repo
}

// NewValidator constructs a Validator.
func NewValidator(repo Repo) *Validator {
	return &Validator{repo: repo}
}

// Lookup resolves a code to its coupon, or ErrNotFound.
func (v *Validator) Lookup(ctx context.Context, code string) (*models.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrNotFound
	}

	coupon, err := v.repo.ByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrNotFound
	}
	return coupon, nil
}

// Resolve looks a code up and checks its validity window, keeping the
// not-found outcome distinct from expired/inactive.
func (v *Validator) Resolve(ctx context.Context, code string, at time.Time) (*models.Coupon, error) {
	coupon, err := v.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	if !IsValid(coupon, at) {
		return coupon, ErrNotValid
	}
	return coupon, nil
}

// IsValid reports whether the coupon is active and inside its validity
// window at the given instant.
func IsValid(c *models.Coupon, at time.Time) bool {
	if c == nil || !c.Active {
		return false
	}
	return !at.Before(c.ValidFrom) && !at.After(c.ValidTo)
}

// Discount computes the coupon's discount on a subtotal. Invalid
// coupons and coupons without a discount percent contribute zero.
func Discount(c *models.Coupon, subtotal decimal.Decimal, at time.Time) decimal.Decimal {
	if !IsValid(c, at) || c.DiscountPercent == nil {
		return decimal.Zero
	}
	percent := decimal.NewFromInt(int64(*c.DiscountPercent))
	return subtotal.Mul(percent).Div(decimal.NewFromInt(100))
}
