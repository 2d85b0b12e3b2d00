package coupons

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shopingo/internal/models"
)

type memoryCoupons struct {
	coupons []*models.Coupon
}

func (m *memoryCoupons) ByCode(_ context.Context, code string) (*models.Coupon, error) {
	for _, c := range m.coupons {
		if strings.EqualFold(c.Code, code) {
			return c, nil
		}
	}
	return nil, nil
}

func coupon(code string, percent int, active bool, from, to time.Time) *models.Coupon {
	return &models.Coupon{
		Code:            code,
		DiscountPercent: &percent,
		Active:          active,
		ValidFrom:       from,
		ValidTo:         to,
	}
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	now := time.Now()
	repo := &memoryCoupons{coupons: []*models.Coupon{
		coupon("SAVE10", 10, true, now.Add(-time.Hour), now.Add(time.Hour)),
	}}
	v := NewValidator(repo)

	found, err := v.Lookup(context.Background(), "  save10 ")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", found.Code)
}

func TestLookupUnknownCode(t *testing.T) {
	v := NewValidator(&memoryCoupons{})

	_, err := v.Lookup(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = v.Lookup(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveExpiredCoupon(t *testing.T) {
	now := time.Now()
	repo := &memoryCoupons{coupons: []*models.Coupon{
		coupon("OLD", 10, true, now.Add(-48*time.Hour), now.Add(-24*time.Hour)),
	}}
	v := NewValidator(repo)

	found, err := v.Resolve(context.Background(), "OLD", now)
	assert.ErrorIs(t, err, ErrNotValid)
	require.NotNil(t, found)
	assert.Equal(t, "OLD", found.Code)
}

func TestResolveInactiveCoupon(t *testing.T) {
	now := time.Now()
	repo := &memoryCoupons{coupons: []*models.Coupon{
		coupon("PAUSED", 10, false, now.Add(-time.Hour), now.Add(time.Hour)),
	}}
	v := NewValidator(repo)

	_, err := v.Resolve(context.Background(), "PAUSED", now)
	assert.ErrorIs(t, err, ErrNotValid)
}

func TestIsValidWindowBoundsAreInclusive(t *testing.T) {
	now := time.Now()
	c := coupon("EDGE", 10, true, now, now)

	assert.True(t, IsValid(c, now))
	assert.False(t, IsValid(c, now.Add(time.Nanosecond)))
	assert.False(t, IsValid(nil, now))
}

func TestDiscount(t *testing.T) {
	now := time.Now()
	subtotal := decimal.RequireFromString("100.00")

	valid := coupon("SAVE10", 10, true, now.Add(-time.Hour), now.Add(time.Hour))
	assert.True(t, decimal.RequireFromString("10").Equal(Discount(valid, subtotal, now)))

	expired := coupon("OLD", 10, true, now.Add(-2*time.Hour), now.Add(-time.Hour))
	assert.True(t, Discount(expired, subtotal, now).IsZero())

	noPercent := &models.Coupon{
		Code:      "FREEBIE",
		Active:    true,
		ValidFrom: now.Add(-time.Hour),
		ValidTo:   now.Add(time.Hour),
	}
	assert.True(t, Discount(noPercent, subtotal, now).IsZero())
}
