package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/example/shopingo/internal/models"
)

// Coupons is the gorm-backed coupon repository.
type Coupons struct {
	db *gorm.DB
}

// NewCoupons constructs Coupons.
func NewCoupons(db *gorm.DB) *Coupons {
	return &Coupons{db: db}
}

// ByCode resolves a code case-insensitively, returning (nil, nil) when
// no coupon matches.
func (r *Coupons) ByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := r.db.WithContext(ctx).
		First(&coupon, "LOWER(code) = LOWER(?)", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}
