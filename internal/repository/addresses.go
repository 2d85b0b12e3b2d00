package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/shopingo/internal/models"
)

// Addresses is the gorm-backed shipping address repository.
type Addresses struct {
	db *gorm.DB
}

// NewAddresses constructs Addresses.
func NewAddresses(db *gorm.DB) *Addresses {
	return &Addresses{db: db}
}

func (r *Addresses) Create(ctx context.Context, addr *models.ShippingAddress) error {
	return r.db.WithContext(ctx).Create(addr).Error
}

func (r *Addresses) LatestByUser(ctx context.Context, userID uuid.UUID) (*models.ShippingAddress, error) {
	var addr models.ShippingAddress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		First(&addr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &addr, nil
}
