package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/shopingo/internal/models"
)

// ShippingMethods is the gorm-backed shipping method repository.
type ShippingMethods struct {
	db *gorm.DB
}

// NewShippingMethods constructs ShippingMethods.
func NewShippingMethods(db *gorm.DB) *ShippingMethods {
	return &ShippingMethods{db: db}
}

func (r *ShippingMethods) MethodByID(ctx context.Context, id uuid.UUID) (*models.ShippingMethod, error) {
	var method models.ShippingMethod
	err := r.db.WithContext(ctx).First(&method, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &method, nil
}

func (r *ShippingMethods) ActiveMethods(ctx context.Context) ([]models.ShippingMethod, error) {
	var methods []models.ShippingMethod
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("charge_amount asc").
		Find(&methods).Error
	return methods, err
}
