package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/shopingo/internal/checkout"
	"github.com/example/shopingo/internal/models"
)

// Orders is the gorm-backed order, order-item and completed-order
// repository.
type Orders struct {
	db *gorm.DB
}

// NewOrders constructs Orders.
func NewOrders(db *gorm.DB) *Orders {
	return &Orders{db: db}
}

func (r *Orders) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *Orders) ByID(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Preload("ShippingAddress").
		First(&order, "id = ? AND user_id = ?", orderID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *Orders) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *Orders) ItemExists(ctx context.Context, orderID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Count(&count).Error
	return count > 0, err
}

func (r *Orders) CreateItem(ctx context.Context, item *models.OrderItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *Orders) ItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).Preload("Product").
		Where("order_id = ?", orderID).
		Order("created_at asc").
		Find(&items).Error
	return items, err
}

// DeleteItem removes an item after verifying the owning order belongs
// to the user, returning that order or (nil, nil) when no such item
// exists.
func (r *Orders) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Order, error) {
	var item models.OrderItem
	err := r.db.WithContext(ctx).
		First(&item, "id = ? AND user_id = ?", itemID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	order, err := r.ByID(ctx, userID, item.OrderID)
	if err != nil || order == nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Delete(&item).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// CreateCompleted seals an order. The unique order_id index makes a
// second completion fail; that outcome is surfaced as
// checkout.ErrAlreadyCompleted.
func (r *Orders) CreateCompleted(ctx context.Context, completed *models.CompletedOrder) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CompletedOrder{}).
		Where("order_id = ?", completed.OrderID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return checkout.ErrAlreadyCompleted
	}

	if err := r.db.WithContext(ctx).Create(completed).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return checkout.ErrAlreadyCompleted
		}
		return err
	}
	return nil
}

func (r *Orders) CompletedByTrackingID(ctx context.Context, trackingID string) (*models.CompletedOrder, error) {
	var completed models.CompletedOrder
	err := r.db.WithContext(ctx).Preload("Items").Preload("Order").
		First(&completed, "tracking_id = ?", trackingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &completed, nil
}

func (r *Orders) TrackingIDExists(ctx context.Context, trackingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CompletedOrder{}).
		Where("tracking_id = ?", trackingID).
		Count(&count).Error
	return count > 0, err
}
