package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/shopingo/internal/models"
)

// Carts is the gorm-backed cart line repository.
type Carts struct {
	db *gorm.DB
}

// NewCarts constructs Carts.
func NewCarts(db *gorm.DB) *Carts {
	return &Carts{db: db}
}

func (r *Carts) LinesByUser(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	var lines []models.CartLine
	err := r.db.WithContext(ctx).Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&lines).Error
	return lines, err
}

func (r *Carts) LineByID(ctx context.Context, userID, lineID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).Preload("Product").
		First(&line, "id = ? AND user_id = ?", lineID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *Carts) LineByProduct(ctx context.Context, userID, productID uuid.UUID) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		First(&line, "user_id = ? AND product_id = ?", userID, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *Carts) Create(ctx context.Context, line *models.CartLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *Carts) Save(ctx context.Context, line *models.CartLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

func (r *Carts) Delete(ctx context.Context, userID, lineID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.CartLine{}, "id = ? AND user_id = ?", lineID, userID).Error
}

func (r *Carts) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.CartLine{}, "user_id = ?", userID).Error
}

// Wishlists is the gorm-backed wishlist repository.
type Wishlists struct {
	db *gorm.DB
}

// NewWishlists constructs Wishlists.
func NewWishlists(db *gorm.DB) *Wishlists {
	return &Wishlists{db: db}
}

func (r *Wishlists) Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Wishlist{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	return count > 0, err
}

func (r *Wishlists) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Wishlist, error) {
	var entries []models.Wishlist
	err := r.db.WithContext(ctx).Preload("Product").Preload("Product.Images").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&entries).Error
	return entries, err
}

func (r *Wishlists) Create(ctx context.Context, entry *models.Wishlist) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *Wishlists) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.Wishlist{}, "user_id = ? AND product_id = ?", userID, productID).Error
}
