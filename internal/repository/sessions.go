package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/shopingo/internal/models"
)

// Sessions is the gorm-backed checkout session repository.
type Sessions struct {
	db *gorm.DB
}

// NewSessions constructs Sessions.
func NewSessions(db *gorm.DB) *Sessions {
	return &Sessions{db: db}
}

func (r *Sessions) ByUser(ctx context.Context, userID uuid.UUID) (*models.CheckoutSession, error) {
	var sess models.CheckoutSession
	err := r.db.WithContext(ctx).
		First(&sess, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *Sessions) Save(ctx context.Context, sess *models.CheckoutSession) error {
	return r.db.WithContext(ctx).Save(sess).Error
}
