package address

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/example/shopingo/internal/models"
)

// ErrIncomplete means required address fields are missing.
var ErrIncomplete = errors.New("address is missing required fields")

// Repo persists shipping addresses. LatestByUser returns (nil, nil)
// when the user has no address yet.
type Repo interface {
	Create(ctx context.Context, addr *models.ShippingAddress) error
	LatestByUser(ctx context.Context, userID uuid.UUID) (*models.ShippingAddress, error)
}

// Book records shipping addresses captured during checkout. Entries are
// append-only: Record always inserts, never updates, and the most
// recent row is what checkout treats as the user's current address.
type Book struct {
	repo Repo
}

// NewBook constructs a Book.
func NewBook(repo Repo) *Book {
	return &Book{repo: repo}
}

// Record validates and inserts a new address row.
func (b *Book) Record(ctx context.Context, addr *models.ShippingAddress) error {
	if strings.TrimSpace(addr.FirstName) == "" ||
		strings.TrimSpace(addr.Email) == "" ||
		strings.TrimSpace(addr.Phone) == "" ||
		strings.TrimSpace(addr.Address1) == "" {
		return ErrIncomplete
	}
	return b.repo.Create(ctx, addr)
}

// Latest returns the user's most recently recorded address, or nil.
func (b *Book) Latest(ctx context.Context, userID uuid.UUID) (*models.ShippingAddress, error) {
	return b.repo.LatestByUser(ctx, userID)
}
