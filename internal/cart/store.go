package cart

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/shopingo/internal/models"
	"github.com/example/shopingo/internal/pricing"
)

var (
	// ErrLineNotFound means the cart line does not exist or belongs to
	// another user.
	ErrLineNotFound = errors.New("cart item not found")
	// ErrProductNotFound means the referenced product does not exist.
	ErrProductNotFound = errors.New("product not found")
)

// Repo persists cart lines. Single-row lookups return (nil, nil) when
// nothing matches.
type Repo interface {
	LinesByUser(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error)
	LineByID(ctx context.Context, userID, lineID uuid.UUID) (*models.CartLine, error)
	LineByProduct(ctx context.Context, userID, productID uuid.UUID) (*models.CartLine, error)
	Create(ctx context.Context, line *models.CartLine) error
	Save(ctx context.Context, line *models.CartLine) error
	Delete(ctx context.Context, userID, lineID uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// WishlistRepo persists wishlist entries.
type WishlistRepo interface {
	Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Wishlist, error)
	Create(ctx context.Context, entry *models.Wishlist) error
	Delete(ctx context.Context, userID, productID uuid.UUID) error
}

// ProductRepo resolves products referenced by cart operations,
// returning (nil, nil) when none matches.
type ProductRepo interface {
	ProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Store is the mutable per-user collection of selected product lines.
// Cart and wishlist are mutually exclusive per product: adding to one
// evicts the other.
type Store struct {
	repo     Repo
	wishlist WishlistRepo
	products ProductRepo
}

// NewStore constructs a Store.
func NewStore(repo Repo, wishlist WishlistRepo, products ProductRepo) *Store {
	return &Store{repo: repo, wishlist: wishlist, products: products}
}

// Add stages a product. An existing (user, product) line has its
// quantity incremented, falling back to +1 when the quantity value is
// not numeric, and keeps its color and size. Any wishlist entry for the
// product is removed.
func (s *Store) Add(ctx context.Context, userID, productID uuid.UUID, quantity, color, size string) (*models.CartLine, error) {
	product, err := s.products.ProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	qty, qtyErr := strconv.Atoi(quantity)

	line, err := s.repo.LineByProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	if line == nil {
		if qtyErr != nil || qty < 1 {
			qty = 1
		}
		line = &models.CartLine{
			UserID:    userID,
			ProductID: productID,
			Quantity:  qty,
			Color:     color,
			Size:      size,
		}
		if err := s.repo.Create(ctx, line); err != nil {
			return nil, err
		}
	} else {
		if qtyErr != nil {
			line.Quantity++
		} else {
			line.Quantity += qty
		}
		if err := s.repo.Save(ctx, line); err != nil {
			return nil, err
		}
	}

	if err := s.wishlist.Delete(ctx, userID, productID); err != nil {
		return nil, err
	}

	line.Product = product
	return line, nil
}

// Remove deletes a line owned by the user.
func (s *Store) Remove(ctx context.Context, userID, lineID uuid.UUID) error {
	line, err := s.repo.LineByID(ctx, userID, lineID)
	if err != nil {
		return err
	}
	if line == nil {
		return ErrLineNotFound
	}
	return s.repo.Delete(ctx, userID, lineID)
}

// UpdateQuantity sets a line's quantity, clamped to at least one.
func (s *Store) UpdateQuantity(ctx context.Context, userID, lineID uuid.UUID, quantity int) (*models.CartLine, error) {
	line, err := s.repo.LineByID(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, ErrLineNotFound
	}

	if quantity < 1 {
		quantity = 1
	}
	line.Quantity = quantity
	if err := s.repo.Save(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

// MoveToWishlist creates (or keeps) a wishlist entry for the line's
// product and deletes the cart line.
func (s *Store) MoveToWishlist(ctx context.Context, userID, lineID uuid.UUID) (*models.Wishlist, error) {
	line, err := s.repo.LineByID(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, ErrLineNotFound
	}

	entry := &models.Wishlist{UserID: userID, ProductID: line.ProductID}
	exists, err := s.wishlist.Exists(ctx, userID, line.ProductID)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := s.wishlist.Create(ctx, entry); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Delete(ctx, userID, lineID); err != nil {
		return nil, err
	}
	entry.Product = line.Product
	return entry, nil
}

// AddToWishlist saves a product for later. The second return value is
// false when the product was already wishlisted.
func (s *Store) AddToWishlist(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	product, err := s.products.ProductByID(ctx, productID)
	if err != nil {
		return false, err
	}
	if product == nil {
		return false, ErrProductNotFound
	}

	exists, err := s.wishlist.Exists(ctx, userID, productID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	return true, s.wishlist.Create(ctx, &models.Wishlist{UserID: userID, ProductID: productID})
}

// RemoveFromWishlist drops a wishlist entry if present.
func (s *Store) RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	return s.wishlist.Delete(ctx, userID, productID)
}

// WishlistEntries lists the user's saved products.
func (s *Store) WishlistEntries(ctx context.Context, userID uuid.UUID) ([]models.Wishlist, error) {
	return s.wishlist.ListByUser(ctx, userID)
}

// Lines returns the user's current cart lines with products attached.
func (s *Store) Lines(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	return s.repo.LinesByUser(ctx, userID)
}

// Clear deletes all of the user's lines. Invoked at successful order
// completion.
func (s *Store) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.repo.DeleteByUser(ctx, userID)
}

// Summarize totals the cart for partial-update responses.
func Summarize(lines []models.CartLine) (totalItems int, subtotal decimal.Decimal) {
	subtotal = decimal.Zero
	for _, line := range lines {
		totalItems += line.Quantity
		subtotal = subtotal.Add(pricing.LineTotal(line))
	}
	return totalItems, subtotal
}
