package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shopingo/internal/models"
)

type memoryCartRepo struct {
	lines map[uuid.UUID]*models.CartLine
}

func newMemoryCartRepo() *memoryCartRepo {
	return &memoryCartRepo{lines: make(map[uuid.UUID]*models.CartLine)}
}

func (m *memoryCartRepo) LinesByUser(_ context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	var out []models.CartLine
	for _, line := range m.lines {
		if line.UserID == userID {
			out = append(out, *line)
		}
	}
	return out, nil
}

func (m *memoryCartRepo) LineByID(_ context.Context, userID, lineID uuid.UUID) (*models.CartLine, error) {
	line, ok := m.lines[lineID]
	if !ok || line.UserID != userID {
		return nil, nil
	}
	copied := *line
	return &copied, nil
}

func (m *memoryCartRepo) LineByProduct(_ context.Context, userID, productID uuid.UUID) (*models.CartLine, error) {
	for _, line := range m.lines {
		if line.UserID == userID && line.ProductID == productID {
			copied := *line
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memoryCartRepo) Create(_ context.Context, line *models.CartLine) error {
	line.ID = uuid.New()
	copied := *line
	m.lines[line.ID] = &copied
	return nil
}

func (m *memoryCartRepo) Save(_ context.Context, line *models.CartLine) error {
	copied := *line
	m.lines[line.ID] = &copied
	return nil
}

func (m *memoryCartRepo) Delete(_ context.Context, userID, lineID uuid.UUID) error {
	if line, ok := m.lines[lineID]; ok && line.UserID == userID {
		delete(m.lines, lineID)
	}
	return nil
}

func (m *memoryCartRepo) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	for id, line := range m.lines {
		if line.UserID == userID {
			delete(m.lines, id)
		}
	}
	return nil
}

type memoryWishlistRepo struct {
	entries map[uuid.UUID]*models.Wishlist
}

func newMemoryWishlistRepo() *memoryWishlistRepo {
	return &memoryWishlistRepo{entries: make(map[uuid.UUID]*models.Wishlist)}
}

func (m *memoryWishlistRepo) Exists(_ context.Context, userID, productID uuid.UUID) (bool, error) {
	for _, e := range m.entries {
		if e.UserID == userID && e.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryWishlistRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Wishlist, error) {
	var out []models.Wishlist
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *memoryWishlistRepo) Create(_ context.Context, entry *models.Wishlist) error {
	entry.ID = uuid.New()
	copied := *entry
	m.entries[entry.ID] = &copied
	return nil
}

func (m *memoryWishlistRepo) Delete(_ context.Context, userID, productID uuid.UUID) error {
	for id, e := range m.entries {
		if e.UserID == userID && e.ProductID == productID {
			delete(m.entries, id)
		}
	}
	return nil
}

type memoryProductRepo struct {
	products map[uuid.UUID]*models.Product
}

func (m *memoryProductRepo) ProductByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	return m.products[id], nil
}

func newStoreFixture(products ...*models.Product) (*Store, *memoryCartRepo, *memoryWishlistRepo) {
	byID := make(map[uuid.UUID]*models.Product)
	for _, p := range products {
		byID[p.ID] = p
	}
	cartRepo := newMemoryCartRepo()
	wishlistRepo := newMemoryWishlistRepo()
	return NewStore(cartRepo, wishlistRepo, &memoryProductRepo{products: byID}), cartRepo, wishlistRepo
}

func product(price string) *models.Product {
	return &models.Product{
		BaseModel: models.BaseModel{ID: uuid.New()},
		Title:     "Trail Jacket",
		BasePrice: decimal.RequireFromString(price),
	}
}

func TestAddMergesExistingLine(t *testing.T) {
	ctx := context.Background()
	p := product("25.00")
	store, _, _ := newStoreFixture(p)
	userID := uuid.New()

	first, err := store.Add(ctx, userID, p.ID, "2", "red", "M")
	require.NoError(t, err)
	assert.Equal(t, 2, first.Quantity)

	second, err := store.Add(ctx, userID, p.ID, "3", "blue", "L")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)
	// Merging keeps the original selection.
	assert.Equal(t, "red", second.Color)
	assert.Equal(t, "M", second.Size)

	lines, err := store.Lines(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestAddNonNumericQuantity(t *testing.T) {
	ctx := context.Background()
	p := product("25.00")
	store, _, _ := newStoreFixture(p)
	userID := uuid.New()

	line, err := store.Add(ctx, userID, p.ID, "lots", "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, line.Quantity)

	line, err = store.Add(ctx, userID, p.ID, "many", "", "")
	require.NoError(t, err)
	assert.Equal(t, 2, line.Quantity)
}

func TestAddUnknownProduct(t *testing.T) {
	store, _, _ := newStoreFixture()

	_, err := store.Add(context.Background(), uuid.New(), uuid.New(), "1", "", "")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAddEvictsWishlistEntry(t *testing.T) {
	ctx := context.Background()
	p := product("25.00")
	store, _, wishlistRepo := newStoreFixture(p)
	userID := uuid.New()

	created, err := store.AddToWishlist(ctx, userID, p.ID)
	require.NoError(t, err)
	assert.True(t, created)

	_, err = store.Add(ctx, userID, p.ID, "1", "", "")
	require.NoError(t, err)

	exists, err := wishlistRepo.Exists(ctx, userID, p.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAddToWishlistIsIdempotent(t *testing.T) {
	ctx := context.Background()
	p := product("25.00")
	store, _, _ := newStoreFixture(p)
	userID := uuid.New()

	created, err := store.AddToWishlist(ctx, userID, p.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.AddToWishlist(ctx, userID, p.ID)
	require.NoError(t, err)
	assert.False(t, created)

	entries, err := store.WishlistEntries(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMoveToWishlist(t *testing.T) {
	ctx := context.Background()
	p := product("25.00")
	store, _, wishlistRepo := newStoreFixture(p)
	userID := uuid.New()

	line, err := store.Add(ctx, userID, p.ID, "2", "", "")
	require.NoError(t, err)

	_, err = store.MoveToWishlist(ctx, userID, line.ID)
	require.NoError(t, err)

	lines, err := store.Lines(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	exists, err := wishlistRepo.Exists(ctx, userID, p.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUpdateQuantityClampsToOne(t *testing.T) {
	ctx := context.Background()
	p := product("25.00")
	store, _, _ := newStoreFixture(p)
	userID := uuid.New()

	line, err := store.Add(ctx, userID, p.ID, "3", "", "")
	require.NoError(t, err)

	updated, err := store.UpdateQuantity(ctx, userID, line.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Quantity)
}

func TestRemoveUnknownLine(t *testing.T) {
	store, _, _ := newStoreFixture()

	err := store.Remove(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrLineNotFound)
}

func TestRemoveOtherUsersLine(t *testing.T) {
	ctx := context.Background()
	p := product("25.00")
	store, _, _ := newStoreFixture(p)
	owner := uuid.New()

	line, err := store.Add(ctx, owner, p.ID, "1", "", "")
	require.NoError(t, err)

	err = store.Remove(ctx, uuid.New(), line.ID)
	assert.ErrorIs(t, err, ErrLineNotFound)

	lines, err := store.Lines(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestSummarize(t *testing.T) {
	lines := []models.CartLine{
		{Quantity: 3, Product: &models.Product{BasePrice: decimal.RequireFromString("19.99")}},
		{Quantity: 2, Product: &models.Product{BasePrice: decimal.RequireFromString("5.50")}},
	}

	totalItems, subtotal := Summarize(lines)
	assert.Equal(t, 5, totalItems)
	assert.True(t, decimal.RequireFromString("70.97").Equal(subtotal))
}
