package checkout

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shopingo/internal/address"
	"github.com/example/shopingo/internal/cart"
	"github.com/example/shopingo/internal/coupons"
	"github.com/example/shopingo/internal/models"
	"github.com/example/shopingo/internal/pricing"
)

var fixedNow = time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)

type memoryProducts struct {
	products map[uuid.UUID]*models.Product
}

func (m *memoryProducts) ProductByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	return m.products[id], nil
}

type memoryCartLines struct {
	lines    map[uuid.UUID]*models.CartLine
	products map[uuid.UUID]*models.Product
}

func (m *memoryCartLines) LinesByUser(_ context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	var out []models.CartLine
	for _, line := range m.lines {
		if line.UserID == userID {
			copied := *line
			copied.Product = m.products[line.ProductID]
			out = append(out, copied)
		}
	}
	return out, nil
}

func (m *memoryCartLines) LineByID(_ context.Context, userID, lineID uuid.UUID) (*models.CartLine, error) {
	line, ok := m.lines[lineID]
	if !ok || line.UserID != userID {
		return nil, nil
	}
	copied := *line
	copied.Product = m.products[line.ProductID]
	return &copied, nil
}

func (m *memoryCartLines) LineByProduct(_ context.Context, userID, productID uuid.UUID) (*models.CartLine, error) {
	for _, line := range m.lines {
		if line.UserID == userID && line.ProductID == productID {
			copied := *line
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memoryCartLines) Create(_ context.Context, line *models.CartLine) error {
	line.ID = uuid.New()
	copied := *line
	m.lines[line.ID] = &copied
	return nil
}

func (m *memoryCartLines) Save(_ context.Context, line *models.CartLine) error {
	copied := *line
	m.lines[line.ID] = &copied
	return nil
}

func (m *memoryCartLines) Delete(_ context.Context, userID, lineID uuid.UUID) error {
	if line, ok := m.lines[lineID]; ok && line.UserID == userID {
		delete(m.lines, lineID)
	}
	return nil
}

func (m *memoryCartLines) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	for id, line := range m.lines {
		if line.UserID == userID {
			delete(m.lines, id)
		}
	}
	return nil
}

type memoryWishlist struct{}

func (memoryWishlist) Exists(context.Context, uuid.UUID, uuid.UUID) (bool, error) { return false, nil }
func (memoryWishlist) ListByUser(context.Context, uuid.UUID) ([]models.Wishlist, error) {
	return nil, nil
}
func (memoryWishlist) Create(context.Context, *models.Wishlist) error     { return nil }
func (memoryWishlist) Delete(context.Context, uuid.UUID, uuid.UUID) error { return nil }

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

type memoryAddresses struct {
	rows []models.ShippingAddress
}

func (m *memoryAddresses) Create(_ context.Context, addr *models.ShippingAddress) error {
	addr.ID = uuid.New()
	m.rows = append(m.rows, *addr)
	return nil
}

func (m *memoryAddresses) LatestByUser(_ context.Context, userID uuid.UUID) (*models.ShippingAddress, error) {
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].UserID == userID {
			copied := m.rows[i]
			return &copied, nil
		}
	}
	return nil, nil
}

type memoryOrders struct {
	orders    map[uuid.UUID]*models.Order
	items     map[uuid.UUID]*models.OrderItem
	completed map[uuid.UUID]*models.CompletedOrder
}

func newMemoryOrders() *memoryOrders {
	return &memoryOrders{
		orders:    make(map[uuid.UUID]*models.Order),
		items:     make(map[uuid.UUID]*models.OrderItem),
		completed: make(map[uuid.UUID]*models.CompletedOrder),
	}
}

func (m *memoryOrders) Create(_ context.Context, order *models.Order) error {
	order.ID = uuid.New()
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *memoryOrders) ByID(_ context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, ok := m.orders[orderID]
	if !ok || order.UserID != userID {
		return nil, nil
	}
	copied := *order
	return &copied, nil
}

func (m *memoryOrders) Save(_ context.Context, order *models.Order) error {
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *memoryOrders) ItemExists(_ context.Context, orderID, productID uuid.UUID) (bool, error) {
	for _, item := range m.items {
		if item.OrderID == orderID && item.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryOrders) CreateItem(_ context.Context, item *models.OrderItem) error {
	item.ID = uuid.New()
	copied := *item
	m.items[item.ID] = &copied
	return nil
}

func (m *memoryOrders) ItemsByOrder(_ context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	var out []models.OrderItem
	for _, item := range m.items {
		if item.OrderID == orderID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (m *memoryOrders) DeleteItem(_ context.Context, userID, itemID uuid.UUID) (*models.Order, error) {
	item, ok := m.items[itemID]
	if !ok || item.UserID != userID {
		return nil, nil
	}
	delete(m.items, itemID)
	order := m.orders[item.OrderID]
	if order == nil {
		return nil, nil
	}
	copied := *order
	return &copied, nil
}

func (m *memoryOrders) CreateCompleted(_ context.Context, completed *models.CompletedOrder) error {
	if _, ok := m.completed[completed.OrderID]; ok {
		return ErrAlreadyCompleted
	}
	completed.ID = uuid.New()
	copied := *completed
	m.completed[completed.OrderID] = &copied
	return nil
}

func (m *memoryOrders) CompletedByTrackingID(_ context.Context, trackingID string) (*models.CompletedOrder, error) {
	for _, c := range m.completed {
		if c.TrackingID == trackingID {
			copied := *c
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memoryOrders) TrackingIDExists(_ context.Context, trackingID string) (bool, error) {
	completed, err := m.CompletedByTrackingID(context.Background(), trackingID)
	return completed != nil, err
}

type memoryShipping struct {
	methods map[uuid.UUID]*models.ShippingMethod
}

func (m *memoryShipping) MethodByID(_ context.Context, id uuid.UUID) (*models.ShippingMethod, error) {
	return m.methods[id], nil
}

func (m *memoryShipping) ActiveMethods(_ context.Context) ([]models.ShippingMethod, error) {
	var out []models.ShippingMethod
	for _, method := range m.methods {
		if method.Active {
			out = append(out, *method)
		}
	}
	return out, nil
}

type memorySessions struct {
	sessions map[uuid.UUID]*models.CheckoutSession
}

func (m *memorySessions) ByUser(_ context.Context, userID uuid.UUID) (*models.CheckoutSession, error) {
	sess, ok := m.sessions[userID]
	if !ok {
		return nil, nil
	}
	copied := *sess
	return &copied, nil
}

func (m *memorySessions) Save(_ context.Context, sess *models.CheckoutSession) error {
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	copied := *sess
	m.sessions[sess.UserID] = &copied
	return nil
}

type fixture struct {
	lifecycle *Lifecycle
	store     *cart.Store
	orders    *memoryOrders
	coupons   *memoryCoupons
	userID    uuid.UUID
	methodID  uuid.UUID
	products  []*models.Product
}

func newFixture(t *testing.T, prices ...string) *fixture {
	t.Helper()

	products := make([]*models.Product, 0, len(prices))
	byID := make(map[uuid.UUID]*models.Product)
	for _, price := range prices {
		p := &models.Product{
			BaseModel: models.BaseModel{ID: uuid.New()},
			Title:     "Canvas Tote",
			BasePrice: decimal.RequireFromString(price),
		}
		products = append(products, p)
		byID[p.ID] = p
	}

	store := cart.NewStore(&memoryCartLines{lines: make(map[uuid.UUID]*models.CartLine), products: byID}, memoryWishlist{}, &memoryProducts{products: byID})
	couponRepo := &memoryCoupons{}
	validator := coupons.NewValidator(couponRepo)
	engine := pricing.NewEngine(decimal.Zero)
	book := address.NewBook(&memoryAddresses{})
	orders := newMemoryOrders()
	methodID := uuid.New()
	shipping := &memoryShipping{methods: map[uuid.UUID]*models.ShippingMethod{
		methodID: {
			BaseModel:    models.BaseModel{ID: methodID},
			Name:         "Standard",
			ChargeAmount: decimal.RequireFromString("5.00"),
			Active:       true,
		},
	}}
	sessions := &memorySessions{sessions: make(map[uuid.UUID]*models.CheckoutSession)}

	lifecycle := NewLifecycle(store, validator, engine, book, orders, shipping, sessions)
	lifecycle.now = func() time.Time { return fixedNow }

	return &fixture{
		lifecycle: lifecycle,
		store:     store,
		orders:    orders,
		coupons:   couponRepo,
		userID:    uuid.New(),
		methodID:  methodID,
		products:  products,
	}
}

func (f *fixture) fillCart(t *testing.T) {
	t.Helper()
	for _, p := range f.products {
		_, err := f.store.Add(context.Background(), f.userID, p.ID, "1", "", "")
		require.NoError(t, err)
	}
}

func (f *fixture) session(t *testing.T) *models.CheckoutSession {
	t.Helper()
	sess, err := f.lifecycle.Session(context.Background(), f.userID)
	require.NoError(t, err)
	return sess
}

func (f *fixture) stageCoupon(code string, percent int, validTo time.Time) {
	f.coupons.coupons = append(f.coupons.coupons, &models.Coupon{
		Code:            code,
		DiscountPercent: &percent,
		Active:          true,
		ValidFrom:       fixedNow.Add(-24 * time.Hour),
		ValidTo:         validTo,
	})
}

func (f *fixture) toPaymentRecorded(t *testing.T) *models.CheckoutSession {
	t.Helper()
	ctx := context.Background()
	f.fillCart(t)
	sess := f.session(t)
	_, err := f.lifecycle.SelectShipping(ctx, sess, f.methodID)
	require.NoError(t, err)
	_, err = f.lifecycle.RecordPayment(ctx, sess, "cash_on_delivery")
	require.NoError(t, err)
	return sess
}

func TestSelectShippingEmptyCart(t *testing.T) {
	f := newFixture(t)
	sess := f.session(t)

	_, err := f.lifecycle.SelectShipping(context.Background(), sess, f.methodID)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestSelectShippingUnknownMethod(t *testing.T) {
	f := newFixture(t, "10.00")
	f.fillCart(t)
	sess := f.session(t)

	_, err := f.lifecycle.SelectShipping(context.Background(), sess, uuid.New())
	assert.ErrorIs(t, err, ErrInvalidShippingMethod)
}

func TestSelectShippingCreatesOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "20.00", "30.00")
	f.fillCart(t)
	sess := f.session(t)

	order, err := f.lifecycle.SelectShipping(ctx, sess, f.methodID)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusShippingSelected, order.Status)
	assert.True(t, decimal.RequireFromString("50.00").Equal(order.Subtotal))
	assert.True(t, decimal.RequireFromString("5.00").Equal(order.ShippingCharge))
	assert.True(t, decimal.RequireFromString("55.00").Equal(order.TotalAmount))
	require.NotNil(t, sess.OrderID)
	assert.Equal(t, order.ID, *sess.OrderID)
}

func TestRecordPaymentRequiresMethodLabel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "10.00")
	f.fillCart(t)
	sess := f.session(t)
	_, err := f.lifecycle.SelectShipping(ctx, sess, f.methodID)
	require.NoError(t, err)

	_, err = f.lifecycle.RecordPayment(ctx, sess, "   ")
	assert.ErrorIs(t, err, ErrMissingPaymentMethod)
}

func TestRecordPaymentWithoutOrder(t *testing.T) {
	f := newFixture(t, "10.00")
	sess := f.session(t)

	_, err := f.lifecycle.RecordPayment(context.Background(), sess, "card")
	assert.ErrorIs(t, err, ErrNoOrderInProgress)
}

func TestRecordPaymentMaterializesItemsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "20.00", "30.00")
	f.fillCart(t)
	sess := f.session(t)
	_, err := f.lifecycle.SelectShipping(ctx, sess, f.methodID)
	require.NoError(t, err)

	order, err := f.lifecycle.RecordPayment(ctx, sess, "card")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaymentRecorded, order.Status)

	// Resubmitting the step must not duplicate items.
	_, err = f.lifecycle.RecordPayment(ctx, sess, "card")
	require.NoError(t, err)

	items, err := f.orders.ItemsByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestReviewWarnsOnExpiredCoupon(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "100.00")
	f.stageCoupon("SAVE10", 10, fixedNow.Add(-time.Hour))

	sess := f.toPaymentRecorded(t)
	sess.CouponCode = "SAVE10"

	result, err := f.lifecycle.Review(ctx, sess)
	require.NoError(t, err)

	assert.Equal(t, "Coupon expired.", result.CouponWarning)
	assert.True(t, result.Order.Discount.IsZero())
	assert.Equal(t, models.OrderStatusReviewed, result.Order.Status)
}

func TestReviewWarnsOnUnknownCoupon(t *testing.T) {
	f := newFixture(t, "100.00")
	sess := f.toPaymentRecorded(t)
	sess.CouponCode = "GHOST"

	result, err := f.lifecycle.Review(context.Background(), sess)
	require.NoError(t, err)

	assert.Equal(t, "Invalid coupon code.", result.CouponWarning)
	assert.True(t, result.Order.Discount.IsZero())
}

func TestReviewAppliesValidCoupon(t *testing.T) {
	f := newFixture(t, "100.00")
	f.stageCoupon("SAVE10", 10, fixedNow.Add(time.Hour))

	sess := f.toPaymentRecorded(t)
	sess.CouponCode = "SAVE10"

	result, err := f.lifecycle.Review(context.Background(), sess)
	require.NoError(t, err)

	assert.Empty(t, result.CouponWarning)
	assert.True(t, decimal.RequireFromString("10").Equal(result.Order.Discount))
	assert.True(t, decimal.RequireFromString("95").Equal(result.Order.TotalAmount))
}

func TestCompleteEmptyOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "10.00")
	f.fillCart(t)
	sess := f.session(t)
	_, err := f.lifecycle.SelectShipping(ctx, sess, f.methodID)
	require.NoError(t, err)

	// Shipping is selected but payment never recorded, so no items exist.
	_, err = f.lifecycle.Complete(ctx, sess)
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestCompleteSealsOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "20.00", "30.00")
	sess := f.toPaymentRecorded(t)

	completed, err := f.lifecycle.Complete(ctx, sess)
	require.NoError(t, err)

	assert.Len(t, completed.TrackingID, 12)
	assert.Equal(t, strings.ToUpper(completed.TrackingID), completed.TrackingID)
	assert.NotEmpty(t, completed.CustomerInfo)
	assert.NotEmpty(t, completed.ProductInfo)
	assert.True(t, decimal.RequireFromString("55.00").Equal(completed.TotalAmount))

	lines, err := f.store.Lines(ctx, f.userID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	assert.Nil(t, sess.OrderID)
	assert.Empty(t, sess.CouponCode)

	order, err := f.orders.ByID(ctx, f.userID, completed.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
}

func TestCompleteTwiceIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "20.00")
	sess := f.toPaymentRecorded(t)

	completed, err := f.lifecycle.Complete(ctx, sess)
	require.NoError(t, err)

	// A stale session still pointing at the sealed order cannot
	// complete it again.
	orderID := completed.OrderID
	sess.OrderID = &orderID
	_, err = f.lifecycle.Complete(ctx, sess)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	again, err := f.lifecycle.Track(ctx, completed.TrackingID)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.True(t, completed.TotalAmount.Equal(again.TotalAmount))
}

func TestRemoveItemRecomputesTotals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "20.00", "30.00")
	sess := f.toPaymentRecorded(t)

	items, err := f.orders.ItemsByOrder(ctx, *sess.OrderID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	var removed models.OrderItem
	for _, item := range items {
		if item.ItemTotal.Equal(decimal.RequireFromString("30.00")) {
			removed = item
		}
	}

	order, err := f.lifecycle.RemoveItem(ctx, sess, removed.ID)
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("20.00").Equal(order.Subtotal))
	assert.True(t, decimal.RequireFromString("25.00").Equal(order.TotalAmount))
}

func TestRemoveItemUnknown(t *testing.T) {
	f := newFixture(t, "20.00")
	sess := f.toPaymentRecorded(t)

	_, err := f.lifecycle.RemoveItem(context.Background(), sess, uuid.New())
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestApplyCoupon(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.stageCoupon("SAVE10", 10, fixedNow.Add(time.Hour))
	sess := f.session(t)

	coupon, err := f.lifecycle.ApplyCoupon(ctx, sess, "save10")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", coupon.Code)
	assert.Equal(t, "SAVE10", sess.CouponCode)

	_, err = f.lifecycle.ApplyCoupon(ctx, sess, "GHOST")
	assert.ErrorIs(t, err, coupons.ErrNotFound)
}

func TestApplyExpiredCoupon(t *testing.T) {
	f := newFixture(t)
	f.stageCoupon("OLD", 10, fixedNow.Add(-time.Hour))
	sess := f.session(t)

	_, err := f.lifecycle.ApplyCoupon(context.Background(), sess, "OLD")
	assert.ErrorIs(t, err, coupons.ErrNotValid)
}

func TestRemoveCouponRepricesOpenOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "100.00")
	f.stageCoupon("SAVE10", 10, fixedNow.Add(time.Hour))
	f.fillCart(t)
	sess := f.session(t)

	_, err := f.lifecycle.ApplyCoupon(ctx, sess, "SAVE10")
	require.NoError(t, err)

	order, err := f.lifecycle.SelectShipping(ctx, sess, f.methodID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("10").Equal(order.Discount))

	require.NoError(t, f.lifecycle.RemoveCoupon(ctx, sess))

	repriced, err := f.orders.ByID(ctx, f.userID, order.ID)
	require.NoError(t, err)
	assert.True(t, repriced.Discount.IsZero())
	assert.True(t, decimal.RequireFromString("105.00").Equal(repriced.TotalAmount))
}

func TestTrackUnknownID(t *testing.T) {
	f := newFixture(t)

	completed, err := f.lifecycle.Track(context.Background(), "ZZZZZZZZZZZZ")
	require.NoError(t, err)
	assert.Nil(t, completed)
}
