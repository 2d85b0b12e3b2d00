package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/shopingo/internal/address"
	"github.com/example/shopingo/internal/cart"
	"github.com/example/shopingo/internal/coupons"
	"github.com/example/shopingo/internal/models"
	"github.com/example/shopingo/internal/pricing"
	"github.com/example/shopingo/internal/utils"
)

const trackingIDLength = 12

// OrderRepo persists orders, items and completions. Single-row lookups
// return (nil, nil) when nothing matches. CreateCompleted must reject a
// second completion for the same order with ErrAlreadyCompleted.
type OrderRepo interface {
	Create(ctx context.Context, order *models.Order) error
	ByID(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) error
	ItemExists(ctx context.Context, orderID, productID uuid.UUID) (bool, error)
	CreateItem(ctx context.Context, item *models.OrderItem) error
	ItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	DeleteItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Order, error)
	CreateCompleted(ctx context.Context, completed *models.CompletedOrder) error
	CompletedByTrackingID(ctx context.Context, trackingID string) (*models.CompletedOrder, error)
	TrackingIDExists(ctx context.Context, trackingID string) (bool, error)
}

// ShippingRepo resolves shipping methods.
type ShippingRepo interface {
	MethodByID(ctx context.Context, id uuid.UUID) (*models.ShippingMethod, error)
	ActiveMethods(ctx context.Context) ([]models.ShippingMethod, error)
}

// SessionRepo persists the per-user checkout session row.
type SessionRepo interface {
	ByUser(ctx context.Context, userID uuid.UUID) (*models.CheckoutSession, error)
	Save(ctx context.Context, sess *models.CheckoutSession) error
}

// Lifecycle is the state machine turning a priced cart into an order,
// then order items, then a sealed completed-order snapshot. Every step
// recomputes and persists the order's totals from the current cart and
// coupon state rather than trusting previously stored figures.
type Lifecycle struct {
	carts     *cart.Store
	validator *coupons.Validator
	engine    pricing.Engine
	addresses *address.Book
	orders    OrderRepo
	shipping  ShippingRepo
	sessions  SessionRepo
	now       func() time.Time
}

// NewLifecycle constructs a Lifecycle.
func NewLifecycle(carts *cart.Store, validator *coupons.Validator, engine pricing.Engine, addresses *address.Book, orders OrderRepo, shipping ShippingRepo, sessions SessionRepo) *Lifecycle {
	return &Lifecycle{
		carts:     carts,
		validator: validator,
		engine:    engine,
		addresses: addresses,
		orders:    orders,
		shipping:  shipping,
		sessions:  sessions,
		now:       time.Now,
	}
}

// Session loads the user's checkout session, creating the row on first
// use.
func (l *Lifecycle) Session(ctx context.Context, userID uuid.UUID) (*models.CheckoutSession, error) {
	sess, err := l.sessions.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		sess = &models.CheckoutSession{UserID: userID}
		if err := l.sessions.Save(ctx, sess); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

// StageShippingDraft stores the cart-page shipping form on the session
// so the details step can prefill it.
func (l *Lifecycle) StageShippingDraft(ctx context.Context, sess *models.CheckoutSession, draft models.ShippingDraft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	sess.ShippingDraft = raw
	return l.sessions.Save(ctx, sess)
}

// ApplyCoupon validates a code and stages it on the session. Unknown
// codes and expired codes are reported distinctly; at application time
// an invalid coupon is an error rather than a silent zero.
func (l *Lifecycle) ApplyCoupon(ctx context.Context, sess *models.CheckoutSession, code string) (*models.Coupon, error) {
	coupon, err := l.validator.Resolve(ctx, code, l.now())
	if err != nil {
		return nil, err
	}
	sess.CouponCode = coupon.Code
	return coupon, l.sessions.Save(ctx, sess)
}

// RemoveCoupon drops the staged coupon and, if an order is in progress,
// zeroes its discount and re-persists the total.
func (l *Lifecycle) RemoveCoupon(ctx context.Context, sess *models.CheckoutSession) error {
	sess.CouponCode = ""
	if err := l.sessions.Save(ctx, sess); err != nil {
		return err
	}

	if sess.OrderID == nil {
		return nil
	}
	order, err := l.orders.ByID(ctx, sess.UserID, *sess.OrderID)
	if err != nil {
		return err
	}
	if order == nil || order.Status.IsTerminal() {
		return nil
	}

	lines, err := l.carts.Lines(ctx, sess.UserID)
	if err != nil {
		return err
	}
	quote := l.engine.Reprice(lines, nil, order.ShippingCharge, l.now())
	applyQuote(order, quote)
	return l.orders.Save(ctx, order)
}

// SelectShipping is the Cart to ShippingSelected transition: it prices
// the cart, captures the latest recorded address, persists a new order
// and points the session at it.
func (l *Lifecycle) SelectShipping(ctx context.Context, sess *models.CheckoutSession, methodID uuid.UUID) (*models.Order, error) {
	lines, err := l.carts.Lines(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	method, err := l.shipping.MethodByID(ctx, methodID)
	if err != nil {
		return nil, err
	}
	if method == nil || !method.Active {
		return nil, ErrInvalidShippingMethod
	}

	coupon := l.stagedCoupon(ctx, sess)
	quote := l.engine.Price(lines, coupon, method, l.now())

	order := &models.Order{
		UserID:             sess.UserID,
		Status:             models.OrderStatusShippingSelected,
		ShippingMethodID:   &method.ID,
		ShippingMethodName: method.Name,
	}
	applyQuote(order, quote)

	// Copy-by-reference: later address edits are not reflected on the
	// order.
	addr, err := l.addresses.Latest(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if addr != nil {
		order.ShippingAddressID = &addr.ID
		order.ShippingAddress = addr
	}

	if err := l.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	sess.OrderID = &order.ID
	if err := l.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return order, nil
}

// RecordPayment is the ShippingSelected to PaymentRecorded transition.
// It revalidates the coupon, re-persists the totals and materializes
// one order item per distinct cart line, skipping products already
// materialized so resubmitting the step is harmless. The cart is not
// cleared here.
func (l *Lifecycle) RecordPayment(ctx context.Context, sess *models.CheckoutSession, paymentMethod string) (*models.Order, error) {
	paymentMethod = strings.TrimSpace(paymentMethod)
	if paymentMethod == "" {
		return nil, ErrMissingPaymentMethod
	}

	order, err := l.orderInProgress(ctx, sess)
	if err != nil {
		return nil, err
	}

	lines, err := l.carts.Lines(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}

	coupon := l.stagedCoupon(ctx, sess)
	quote := l.engine.Reprice(lines, coupon, order.ShippingCharge, l.now())
	applyQuote(order, quote)
	order.PaymentMethod = paymentMethod
	order.Status = models.OrderStatusPaymentRecorded
	if err := l.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	for _, line := range lines {
		exists, err := l.orders.ItemExists(ctx, order.ID, line.ProductID)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}

		item := &models.OrderItem{
			OrderID:       order.ID,
			UserID:        sess.UserID,
			ProductID:     line.ProductID,
			Quantity:      line.Quantity,
			Size:          line.Size,
			Color:         line.Color,
			UnitPrice:     unitPrice(line),
			ItemTotal:     pricing.LineTotal(line),
			PaymentMethod: paymentMethod,
		}
		if err := l.orders.CreateItem(ctx, item); err != nil {
			return nil, err
		}
	}

	return order, nil
}

// ReviewResult is the read+recompute output of the review step.
type ReviewResult struct {
	Order         *models.Order
	Items         []models.OrderItem
	CouponWarning string
}

// Review is the PaymentRecorded to Reviewed transition. The coupon is
// revalidated once more and the totals re-persisted; an expired or
// unknown coupon only produces a warning, it never blocks review.
func (l *Lifecycle) Review(ctx context.Context, sess *models.CheckoutSession) (*ReviewResult, error) {
	order, err := l.orderInProgress(ctx, sess)
	if err != nil {
		return nil, err
	}

	lines, err := l.carts.Lines(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}

	var warning string
	var coupon *models.Coupon
	if sess.CouponCode != "" {
		coupon, err = l.validator.Lookup(ctx, sess.CouponCode)
		switch {
		case errors.Is(err, coupons.ErrNotFound):
			warning = "Invalid coupon code."
		case err != nil:
			return nil, err
		case !coupons.IsValid(coupon, l.now()):
			warning = "Coupon expired."
		}
		if warning != "" {
			log.Printf("[Checkout] order %s review: %s (code=%q)", order.ID, warning, sess.CouponCode)
		}
	}

	quote := l.engine.Reprice(lines, coupon, order.ShippingCharge, l.now())
	applyQuote(order, quote)
	if order.Status == models.OrderStatusPaymentRecorded {
		order.Status = models.OrderStatusReviewed
	}
	if err := l.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	items, err := l.orders.ItemsByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	return &ReviewResult{Order: order, Items: items, CouponWarning: warning}, nil
}

// Complete is the terminal transition. It snapshots the customer and
// product data, mints a unique tracking id, seals a write-once
// CompletedOrder and only then clears the cart and the session.
func (l *Lifecycle) Complete(ctx context.Context, sess *models.CheckoutSession) (*models.CompletedOrder, error) {
	order, err := l.orderInProgress(ctx, sess)
	if err != nil {
		return nil, err
	}

	items, err := l.orders.ItemsByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	customerInfo, err := json.Marshal(customerSnapshot(order.ShippingAddress))
	if err != nil {
		return nil, err
	}
	productInfo, err := json.Marshal(productSnapshots(items))
	if err != nil {
		return nil, err
	}

	trackingID, err := l.mintTrackingID(ctx)
	if err != nil {
		return nil, err
	}

	completed := &models.CompletedOrder{
		TrackingID:        trackingID,
		OrderID:           order.ID,
		ShippingAddressID: order.ShippingAddressID,
		Items:             items,
		CustomerInfo:      customerInfo,
		ProductInfo:       productInfo,
		TotalAmount:       order.TotalAmount,
	}
	if err := l.orders.CreateCompleted(ctx, completed); err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusCompleted
	if err := l.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	if err := l.carts.Clear(ctx, sess.UserID); err != nil {
		return nil, err
	}
	sess.Reset()
	if err := l.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	return completed, nil
}

// RemoveItem deletes one order item and re-persists the order's totals
// from the remaining items.
func (l *Lifecycle) RemoveItem(ctx context.Context, sess *models.CheckoutSession, itemID uuid.UUID) (*models.Order, error) {
	order, err := l.orders.DeleteItem(ctx, sess.UserID, itemID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrItemNotFound
	}

	items, err := l.orders.ItemsByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.ItemTotal)
	}
	order.Subtotal = subtotal

	coupon := l.stagedCoupon(ctx, sess)
	order.Discount = coupons.Discount(coupon, subtotal, l.now())
	order.TotalAmount = subtotal.Add(order.ShippingCharge).Sub(order.Discount)
	if order.TotalAmount.IsNegative() {
		order.TotalAmount = decimal.Zero
	}
	return order, l.orders.Save(ctx, order)
}

// QuoteCart prices the current cart against the staged coupon and the
// default shipping charge, for cart-page and details-page display.
func (l *Lifecycle) QuoteCart(ctx context.Context, sess *models.CheckoutSession) ([]models.CartLine, pricing.Quote, error) {
	lines, err := l.carts.Lines(ctx, sess.UserID)
	if err != nil {
		return nil, pricing.Quote{}, err
	}
	coupon := l.stagedCoupon(ctx, sess)
	return lines, l.engine.Price(lines, coupon, nil, l.now()), nil
}

// Track looks a completed order up by its external tracking id,
// returning (nil, nil) when unknown.
func (l *Lifecycle) Track(ctx context.Context, trackingID string) (*models.CompletedOrder, error) {
	return l.orders.CompletedByTrackingID(ctx, trackingID)
}

// Methods lists the active shipping methods offered at the shipping
// step.
func (l *Lifecycle) Methods(ctx context.Context) ([]models.ShippingMethod, error) {
	return l.shipping.ActiveMethods(ctx)
}

func (l *Lifecycle) orderInProgress(ctx context.Context, sess *models.CheckoutSession) (*models.Order, error) {
	if sess.OrderID == nil {
		return nil, ErrNoOrderInProgress
	}
	order, err := l.orders.ByID(ctx, sess.UserID, *sess.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNoOrderInProgress
	}
	if order.Status.IsTerminal() {
		return nil, ErrAlreadyCompleted
	}
	return order, nil
}

// stagedCoupon resolves the session's coupon code, tolerating unknown
// codes: pricing treats a missing coupon as zero discount.
func (l *Lifecycle) stagedCoupon(ctx context.Context, sess *models.CheckoutSession) *models.Coupon {
	if sess.CouponCode == "" {
		return nil
	}
	coupon, err := l.validator.Lookup(ctx, sess.CouponCode)
	if err != nil {
		return nil
	}
	return coupon
}

func (l *Lifecycle) mintTrackingID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		id, err := utils.RandomToken(trackingIDLength)
		if err != nil {
			return "", err
		}
		exists, err := l.orders.TrackingIDExists(ctx, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not mint a unique tracking id")
}

func applyQuote(order *models.Order, quote pricing.Quote) {
	order.Subtotal = quote.Subtotal
	order.Discount = quote.Discount
	order.ShippingCharge = quote.Shipping
	order.TotalAmount = quote.Total
}

func unitPrice(line models.CartLine) decimal.Decimal {
	if line.Product == nil {
		return decimal.Zero
	}
	return line.Product.BasePrice
}

func customerSnapshot(addr *models.ShippingAddress) models.CustomerSnapshot {
	if addr == nil {
		return models.CustomerSnapshot{}
	}
	return models.CustomerSnapshot{
		Name:     addr.FullName(),
		Phone:    addr.Phone,
		Email:    addr.Email,
		Address1: addr.Address1,
		Address2: addr.Address2,
		District: addr.District,
		Division: addr.Division,
		Country:  addr.Country,
	}
}

func productSnapshots(items []models.OrderItem) []models.ProductSnapshot {
	snapshots := make([]models.ProductSnapshot, 0, len(items))
	for _, item := range items {
		title := ""
		if item.Product != nil {
			title = item.Product.Title
		}
		snapshots = append(snapshots, models.ProductSnapshot{
			Title:    title,
			Quantity: item.Quantity,
			Price:    item.ItemTotal,
			Size:     item.Size,
			Color:    item.Color,
		})
	}
	return snapshots
}
