package models

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus names the checkout lifecycle stage an order is in. The
// status is stored explicitly rather than inferred from which related
// rows exist.
type OrderStatus string

const (
	OrderStatusCart             OrderStatus = "cart"
	OrderStatusShippingSelected OrderStatus = "shipping_selected"
	OrderStatusPaymentRecorded  OrderStatus = "payment_recorded"
	OrderStatusReviewed         OrderStatus = "reviewed"
	OrderStatusCompleted        OrderStatus = "completed"
)

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted
}

func (s OrderStatus) String() string {
	return string(s)
}

// Order is a priced checkout attempt. Subtotal, discount and total are
// recomputed and overwritten on every checkout step until the order is
// sealed by a CompletedOrder.
type Order struct {
	BaseModel
	UserID             uuid.UUID        `gorm:"type:uuid;index" json:"user_id"`
	Status             OrderStatus      `gorm:"index" json:"status"`
	ShippingMethodID   *uuid.UUID       `gorm:"type:uuid" json:"shipping_method_id"`
	ShippingMethodName string           `json:"shipping_method_name"`
	ShippingAddressID  *uuid.UUID       `gorm:"type:uuid" json:"shipping_address_id"`
	ShippingAddress    *ShippingAddress `json:"shipping_address,omitempty"`
	Subtotal           decimal.Decimal  `gorm:"type:numeric(10,2)" json:"subtotal"`
	Discount           decimal.Decimal  `gorm:"type:numeric(10,2)" json:"discount"`
	ShippingCharge     decimal.Decimal  `gorm:"type:numeric(10,2)" json:"shipping_charge"`
	TotalAmount        decimal.Decimal  `gorm:"type:numeric(10,2)" json:"total_amount"`
	PaymentMethod      string           `json:"payment_method"`
	Items              []OrderItem      `json:"items,omitempty"`
}

// OrderItem materializes one cart line at the payment step. The
// (order, product) pair is unique so resubmitting the step cannot
// duplicate items.
type OrderItem struct {
	BaseModel
	OrderID       uuid.UUID       `gorm:"type:uuid;index;uniqueIndex:idx_order_item_product" json:"order_id"`
	UserID        uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	ProductID     uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_order_item_product" json:"product_id"`
	Product       *Product        `json:"product,omitempty"`
	Quantity      int             `json:"quantity"`
	Size          string          `json:"size"`
	Color         string          `json:"color"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(10,2)" json:"unit_price"`
	ItemTotal     decimal.Decimal `gorm:"type:numeric(10,2)" json:"item_total"`
	PaymentMethod string          `json:"payment_method"`
}

// CustomerSnapshot is the frozen customer block stored on a completed
// order.
type CustomerSnapshot struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	District string `json:"district"`
	Division string `json:"division"`
	Country  string `json:"country"`
}

// ProductSnapshot freezes one order item for the receipt.
type ProductSnapshot struct {
	Title    string          `json:"title"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Size     string          `json:"size"`
	Color    string          `json:"color"`
}

// CompletedOrder is the immutable receipt. The unique OrderID enforces
// at most one completion per order; rows are never updated afterwards.
type CompletedOrder struct {
	BaseModel
	TrackingID        string          `gorm:"uniqueIndex" json:"tracking_id"`
	OrderID           uuid.UUID       `gorm:"type:uuid;uniqueIndex" json:"order_id"`
	Order             *Order          `json:"order,omitempty"`
	ShippingAddressID *uuid.UUID      `gorm:"type:uuid" json:"shipping_address_id"`
	Items             []OrderItem     `gorm:"many2many:completed_order_items;" json:"items,omitempty"`
	CustomerInfo      json.RawMessage `gorm:"type:jsonb" json:"customer_info"`
	ProductInfo       json.RawMessage `gorm:"type:jsonb" json:"product_info"`
	TotalAmount       decimal.Decimal `gorm:"type:numeric(10,2)" json:"total_amount"`
}

// ShippingDraft is the address form data staged on the session between
// the cart page and the details step.
type ShippingDraft struct {
	Country  string `json:"country"`
	Division string `json:"division"`
	District string `json:"district"`
	ZipCode  string `json:"zip_code"`
}

// CheckoutSession links sequential checkout steps to one in-progress
// order. One row per user; every lifecycle operation receives and
// returns it instead of reading ambient session state.
type CheckoutSession struct {
	BaseModel
	UserID        uuid.UUID       `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	OrderID       *uuid.UUID      `gorm:"type:uuid" json:"order_id"`
	CouponCode    string          `json:"coupon_code"`
	ShippingDraft json.RawMessage `gorm:"type:jsonb" json:"shipping_draft"`
}

// Reset clears the staged checkout state after completion.
func (s *CheckoutSession) Reset() {
	s.OrderID = nil
	s.CouponCode = ""
	s.ShippingDraft = nil
}
