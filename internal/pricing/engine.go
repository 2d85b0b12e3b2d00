package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/shopingo/internal/coupons"
	"github.com/example/shopingo/internal/models"
)

// Quote is one pricing snapshot of a cart.
type Quote struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// Engine computes per-line totals, subtotal, discount, shipping and
// grand total. All arithmetic stays in decimals; the grand total is
// floored at two decimals and never goes below zero.
type Engine struct {
	defaultShipping decimal.Decimal
}

// NewEngine constructs an Engine with the shipping charge used when no
// method has been selected yet.
func NewEngine(defaultShipping decimal.Decimal) Engine {
	return Engine{defaultShipping: defaultShipping}
}

// Price quotes the cart against an optional coupon and shipping method.
// The coupon only discounts if it validates at the given instant.
func (e Engine) Price(lines []models.CartLine, coupon *models.Coupon, method *models.ShippingMethod, at time.Time) Quote {
	shipping := e.defaultShipping
	if method != nil {
		shipping = method.ChargeAmount
	}
	return e.Reprice(lines, coupon, shipping, at)
}

// Reprice quotes the cart against a shipping charge already copied onto
// an order. Checkout steps after shipping selection use this so the
// order's charge snapshot stays authoritative.
func (e Engine) Reprice(lines []models.CartLine, coupon *models.Coupon, shipping decimal.Decimal, at time.Time) Quote {
	subtotal := Subtotal(lines)
	discount := coupons.Discount(coupon, subtotal, at)

	total := subtotal.Add(shipping).Sub(discount).RoundFloor(2)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Quote{
		Subtotal: subtotal,
		Discount: discount,
		Shipping: shipping,
		Total:    total,
	}
}

// Subtotal sums quantity times charged unit price over all lines.
func Subtotal(lines []models.CartLine) decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(LineTotal(line))
	}
	return subtotal
}

// LineTotal is the charged amount for a single cart line.
func LineTotal(line models.CartLine) decimal.Decimal {
	if line.Product == nil {
		return decimal.Zero
	}
	return line.Product.BasePrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
}
