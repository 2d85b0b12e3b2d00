package models

import "time"

// Coupon is a percentage-off code. Validity is a pure function of the
// clock and these fields; the checkout path never mutates coupons.
type Coupon struct {
	BaseModel
	Code            string    `gorm:"uniqueIndex" json:"code"`
	DiscountPercent *int      `json:"discount_percent"`
	ValidFrom       time.Time `json:"valid_from"`
	ValidTo         time.Time `json:"valid_to"`
	Active          bool      `json:"active"`
	Products        []Product `gorm:"many2many:coupon_products;" json:"products,omitempty"`
}
