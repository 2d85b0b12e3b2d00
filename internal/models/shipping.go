package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShippingMethod is a configured delivery rate, optionally scoped to a
// region. MinOrderAmount is stored but does not currently gate the
// charge.
type ShippingMethod struct {
	BaseModel
	Name           string          `json:"name"`
	Country        string          `json:"country"`
	Division       string          `json:"division"`
	District       string          `json:"district"`
	MinOrderAmount decimal.Decimal `gorm:"type:numeric(10,2)" json:"min_order_amount"`
	ChargeAmount   decimal.Decimal `gorm:"type:numeric(10,2)" json:"charge_amount"`
	DeliveryTime   string          `json:"delivery_time"`
	EstimatedDays  int             `json:"estimated_days"`
	Active         bool            `json:"active"`
}

// ShippingAddress is an append-only log entry. Checkout treats the most
// recently created row as the user's current address.
type ShippingAddress struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Country   string    `json:"country"`
	Division  string    `json:"division"`
	District  string    `json:"district"`
	ZipCode   string    `json:"zip_code"`
	Address1  string    `json:"address1"`
	Address2  string    `json:"address2"`
}

// FullName joins the captured name parts.
func (a ShippingAddress) FullName() string {
	if a.LastName == "" {
		return a.FirstName
	}
	return a.FirstName + " " + a.LastName
}
