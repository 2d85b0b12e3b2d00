package models

// User represents an authenticated customer.
type User struct {
	BaseModel
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `gorm:"uniqueIndex" json:"email"`
	PasswordHash string `json:"-"`

	Addresses []ShippingAddress `json:"addresses,omitempty"`
	Orders    []Order           `json:"orders,omitempty"`
}

// FullName joins the name parts for display and snapshots.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
