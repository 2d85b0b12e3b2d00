package checkout

import "errors"

var (
	// ErrEmptyCart rejects starting checkout with nothing staged.
	ErrEmptyCart = errors.New("cart is empty, nothing to check out")
	// ErrInvalidShippingMethod rejects unknown or inactive methods.
	ErrInvalidShippingMethod = errors.New("invalid shipping method")
	// ErrNoOrderInProgress rejects steps invoked before an order exists
	// for the session.
	ErrNoOrderInProgress = errors.New("no order in progress")
	// ErrMissingPaymentMethod rejects the payment step without a
	// payment method label.
	ErrMissingPaymentMethod = errors.New("payment method is required")
	// ErrItemNotFound means the order item does not exist or belongs
	// to another user's order.
	ErrItemNotFound = errors.New("order item not found")
	// ErrEmptyOrder rejects completing an order with no items.
	ErrEmptyOrder = errors.New("no items in the order")
	// ErrAlreadyCompleted rejects any step on a sealed order, including
	// a second completion attempt.
	ErrAlreadyCompleted = errors.New("order already completed")
)
