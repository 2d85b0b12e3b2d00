package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/shopingo/internal/address"
	"github.com/example/shopingo/internal/cart"
	"github.com/example/shopingo/internal/checkout"
	"github.com/example/shopingo/internal/coupons"
)

// httpError maps domain errors onto fiber errors so the app-level error
// handler can render them with the right status code. Unknown errors pass
// through and surface as 500s.
func httpError(err error) error {
	switch {
	case errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, coupons.ErrNotFound),
		errors.Is(err, checkout.ErrItemNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, coupons.ErrNotValid),
		errors.Is(err, address.ErrIncomplete),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrInvalidShippingMethod),
		errors.Is(err, checkout.ErrMissingPaymentMethod):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, checkout.ErrNoOrderInProgress),
		errors.Is(err, checkout.ErrEmptyOrder),
		errors.Is(err, checkout.ErrAlreadyCompleted):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return err
}
