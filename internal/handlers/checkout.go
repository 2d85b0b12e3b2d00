package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/shopingo/internal/address"
	"github.com/example/shopingo/internal/checkout"
	"github.com/example/shopingo/internal/middleware"
	"github.com/example/shopingo/internal/models"
)

type CheckoutHandler struct {
	lifecycle *checkout.Lifecycle
	addresses *address.Book
}

func NewCheckoutHandler(lifecycle *checkout.Lifecycle, addresses *address.Book) *CheckoutHandler {
	return &CheckoutHandler{lifecycle: lifecycle, addresses: addresses}
}

type detailsRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Country   string `json:"country"`
	Division  string `json:"division"`
	District  string `json:"district"`
	ZipCode   string `json:"zip_code"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
}

type shippingDraftRequest struct {
	Country  string `json:"country"`
	Division string `json:"division"`
	District string `json:"district"`
	ZipCode  string `json:"zip_code"`
}

type selectShippingRequest struct {
	ShippingMethodID string `json:"shipping_method_id"`
}

type paymentRequest struct {
	PaymentMethod string `json:"payment_method"`
}

type couponRequest struct {
	CouponCode string `json:"coupon_code"`
}

// Details shows the details step: cart quote, the latest recorded
// address and the staged shipping draft for prefill.
func (h *CheckoutHandler) Details(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	ctx := c.Context()
	sess, err := h.lifecycle.Session(ctx, userID)
	if err != nil {
		return err
	}
	lines, quote, err := h.lifecycle.QuoteCart(ctx, sess)
	if err != nil {
		return err
	}
	addr, err := h.addresses.Latest(ctx, userID)
	if err != nil {
		return err
	}

	var draft *models.ShippingDraft
	if len(sess.ShippingDraft) > 0 {
		draft = &models.ShippingDraft{}
		if err := json.Unmarshal(sess.ShippingDraft, draft); err != nil {
			draft = nil
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"items":          lines,
			"quote":          quote,
			"address":        addr,
			"shipping_draft": draft,
		},
	})
}

// SubmitDetails records a new shipping address row.
func (h *CheckoutHandler) SubmitDetails(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req detailsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	addr := &models.ShippingAddress{
		UserID:    userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Country:   req.Country,
		Division:  req.Division,
		District:  req.District,
		ZipCode:   req.ZipCode,
		Address1:  req.Address1,
		Address2:  req.Address2,
	}
	if err := h.addresses.Record(c.Context(), addr); err != nil {
		return httpError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":      true,
		"message":      "Shipping details saved.",
		"redirect_url": "/checkout/shipping",
		"data":         addr,
	})
}

// StageShippingDraft stores the cart-page region form on the session.
func (h *CheckoutHandler) StageShippingDraft(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req shippingDraftRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	ctx := c.Context()
	sess, err := h.lifecycle.Session(ctx, userID)
	if err != nil {
		return err
	}
	draft := models.ShippingDraft{
		Country:  req.Country,
		Division: req.Division,
		District: req.District,
		ZipCode:  req.ZipCode,
	}
	if err := h.lifecycle.StageShippingDraft(ctx, sess, draft); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "Shipping information saved.",
		"redirect_url": "/checkout/details",
	})
}

// Shipping lists the active shipping methods alongside the cart quote.
func (h *CheckoutHandler) Shipping(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	ctx := c.Context()
	sess, err := h.lifecycle.Session(ctx, userID)
	if err != nil {
		return err
	}
	lines, quote, err := h.lifecycle.QuoteCart(ctx, sess)
	if err != nil {
		return err
	}
	methods, err := h.lifecycle.Methods(ctx)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"items":   lines,
			"quote":   quote,
			"methods": methods,
		},
	})
}

// SelectShipping creates the order from the current cart.
func (h *CheckoutHandler) SelectShipping(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req selectShippingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	methodID, err := uuid.Parse(req.ShippingMethodID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid shipping_method_id")
	}

	ctx := c.Context()
	sess, err := h.lifecycle.Session(ctx, userID)
	if err != nil {
		return err
	}
	order, err := h.lifecycle.SelectShipping(ctx, sess, methodID)
	if err != nil {
		return httpError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":      true,
		"message":      "Shipping method selected.",
		"redirect_url": "/checkout/payment",
		"data":         order,
	})
}

// RecordPayment stores the chosen payment method and materializes the
// order items.
func (h *CheckoutHandler) RecordPayment(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req paymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	ctx := c.Context()
	sess, err := h.lifecycle.Session(ctx, userID)
	if err != nil {
		return err
	}
	order, err := h.lifecycle.RecordPayment(ctx, sess, req.PaymentMethod)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "Payment method recorded.",
		"redirect_url": "/checkout/review",
		"data":         order,
	})
}

// Review recomputes the order for final confirmation. An invalid
// staged coupon becomes a warning, not an error.
func (h *CheckoutHandler) Review(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	ctx := c.Context()
	sess, err := h.lifecycle.Session(ctx, userID)
	if err != nil {
		return err
	}
	result, err := h.lifecycle.Review(ctx, sess)
	if err != nil {
		return httpError(err)
	}

	data := fiber.Map{
		"order": result.Order,
		"items": result.Items,
	}
	if result.CouponWarning != "" {
		data["coupon_warning"] = result.CouponWarning
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// Complete seals the order and returns the tracking receipt.
func (h *CheckoutHandler) Complete(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	ctx := c.Context()
	sess, err := h.lifecycle.Session(ctx, userID)
	if err != nil {
		return err
	}
	completed, err := h.lifecycle.Complete(ctx, sess)
	if err != nil {
		return httpError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Order placed successfully.",
		"data": fiber.Map{
			"tracking_id":  completed.TrackingID,
			"total_amount": completed.TotalAmount,
		},
	})
}

// RemoveItem deletes one item from the in-progress order and returns
// the recomputed totals.
func (h *CheckoutHandler) RemoveItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid order item id")
	}

	ctx := c.Context()
	sess, err := h.lifecycle.Session(ctx, userID)
	if err != nil {
		return err
	}
	order, err := h.lifecycle.RemoveItem(ctx, sess, itemID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Item removed from order.",
		"data":    order,
	})
}

// ApplyCoupon validates and stages a coupon code on the session.
func (h *CheckoutHandler) ApplyCoupon(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req couponRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	ctx := c.Context()
	sess, err := h.lifecycle.Session(ctx, userID)
	if err != nil {
		return err
	}
	coupon, err := h.lifecycle.ApplyCoupon(ctx, sess, req.CouponCode)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Coupon applied.",
		"data":    coupon,
	})
}

// RemoveCoupon drops the staged coupon and reprices any open order.
func (h *CheckoutHandler) RemoveCoupon(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	ctx := c.Context()
	sess, err := h.lifecycle.Session(ctx, userID)
	if err != nil {
		return err
	}
	if err := h.lifecycle.RemoveCoupon(ctx, sess); err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Coupon removed.",
	})
}

// Track looks up a completed order by its tracking id. Public.
func (h *CheckoutHandler) Track(c *fiber.Ctx) error {
	trackingID := c.Params("tracking_id")
	completed, err := h.lifecycle.Track(c.Context(), trackingID)
	if err != nil {
		return err
	}
	if completed == nil {
		return fiber.NewError(fiber.StatusNotFound, "order not found")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    completed,
	})
}
