package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/shopingo/internal/cart"
	"github.com/example/shopingo/internal/checkout"
	"github.com/example/shopingo/internal/middleware"
	"github.com/example/shopingo/internal/pricing"
	"github.com/example/shopingo/internal/utils"
)

type CartHandler struct {
	store     *cart.Store
	lifecycle *checkout.Lifecycle
}

func NewCartHandler(store *cart.Store, lifecycle *checkout.Lifecycle) *CartHandler {
	return &CartHandler{store: store, lifecycle: lifecycle}
}

type productActionRequest struct {
	ProductID string `json:"product_id"`
	Quantity  string `json:"quantity"`
	Color     string `json:"color"`
	Size      string `json:"size"`
	Action    string `json:"action"`
}

type updateQuantityRequest struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// ProductAction dispatches the listing-page button actions: add to
// cart, add to wishlist, remove from wishlist.
func (h *CartHandler) ProductAction(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req productActionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
	}

	ctx := c.Context()
	switch req.Action {
	case "add_to_cart":
		line, err := h.store.Add(ctx, userID, productID, req.Quantity, req.Color, req.Size)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(fiber.Map{
			"success":      true,
			"message":      "Product added to cart.",
			"redirect_url": "/cart",
			"data":         line,
		})
	case "add_to_wishlist":
		created, err := h.store.AddToWishlist(ctx, userID, productID)
		if err != nil {
			return httpError(err)
		}
		message := "Product added to wishlist."
		if !created {
			message = "Product is already in your wishlist."
		}
		return c.JSON(fiber.Map{
			"success":      true,
			"message":      message,
			"redirect_url": "/wishlist",
		})
	case "remove_from_wishlist":
		if err := h.store.RemoveFromWishlist(ctx, userID, productID); err != nil {
			return httpError(err)
		}
		return c.JSON(fiber.Map{
			"success":      true,
			"message":      "Product removed from wishlist.",
			"redirect_url": "/wishlist",
		})
	}

	return fiber.NewError(fiber.StatusBadRequest, "unknown action")
}

// View returns the cart lines priced against the staged coupon.
func (h *CartHandler) View(c *fiber.Ctx) error {
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
	totalItems, _ := cart.Summarize(lines)

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"items":       lines,
			"total_items": totalItems,
			"coupon_code": sess.CouponCode,
			"subtotal":    quote.Subtotal,
			"discount":    quote.Discount,
			"shipping":    quote.Shipping,
			"total":       quote.Total,
		},
	})
}

// UpdateQuantity sets a line's quantity and returns the recomputed
// partial-update totals.
func (h *CartHandler) UpdateQuantity(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	var req updateQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	lineID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid item_id")
	}

	ctx := c.Context()
	line, err := h.store.UpdateQuantity(ctx, userID, lineID, req.Quantity)
	if err != nil {
		return httpError(err)
	}

	lines, err := h.store.Lines(ctx, userID)
	if err != nil {
		return err
	}
	totalItems, subtotal := cart.Summarize(lines)

	return c.JSON(fiber.Map{
		"success":          true,
		"quantity":         line.Quantity,
		"item_total":       pricing.LineTotal(*line),
		"cart_subtotal":    subtotal,
		"cart_total_items": totalItems,
	})
}

// Remove deletes a cart line and returns the remaining totals.
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	lineID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid cart item id")
	}

	ctx := c.Context()
	if err := h.store.Remove(ctx, userID, lineID); err != nil {
		return httpError(err)
	}

	lines, err := h.store.Lines(ctx, userID)
	if err != nil {
		return err
	}
	totalItems, subtotal := cart.Summarize(lines)

	return c.JSON(fiber.Map{
		"success":          true,
		"message":          "Item removed from cart.",
		"cart_subtotal":    subtotal,
		"cart_total_items": totalItems,
	})
}

// MoveToWishlist moves a cart line back to the wishlist.
func (h *CartHandler) MoveToWishlist(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	lineID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid cart item id")
	}

	entry, err := h.store.MoveToWishlist(c.Context(), userID, lineID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "Item moved to wishlist.",
		"redirect_url": "/wishlist",
		"data":         entry,
	})
}

// Wishlist lists the user's saved products, paginated.
func (h *CartHandler) Wishlist(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}

	entries, err := h.store.WishlistEntries(c.Context(), userID)
	if err != nil {
		return err
	}

	p := utils.ParsePagination(c)
	total := len(entries)
	start := p.Offset
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    entries[start:end],
		"meta": fiber.Map{
			"page":  p.Page,
			"limit": p.Limit,
			"total": total,
		},
	})
}
