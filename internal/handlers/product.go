package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/shopingo/internal/models"
	"github.com/example/shopingo/internal/repository"
)

const similarProductLimit = 8

type ProductHandler struct {
	repo *repository.Products
}

func NewProductHandler(repo *repository.Products) *ProductHandler {
	return &ProductHandler{repo: repo}
}

// Detail renders one product page: the product with its variations,
// the distinct colors and sizes offered, the orderable quantity bound
// and up to eight similar products.
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	ctx := c.Context()
	product, err := h.repo.ProductBySlug(ctx, c.Params("slug"))
	if err != nil {
		return err
	}
	if product == nil {
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	}

	similar, err := h.repo.SimilarProducts(ctx, product, similarProductLimit)
	if err != nil {
		return err
	}

	colors, sizes := distinctOptions(product.Variations)

	maxQuantity := product.Stock
	if maxQuantity < 1 {
		maxQuantity = 1
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"product":          product,
			"colors":           colors,
			"sizes":            sizes,
			"max_quantity":     maxQuantity,
			"discount_percent": product.DiscountPercent(),
			"similar_products": similar,
		},
	})
}

// distinctOptions collects each color and size once across the
// product's variations, preserving first-seen order.
func distinctOptions(variations []models.Variation) ([]models.Color, []models.Size) {
	seenColors := make(map[uuid.UUID]bool)
	seenSizes := make(map[uuid.UUID]bool)
	var colors []models.Color
	var sizes []models.Size

	for _, v := range variations {
		if v.Color != nil && !seenColors[v.ColorID] {
			seenColors[v.ColorID] = true
			colors = append(colors, *v.Color)
		}
		if v.Size != nil && !seenSizes[v.SizeID] {
			seenSizes[v.SizeID] = true
			sizes = append(sizes, *v.Size)
		}
	}
	return colors, sizes
}
