package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/shopingo/internal/catalog"
	"github.com/example/shopingo/internal/repository"
)

type CatalogHandler struct {
	engine *catalog.Engine
	repo   *repository.Catalog
}

func NewCatalogHandler(engine *catalog.Engine, repo *repository.Catalog) *CatalogHandler {
	return &CatalogHandler{engine: engine, repo: repo}
}

// Category lists the products of a category with faceted filtering.
func (h *CatalogHandler) Category(c *fiber.Ctx) error {
	category, err := h.repo.CategoryBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return err
	}
	if category == nil {
		return fiber.NewError(fiber.StatusNotFound, "category not found")
	}
	return h.browse(c, catalog.Scope{CategoryID: &category.ID}, fiber.Map{"category": category})
}

// SubCategory lists the products of a subcategory.
func (h *CatalogHandler) SubCategory(c *fiber.Ctx) error {
	sub, err := h.repo.SubCategoryBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return err
	}
	if sub == nil {
		return fiber.NewError(fiber.StatusNotFound, "subcategory not found")
	}
	return h.browse(c, catalog.Scope{SubCategoryID: &sub.ID}, fiber.Map{"subcategory": sub})
}

// Tag lists the products carrying a tag.
func (h *CatalogHandler) Tag(c *fiber.Ctx) error {
	tag, err := h.repo.TagBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return err
	}
	if tag == nil {
		return fiber.NewError(fiber.StatusNotFound, "tag not found")
	}
	return h.browse(c, catalog.Scope{TagID: &tag.ID}, fiber.Map{"tag": tag})
}

func (h *CatalogHandler) browse(c *fiber.Ctx, scope catalog.Scope, extra fiber.Map) error {
	filter := parseFilter(c)
	page, err := h.engine.Browse(c.Context(), scope, filter)
	if err != nil {
		return err
	}

	data := fiber.Map{
		"page":             page,
		"per_page_choices": catalog.PerPageChoices,
	}
	for k, v := range extra {
		data[k] = v
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// parseFilter maps the listing query string onto a catalog filter.
// Unparseable values fall back to the unfiltered default rather than
// erroring.
func parseFilter(c *fiber.Ctx) catalog.Filter {
	f := catalog.Filter{
		BrandIDs:    queryUUIDs(c, "brand"),
		ColorIDs:    queryUUIDs(c, "color"),
		PriceBucket: c.Query("price_range"),
		Sort:        c.Query("sort"),
		Page:        c.QueryInt("page", 1),
	}

	// top_color is the swatch shortcut; it folds into the color filter.
	if top := queryUUIDs(c, "top_color"); len(top) > 0 {
		f.ColorIDs = append(f.ColorIDs, top...)
	}

	if id, err := uuid.Parse(c.Query("size")); err == nil {
		f.SizeID = id
	}
	if v, err := decimal.NewFromString(c.Query("min_price")); err == nil {
		f.MinPrice = &v
	}
	if v, err := decimal.NewFromString(c.Query("max_price")); err == nil {
		f.MaxPrice = &v
	}
	if d, err := strconv.Atoi(c.Query("discount")); err == nil {
		f.DiscountBucket = d
	}

	perPage := c.QueryInt("per_page", 0)
	for _, choice := range catalog.PerPageChoices {
		if perPage == choice {
			f.PerPage = choice
			break
		}
	}

	return f
}

// queryUUIDs collects every valid UUID passed under a repeated query
// key, accepting both repeated keys and comma-separated values.
func queryUUIDs(c *fiber.Ctx, key string) []uuid.UUID {
	var ids []uuid.UUID
	for _, raw := range c.Context().QueryArgs().PeekMulti(key) {
		for _, part := range strings.Split(string(raw), ",") {
			if id, err := uuid.Parse(strings.TrimSpace(part)); err == nil {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
