package catalog

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/shopingo/internal/models"
)

// Sort keys accepted by Browse. Anything else preserves the scope's
// default ordering.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
)

const defaultPerPage = 12

// PerPageChoices are the page sizes offered by the listing toolbox.
var PerPageChoices = []int{9, 12, 16, 20, 50, 100}

// DiscountBuckets are the selectable discount-depth facets. Bucket d
// covers (d-10, d], except 10 which starts at 0 and 90 which extends
// to 100.
var DiscountBuckets = []int{10, 20, 30, 40, 50, 60, 70, 80, 90}

// priceBuckets maps the named toolbox ranges to min/max bounds. A nil
// bound is open-ended.
var priceBuckets = map[string][2]*int{
	"5-49":    {intPtr(5), intPtr(49)},
	"49-99":   {intPtr(49), intPtr(99)},
	"99-149":  {intPtr(99), intPtr(149)},
	"149-300": {intPtr(149), intPtr(300)},
	"300-500": {intPtr(300), intPtr(500)},
	"1000+":   {intPtr(1000), nil},
}

func intPtr(v int) *int { return &v }

// Scope selects the product universe being browsed: a category, a
// subcategory or a tag.
type Scope struct {
	CategoryID    *uuid.UUID
	SubCategoryID *uuid.UUID
	TagID         *uuid.UUID
}

// Filter is one listing request. Variation-level criteria match a
// product when any of its variations satisfies them.
type Filter struct {
	BrandIDs       []uuid.UUID
	ColorIDs       []uuid.UUID
	SizeID         uuid.UUID
	MinPrice       *decimal.Decimal
	MaxPrice       *decimal.Decimal
	PriceBucket    string
	DiscountBucket int
	Sort           string
	PerPage        int
	Page           int
}

// FacetCount is one potential filter choice with its match count.
type FacetCount struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Count int       `json:"count"`
}

// BucketCount is one discount bucket with its variation count.
type BucketCount struct {
	Value int `json:"value"`
	Count int `json:"count"`
}

// Page is one page of matching products plus the facet counts shown in
// the sidebar. Brand, color and discount counts are computed before the
// discount bucket filter is applied, so each bucket count answers "what
// would I get if I picked this bucket".
type Page struct {
	Products   []models.Product `json:"products"`
	TotalItems int              `json:"total_items"`
	PageNumber int              `json:"page"`
	PerPage    int              `json:"per_page"`
	TotalPages int              `json:"total_pages"`
	Brands     []FacetCount     `json:"brands"`
	Colors     []FacetCount     `json:"colors"`
	Discounts  []BucketCount    `json:"discounts"`
	Sizes      []models.Size    `json:"sizes"`
}

// Repo loads the product scope with variations attached, plus the
// lookup tables the facets are built from.
type Repo interface {
	ProductsInScope(ctx context.Context, scope Scope) ([]models.Product, error)
	Brands(ctx context.Context) ([]models.Brand, error)
	Colors(ctx context.Context) ([]models.Color, error)
	Sizes(ctx context.Context) ([]models.Size, error)
}

// Engine provides faceted filtering, sorting and pagination over
// product listings.
type Engine struct {
	repo Repo
}

// NewEngine constructs an Engine.
func NewEngine(repo Repo) *Engine {
	return &Engine{repo: repo}
}

// Browse applies the filter to the scope and assembles one result page.
func (e *Engine) Browse(ctx context.Context, scope Scope, f Filter) (*Page, error) {
	products, err := e.repo.ProductsInScope(ctx, scope)
	if err != nil {
		return nil, err
	}

	// Each criterion matches independently: a product stays when some
	// variation satisfies the brand filter and some (possibly other)
	// variation satisfies the color filter, mirroring per-criterion
	// joins.
	if len(f.BrandIDs) > 0 {
		products = keep(products, func(v models.Variation) bool {
			return containsID(f.BrandIDs, v.BrandID)
		})
	}
	if len(f.ColorIDs) > 0 {
		products = keep(products, func(v models.Variation) bool {
			return containsID(f.ColorIDs, v.ColorID)
		})
	}
	if f.SizeID != uuid.Nil {
		products = keep(products, func(v models.Variation) bool {
			return v.SizeID == f.SizeID
		})
	}

	minPrice, maxPrice := f.MinPrice, f.MaxPrice
	if f.PriceBucket != "" && minPrice == nil && maxPrice == nil {
		if bounds, ok := priceBuckets[f.PriceBucket]; ok {
			if bounds[0] != nil {
				v := decimal.NewFromInt(int64(*bounds[0]))
				minPrice = &v
			}
			if bounds[1] != nil {
				v := decimal.NewFromInt(int64(*bounds[1]))
				maxPrice = &v
			}
		}
	}
	if minPrice != nil {
		products = keep(products, func(v models.Variation) bool {
			return v.DiscountPrice.GreaterThanOrEqual(*minPrice)
		})
	}
	if maxPrice != nil {
		products = keep(products, func(v models.Variation) bool {
			return v.DiscountPrice.LessThanOrEqual(*maxPrice)
		})
	}

	// Facet counts come from the set before the discount filter.
	beforeDiscount := products

	if f.DiscountBucket != 0 {
		lo, hi := bucketBounds(f.DiscountBucket)
		products = keep(products, func(v models.Variation) bool {
			return inBucket(v.DiscountPrice, lo, hi)
		})
	}

	switch f.Sort {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.LessThan(products[j].Price)
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[j].Price.LessThan(products[i].Price)
		})
	case SortNewest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	}

	page := f.Page
	perPage := f.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	total := len(products)
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	brands, err := e.repo.Brands(ctx)
	if err != nil {
		return nil, err
	}
	colors, err := e.repo.Colors(ctx)
	if err != nil {
		return nil, err
	}
	sizes, err := e.repo.Sizes(ctx)
	if err != nil {
		return nil, err
	}

	result := &Page{
		Products:   products[start:end],
		TotalItems: total,
		PageNumber: page,
		PerPage:    perPage,
		TotalPages: totalPages,
		Sizes:      sizes,
	}

	for _, b := range brands {
		id := b.ID
		count := countProducts(beforeDiscount, func(v models.Variation) bool {
			return v.BrandID == id
		})
		result.Brands = append(result.Brands, FacetCount{ID: b.ID, Name: b.Name, Count: count})
	}
	for _, c := range colors {
		id := c.ID
		count := countProducts(beforeDiscount, func(v models.Variation) bool {
			return v.ColorID == id
		})
		result.Colors = append(result.Colors, FacetCount{ID: c.ID, Name: c.Name, Count: count})
	}

	// Bucket counts tally variation rows, not products.
	for _, d := range DiscountBuckets {
		lo, hi := bucketBounds(d)
		count := 0
		for _, p := range beforeDiscount {
			for _, v := range p.Variations {
				if inBucket(v.DiscountPrice, lo, hi) {
					count++
				}
			}
		}
		result.Discounts = append(result.Discounts, BucketCount{Value: d, Count: count})
	}

	return result, nil
}

// bucketBounds returns the inclusive bounds of a discount bucket.
func bucketBounds(d int) (lo, hi int) {
	lo = 0
	if d > 10 {
		lo = d - 10 + 1
	}
	hi = d
	if d >= 90 {
		hi = 100
	}
	return lo, hi
}

func inBucket(v decimal.Decimal, lo, hi int) bool {
	return v.GreaterThanOrEqual(decimal.NewFromInt(int64(lo))) &&
		v.LessThanOrEqual(decimal.NewFromInt(int64(hi)))
}

// keep filters products to those with at least one variation matching
// the predicate.
func keep(products []models.Product, match func(models.Variation) bool) []models.Product {
	kept := products[:0:0]
	for _, p := range products {
		for _, v := range p.Variations {
			if match(v) {
				kept = append(kept, p)
				break
			}
		}
	}
	return kept
}

func countProducts(products []models.Product, match func(models.Variation) bool) int {
	count := 0
	for _, p := range products {
		for _, v := range p.Variations {
			if match(v) {
				count++
				break
			}
		}
	}
	return count
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
