package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/shopingo/internal/catalog"
	"github.com/example/shopingo/internal/models"
)

// Catalog is the gorm-backed read path for product listings and the
// lookup tables the filter engine facets over.
type Catalog struct {
	db *gorm.DB
}

// NewCatalog constructs Catalog.
func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// ProductsInScope loads the products of a category, subcategory or tag
// with variations and images attached, in insertion order.
func (r *Catalog) ProductsInScope(ctx context.Context, scope catalog.Scope) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).
		Preload("Variations").Preload("Images")

	switch {
	case scope.TagID != nil:
		query = query.
			Joins("JOIN product_tags ON product_tags.product_id = products.id").
			Where("product_tags.tag_id = ?", *scope.TagID)
	case scope.SubCategoryID != nil:
		query = query.Where("sub_category_id = ?", *scope.SubCategoryID)
	case scope.CategoryID != nil:
		query = query.Where("category_id = ?", *scope.CategoryID)
	}

	var products []models.Product
	err := query.Order("created_at asc").Find(&products).Error
	return products, err
}

func (r *Catalog) Brands(ctx context.Context) ([]models.Brand, error) {
	var brands []models.Brand
	err := r.db.WithContext(ctx).Order("name asc").Find(&brands).Error
	return brands, err
}

func (r *Catalog) Colors(ctx context.Context) ([]models.Color, error) {
	var colors []models.Color
	err := r.db.WithContext(ctx).Order("name asc").Find(&colors).Error
	return colors, err
}

func (r *Catalog) Sizes(ctx context.Context) ([]models.Size, error) {
	var sizes []models.Size
	err := r.db.WithContext(ctx).Order("created_at asc").Find(&sizes).Error
	return sizes, err
}

// CategoryBySlug resolves a category, or (nil, nil) when unknown.
func (r *Catalog) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).First(&category, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// SubCategoryBySlug resolves a subcategory, or (nil, nil) when unknown.
func (r *Catalog) SubCategoryBySlug(ctx context.Context, slug string) (*models.SubCategory, error) {
	var sub models.SubCategory
	err := r.db.WithContext(ctx).First(&sub, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// TagBySlug resolves a tag, or (nil, nil) when unknown.
func (r *Catalog) TagBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).First(&tag, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// Products is the gorm-backed product repository used by cart and
// product-detail paths.
type Products struct {
	db *gorm.DB
}

// NewProducts constructs Products.
func NewProducts(db *gorm.DB) *Products {
	return &Products{db: db}
}

func (r *Products) ProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ProductBySlug loads a product with relations for the detail page, or
// (nil, nil) when unknown.
func (r *Products) ProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Images").
		Preload("Variations").
		Preload("Variations.Color").
		Preload("Variations.Size").
		Preload("Variations.Brand").
		Preload("Category").
		First(&product, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// SimilarProducts picks up to limit products from the same category,
// newest first, backfilled with other recent products when the category
// runs short.
func (r *Products) SimilarProducts(ctx context.Context, product *models.Product, limit int) ([]models.Product, error) {
	var similar []models.Product

	if product.CategoryID != nil {
		err := r.db.WithContext(ctx).Preload("Images").
			Where("category_id = ? AND id <> ?", *product.CategoryID, product.ID).
			Order("created_at desc").
			Limit(limit).
			Find(&similar).Error
		if err != nil {
			return nil, err
		}
	}

	if len(similar) < limit {
		exclude := make([]uuid.UUID, 0, len(similar)+1)
		exclude = append(exclude, product.ID)
		for _, p := range similar {
			exclude = append(exclude, p.ID)
		}

		var extra []models.Product
		err := r.db.WithContext(ctx).Preload("Images").
			Where("id NOT IN ?", exclude).
			Order("created_at desc").
			Limit(limit - len(similar)).
			Find(&extra).Error
		if err != nil {
			return nil, err
		}
		similar = append(similar, extra...)
	}

	return similar, nil
}
