package models

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a sellable catalog entry. Price is the listed price,
// BasePrice the amount actually charged per unit at checkout, and
// DiscountAmount the difference between the two. Whichever two of the
// three are set on save, the third is derived.
type Product struct {
	BaseModel
	Title          string          `json:"title"`
	Slug           string          `gorm:"uniqueIndex" json:"slug"`
	Description    string          `json:"description"`
	MoreInfo       string          `json:"more_information"`
	Price          decimal.Decimal `gorm:"type:numeric(10,2)" json:"price"`
	BasePrice      decimal.Decimal `gorm:"type:numeric(10,2)" json:"base_price"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(10,2)" json:"discount_amount"`
	Stock          int             `json:"stock"`
	IsFeatured     bool            `json:"is_featured"`
	CategoryID     *uuid.UUID      `gorm:"type:uuid;index" json:"category_id"`
	Category       *Category       `json:"category,omitempty"`
	SubCategoryID  *uuid.UUID      `gorm:"type:uuid;index" json:"subcategory_id"`
	SubCategory    *SubCategory    `json:"subcategory,omitempty"`
	SellerID       *uuid.UUID      `gorm:"type:uuid" json:"seller_id"`
	Images         []ProductImage  `json:"images,omitempty"`
	Variations     []Variation     `json:"variations,omitempty"`
	Tags           []ProductTag    `json:"tags,omitempty"`
}

var slugWords = regexp.MustCompile(`\w+`)

// Slugify builds a slug from the first five words of a title.
func Slugify(title string) string {
	words := slugWords.FindAllString(strings.ToLower(title), 5)
	return strings.Join(words, "-")
}

// BeforeSave fills the slug and completes the price triple.
func (p *Product) BeforeSave(tx *gorm.DB) error {
	if p.Slug == "" && p.Title != "" {
		base := Slugify(p.Title)
		slug := base
		for counter := 1; ; counter++ {
			var count int64
			if err := tx.Model(&Product{}).Where("slug = ? AND id <> ?", slug, p.ID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				break
			}
			slug = fmt.Sprintf("%s-%d", base, counter)
		}
		p.Slug = slug
	}

	switch {
	case p.Price.IsPositive() && p.BasePrice.IsPositive():
		p.DiscountAmount = p.Price.Sub(p.BasePrice)
	case p.Price.IsPositive() && p.DiscountAmount.IsPositive():
		p.BasePrice = p.Price.Sub(p.DiscountAmount)
	default:
		p.BasePrice = p.Price
		p.DiscountAmount = decimal.Zero
	}
	return nil
}

// DiscountPercent reports how deep the listed discount is, rounded to
// two decimals.
func (p Product) DiscountPercent() decimal.Decimal {
	if !p.Price.IsPositive() {
		return decimal.Zero
	}
	return p.Price.Sub(p.BasePrice).
		Div(p.Price).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

type ProductImage struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	URL       string    `json:"url"`
	AltText   string    `json:"alt_text"`
}

// Variation is one concrete color/size/brand combination of a product.
// DiscountPrice holds the variation's discount depth and is what the
// catalog price and discount-bucket filters match against.
type Variation struct {
	BaseModel
	ProductID     uuid.UUID       `gorm:"type:uuid;index;uniqueIndex:idx_variation_combo" json:"product_id"`
	ColorID       uuid.UUID       `gorm:"type:uuid;index;uniqueIndex:idx_variation_combo" json:"color_id"`
	Color         *Color          `json:"color,omitempty"`
	SizeID        uuid.UUID       `gorm:"type:uuid;index;uniqueIndex:idx_variation_combo" json:"size_id"`
	Size          *Size           `json:"size,omitempty"`
	BrandID       uuid.UUID       `gorm:"type:uuid;index;uniqueIndex:idx_variation_combo" json:"brand_id"`
	Brand         *Brand          `json:"brand,omitempty"`
	Price         decimal.Decimal `gorm:"type:numeric(10,2)" json:"price"`
	DiscountPrice decimal.Decimal `gorm:"type:numeric(10,2)" json:"discount_price"`
	Stock         int             `json:"stock"`
}

// Wishlist holds products a user saved for later. A product is never in
// the wishlist and the cart at the same time.
type Wishlist struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_wishlist_user_product" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_wishlist_user_product" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
}
