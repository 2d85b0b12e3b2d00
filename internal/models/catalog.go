package models

import "github.com/google/uuid"

type Category struct {
	BaseModel
	Name          string        `gorm:"uniqueIndex" json:"name"`
	Slug          string        `gorm:"uniqueIndex" json:"slug"`
	SubCategories []SubCategory `json:"subcategories,omitempty"`
	Products      []Product     `json:"products,omitempty"`
}

type SubCategory struct {
	BaseModel
	Name       string    `gorm:"uniqueIndex" json:"name"`
	Slug       string    `gorm:"uniqueIndex" json:"slug"`
	CategoryID uuid.UUID `gorm:"type:uuid;index" json:"category_id"`
	Category   *Category `json:"category,omitempty"`
	Products   []Product `json:"products,omitempty"`
}

type Brand struct {
	BaseModel
	Name string `gorm:"uniqueIndex" json:"name"`
	Slug string `gorm:"uniqueIndex" json:"slug"`
}

type Color struct {
	BaseModel
	Name string `gorm:"uniqueIndex" json:"name"`
	Code string `json:"code"` // hex, optional
}

type Size struct {
	BaseModel
	Name string `json:"name"`
}

type Tag struct {
	BaseModel
	Name string `gorm:"uniqueIndex" json:"name"`
	Slug string `gorm:"uniqueIndex" json:"slug"`
}

// ProductTag links products to tags; the pair is unique.
type ProductTag struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_product_tag" json:"product_id"`
	TagID     uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_product_tag" json:"tag_id"`
	Tag       *Tag      `json:"tag,omitempty"`
}
