package models

import "github.com/google/uuid"

type Category struct {
	BaseModel
	Name        string     `json:"name"`
	Slug        string     `gorm:"uniqueIndex" json:"slug"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `gorm:"type:uuid" json:"parent_id"`
	Parent      *Category  `json:"-"`
	Children    []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	Image       string     `json:"image"`
	Products    []Product  `json:"products,omitempty"`
}

type ProductImage struct {
	BaseModel
	ProductID    uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	URL          string    `json:"url"`
	AltText      string    `json:"alt_text"`
	DisplayOrder int       `json:"display_order"`
}

// ProductAttribute is a free-form key/value pair, e.g. material=teak.
type ProductAttribute struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	Key       string    `gorm:"index:idx_attr_key_value" json:"key"`
	Value     string    `gorm:"index:idx_attr_key_value" json:"value"`
}
