package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	Name        string             `json:"name"`
	Slug        string             `gorm:"uniqueIndex" json:"slug"`
	SKU         string             `json:"sku"`
	Description string             `json:"description"`
	Price       decimal.Decimal    `gorm:"type:decimal(10,2)" json:"price"`
	Stock       int                `json:"stock"`
	IsActive    bool               `gorm:"default:true" json:"is_active"`
	CategoryID  *uuid.UUID         `gorm:"type:uuid" json:"category_id"`
	Category    *Category          `json:"category,omitempty"`
	CreatedByID *uuid.UUID         `gorm:"type:uuid" json:"created_by_id"`
	Images      []ProductImage     `json:"images,omitempty"`
	Attributes  []ProductAttribute `json:"attributes,omitempty"`
}
