package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	OrderStatusPending   = "Pending"
	OrderStatusCompleted = "Completed"
	OrderStatusCancelled = "Cancelled"
)

// CartItem is one product line in a user's cart. While the item sits in the
// active cart OrderID is NULL; checkout claims the row by setting OrderID,
// so the same row becomes the order line without being copied.
type CartItem struct {
	BaseModel
	UserID    uuid.UUID  `gorm:"type:uuid;index;uniqueIndex:idx_cart_owner_product,where:order_id IS NULL" json:"user_id"`
	ProductID uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_cart_owner_product,where:order_id IS NULL" json:"product_id"`
	Product   *Product   `json:"product,omitempty"`
	Quantity  int        `json:"quantity"`
	OrderID   *uuid.UUID `gorm:"type:uuid;index" json:"order_id,omitempty"`
}

// LineTotal is the product price times the quantity. Product must be loaded.
func (ci *CartItem) LineTotal() decimal.Decimal {
	if ci.Product == nil {
		return decimal.Zero
	}
	return ci.Product.Price.Mul(decimal.NewFromInt(int64(ci.Quantity)))
}

type Order struct {
	BaseModel
	UserID      uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	User        *User           `json:"-"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2)" json:"total_amount"`
	Status      string          `gorm:"default:Pending" json:"status"`
	Items       []CartItem      `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}
