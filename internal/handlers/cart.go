package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/przhiin/OAKSLAND/internal/middleware"
	"github.com/przhiin/OAKSLAND/internal/models"
)

var errEmptyCart = errors.New("cart is empty")

// CartHandler manages the cart and checkout endpoints.
type CartHandler struct {
	db *gorm.DB
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{db: db}
}

type addToCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AddToCart upserts a cart line: adding a product already in the cart
// increments its quantity. The partial unique index on (user_id,
// product_id) for unclaimed rows makes the increment atomic under
// concurrent adds.
func (h *CartHandler) AddToCart(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req addToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "quantity must be positive")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ? AND is_active = ?", productID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	item := models.CartItem{
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  quantity,
	}
	err = h.db.Clauses(clause.OnConflict{
		Columns:     []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "order_id IS NULL"}}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", quantity),
			"updated_at": time.Now(),
		}),
	}).Create(&item).Error
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "product added to cart",
		"product": product.Name,
	})
}

// ViewCart returns the active cart items and the decimal sum of line totals.
func (h *CartHandler) ViewCart(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var items []models.CartItem
	if err := h.db.Preload("Product").
		Where("user_id = ? AND order_id IS NULL", userID).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return err
	}

	total := decimal.Zero
	lines := make([]fiber.Map, 0, len(items))
	for i := range items {
		lineTotal := items[i].LineTotal()
		total = total.Add(lineTotal)
		lines = append(lines, fiber.Map{
			"id":         items[i].ID,
			"product":    items[i].Product,
			"quantity":   items[i].Quantity,
			"line_total": lineTotal,
		})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"cart":         lines,
		"total_amount": total,
	})
}

// Checkout converts the active cart into a pending order. The cart rows are
// claimed in place by stamping them with the order ID, inside one
// transaction with the order creation, so a concurrent checkout either
// blocks and then finds nothing to claim, or sees the already-cleared cart.
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var order models.Order
	err := h.db.Transaction(func(tx *gorm.DB) error {
		order = models.Order{
			UserID: userID,
			Status: models.OrderStatusPending,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		claimed := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND order_id IS NULL", userID).
			Update("order_id", order.ID)
		if claimed.Error != nil {
			return claimed.Error
		}
		if claimed.RowsAffected == 0 {
			// Rolls back the order row too.
			return errEmptyCart
		}

		var items []models.CartItem
		if err := tx.Preload("Product").Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return err
		}

		total := decimal.Zero
		for i := range items {
			total = total.Add(items[i].LineTotal())
		}

		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("total_amount", total).Error; err != nil {
			return err
		}

		order.TotalAmount = total
		order.Items = items
		return nil
	})
	if err != nil {
		if errors.Is(err, errEmptyCart) {
			return fiber.NewError(fiber.StatusBadRequest, "cart is empty")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "order placed successfully",
		"order": fiber.Map{
			"id":           order.ID,
			"total_amount": order.TotalAmount,
			"status":       order.Status,
			"created_at":   order.CreatedAt,
			"items":        order.Items,
		},
	})
}

// OrderHistory returns the user's orders, most recent first.
func (h *CartHandler) OrderHistory(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var orders []models.Order
	if err := h.db.Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "orders": orders})
}
