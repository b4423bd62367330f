package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/przhiin/OAKSLAND/internal/middleware"
	"github.com/przhiin/OAKSLAND/internal/models"
	"github.com/przhiin/OAKSLAND/internal/utils"
)

// CatalogHandler manages categories and products. Reads are public; writes
// sit behind the superuser guard in the route table.
type CatalogHandler struct {
	db *gorm.DB
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

// uniqueSlug derives a slug from name and suffixes -1, -2, ... on collision.
func (h *CatalogHandler) uniqueSlug(model interface{}, name string, selfID uuid.UUID) (string, error) {
	base := utils.Slugify(name)
	slug := base
	for i := 1; ; i++ {
		var count int64
		query := h.db.Model(model).Where("slug = ?", slug)
		if selfID != uuid.Nil {
			query = query.Where("id <> ?", selfID)
		}
		if err := query.Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// ListCategories returns active categories, paginated.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	var categories []models.Category
	var total int64

	query := h.db.Model(&models.Category{}).Where("is_active = ?", true)
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	if err := query.Preload("Children").
		Limit(pg.Limit).Offset(pg.Offset).Order("name asc").
		Find(&categories).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    categories,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ParentID    string `json:"parent_id"`
	Image       string `json:"image"`
}

// CreateCategory persists a new category with a generated unique slug.
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}

	slug, err := h.uniqueSlug(&models.Category{}, req.Name, uuid.Nil)
	if err != nil {
		return err
	}

	category := models.Category{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		Image:       req.Image,
		IsActive:    true,
	}

	if req.ParentID != "" {
		parentID, err := uuid.Parse(req.ParentID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid parent_id")
		}
		category.ParentID = &parentID
	}

	if err := h.db.Create(&category).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": category})
}

// UpdateCategory updates name, description, image, or active flag.
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var category models.Category
	if err := h.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "category not found")
		}
		return err
	}

	var payload map[string]interface{}
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	for _, field := range []string{"name", "description", "image", "is_active"} {
		if value, ok := payload[field]; ok {
			updates[field] = value
		}
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	if err := h.db.Model(&category).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": category})
}

// DeleteCategory removes a category.
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	result := h.db.Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "category not found")
	}

	return c.JSON(fiber.Map{"success": true, "message": "category deleted"})
}

// ListProducts returns active products with optional category and search
// filters, paginated.
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	query := h.db.Model(&models.Product{}).Where("products.is_active = ?", true)

	if category := c.Query("category"); category != "" {
		if categoryID, err := uuid.Parse(category); err == nil {
			query = query.Where("category_id = ?", categoryID)
		} else {
			query = query.Joins("JOIN categories ON categories.id = products.category_id").
				Where("categories.slug = ?", category)
		}
	}

	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("products.name LIKE ? OR products.description LIKE ? OR products.sku LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Preload("Images").Preload("Attributes").
		Limit(pg.Limit).Offset(pg.Offset).Order("products.created_at desc").
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetProduct returns a single active product by slug.
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var product models.Product
	if err := h.db.Preload("Images").Preload("Attributes").Preload("Category").
		First(&product, "slug = ? AND is_active = ?", slug, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

type productAttributeRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type productImageRequest struct {
	URL          string `json:"url"`
	AltText      string `json:"alt_text"`
	DisplayOrder int    `json:"display_order"`
}

type productRequest struct {
	Name        string                    `json:"name"`
	SKU         string                    `json:"sku"`
	Description string                    `json:"description"`
	Price       string                    `json:"price"`
	Stock       int                       `json:"stock"`
	CategoryID  string                    `json:"category_id"`
	Images      []productImageRequest     `json:"images"`
	Attributes  []productAttributeRequest `json:"attributes"`
}

// CreateProduct persists a new product with images and attributes.
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Name == "" || req.Price == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name and price are required")
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, "invalid price")
	}

	slug, err := h.uniqueSlug(&models.Product{}, req.Name, uuid.Nil)
	if err != nil {
		return err
	}

	product := models.Product{
		Name:        req.Name,
		Slug:        slug,
		SKU:         req.SKU,
		Description: req.Description,
		Price:       price,
		Stock:       req.Stock,
		IsActive:    true,
	}

	if req.CategoryID != "" {
		categoryID, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid category_id")
		}
		var category models.Category
		if err := h.db.First(&category, "id = ?", categoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "category not found")
			}
			return err
		}
		product.CategoryID = &category.ID
	}

	if userID, ok := middleware.GetCurrentUserID(c); ok {
		product.CreatedByID = &userID
	}

	for _, image := range req.Images {
		product.Images = append(product.Images, models.ProductImage{
			URL:          image.URL,
			AltText:      image.AltText,
			DisplayOrder: image.DisplayOrder,
		})
	}
	for _, attr := range req.Attributes {
		product.Attributes = append(product.Attributes, models.ProductAttribute{
			Key:   attr.Key,
			Value: attr.Value,
		})
	}

	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct applies a partial update to a product.
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var payload map[string]interface{}
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	for _, field := range []string{"name", "sku", "description", "stock", "is_active"} {
		if value, ok := payload[field]; ok {
			updates[field] = value
		}
	}
	if raw, ok := payload["price"]; ok {
		priceStr, _ := raw.(string)
		price, err := decimal.NewFromString(priceStr)
		if err != nil || price.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid price")
		}
		updates["price"] = price
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	if err := h.db.Model(&product).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// DeleteProduct removes a product and its images and attributes.
func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ProductImage{}, "product_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.ProductAttribute{}, "product_id = ?", id).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Product{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "product deleted"})
}
