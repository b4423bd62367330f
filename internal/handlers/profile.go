package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/przhiin/OAKSLAND/internal/middleware"
	"github.com/przhiin/OAKSLAND/internal/models"
	"github.com/przhiin/OAKSLAND/internal/services"
)

// ProfileHandler manages user profile endpoints.
type ProfileHandler struct {
	db  *gorm.DB
	otp *services.OTPService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(db *gorm.DB, otp *services.OTPService) *ProfileHandler {
	return &ProfileHandler{db: db, otp: otp}
}

// GetProfile returns the authenticated user's profile.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"profile": fiber.Map{
			"id":             user.ID,
			"email":          user.Email,
			"first_name":     user.FirstName,
			"last_name":      user.LastName,
			"phone":          user.Phone,
			"address":        user.Address,
			"email_verified": user.EmailVerified,
			"created_at":     user.CreatedAt,
			"updated_at":     user.UpdatedAt,
		},
	})
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

// UpdateProfile applies a partial profile update. Changing the email resets
// the verified flag and mails a fresh verification code to the new address.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}

	emailChanged := req.Email != nil && *req.Email != "" && *req.Email != user.Email
	if emailChanged {
		var existing models.User
		err := h.db.Where("email = ?", *req.Email).First(&existing).Error
		if err == nil {
			return fiber.NewError(fiber.StatusConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		updates["email"] = *req.Email
		updates["email_verified"] = false
	}

	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}
	updates["updated_at"] = time.Now()

	if err := h.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return err
	}

	if emailChanged {
		user.Email = *req.Email
		if _, err := h.otp.Issue(&user, models.OTPPurposeVerification); err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "failed to send verification email")
		}
	}

	return c.JSON(fiber.Map{"success": true, "message": "profile updated successfully"})
}
