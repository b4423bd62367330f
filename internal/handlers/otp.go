package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/przhiin/OAKSLAND/internal/config"
	"github.com/przhiin/OAKSLAND/internal/models"
	"github.com/przhiin/OAKSLAND/internal/services"
	"github.com/przhiin/OAKSLAND/internal/utils"
)

// OTPHandler covers passcode login and email verification for existing
// accounts. Registration codes are handled by RegistrationHandler since no
// user row exists at that point.
type OTPHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	otp      *services.OTPService
	sessions *services.SessionStore
}

// NewOTPHandler constructs an OTPHandler.
func NewOTPHandler(db *gorm.DB, cfg *config.Config, otp *services.OTPService, sessions *services.SessionStore) *OTPHandler {
	return &OTPHandler{db: db, cfg: cfg, otp: otp, sessions: sessions}
}

type otpRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (h *OTPHandler) userByEmail(email string) (*models.User, error) {
	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "no user found with this email address")
		}
		return nil, err
	}
	return &user, nil
}

// RequestLoginOTP mails a login code to a verified account.
func (h *OTPHandler) RequestLoginOTP(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email is required")
	}

	user, err := h.userByEmail(req.Email)
	if err != nil {
		return err
	}

	if !user.EmailVerified {
		return fiber.NewError(fiber.StatusBadRequest, "email not verified, please verify your email first")
	}

	if _, err := h.otp.Issue(user, models.OTPPurposeLogin); err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "failed to send login code")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "login code sent to your email",
		"email":   user.Email,
	})
}

// VerifyLoginOTP checks the code, consumes it, and establishes a session.
func (h *OTPHandler) VerifyLoginOTP(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Email == "" || req.OTP == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and otp are required")
	}

	user, err := h.userByEmail(req.Email)
	if err != nil {
		return err
	}

	if !user.EmailVerified {
		return fiber.NewError(fiber.StatusBadRequest, "email not verified, please verify your email first")
	}

	if err := h.otp.Verify(user, req.OTP, models.OTPPurposeLogin); err != nil {
		return otpError(err)
	}

	if err := h.otp.Consume(user, models.OTPPurposeLogin); err != nil {
		return err
	}

	pair, err := utils.GenerateTokenPair(h.cfg.JWTAccessSecret, h.cfg.JWTRefreshSecret,
		user.ID, h.cfg.AccessExpires, h.cfg.RefreshExpires)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate tokens")
	}

	if err := h.sessions.Save(c.Context(), pair.SessionID, user.ID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"message":       "login successful",
		"user_id":       user.ID,
		"email":         user.Email,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// VerifyEmail confirms a "verification" code for an existing user and marks
// the email verified.
func (h *OTPHandler) VerifyEmail(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Email == "" || req.OTP == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and otp are required")
	}

	user, err := h.userByEmail(req.Email)
	if err != nil {
		return err
	}

	if err := h.otp.Verify(user, req.OTP, models.OTPPurposeVerification); err != nil {
		return otpError(err)
	}

	if err := h.db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("email_verified", true).Error; err != nil {
		return err
	}

	if err := h.otp.Consume(user, models.OTPPurposeVerification); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "email verified successfully"})
}

func otpError(err error) error {
	switch {
	case errors.Is(err, services.ErrOTPNotFound):
		return fiber.NewError(fiber.StatusUnauthorized, "invalid verification code")
	case errors.Is(err, services.ErrOTPExpired):
		return fiber.NewError(fiber.StatusBadRequest, "verification code expired")
	default:
		return err
	}
}
