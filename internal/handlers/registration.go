package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/przhiin/OAKSLAND/internal/config"
	"github.com/przhiin/OAKSLAND/internal/models"
	"github.com/przhiin/OAKSLAND/internal/services"
	"github.com/przhiin/OAKSLAND/internal/utils"
)

// RegistrationHandler implements the two-phase, OTP-verified registration.
// The pending data lives in the registration store until the code is
// confirmed; the user row is only created on successful verification.
type RegistrationHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	pending  *services.RegistrationStore
	sessions *services.SessionStore
	mailer   services.Mailer
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(db *gorm.DB, cfg *config.Config, pending *services.RegistrationStore, sessions *services.SessionStore, mailer services.Mailer) *RegistrationHandler {
	return &RegistrationHandler{db: db, cfg: cfg, pending: pending, sessions: sessions, mailer: mailer}
}

type registerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// Register collects registration data, parks it under a registration token,
// and mails a verification code. No user is created yet.
func (h *RegistrationHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.FullName == "" || req.Email == "" || req.Phone == "" {
		return fiber.NewError(fiber.StatusBadRequest, "full_name, email and phone are required")
	}

	var existing models.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return fiber.NewError(fiber.StatusConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	code, err := services.GenerateCode()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate verification code")
	}

	token, err := h.pending.Put(c.Context(), services.PendingRegistration{
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		Code:      code,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	if err := h.mailer.Send(req.Email, "Verify your email address for registration", services.OTPMessage(code)); err != nil {
		// The pending entry is useless without its code; let the TTL reap it.
		return fiber.NewError(fiber.StatusBadGateway, "failed to send verification email")
	}

	return c.JSON(fiber.Map{
		"success":            true,
		"message":            "verification code sent, confirm to complete registration",
		"email":              req.Email,
		"registration_token": token,
	})
}

type registerVerifyRequest struct {
	RegistrationToken string `json:"registration_token"`
	Email             string `json:"email"`
	OTP               string `json:"otp"`
}

// RegisterVerify confirms the code, materializes the user, and logs them in.
// The new account has no password and starts email-verified.
func (h *RegistrationHandler) RegisterVerify(c *fiber.Ctx) error {
	var req registerVerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.RegistrationToken == "" || req.Email == "" || req.OTP == "" {
		return fiber.NewError(fiber.StatusBadRequest, "registration_token, email and otp are required")
	}

	pending, err := h.pending.Get(c.Context(), req.RegistrationToken)
	if err != nil {
		if errors.Is(err, services.ErrRegistrationNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "registration expired, please start again")
		}
		return err
	}

	// Mismatches leave the pending entry untouched so the right caller can
	// still finish.
	if req.Email != pending.Email {
		return fiber.NewError(fiber.StatusBadRequest, "email mismatch")
	}

	if time.Now().After(pending.CreatedAt.Add(h.pending.TTL())) {
		return fiber.NewError(fiber.StatusBadRequest, "verification code expired")
	}

	if req.OTP != pending.Code {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid verification code")
	}

	first, last := models.SplitFullName(pending.FullName)
	user := models.User{
		FirstName:     first,
		LastName:      last,
		Email:         pending.Email,
		Phone:         pending.Phone,
		EmailVerified: true,
	}
	if err := h.db.Create(&user).Error; err != nil {
		return err
	}

	if err := h.pending.Delete(c.Context(), req.RegistrationToken); err != nil {
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

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":       true,
		"message":       "registration successful, account created and logged in",
		"user_id":       user.ID,
		"email":         user.Email,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}
