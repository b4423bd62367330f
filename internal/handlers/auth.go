package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/przhiin/OAKSLAND/internal/config"
	"github.com/przhiin/OAKSLAND/internal/middleware"
	"github.com/przhiin/OAKSLAND/internal/models"
	"github.com/przhiin/OAKSLAND/internal/services"
	"github.com/przhiin/OAKSLAND/internal/utils"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	google   *services.GoogleService
	sessions *services.SessionStore
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, google *services.GoogleService, sessions *services.SessionStore) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, google: google, sessions: sessions}
}

// issueSession generates a token pair and records the refresh session.
func (h *AuthHandler) issueSession(c *fiber.Ctx, user *models.User) (utils.TokenPair, error) {
	pair, err := utils.GenerateTokenPair(h.cfg.JWTAccessSecret, h.cfg.JWTRefreshSecret,
		user.ID, h.cfg.AccessExpires, h.cfg.RefreshExpires)
	if err != nil {
		return utils.TokenPair{}, fiber.NewError(fiber.StatusInternalServerError, "failed to generate tokens")
	}

	if err := h.sessions.Save(c.Context(), pair.SessionID, user.ID); err != nil {
		return utils.TokenPair{}, err
	}

	return pair, nil
}

func userPayload(user *models.User) fiber.Map {
	return fiber.Map{
		"id":             user.ID,
		"email":          user.Email,
		"first_name":     user.FirstName,
		"last_name":      user.LastName,
		"phone":          user.Phone,
		"email_verified": user.EmailVerified,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an existing user with email and password.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and password are required")
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	if !user.HasUsablePassword() || !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	pair, err := h.issueSession(c, &user)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"user":          userPayload(&user),
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// AdminLogin is the password path plus a superuser authorization check.
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	if !user.HasUsablePassword() || !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	if !user.IsSuperuser {
		return fiber.NewError(fiber.StatusForbidden, "superuser access required")
	}

	pair, err := h.issueSession(c, &user)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"user":          userPayload(&user),
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

type googleLoginRequest struct {
	Token string `json:"token"`
}

// GoogleLogin validates a Google ID token and gets-or-creates the account.
// Accounts created this way have no password and start email-verified.
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	var req googleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Token == "" {
		return fiber.NewError(fiber.StatusBadRequest, "token is required")
	}

	claims, err := h.google.VerifyIDToken(req.Token)
	if err != nil {
		if errors.Is(err, services.ErrGoogleEmailMissing) {
			return fiber.NewError(fiber.StatusBadRequest, "email not provided by google")
		}
		return fiber.NewError(fiber.StatusUnauthorized, "invalid google token")
	}

	created := false
	var user models.User
	err = h.db.Where("email = ?", claims.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		first, last := models.SplitFullName(claims.Name)
		user = models.User{
			Email:         claims.Email,
			FirstName:     first,
			LastName:      last,
			EmailVerified: true,
		}
		if err := h.db.Create(&user).Error; err != nil {
			return err
		}
		created = true
	} else if err != nil {
		return err
	}

	pair, err := h.issueSession(c, &user)
	if err != nil {
		return err
	}

	message := "login successful via google"
	if created {
		message = "registration successful via google"
	}

	payload := userPayload(&user)
	payload["picture"] = claims.Picture

	return c.JSON(fiber.Map{
		"success":       true,
		"message":       message,
		"user":          payload,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh rotates a live refresh session into a new token pair.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	userID, sessionID, err := utils.ParseToken(h.cfg.JWTRefreshSecret, req.RefreshToken, utils.TokenTypeRefresh)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid refresh token")
	}

	if err := h.sessions.Validate(c.Context(), sessionID, userID); err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "session revoked")
		}
		return err
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid refresh token")
	}

	if err := h.sessions.Delete(c.Context(), sessionID); err != nil {
		return err
	}

	pair, err := h.issueSession(c, &user)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

// Logout revokes the caller's refresh session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	tokenUserID, sessionID, err := utils.ParseToken(h.cfg.JWTRefreshSecret, req.RefreshToken, utils.TokenTypeRefresh)
	if err != nil || tokenUserID != userID {
		return fiber.NewError(fiber.StatusBadRequest, "invalid refresh token")
	}

	if err := h.sessions.Delete(c.Context(), sessionID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "logout successful"})
}
