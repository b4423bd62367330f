package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/przhiin/OAKSLAND/internal/config"
	"github.com/przhiin/OAKSLAND/internal/handlers"
	"github.com/przhiin/OAKSLAND/internal/middleware"
	"github.com/przhiin/OAKSLAND/internal/models"
	"github.com/przhiin/OAKSLAND/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, rdb *redis.Client, cfg *config.Config, mailer services.Mailer) {
	otpService := services.NewOTPService(db, mailer)
	googleService := services.NewGoogleService(cfg.GoogleClientID)
	sessionStore := services.NewSessionStore(rdb, cfg.RefreshExpires)
	registrationStore := services.NewRegistrationStore(rdb, models.OTPValidity)

	authHandler := handlers.NewAuthHandler(db, cfg, googleService, sessionStore)
	registrationHandler := handlers.NewRegistrationHandler(db, cfg, registrationStore, sessionStore, mailer)
	otpHandler := handlers.NewOTPHandler(db, cfg, otpService, sessionStore)
	profileHandler := handlers.NewProfileHandler(db, otpService)
	cartHandler := handlers.NewCartHandler(db)
	catalogHandler := handlers.NewCatalogHandler(db)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", registrationHandler.Register)
	auth.Post("/register/verify", registrationHandler.RegisterVerify)
	auth.Post("/login", authHandler.Login)
	auth.Post("/admin/login", authHandler.AdminLogin)
	auth.Post("/google", authHandler.GoogleLogin)
	auth.Post("/otp/request", otpHandler.RequestLoginOTP)
	auth.Post("/otp/verify", otpHandler.VerifyLoginOTP)
	auth.Post("/email/verify", otpHandler.VerifyEmail)
	auth.Post("/refresh", authHandler.Refresh)

	// The guards are attached per route: an empty-prefix Group would mount
	// them as middleware on all of /api.
	authed := middleware.AuthMiddleware(cfg)
	superuser := middleware.RequireSuperuser(db)

	// Catalog routes: reads are public, writes are superuser-only.
	api.Get("/categories", catalogHandler.ListCategories)
	api.Get("/products", catalogHandler.ListProducts)
	api.Get("/products/:slug", catalogHandler.GetProduct)

	api.Post("/categories", authed, superuser, catalogHandler.CreateCategory)
	api.Put("/categories/:id", authed, superuser, catalogHandler.UpdateCategory)
	api.Delete("/categories/:id", authed, superuser, catalogHandler.DeleteCategory)
	api.Post("/products", authed, superuser, catalogHandler.CreateProduct)
	api.Put("/products/:id", authed, superuser, catalogHandler.UpdateProduct)
	api.Delete("/products/:id", authed, superuser, catalogHandler.DeleteProduct)

	// Routes for any authenticated user
	auth.Post("/logout", authed, authHandler.Logout)

	api.Get("/profile", authed, profileHandler.GetProfile)
	api.Post("/profile", authed, profileHandler.UpdateProfile)

	api.Post("/cart/add", authed, cartHandler.AddToCart)
	api.Get("/cart", authed, cartHandler.ViewCart)
	api.Post("/cart/checkout", authed, cartHandler.Checkout)
	api.Get("/cart/orders", authed, cartHandler.OrderHistory)
}
