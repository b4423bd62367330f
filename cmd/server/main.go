package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/przhiin/OAKSLAND/internal/config"
	"github.com/przhiin/OAKSLAND/internal/database"
	"github.com/przhiin/OAKSLAND/internal/routes"
	"github.com/przhiin/OAKSLAND/internal/services"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg.DatabaseURL)
	rdb := database.ConnectRedis(cfg.RedisURL)

	app := fiber.New(fiber.Config{
		AppName: "Oaksland Backend",
	})

	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, db, rdb, cfg, services.NewMailService(cfg))

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}
