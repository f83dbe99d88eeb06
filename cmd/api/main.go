package main

import (
	"log"
	"time"

	config "github.com/apoaevents/badge_credits/configs"
	"github.com/apoaevents/badge_credits/database"
	"github.com/apoaevents/badge_credits/events"
	"github.com/apoaevents/badge_credits/handlers"
	"github.com/apoaevents/badge_credits/ledger"
	"github.com/apoaevents/badge_credits/routes"
	"github.com/apoaevents/badge_credits/services"
	"github.com/apoaevents/badge_credits/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	database.ConnectDB()
	database.Migrate()
	database.SeedAdmin()

	bus := events.NewBus()
	balanceLedger := ledger.NewHTTPService()
	currencyService := services.NewCurrencyService(balanceLedger)

	creditService := &services.CreditService{
		DB:         database.DB,
		Bus:        bus,
		Access:     &services.RoleAccessPolicy{DB: database.DB},
		Currencies: currencyService,
	}
	listingService := &services.ListingService{DB: database.DB}

	awardService := &services.AwardService{
		DB:     database.DB,
		Bus:    bus,
		Ledger: balanceLedger,
	}
	awardService.Register()
	websocket.WatchBus(bus)

	handlers.Setup(creditService, listingService, currencyService, bus)

	app := fiber.New(fiber.Config{
		AppName:       "Badge Credits",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to the Badge Credits API",
		})
	})

	routes.AuthRoutes(app)
	routes.BadgeRoutes(app)
	routes.CreditRoutes(app)

	port := config.ConfigDefault("PORT", "8080")
	log.Fatal(app.Listen(":" + port))
}
