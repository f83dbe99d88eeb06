package routes

import (
	"github.com/apoaevents/badge_credits/handlers"
	"github.com/apoaevents/badge_credits/middleware"
	"github.com/gofiber/fiber/v2"
)

func CreditRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/currencies", handlers.ListCurrencies)

	credits := api.Group("/admin/credits", middleware.Protected(), middleware.ManageCreditsRequired())
	credits.Get("/feed", handlers.FeedUpgrade, handlers.CreditFeed)
	credits.Get("", handlers.ListCredits)
	credits.Post("", handlers.CreateCredit)
	credits.Put("/:creditId", handlers.UpdateCredit)
	credits.Delete("/:creditId", handlers.DeleteCredit)
	credits.Post("/:creditId/toggle", handlers.ToggleCredit)
}
