package routes

import (
	"github.com/apoaevents/badge_credits/handlers"
	"github.com/apoaevents/badge_credits/middleware"
	"github.com/gofiber/fiber/v2"
)

func BadgeRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	badges := api.Group("/admin/badges", middleware.Protected(), middleware.ManageCreditsRequired())
	badges.Post("", handlers.CreateBadge)
	badges.Get("", handlers.ListBadges)
	badges.Put("/:badgeId", handlers.UpdateBadge)
	badges.Delete("/:badgeId", handlers.DeleteBadge)
	badges.Post("/:badgeId/award", handlers.AwardBadge)
}
