package handlers

import (
	"github.com/apoaevents/badge_credits/database"
	"github.com/apoaevents/badge_credits/events"
	"github.com/apoaevents/badge_credits/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type BadgeRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	IconURL     string `json:"icon_url" validate:"required,url"`
}

func CreateBadge(c *fiber.Ctx) error {
	var req BadgeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	badge := models.Badge{
		Name:        req.Name,
		Description: req.Description,
		IconURL:     req.IconURL,
	}

	if err := database.DB.Create(&badge).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create badge"})
	}

	return c.Status(fiber.StatusCreated).JSON(badge)
}

func ListBadges(c *fiber.Ctx) error {
	var badges []models.Badge
	database.DB.Find(&badges)
	return c.JSON(badges)
}

func UpdateBadge(c *fiber.Ctx) error {
	badgeID := c.Params("badgeId")
	var badge models.Badge
	if err := database.DB.First(&badge, "id = ?", badgeID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Badge not found"})
	}

	var req BadgeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	badge.Name = req.Name
	badge.Description = req.Description
	badge.IconURL = req.IconURL
	database.DB.Save(&badge)

	return c.JSON(badge)
}

// DeleteBadge removes the badge record and announces the deletion on the
// bus: the award service reacts by disabling the badge's credit.
func DeleteBadge(c *fiber.Ctx) error {
	badgeID, err := uuid.Parse(c.Params("badgeId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid badge id"})
	}

	result := database.DB.Delete(&models.Badge{}, "id = ?", badgeID)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete badge"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Badge not found"})
	}

	if err := bus.Publish(events.Event{
		Name:          events.BadgeDeleted,
		ObjectID:      badgeID,
		RelatedUserID: actorID(c),
	}); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type AwardBadgeRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
}

// AwardBadge records the award and publishes badge_awarded. The credit
// observer runs synchronously inside this request, so a failed ledger
// grant surfaces here as a 500 while the badge award itself stands.
func AwardBadge(c *fiber.Ctx) error {
	badgeID, err := uuid.Parse(c.Params("badgeId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid badge id"})
	}

	var req AwardBadgeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	userID, _ := uuid.Parse(req.UserID)

	var badge models.Badge
	if err := database.DB.First(&badge, "id = ?", badgeID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Badge not found"})
	}

	var existing int64
	database.DB.Model(&models.BadgeIssue{}).
		Where("badge_id = ? AND user_id = ?", badgeID, userID).
		Count(&existing)
	if existing > 0 {
		return c.JSON(fiber.Map{"message": "Badge already awarded to this user"})
	}

	issue := models.BadgeIssue{BadgeID: badgeID, UserID: userID}
	if err := database.DB.Create(&issue).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to award badge"})
	}

	if err := bus.Publish(events.Event{
		Name:          events.BadgeAwarded,
		ObjectID:      badgeID,
		RelatedUserID: userID,
	}); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(issue)
}
