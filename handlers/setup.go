package handlers

import (
	"errors"

	"github.com/apoaevents/badge_credits/events"
	"github.com/apoaevents/badge_credits/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var (
	creditService   *services.CreditService
	listingService  *services.ListingService
	currencyService *services.CurrencyService
	bus             *events.Bus
)

// Setup wires the handler package to its services. Called once from main
// (and from handler tests with in-memory fixtures).
func Setup(cs *services.CreditService, ls *services.ListingService, curr *services.CurrencyService, b *events.Bus) {
	creditService = cs
	listingService = ls
	currencyService = curr
	bus = b
}

func actorID(c *fiber.Ctx) uuid.UUID {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	id, _ := uuid.Parse(claims["user_id"].(string))
	return id
}

func serviceError(c *fiber.Ctx, err error) error {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Message, "field": ve.Field})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A credit for this badge already exists"})
	case errors.Is(err, services.ErrImmutable):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Credit has been issued and can no longer be edited"})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden: credit management access required"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
