package handlers

import (
	"github.com/apoaevents/badge_credits/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreditRequest struct {
	Name      string `json:"name" validate:"required,max=50"`
	BadgeID   string `json:"badge_id" validate:"required,uuid"`
	Price     int64  `json:"price" validate:"gte=0"`
	Currency  string `json:"currency" validate:"required,len=3"`
	MaxIssues int    `json:"max_issues" validate:"gte=0"`
	Enabled   bool   `json:"enabled"`
}

func (r CreditRequest) toInput() services.CreditInput {
	badgeID, _ := uuid.Parse(r.BadgeID)
	return services.CreditInput{
		Name:      r.Name,
		BadgeID:   badgeID,
		Price:     r.Price,
		Currency:  r.Currency,
		MaxIssues: r.MaxIssues,
		Enabled:   r.Enabled,
	}
}

func ListCredits(c *fiber.Ctx) error {
	params := services.ListParams{
		Sort:    c.Query("sort"),
		Dir:     c.Query("dir"),
		Page:    c.QueryInt("page"),
		PerPage: c.QueryInt("per_page"),
	}
	if badgeID, err := uuid.Parse(c.Query("badge_id")); err == nil {
		params.BadgeID = badgeID
	}

	rows, total, err := listingService.List(params)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"credits": rows,
		"total":   total,
	})
}

func CreateCredit(c *fiber.Ctx) error {
	var req CreditRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	credit, err := creditService.Create(c.Context(), actorID(c), req.toInput())
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(credit)
}

func UpdateCredit(c *fiber.Ctx) error {
	creditID, err := uuid.Parse(c.Params("creditId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid credit id"})
	}

	var req CreditRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	credit, err := creditService.Update(c.Context(), actorID(c), creditID, req.toInput())
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(credit)
}

// DeleteCredit keeps the management page's two-step delete: without
// confirm=1 it answers with the confirmation challenge instead of
// deleting anything.
func DeleteCredit(c *fiber.Ctx) error {
	creditID, err := uuid.Parse(c.Params("creditId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid credit id"})
	}

	if c.QueryInt("confirm") != 1 {
		credit, err := creditService.Get(creditID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{
			"confirm_required": true,
			"message":          "Deleting this credit also removes every record of it having been issued.",
			"credit":           credit,
		})
	}

	if err := creditService.Delete(actorID(c), creditID); err != nil {
		return serviceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func ToggleCredit(c *fiber.Ctx) error {
	creditID, err := uuid.Parse(c.Params("creditId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid credit id"})
	}

	credit, err := creditService.ToggleEnabled(actorID(c), creditID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(credit)
}

func ListCurrencies(c *fiber.Ctx) error {
	currencies, err := currencyService.Supported(c.Context())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Failed to load supported currencies"})
	}
	return c.JSON(fiber.Map{"currencies": currencies})
}
