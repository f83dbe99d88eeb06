package services

import (
	"context"
	"errors"
	"log"

	"github.com/apoaevents/badge_credits/events"
	"github.com/apoaevents/badge_credits/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreditInput struct {
	Name      string
	BadgeID   uuid.UUID
	Price     int64
	Currency  string
	MaxIssues int
	Enabled   bool
}

// CreditService owns the lifecycle of credit definitions. Every mutation
// checks the acting user's capability, runs inside one transaction, and
// publishes the matching credit_* event after commit.
type CreditService struct {
	DB         *gorm.DB
	Bus        *events.Bus
	Access     AccessPolicy
	Currencies *CurrencyService
}

func (s *CreditService) Get(creditID uuid.UUID) (*models.Credit, error) {
	var credit models.Credit
	if err := s.DB.First(&credit, "id = ?", creditID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &credit, nil
}

func (s *CreditService) Create(ctx context.Context, actorID uuid.UUID, input CreditInput) (*models.Credit, error) {
	if !s.Access.CanManageCredits(actorID) {
		return nil, ErrForbidden
	}
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	credit := models.Credit{
		BadgeID:   input.BadgeID,
		Name:      input.Name,
		Price:     input.Price,
		Currency:  input.Currency,
		MaxIssues: input.MaxIssues,
		Enabled:   input.Enabled,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.checkBadge(tx, input.BadgeID); err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&models.Credit{}).Where("badge_id = ?", input.BadgeID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrConflict
		}

		return tx.Create(&credit).Error
	})
	if err != nil {
		return nil, err
	}

	s.publish(events.CreditCreated, credit.ID, actorID)
	return &credit, nil
}

func (s *CreditService) Update(ctx context.Context, actorID uuid.UUID, creditID uuid.UUID, input CreditInput) (*models.Credit, error) {
	if !s.Access.CanManageCredits(actorID) {
		return nil, ErrForbidden
	}
	if err := s.validate(ctx, input); err != nil {
		return nil, err
	}

	var credit models.Credit
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&credit, "id = ?", creditID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var other int64
		if err := tx.Model(&models.Credit{}).
			Where("badge_id = ? AND id <> ?", input.BadgeID, creditID).
			Count(&other).Error; err != nil {
			return err
		}
		if other > 0 {
			return ErrConflict
		}

		var issued int64
		if err := tx.Model(&models.CreditIssuance{}).Where("credit_id = ?", creditID).Count(&issued).Error; err != nil {
			return err
		}
		if issued > 0 && coreTermsChanged(credit, input) {
			return ErrImmutable
		}

		if err := s.checkBadge(tx, input.BadgeID); err != nil {
			return err
		}

		credit.Name = input.Name
		credit.BadgeID = input.BadgeID
		credit.Price = input.Price
		credit.Currency = input.Currency
		credit.MaxIssues = input.MaxIssues
		credit.Enabled = input.Enabled

		return tx.Save(&credit).Error
	})
	if err != nil {
		return nil, err
	}

	s.publish(events.CreditUpdated, credit.ID, actorID)
	return &credit, nil
}

// Delete removes the credit together with every issuance that references
// it, in one transaction so no orphaned issuance rows survive a failure.
func (s *CreditService) Delete(actorID uuid.UUID, creditID uuid.UUID) error {
	if !s.Access.CanManageCredits(actorID) {
		return ErrForbidden
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Credit{}, "id = ?", creditID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Delete(&models.CreditIssuance{}, "credit_id = ?", creditID).Error
	})
	if err != nil {
		return err
	}

	s.publish(events.CreditDeleted, creditID, actorID)
	return nil
}

// ToggleEnabled flips the enabled flag. Disabling hides the credit from
// award matching but keeps it on the admin list.
func (s *CreditService) ToggleEnabled(actorID uuid.UUID, creditID uuid.UUID) (*models.Credit, error) {
	if !s.Access.CanManageCredits(actorID) {
		return nil, ErrForbidden
	}

	var credit models.Credit
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&credit, "id = ?", creditID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		credit.Enabled = !credit.Enabled
		return tx.Model(&credit).Update("enabled", credit.Enabled).Error
	})
	if err != nil {
		return nil, err
	}

	s.publish(events.CreditUpdated, credit.ID, actorID)
	return &credit, nil
}

func (s *CreditService) validate(ctx context.Context, input CreditInput) error {
	if input.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if len(input.Name) > 50 {
		return &ValidationError{Field: "name", Message: "name must be at most 50 characters"}
	}
	if input.BadgeID == uuid.Nil {
		return &ValidationError{Field: "badge_id", Message: "a badge must be selected"}
	}
	if input.Price < 0 {
		return &ValidationError{Field: "price", Message: "price must not be negative"}
	}
	if input.MaxIssues < 0 {
		return &ValidationError{Field: "max_issues", Message: "maximum issues must not be negative"}
	}

	supported, err := s.Currencies.IsSupported(ctx, input.Currency)
	if err != nil {
		return err
	}
	if !supported {
		return &ValidationError{Field: "currency", Message: "currency is not supported by the ledger"}
	}
	return nil
}

// checkBadge verifies the badge exists and has never been awarded. A badge
// with award records cannot have a credit pointed at it, since past
// recipients would miss out.
func (s *CreditService) checkBadge(tx *gorm.DB, badgeID uuid.UUID) error {
	var badge models.Badge
	if err := tx.First(&badge, "id = ?", badgeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ValidationError{Field: "badge_id", Message: "badge does not exist"}
		}
		return err
	}

	var awarded int64
	if err := tx.Model(&models.BadgeIssue{}).Where("badge_id = ?", badgeID).Count(&awarded).Error; err != nil {
		return err
	}
	if awarded > 0 {
		return &ValidationError{Field: "badge_id", Message: "badge has already been awarded"}
	}
	return nil
}

func coreTermsChanged(credit models.Credit, input CreditInput) bool {
	return credit.Name != input.Name ||
		credit.BadgeID != input.BadgeID ||
		credit.Price != input.Price ||
		credit.Currency != input.Currency ||
		credit.MaxIssues != input.MaxIssues
}

func (s *CreditService) publish(name string, objectID uuid.UUID, actorID uuid.UUID) {
	err := s.Bus.Publish(events.Event{Name: name, ObjectID: objectID, RelatedUserID: actorID})
	if err != nil {
		log.Printf("🔥 Failed to publish %s event for %s: %v", name, objectID, err)
	}
}
