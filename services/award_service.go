package services

import (
	"context"
	"errors"
	"log"

	"github.com/apoaevents/badge_credits/events"
	"github.com/apoaevents/badge_credits/ledger"
	"github.com/apoaevents/badge_credits/models"
	"gorm.io/gorm"
)

// AwardService observes the platform's badge events. When a badge is
// awarded it grants the matching credit at most once per user; when a
// badge is deleted it disables the orphaned credit.
type AwardService struct {
	DB     *gorm.DB
	Bus    *events.Bus
	Ledger ledger.Service
}

// Register attaches the observers to the bus, mirroring the plugin's
// observer table.
func (s *AwardService) Register() {
	s.Bus.Subscribe(events.BadgeAwarded, s.HandleBadgeAwarded)
	s.Bus.Subscribe(events.BadgeDeleted, s.HandleBadgeDeleted)
}

// HandleBadgeAwarded issues the badge's credit to the awarded user if an
// enabled credit exists, the user has not received it before and the
// issue cap is not exhausted. The eligibility check, issuance insert and
// ledger grant share one transaction: a failed grant rolls the issuance
// back, and the unique (credit, user) index turns a racing duplicate into
// a constraint error instead of a double grant.
func (s *AwardService) HandleBadgeAwarded(e events.Event) error {
	badgeID := e.ObjectID
	userID := e.RelatedUserID

	var issuance *models.CreditIssuance
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var credit models.Credit
		err := tx.Where("badge_id = ? AND enabled = ?", badgeID, true).First(&credit).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		var already int64
		if err := tx.Model(&models.CreditIssuance{}).
			Where("credit_id = ? AND user_id = ?", credit.ID, userID).
			Count(&already).Error; err != nil {
			return err
		}
		if already > 0 {
			return nil
		}

		if credit.MaxIssues > 0 {
			var total int64
			if err := tx.Model(&models.CreditIssuance{}).Where("credit_id = ?", credit.ID).Count(&total).Error; err != nil {
				return err
			}
			if total >= int64(credit.MaxIssues) {
				log.Printf("Credit %s has reached its issue limit of %d, skipping award", credit.ID, credit.MaxIssues)
				return nil
			}
		}

		record := models.CreditIssuance{CreditID: credit.ID, UserID: userID}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		// Grant is the last step before commit so a ledger failure
		// leaves no issuance behind.
		if err := s.Ledger.Grant(context.Background(), userID, credit.Price, credit.Currency); err != nil {
			return err
		}

		issuance = &record
		return nil
	})
	if err != nil {
		log.Printf("🔥 Failed to award credit for badge %s to user %s: %v", badgeID, userID, err)
		return err
	}

	if issuance == nil {
		return nil
	}
	return s.Bus.Publish(events.Event{
		Name:          events.CreditAwarded,
		ObjectID:      issuance.ID,
		RelatedUserID: userID,
	})
}

// HandleBadgeDeleted disables the credit attached to a deleted badge. The
// credit and its issuances stay in place; removing them is a separate
// staff decision.
func (s *AwardService) HandleBadgeDeleted(e events.Event) error {
	badgeID := e.ObjectID

	var credit models.Credit
	err := s.DB.Where("badge_id = ?", badgeID).First(&credit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.DB.Model(&credit).Update("enabled", false).Error; err != nil {
		return err
	}

	return s.Bus.Publish(events.Event{
		Name:          events.CreditUpdated,
		ObjectID:      credit.ID,
		RelatedUserID: e.RelatedUserID,
	})
}
