package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BadgeIssue is the platform's record of a badge awarded to a user.
type BadgeIssue struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BadgeID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_badge_issue_badge_user" json:"badge_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_badge_issue_badge_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (bi *BadgeIssue) BeforeCreate(tx *gorm.DB) error {
	if bi.ID == uuid.Nil {
		bi.ID = uuid.New()
	}
	return nil
}
