package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Credit struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	BadgeID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"badge_id"`
	Name      string    `gorm:"size:50;not null" json:"name"`
	Price     int64     `gorm:"not null;default:0" json:"price"`
	Currency  string    `gorm:"size:3;not null;default:'USD'" json:"currency"`
	MaxIssues int       `gorm:"not null;default:0" json:"max_issues"`
	Enabled   bool      `gorm:"not null;default:false" json:"enabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Credit) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
