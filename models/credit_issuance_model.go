package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreditIssuance records that a credit has been granted to a user.
// Rows are only ever created by the award observer and only ever
// removed when the owning credit is deleted.
type CreditIssuance struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreditID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_issuance_credit_user" json:"credit_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_issuance_credit_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (ci *CreditIssuance) BeforeCreate(tx *gorm.DB) error {
	if ci.ID == uuid.Nil {
		ci.ID = uuid.New()
	}
	return nil
}
