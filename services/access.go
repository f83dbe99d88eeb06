package services

import (
	"github.com/apoaevents/badge_credits/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccessPolicy gates every credit mutation on the acting user. Route
// middleware already guards the admin endpoints; this is the single
// capability check the services themselves consult.
type AccessPolicy interface {
	CanManageCredits(userID uuid.UUID) bool
}

type RoleAccessPolicy struct {
	DB *gorm.DB
}

func (p *RoleAccessPolicy) CanManageCredits(userID uuid.UUID) bool {
	var user models.User
	if err := p.DB.First(&user, "id = ?", userID).Error; err != nil {
		return false
	}
	return user.Role == "admin" && user.IsActive
}
