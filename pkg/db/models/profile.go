package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile mirrors the auth user with storefront-side attributes. The id is
// the identity provider's user id.
type Profile struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email        string    `gorm:"column:email;not null"`
	ReferralCode string    `gorm:"column:referral_code;not null;uniqueIndex:idx_profiles_referral_code"`
	IsAdmin      bool      `gorm:"column:is_admin;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
