package models

import (
	"time"

	"github.com/google/uuid"
)

// Referral records a referrer/referred relationship. ReferredID stays nil
// until the referred user registers; Used flips false->true exactly once, on
// the referred user's first qualifying order.
type Referral struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReferrerID   uuid.UUID  `gorm:"column:referrer_id;type:uuid;not null"`
	ReferredID   *uuid.UUID `gorm:"column:referred_id;type:uuid;uniqueIndex:idx_referrals_referred_id"`
	ReferralCode string     `gorm:"column:referral_code;not null"`
	Used         bool       `gorm:"column:used;not null;default:false"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
