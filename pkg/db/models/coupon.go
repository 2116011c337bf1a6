package models

import (
	"time"

	"github.com/google/uuid"
)

// Coupon is a reusable, capped, time-bounded discount code. Created by an
// admin or minted by the referral reward issuer.
type Coupon struct {
	ID                 uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code               string     `gorm:"column:code;not null;uniqueIndex:idx_discount_coupons_code"`
	DiscountPercentage int        `gorm:"column:discount_percentage;not null"`
	MaxUses            *int       `gorm:"column:max_uses"`
	CurrentUses        int        `gorm:"column:current_uses;not null;default:0"`
	IsActive           bool       `gorm:"column:is_active;not null;default:true"`
	ValidFrom          *time.Time `gorm:"column:valid_from"`
	ValidUntil         *time.Time `gorm:"column:valid_until"`
	CreatedBy          *uuid.UUID `gorm:"column:created_by;type:uuid"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the original table naming.
func (Coupon) TableName() string {
	return "discount_coupons"
}

// Exhausted reports whether the usage cap has been reached.
func (c *Coupon) Exhausted() bool {
	return c.MaxUses != nil && c.CurrentUses >= *c.MaxUses
}
