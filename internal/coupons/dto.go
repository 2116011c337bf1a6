package coupons

import (
	"time"

	"github.com/google/uuid"
)

// Applied is the validation outcome handed to the pricing layer. Validation
// never mutates usage; the commit happens after the order is persisted.
type Applied struct {
	CouponID           uuid.UUID `json:"coupon_id"`
	Code               string    `json:"code"`
	DiscountPercentage int       `json:"discount_percentage"`
}

// CreateInput carries the admin coupon creation fields.
type CreateInput struct {
	Code               string
	DiscountPercentage int
	MaxUses            *int
	ValidFrom          *time.Time
	ValidUntil         *time.Time
	CreatedBy          *uuid.UUID
}

// Invalid reason labels surfaced in error details.
const (
	ReasonNotFound   = "not_found"
	ReasonInactive   = "inactive"
	ReasonExhausted  = "exhausted"
	ReasonNotStarted = "not_started"
	ReasonExpired    = "expired"
)
