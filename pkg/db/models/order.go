package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/veyronstory/storefront-backend/pkg/enums"
)

// Order is a customer purchase. TotalAmount is post-discount and
// pre-shipping; FinalAmount adds the shipping cost.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null"`
	TotalAmount     decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	ShippingCost    decimal.Decimal   `gorm:"column:shipping_cost;type:numeric(12,2);not null"`
	FinalAmount     decimal.Decimal   `gorm:"column:final_amount;type:numeric(12,2);not null"`
	DeliveryAddress string            `gorm:"column:delivery_address;not null"`
	Phone           string            `gorm:"column:phone;not null"`
	Notes           *string           `gorm:"column:notes"`
	Status          enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	CouponCode      *string           `gorm:"column:coupon_code"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
