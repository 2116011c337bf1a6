package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem snapshots a purchased product at order time so later product
// edits do not retroactively alter historical orders.
type OrderItem struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID            uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID          *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	ProductName        string          `gorm:"column:product_name;not null"`
	Quantity           int             `gorm:"column:quantity;not null;default:1"`
	UnitPrice          decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	DiscountPercentage int             `gorm:"column:discount_percentage;not null;default:0"`
	TotalPrice         decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null"`
	SelectedColor      *string         `gorm:"column:selected_color"`
	SelectedSize       *string         `gorm:"column:selected_size"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
}
