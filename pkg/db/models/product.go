package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product represents a storefront catalog listing. Mutated only by admin
// operations; read-only at checkout time.
type Product struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name               string          `gorm:"column:name;not null"`
	Description        *string         `gorm:"column:description"`
	Price              decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	DiscountPercentage int             `gorm:"column:discount_percentage;not null;default:0"`
	StockQuantity      int             `gorm:"column:stock_quantity;not null;default:0"`
	Category           string          `gorm:"column:category;not null"`
	Colors             pq.StringArray  `gorm:"column:colors;type:text[]"`
	Sizes              pq.StringArray  `gorm:"column:sizes;type:text[]"`
	ImageURL           *string         `gorm:"column:image_url"`
	IsActive           bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// HasColorOptions reports whether a color selection is required at checkout.
func (p *Product) HasColorOptions() bool {
	return len(p.Colors) > 0
}

// HasSizeOptions reports whether a size selection is required at checkout.
func (p *Product) HasSizeOptions() bool {
	return len(p.Sizes) > 0
}
