// Package whatsapp builds the wa.me hand-off link for a submitted order. The
// link is returned to the caller and opened client-side; nothing is dispatched
// from the server.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/veyronstory/storefront-backend/pkg/config"
)

// OrderSummary carries the fields rendered into the hand-off message.
type OrderSummary struct {
	OrderID       string
	ProductName   string
	SelectedColor string
	SelectedSize  string
	Quantity      int
	ItemPrice     decimal.Decimal
	ShippingCost  decimal.Decimal
	FinalAmount   decimal.Decimal
	CustomerEmail string
	Phone         string
	Address       string
	Notes         string
}

// Builder renders order summaries against the configured business number.
type Builder struct {
	phone string
	store string
}

func NewBuilder(cfg config.WhatsAppConfig) *Builder {
	return &Builder{phone: cfg.BusinessPhone, store: cfg.StoreName}
}

// HandoffURL returns the wa.me link carrying the urlencoded order summary.
func (b *Builder) HandoffURL(summary OrderSummary) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", b.phone, url.QueryEscape(b.Message(summary)))
}

// Message renders the plain-text order summary.
func (b *Builder) Message(summary OrderSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🛍️ *New order from %s*\n\n", b.store)
	fmt.Fprintf(&sb, "📦 *Product:*\n")
	fmt.Fprintf(&sb, "Item: %s\n", summary.ProductName)
	if summary.SelectedColor != "" {
		fmt.Fprintf(&sb, "Color: %s\n", summary.SelectedColor)
	}
	if summary.SelectedSize != "" {
		fmt.Fprintf(&sb, "Size: %s\n", summary.SelectedSize)
	}
	if summary.Quantity > 1 {
		fmt.Fprintf(&sb, "Quantity: %d\n", summary.Quantity)
	}
	fmt.Fprintf(&sb, "Price: %s\n", summary.ItemPrice.StringFixed(2))
	fmt.Fprintf(&sb, "Shipping: %s\n", summary.ShippingCost.StringFixed(2))
	fmt.Fprintf(&sb, "Total: %s\n\n", summary.FinalAmount.StringFixed(2))
	fmt.Fprintf(&sb, "👤 *Customer:*\n")
	if summary.CustomerEmail != "" {
		fmt.Fprintf(&sb, "Email: %s\n", summary.CustomerEmail)
	}
	fmt.Fprintf(&sb, "Phone: %s\n", summary.Phone)
	fmt.Fprintf(&sb, "Address: %s\n", summary.Address)
	if summary.Notes != "" {
		fmt.Fprintf(&sb, "Notes: %s\n", summary.Notes)
	}
	fmt.Fprintf(&sb, "\n🔢 *Order number:* %s", summary.OrderID)
	return sb.String()
}
