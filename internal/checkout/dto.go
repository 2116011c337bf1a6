package checkout

import (
	"github.com/google/uuid"

	"github.com/veyronstory/storefront-backend/internal/coupons"
	"github.com/veyronstory/storefront-backend/internal/pricing"
	"github.com/veyronstory/storefront-backend/pkg/db/models"
)

// Input is a single-product order submission.
type Input struct {
	ProductID       uuid.UUID
	Quantity        int
	SelectedColor   string
	SelectedSize    string
	CouponCode      string
	DeliveryAddress string
	Phone           string
	Notes           string
	CustomerEmail   string
}

// Result is the durably persisted outcome of a submission. WhatsAppURL is the
// hand-off link the storefront opens for the customer. CouponDeclined carries
// the reason a submitted code was not applied; the order still goes through
// at full price.
type Result struct {
	Order          *models.Order
	Quote          pricing.Quote
	Coupon         *coupons.Applied
	CouponDeclined string
	WhatsAppURL    string
}
