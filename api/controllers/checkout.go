package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/veyronstory/storefront-backend/api/middleware"
	"github.com/veyronstory/storefront-backend/api/responses"
	"github.com/veyronstory/storefront-backend/api/validators"
	"github.com/veyronstory/storefront-backend/internal/checkout"
	"github.com/veyronstory/storefront-backend/pkg/logger"
)

type checkoutRequest struct {
	ProductID       uuid.UUID `json:"product_id" validate:"required"`
	Quantity        int       `json:"quantity" validate:"required,min=1"`
	SelectedColor   string    `json:"selected_color"`
	SelectedSize    string    `json:"selected_size"`
	CouponCode      string    `json:"coupon_code"`
	DeliveryAddress string    `json:"delivery_address" validate:"required"`
	Phone           string    `json:"phone" validate:"required"`
	Notes           string    `json:"notes"`
	CustomerEmail   string    `json:"customer_email" validate:"omitempty,email"`
}

type checkoutResponse struct {
	OrderID     uuid.UUID `json:"order_id"`
	Status      string    `json:"status"`
	ItemPrice   string    `json:"item_price"`
	Shipping    string    `json:"shipping"`
	Total       string    `json:"total"`
	CouponCode  *string   `json:"coupon_code,omitempty"`
	// CouponDeclined carries the reason a submitted code was not applied;
	// the order itself succeeded at full price.
	CouponDeclined string `json:"coupon_declined,omitempty"`
	WhatsAppURL    string `json:"whatsapp_url"`
}

func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		result, err := svc.Submit(r.Context(), userID, checkout.Input{
			ProductID:       req.ProductID,
			Quantity:        req.Quantity,
			SelectedColor:   req.SelectedColor,
			SelectedSize:    req.SelectedSize,
			CouponCode:      req.CouponCode,
			DeliveryAddress: req.DeliveryAddress,
			Phone:           req.Phone,
			Notes:           req.Notes,
			CustomerEmail:   req.CustomerEmail,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			OrderID:     result.Order.ID,
			Status:      result.Order.Status.String(),
			ItemPrice:   result.Order.TotalAmount.StringFixed(2),
			Shipping:    result.Order.ShippingCost.StringFixed(2),
			Total:       result.Order.FinalAmount.StringFixed(2),
			CouponCode:     result.Order.CouponCode,
			CouponDeclined: result.CouponDeclined,
			WhatsAppURL:    result.WhatsAppURL,
		})
	}
}
