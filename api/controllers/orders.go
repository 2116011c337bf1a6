package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/veyronstory/storefront-backend/api/middleware"
	"github.com/veyronstory/storefront-backend/api/responses"
	"github.com/veyronstory/storefront-backend/api/validators"
	"github.com/veyronstory/storefront-backend/internal/orders"
	"github.com/veyronstory/storefront-backend/pkg/db/models"
	"github.com/veyronstory/storefront-backend/pkg/enums"
	pkgerrors "github.com/veyronstory/storefront-backend/pkg/errors"
	"github.com/veyronstory/storefront-backend/pkg/logger"
)

type orderItemResponse struct {
	ProductID          *uuid.UUID `json:"product_id,omitempty"`
	ProductName        string     `json:"product_name"`
	Quantity           int        `json:"quantity"`
	UnitPrice          string     `json:"unit_price"`
	DiscountPercentage int        `json:"discount_percentage"`
	TotalPrice         string     `json:"total_price"`
	SelectedColor      *string    `json:"selected_color,omitempty"`
	SelectedSize       *string    `json:"selected_size,omitempty"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	UserID          uuid.UUID           `json:"user_id"`
	Status          string              `json:"status"`
	TotalAmount     string              `json:"total_amount"`
	ShippingCost    string              `json:"shipping_cost"`
	FinalAmount     string              `json:"final_amount"`
	DeliveryAddress string              `json:"delivery_address"`
	Phone           string              `json:"phone"`
	Notes           *string             `json:"notes,omitempty"`
	CouponCode      *string             `json:"coupon_code,omitempty"`
	Items           []orderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
}

func toOrderResponse(order *models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for i := range order.Items {
		item := order.Items[i]
		items = append(items, orderItemResponse{
			ProductID:          item.ProductID,
			ProductName:        item.ProductName,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice.StringFixed(2),
			DiscountPercentage: item.DiscountPercentage,
			TotalPrice:         item.TotalPrice.StringFixed(2),
			SelectedColor:      item.SelectedColor,
			SelectedSize:       item.SelectedSize,
		})
	}
	return orderResponse{
		ID:              order.ID,
		UserID:          order.UserID,
		Status:          order.Status.String(),
		TotalAmount:     order.TotalAmount.StringFixed(2),
		ShippingCost:    order.ShippingCost.StringFixed(2),
		FinalAmount:     order.FinalAmount.StringFixed(2),
		DeliveryAddress: order.DeliveryAddress,
		Phone:           order.Phone,
		Notes:           order.Notes,
		CouponCode:      order.CouponCode,
		Items:           items,
		CreatedAt:       order.CreatedAt,
	}
}

func toOrderResponses(items []models.Order) []orderResponse {
	out := make([]orderResponse, 0, len(items))
	for i := range items {
		out = append(out, toOrderResponse(&items[i]))
	}
	return out
}

func ListMyOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		listed, err := svc.ListForUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResponses(listed))
	}
}

func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		order, err := svc.Get(ctx, id, middleware.UserIDFromContext(ctx), middleware.IsAdminFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResponse(order))
	}
}

func AdminListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listed, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResponses(listed))
	}
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func AdminUpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req orderStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown order status"))
			return
		}
		updated, err := svc.UpdateStatus(r.Context(), id, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toOrderResponse(updated))
	}
}
