package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/veyronstory/storefront-backend/api/middleware"
	"github.com/veyronstory/storefront-backend/api/responses"
	"github.com/veyronstory/storefront-backend/api/validators"
	"github.com/veyronstory/storefront-backend/internal/coupons"
	"github.com/veyronstory/storefront-backend/pkg/db/models"
	"github.com/veyronstory/storefront-backend/pkg/logger"
)

type couponApplyRequest struct {
	Code string `json:"code" validate:"required"`
}

// ApplyCoupon validates a code against the clock without consuming a use. The
// storefront calls this as the customer types so the discount previews live.
func ApplyCoupon(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req couponApplyRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		applied, err := svc.Validate(r.Context(), req.Code, time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, applied)
	}
}

type couponResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Code               string     `json:"code"`
	DiscountPercentage int        `json:"discount_percentage"`
	MaxUses            *int       `json:"max_uses,omitempty"`
	CurrentUses        int        `json:"current_uses"`
	IsActive           bool       `json:"is_active"`
	ValidFrom          *time.Time `json:"valid_from,omitempty"`
	ValidUntil         *time.Time `json:"valid_until,omitempty"`
}

func toCouponResponse(coupon *models.Coupon) couponResponse {
	return couponResponse{
		ID:                 coupon.ID,
		Code:               coupon.Code,
		DiscountPercentage: coupon.DiscountPercentage,
		MaxUses:            coupon.MaxUses,
		CurrentUses:        coupon.CurrentUses,
		IsActive:           coupon.IsActive,
		ValidFrom:          coupon.ValidFrom,
		ValidUntil:         coupon.ValidUntil,
	}
}

type couponCreateRequest struct {
	Code               string     `json:"code" validate:"required"`
	DiscountPercentage int        `json:"discount_percentage" validate:"required,min=1,max=100"`
	MaxUses            *int       `json:"max_uses"`
	ValidFrom          *time.Time `json:"valid_from"`
	ValidUntil         *time.Time `json:"valid_until"`
}

func AdminCreateCoupon(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req couponCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		creator := middleware.UserIDFromContext(r.Context())
		created, err := svc.Create(r.Context(), coupons.CreateInput{
			Code:               req.Code,
			DiscountPercentage: req.DiscountPercentage,
			MaxUses:            req.MaxUses,
			ValidFrom:          req.ValidFrom,
			ValidUntil:         req.ValidUntil,
			CreatedBy:          &creator,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toCouponResponse(created))
	}
}

// ListMyCoupons returns the coupons owned by the caller, which in practice
// means referral reward coupons minted on their behalf.
func ListMyCoupons(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := middleware.UserIDFromContext(r.Context())
		listed, err := svc.ListByOwner(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]couponResponse, 0, len(listed))
		for i := range listed {
			out = append(out, toCouponResponse(&listed[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

func AdminListCoupons(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listed, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]couponResponse, 0, len(listed))
		for i := range listed {
			out = append(out, toCouponResponse(&listed[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

type couponActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

func AdminSetCouponActive(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req couponActiveRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetActive(r.Context(), id, *req.IsActive); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id, "is_active": *req.IsActive})
	}
}

func AdminDeleteCoupon(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "couponId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		deactivated, err := svc.Delete(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id, "deleted": !deactivated, "deactivated": deactivated})
	}
}
