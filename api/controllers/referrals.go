package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/veyronstory/storefront-backend/api/middleware"
	"github.com/veyronstory/storefront-backend/api/responses"
	"github.com/veyronstory/storefront-backend/api/validators"
	"github.com/veyronstory/storefront-backend/internal/referrals"
	"github.com/veyronstory/storefront-backend/pkg/logger"
)

type referralEntry struct {
	ID        uuid.UUID `json:"id"`
	Used      bool      `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

type referralDashboardResponse struct {
	ReferralCode string          `json:"referral_code"`
	Converted    int             `json:"converted"`
	Referrals    []referralEntry `json:"referrals"`
}

func ReferralDashboard(svc referrals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		dashboard, err := svc.Dashboard(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entries := make([]referralEntry, 0, len(dashboard.Referrals))
		for _, referral := range dashboard.Referrals {
			entries = append(entries, referralEntry{
				ID:        referral.ID,
				Used:      referral.Used,
				CreatedAt: referral.CreatedAt,
			})
		}
		responses.WriteSuccess(w, referralDashboardResponse{
			ReferralCode: dashboard.ReferralCode,
			Converted:    dashboard.Converted,
			Referrals:    entries,
		})
	}
}

type referralRegisterRequest struct {
	ReferralCode string `json:"referral_code" validate:"required"`
}

// RegisterReferral links the caller to the owner of the supplied code. The
// storefront calls this right after sign-up when the invite link carried a
// code.
func RegisterReferral(svc referrals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req referralRegisterRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID := middleware.UserIDFromContext(r.Context())
		referral, err := svc.RegisterReferred(r.Context(), req.ReferralCode, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"id":            referral.ID,
			"referral_code": referral.ReferralCode,
		})
	}
}

type profileSyncRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SyncProfile upserts the caller's profile and returns their referral code.
func SyncProfile(svc referrals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req profileSyncRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID := middleware.UserIDFromContext(r.Context())
		profile, err := svc.EnsureProfile(r.Context(), userID, req.Email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"id":            profile.ID,
			"email":         profile.Email,
			"referral_code": profile.ReferralCode,
			"is_admin":      profile.IsAdmin,
		})
	}
}
