package coupons

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/veyronstory/storefront-backend/pkg/db/models"
	pkgerrors "github.com/veyronstory/storefront-backend/pkg/errors"
)

// Service exposes coupon validation, usage commits and admin management.
type Service interface {
	// Validate checks applicability at now without consuming a use.
	Validate(ctx context.Context, code string, now time.Time) (*Applied, error)
	// CommitUsage increments current_uses after the order is durably
	// persisted. Returns false when the coupon was exhausted or deactivated
	// between validation and commit.
	CommitUsage(ctx context.Context, couponID uuid.UUID) (bool, error)
	Create(ctx context.Context, input CreateInput) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Coupon, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	// Delete removes an unused coupon. A coupon with recorded usage is
	// deactivated instead so usage history stays referable; the returned
	// bool reports whether the soft path was taken.
	Delete(ctx context.Context, id uuid.UUID) (deactivated bool, err error)
}

type service struct {
	repo  Repository
	cache Cache
}

// NewService builds the coupon service.
func NewService(repo Repository, cache Cache) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupons repository required")
	}
	if cache == nil {
		cache = NopCache{}
	}
	return &service{repo: repo, cache: cache}, nil
}

func invalid(reason, message string) error {
	return pkgerrors.New(pkgerrors.CodeCouponInvalid, message).
		WithDetails(map[string]any{"reason": reason})
}

func (s *service) Validate(ctx context.Context, code string, now time.Time) (*Applied, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}

	coupon, hit := s.cache.Get(ctx, normalized)
	if !hit {
		found, err := s.repo.FindByCode(ctx, normalized)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
				return nil, invalid(ReasonNotFound, "coupon not found")
			}
			return nil, err
		}
		coupon = found
		s.cache.Set(ctx, coupon)
	}

	if !coupon.IsActive {
		return nil, invalid(ReasonInactive, "coupon is inactive")
	}
	if coupon.Exhausted() {
		return nil, invalid(ReasonExhausted, "coupon usage limit reached")
	}
	if coupon.ValidFrom != nil && now.Before(*coupon.ValidFrom) {
		return nil, invalid(ReasonNotStarted, "coupon is not valid yet")
	}
	if coupon.ValidUntil != nil && now.After(*coupon.ValidUntil) {
		return nil, invalid(ReasonExpired, "coupon has expired")
	}

	return &Applied{
		CouponID:           coupon.ID,
		Code:               coupon.Code,
		DiscountPercentage: coupon.DiscountPercentage,
	}, nil
}

func (s *service) CommitUsage(ctx context.Context, couponID uuid.UUID) (bool, error) {
	applied, err := s.repo.IncrementUsage(ctx, couponID)
	if err != nil {
		return false, err
	}
	if applied {
		if coupon, findErr := s.repo.FindByID(ctx, couponID); findErr == nil {
			s.cache.Invalidate(ctx, coupon.Code)
		}
	}
	return applied, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code required")
	}
	if input.DiscountPercentage < 1 || input.DiscountPercentage > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount percentage must be between 1 and 100")
	}
	if input.MaxUses != nil && *input.MaxUses < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max uses must be at least 1")
	}
	if input.ValidFrom != nil && input.ValidUntil != nil && input.ValidUntil.Before(*input.ValidFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid_until must not precede valid_from")
	}

	coupon := &models.Coupon{
		Code:               code,
		DiscountPercentage: input.DiscountPercentage,
		MaxUses:            input.MaxUses,
		IsActive:           true,
		ValidFrom:          input.ValidFrom,
		ValidUntil:         input.ValidUntil,
		CreatedBy:          input.CreatedBy,
	}
	created, err := s.repo.Create(ctx, coupon)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, code)
	return created, nil
}

func (s *service) List(ctx context.Context) ([]models.Coupon, error) {
	return s.repo.List(ctx)
}

func (s *service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Coupon, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, coupon.Code)
	return nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if coupon.CurrentUses > 0 {
		if err := s.repo.SetActive(ctx, id, false); err != nil {
			return false, err
		}
		s.cache.Invalidate(ctx, coupon.Code)
		return true, nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return false, err
	}
	s.cache.Invalidate(ctx, coupon.Code)
	return false, nil
}
