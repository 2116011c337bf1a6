package coupons

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/veyronstory/storefront-backend/pkg/db/models"
	pkgerrors "github.com/veyronstory/storefront-backend/pkg/errors"
)

type stubCouponsRepo struct {
	byCode         map[string]*models.Coupon
	incrementCalls int
	incrementOK    bool
	incrementErr   error
}

func newStubCouponsRepo(coupons ...*models.Coupon) *stubCouponsRepo {
	repo := &stubCouponsRepo{byCode: map[string]*models.Coupon{}, incrementOK: true}
	for _, coupon := range coupons {
		if coupon.ID == uuid.Nil {
			coupon.ID = uuid.New()
		}
		repo.byCode[coupon.Code] = coupon
	}
	return repo
}

func (s *stubCouponsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCouponsRepo) Create(ctx context.Context, coupon *models.Coupon) (*models.Coupon, error) {
	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	s.byCode[coupon.Code] = coupon
	return coupon, nil
}

func (s *stubCouponsRepo) FindByCode(ctx context.Context, code string) (*models.Coupon, error) {
	if coupon, ok := s.byCode[code]; ok {
		return coupon, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
}

func (s *stubCouponsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	for _, coupon := range s.byCode {
		if coupon.ID == id {
			return coupon, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
}

func (s *stubCouponsRepo) List(ctx context.Context) ([]models.Coupon, error) {
	out := make([]models.Coupon, 0, len(s.byCode))
	for _, coupon := range s.byCode {
		out = append(out, *coupon)
	}
	return out, nil
}

func (s *stubCouponsRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Coupon, error) {
	var out []models.Coupon
	for _, coupon := range s.byCode {
		if coupon.CreatedBy != nil && *coupon.CreatedBy == ownerID {
			out = append(out, *coupon)
		}
	}
	return out, nil
}

func (s *stubCouponsRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	coupon, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	coupon.IsActive = active
	return nil
}

func (s *stubCouponsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	coupon, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	delete(s.byCode, coupon.Code)
	return nil
}

func (s *stubCouponsRepo) IncrementUsage(ctx context.Context, id uuid.UUID) (bool, error) {
	s.incrementCalls++
	if s.incrementErr != nil {
		return false, s.incrementErr
	}
	if !s.incrementOK {
		return false, nil
	}
	coupon, err := s.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	coupon.CurrentUses++
	return true, nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, NopCache{})
	require.NoError(t, err)
	return svc
}

func assertInvalidReason(t *testing.T, err error, reason string) {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected a typed error, got %v", err)
	assert.Equal(t, pkgerrors.CodeCouponInvalid, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, reason, details["reason"])
}

func TestValidateAppliesDiscountWithoutConsumingUsage(t *testing.T) {
	repo := newStubCouponsRepo(&models.Coupon{Code: "SAVE15", DiscountPercentage: 15, IsActive: true})
	svc := newTestService(t, repo)

	applied, err := svc.Validate(context.Background(), "save15", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 15, applied.DiscountPercentage)
	assert.Equal(t, "SAVE15", applied.Code)
	assert.Zero(t, repo.incrementCalls)
	assert.Zero(t, repo.byCode["SAVE15"].CurrentUses)
}

func TestValidateUnknownCode(t *testing.T) {
	svc := newTestService(t, newStubCouponsRepo())
	_, err := svc.Validate(context.Background(), "NOPE", time.Now())
	assertInvalidReason(t, err, ReasonNotFound)
}

func TestValidateInactiveCoupon(t *testing.T) {
	repo := newStubCouponsRepo(&models.Coupon{Code: "OFF", DiscountPercentage: 10, IsActive: false})
	_, err := newTestService(t, repo).Validate(context.Background(), "OFF", time.Now())
	assertInvalidReason(t, err, ReasonInactive)
}

func TestValidateExhaustedCouponEvenWhenActive(t *testing.T) {
	maxUses := 2
	repo := newStubCouponsRepo(&models.Coupon{
		Code: "FULL", DiscountPercentage: 10, IsActive: true,
		MaxUses: &maxUses, CurrentUses: 2,
	})
	_, err := newTestService(t, repo).Validate(context.Background(), "FULL", time.Now())
	assertInvalidReason(t, err, ReasonExhausted)
}

func TestValidateExpiredCouponRegardlessOfActiveFlag(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	repo := newStubCouponsRepo(&models.Coupon{
		Code: "LATE", DiscountPercentage: 10, IsActive: true, ValidUntil: &past,
	})
	_, err := newTestService(t, repo).Validate(context.Background(), "LATE", time.Now())
	assertInvalidReason(t, err, ReasonExpired)
}

func TestValidateCouponBeforeValidFrom(t *testing.T) {
	future := time.Now().Add(time.Hour)
	repo := newStubCouponsRepo(&models.Coupon{
		Code: "SOON", DiscountPercentage: 10, IsActive: true, ValidFrom: &future,
	})
	_, err := newTestService(t, repo).Validate(context.Background(), "SOON", time.Now())
	assertInvalidReason(t, err, ReasonNotStarted)
}

func TestValidateEmptyCode(t *testing.T) {
	svc := newTestService(t, newStubCouponsRepo())
	_, err := svc.Validate(context.Background(), "   ", time.Now())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCreateNormalizesCodeAndValidatesBounds(t *testing.T) {
	repo := newStubCouponsRepo()
	svc := newTestService(t, repo)

	created, err := svc.Create(context.Background(), CreateInput{Code: " promo10 ", DiscountPercentage: 10})
	require.NoError(t, err)
	assert.Equal(t, "PROMO10", created.Code)
	assert.True(t, created.IsActive)

	_, err = svc.Create(context.Background(), CreateInput{Code: "ZERO", DiscountPercentage: 0})
	assert.Error(t, err)

	_, err = svc.Create(context.Background(), CreateInput{Code: "BIG", DiscountPercentage: 101})
	assert.Error(t, err)

	badMax := 0
	_, err = svc.Create(context.Background(), CreateInput{Code: "CAP", DiscountPercentage: 10, MaxUses: &badMax})
	assert.Error(t, err)
}

func TestCreateRejectsInvertedValidityWindow(t *testing.T) {
	svc := newTestService(t, newStubCouponsRepo())
	from := time.Now()
	until := from.Add(-time.Hour)
	_, err := svc.Create(context.Background(), CreateInput{
		Code: "WINDOW", DiscountPercentage: 10, ValidFrom: &from, ValidUntil: &until,
	})
	assert.Error(t, err)
}

func TestDeleteUsedCouponDeactivatesInstead(t *testing.T) {
	repo := newStubCouponsRepo(&models.Coupon{Code: "USED", DiscountPercentage: 10, IsActive: true, CurrentUses: 4})
	svc := newTestService(t, repo)

	deactivated, err := svc.Delete(context.Background(), repo.byCode["USED"].ID)
	require.NoError(t, err)
	assert.True(t, deactivated)
	assert.False(t, repo.byCode["USED"].IsActive)
}

func TestDeleteUnusedCouponRemovesRow(t *testing.T) {
	repo := newStubCouponsRepo(&models.Coupon{Code: "FRESH", DiscountPercentage: 10, IsActive: true})
	svc := newTestService(t, repo)

	deactivated, err := svc.Delete(context.Background(), repo.byCode["FRESH"].ID)
	require.NoError(t, err)
	assert.False(t, deactivated)
	assert.NotContains(t, repo.byCode, "FRESH")
}

func TestCommitUsageReportsExhaustion(t *testing.T) {
	repo := newStubCouponsRepo(&models.Coupon{Code: "DONE", DiscountPercentage: 10, IsActive: true})
	repo.incrementOK = false
	svc := newTestService(t, repo)

	ok, err := svc.CommitUsage(context.Background(), repo.byCode["DONE"].ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
