package referrals

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/veyronstory/storefront-backend/internal/coupons"
	"github.com/veyronstory/storefront-backend/pkg/db"
	"github.com/veyronstory/storefront-backend/pkg/db/models"
	pkgerrors "github.com/veyronstory/storefront-backend/pkg/errors"
	"github.com/veyronstory/storefront-backend/pkg/logger"
)

const (
	profileCodePrefix = "VEY"
	rewardCodePrefix  = "REF"
	codeSuffixLength  = 6
	codeAttempts      = 5

	rewardDiscountPercentage = 15
	rewardMaxUses            = 1
)

// RewardIssuer mints the coupon granted to a referrer when their referral
// converts. Satisfied by coupons.Service.
type RewardIssuer interface {
	Create(ctx context.Context, input coupons.CreateInput) (*models.Coupon, error)
}

// Dashboard summarizes a referrer's activity.
type Dashboard struct {
	ReferralCode string
	Referrals    []models.Referral
	Converted    int
}

// Service tracks referral relationships and issues conversion rewards.
type Service interface {
	// EnsureProfile returns the caller's profile, creating it with a fresh
	// referral code on first sight.
	EnsureProfile(ctx context.Context, userID uuid.UUID, email string) (*models.Profile, error)
	// RegisterReferred links a newly registered user to the owner of the
	// supplied referral code.
	RegisterReferred(ctx context.Context, referralCode string, referredID uuid.UUID) (*models.Referral, error)
	// ConvertOnFirstOrder consumes the caller's pending referral, if any, and
	// mints the referrer's reward coupon. Returns (nil, nil) when the user was
	// not referred or the referral already converted.
	ConvertOnFirstOrder(ctx context.Context, referredID uuid.UUID) (*models.Coupon, error)
	Dashboard(ctx context.Context, referrerID uuid.UUID) (*Dashboard, error)
}

type service struct {
	repo    Repository
	rewards RewardIssuer
	logg    *logger.Logger
}

// NewService builds the referrals service.
func NewService(repo Repository, rewards RewardIssuer, logg *logger.Logger) Service {
	if repo == nil {
		panic("referrals: repository is required")
	}
	if rewards == nil {
		panic("referrals: reward issuer is required")
	}
	if logg == nil {
		panic("referrals: logger is required")
	}
	return &service{repo: repo, rewards: rewards, logg: logg}
}

func (s *service) EnsureProfile(ctx context.Context, userID uuid.UUID, email string) (*models.Profile, error) {
	profile, err := s.repo.FindProfileByID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		return nil, err
	}

	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := generateCode(profileCodePrefix, codeSuffixLength)
		if err != nil {
			return nil, err
		}
		profile = &models.Profile{ID: userID, Email: email, ReferralCode: code}
		if err := s.repo.SaveProfile(ctx, profile); err != nil {
			if db.IsUniqueViolation(err, "referral_code") {
				continue
			}
			return nil, err
		}
		return profile, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a referral code")
}

func (s *service) RegisterReferred(ctx context.Context, referralCode string, referredID uuid.UUID) (*models.Referral, error) {
	code := strings.ToUpper(strings.TrimSpace(referralCode))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "referral code required")
	}

	referrer, err := s.repo.FindProfileByReferralCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if referrer.ID == referredID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot use your own referral code")
	}

	referral := &models.Referral{
		ReferrerID:   referrer.ID,
		ReferredID:   &referredID,
		ReferralCode: code,
	}
	created, err := s.repo.Create(ctx, referral)
	if err != nil {
		if db.IsUniqueViolation(err, "referred_id") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "user is already linked to a referrer")
		}
		return nil, err
	}
	return created, nil
}

func (s *service) ConvertOnFirstOrder(ctx context.Context, referredID uuid.UUID) (*models.Coupon, error) {
	referral, err := s.repo.FindUnusedByReferred(ctx, referredID)
	if err != nil {
		return nil, err
	}
	if referral == nil {
		return nil, nil
	}

	flipped, err := s.repo.MarkUsed(ctx, referral.ID)
	if err != nil {
		return nil, err
	}
	if !flipped {
		// Another order got here first.
		return nil, nil
	}

	reward, err := s.mintReward(ctx, referral.ReferrerID)
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"referral_id": referral.ID.String(),
		"referrer_id": referral.ReferrerID.String(),
		"reward_code": reward.Code,
	})
	s.logg.Info(ctx, "referral converted")
	return reward, nil
}

func (s *service) mintReward(ctx context.Context, referrerID uuid.UUID) (*models.Coupon, error) {
	maxUses := rewardMaxUses
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code, err := generateCode(rewardCodePrefix, codeSuffixLength)
		if err != nil {
			return nil, err
		}
		reward, err := s.rewards.Create(ctx, coupons.CreateInput{
			Code:               code,
			DiscountPercentage: rewardDiscountPercentage,
			MaxUses:            &maxUses,
			CreatedBy:          &referrerID,
		})
		if err != nil {
			if isCodeCollision(err) {
				continue
			}
			return nil, err
		}
		return reward, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a reward coupon code")
}

func isCodeCollision(err error) bool {
	if db.IsUniqueViolation(err, "") {
		return true
	}
	if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeConflict {
		return true
	}
	return false
}

func (s *service) Dashboard(ctx context.Context, referrerID uuid.UUID) (*Dashboard, error) {
	profile, err := s.repo.FindProfileByID(ctx, referrerID)
	if err != nil {
		return nil, err
	}
	referrals, err := s.repo.ListByReferrer(ctx, referrerID)
	if err != nil {
		return nil, err
	}
	converted := 0
	for _, ref := range referrals {
		if ref.Used {
			converted++
		}
	}
	return &Dashboard{
		ReferralCode: profile.ReferralCode,
		Referrals:    referrals,
		Converted:    converted,
	}, nil
}
