package checkout

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/veyronstory/storefront-backend/internal/coupons"
	"github.com/veyronstory/storefront-backend/internal/orders"
	"github.com/veyronstory/storefront-backend/internal/pricing"
	"github.com/veyronstory/storefront-backend/internal/products"
	"github.com/veyronstory/storefront-backend/pkg/db/models"
	"github.com/veyronstory/storefront-backend/pkg/enums"
	pkgerrors "github.com/veyronstory/storefront-backend/pkg/errors"
	"github.com/veyronstory/storefront-backend/pkg/logger"
	"github.com/veyronstory/storefront-backend/pkg/metrics"
	"github.com/veyronstory/storefront-backend/pkg/whatsapp"
)

const minPhoneDigits = 8

// TxRunner is the transaction boundary. Satisfied by db.Client.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CouponValidator is the slice of the coupons service checkout needs.
type CouponValidator interface {
	Validate(ctx context.Context, code string, now time.Time) (*coupons.Applied, error)
	CommitUsage(ctx context.Context, couponID uuid.UUID) (bool, error)
}

// ReferralConverter consumes a pending referral after the first order lands.
type ReferralConverter interface {
	ConvertOnFirstOrder(ctx context.Context, referredID uuid.UUID) (*models.Coupon, error)
}

// Service orchestrates order submission end to end.
type Service interface {
	Submit(ctx context.Context, userID uuid.UUID, input Input) (*Result, error)
}

type service struct {
	tx           TxRunner
	productsRepo products.Repository
	ordersRepo   orders.Repository
	coupons      CouponValidator
	referrals    ReferralConverter
	whatsapp     *whatsapp.Builder
	metrics      *metrics.CheckoutMetrics
	logg         *logger.Logger
	shippingRate decimal.Decimal
	now          func() time.Time
}

// NewService builds the checkout orchestrator. The metrics recorder may be
// nil; everything else is required.
func NewService(
	tx TxRunner,
	productsRepo products.Repository,
	ordersRepo orders.Repository,
	couponSvc CouponValidator,
	referralSvc ReferralConverter,
	builder *whatsapp.Builder,
	recorder *metrics.CheckoutMetrics,
	logg *logger.Logger,
	shippingRate decimal.Decimal,
) Service {
	if tx == nil {
		panic("checkout: tx runner is required")
	}
	if productsRepo == nil {
		panic("checkout: products repository is required")
	}
	if ordersRepo == nil {
		panic("checkout: orders repository is required")
	}
	if couponSvc == nil {
		panic("checkout: coupons service is required")
	}
	if referralSvc == nil {
		panic("checkout: referrals service is required")
	}
	if builder == nil {
		panic("checkout: whatsapp builder is required")
	}
	if logg == nil {
		panic("checkout: logger is required")
	}
	return &service{
		tx:           tx,
		productsRepo: productsRepo,
		ordersRepo:   ordersRepo,
		coupons:      couponSvc,
		referrals:    referralSvc,
		whatsapp:     builder,
		metrics:      recorder,
		logg:         logg,
		shippingRate: shippingRate,
		now:          time.Now,
	}
}

func (s *service) Submit(ctx context.Context, userID uuid.UUID, input Input) (*Result, error) {
	started := s.now()
	result, err := s.submit(ctx, userID, input)
	if err != nil {
		s.metrics.IncOrdersFailed()
		s.metrics.ObserveDuration("failure", s.now().Sub(started))
		return nil, err
	}
	s.metrics.IncOrdersCreated()
	s.metrics.ObserveDuration("success", s.now().Sub(started))
	return result, nil
}

func (s *service) submit(ctx context.Context, userID uuid.UUID, input Input) (*Result, error) {
	if err := validateContact(input); err != nil {
		return nil, err
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.productsRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not available")
	}
	if product.StockQuantity < input.Quantity {
		return nil, pkgerrors.New(pkgerrors.CodeOutOfStock, "insufficient stock").
			WithDetails(map[string]any{"available": product.StockQuantity})
	}

	color, size, err := resolveOptions(product, input)
	if err != nil {
		return nil, err
	}

	var applied *coupons.Applied
	couponPct := 0
	couponDeclined := ""
	if code := strings.TrimSpace(input.CouponCode); code != "" {
		applied, err = s.coupons.Validate(ctx, code, s.now())
		if err != nil {
			coded := pkgerrors.As(err)
			if coded == nil || coded.Code() != pkgerrors.CodeCouponInvalid {
				return nil, err
			}
			// The order proceeds at full price; the storefront surfaces
			// the reason without blocking checkout.
			applied = nil
			couponDeclined = coded.Message()
			s.logg.Warn(s.logg.WithCouponCode(ctx, code), "coupon declined at checkout")
		} else {
			couponPct = applied.DiscountPercentage
		}
	}

	quote, err := pricing.Compute(pricing.Input{
		BasePrice:          product.Price,
		Quantity:           input.Quantity,
		ProductDiscountPct: product.DiscountPercentage,
		CouponDiscountPct:  couponPct,
		ShippingRate:       s.shippingRate,
	})
	if err != nil {
		return nil, err
	}
	quote = quote.Rounded()

	order := s.buildOrder(userID, product, input, quote, applied, color, size)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.ordersRepo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		decremented, err := s.productsRepo.WithTx(tx).DecrementStock(ctx, product.ID, input.Quantity)
		if err != nil {
			return err
		}
		if !decremented {
			return pkgerrors.New(pkgerrors.CodeOutOfStock, "insufficient stock")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	s.logg.Info(ctx, "order created")
	s.runPostCommit(ctx, userID, applied)

	return &Result{
		Order:          order,
		Quote:          quote,
		Coupon:         applied,
		CouponDeclined: couponDeclined,
		WhatsAppURL:    s.whatsapp.HandoffURL(orderSummary(order, product, input)),
	}, nil
}

// runPostCommit performs the side effects that must not undo a durably
// persisted order: coupon usage accounting and referral conversion. Failures
// are aggregated and logged.
func (s *service) runPostCommit(ctx context.Context, userID uuid.UUID, applied *coupons.Applied) {
	var sideEffects error

	if applied != nil {
		committed, err := s.coupons.CommitUsage(ctx, applied.CouponID)
		if err != nil {
			sideEffects = multierr.Append(sideEffects, err)
		} else if committed {
			s.metrics.IncCouponRedemptions()
		} else {
			ctx := s.logg.WithCouponCode(ctx, applied.Code)
			s.logg.Warn(ctx, "coupon exhausted between validation and commit")
		}
	}

	reward, err := s.referrals.ConvertOnFirstOrder(ctx, userID)
	if err != nil {
		s.metrics.IncRewardFailures()
		sideEffects = multierr.Append(sideEffects, err)
	} else if reward != nil {
		s.metrics.IncReferralConversions()
	}

	if sideEffects != nil {
		s.logg.Error(ctx, "post-checkout side effects failed", sideEffects)
	}
}

func (s *service) buildOrder(
	userID uuid.UUID,
	product *models.Product,
	input Input,
	quote pricing.Quote,
	applied *coupons.Applied,
	color, size *string,
) *models.Order {
	order := &models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		TotalAmount:     quote.ItemPrice,
		ShippingCost:    quote.Shipping,
		FinalAmount:     quote.Total,
		DeliveryAddress: strings.TrimSpace(input.DeliveryAddress),
		Phone:           strings.TrimSpace(input.Phone),
		Status:          enums.OrderStatusPending,
	}
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		order.Notes = &notes
	}
	if applied != nil {
		code := applied.Code
		order.CouponCode = &code
	}
	productID := product.ID
	order.Items = []models.OrderItem{{
		ID:                 uuid.New(),
		OrderID:            order.ID,
		ProductID:          &productID,
		ProductName:        product.Name,
		Quantity:           input.Quantity,
		UnitPrice:          product.Price,
		DiscountPercentage: product.DiscountPercentage,
		TotalPrice:         quote.ItemPrice,
		SelectedColor:      color,
		SelectedSize:       size,
	}}
	return order
}

func orderSummary(order *models.Order, product *models.Product, input Input) whatsapp.OrderSummary {
	summary := whatsapp.OrderSummary{
		OrderID:       order.ID.String(),
		ProductName:   product.Name,
		Quantity:      input.Quantity,
		ItemPrice:     order.TotalAmount,
		ShippingCost:  order.ShippingCost,
		FinalAmount:   order.FinalAmount,
		CustomerEmail: strings.TrimSpace(input.CustomerEmail),
		Phone:         order.Phone,
		Address:       order.DeliveryAddress,
	}
	if order.Notes != nil {
		summary.Notes = *order.Notes
	}
	item := order.Items[0]
	if item.SelectedColor != nil {
		summary.SelectedColor = *item.SelectedColor
	}
	if item.SelectedSize != nil {
		summary.SelectedSize = *item.SelectedSize
	}
	return summary
}

// resolveOptions checks the color/size selections against the product's
// configured options. A selection is required whenever the product defines
// options, and must be one of them.
func resolveOptions(product *models.Product, input Input) (*string, *string, error) {
	color := strings.TrimSpace(input.SelectedColor)
	size := strings.TrimSpace(input.SelectedSize)

	var colorOut, sizeOut *string
	if product.HasColorOptions() {
		if color == "" {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "color selection required")
		}
		if !containsFold(product.Colors, color) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown color option").
				WithDetails(map[string]any{"options": []string(product.Colors)})
		}
		colorOut = &color
	}
	if product.HasSizeOptions() {
		if size == "" {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "size selection required")
		}
		if !containsFold(product.Sizes, size) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown size option").
				WithDetails(map[string]any{"options": []string(product.Sizes)})
		}
		sizeOut = &size
	}
	return colorOut, sizeOut, nil
}

func containsFold(options []string, value string) bool {
	for _, option := range options {
		if strings.EqualFold(option, value) {
			return true
		}
	}
	return false
}

func validateContact(input Input) error {
	if strings.TrimSpace(input.DeliveryAddress) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery address required")
	}
	phone := strings.TrimSpace(input.Phone)
	if phone == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "phone required")
	}
	digits := 0
	for _, r := range phone {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' || r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return pkgerrors.New(pkgerrors.CodeValidation, "phone contains invalid characters")
		}
	}
	if digits < minPhoneDigits {
		return pkgerrors.New(pkgerrors.CodeValidation, "phone number too short")
	}
	return nil
}
