package checkout

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/veyronstory/storefront-backend/internal/coupons"
	"github.com/veyronstory/storefront-backend/internal/orders"
	"github.com/veyronstory/storefront-backend/internal/products"
	"github.com/veyronstory/storefront-backend/pkg/config"
	"github.com/veyronstory/storefront-backend/pkg/db/models"
	"github.com/veyronstory/storefront-backend/pkg/enums"
	pkgerrors "github.com/veyronstory/storefront-backend/pkg/errors"
	"github.com/veyronstory/storefront-backend/pkg/logger"
	"github.com/veyronstory/storefront-backend/pkg/whatsapp"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubProductsRepo struct {
	product      *models.Product
	decrementOK  bool
	decrementErr error
}

func (s *stubProductsRepo) WithTx(tx *gorm.DB) products.Repository { return s }

func (s *stubProductsRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	return product, nil
}

func (s *stubProductsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.product == nil || s.product.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return s.product, nil
}

func (s *stubProductsRepo) List(ctx context.Context, filter products.ListFilter) ([]models.Product, error) {
	return nil, nil
}

func (s *stubProductsRepo) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	return product, nil
}

func (s *stubProductsRepo) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	if s.decrementErr != nil {
		return false, s.decrementErr
	}
	if !s.decrementOK {
		return false, nil
	}
	s.product.StockQuantity -= quantity
	return true, nil
}

func (s *stubProductsRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error { return nil }
func (s *stubProductsRepo) Delete(ctx context.Context, id uuid.UUID) error                 { return nil }

type stubOrdersRepo struct {
	created []*models.Order
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	s.created = append(s.created, order)
	return order, nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (s *stubOrdersRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrdersRepo) ListAll(ctx context.Context) ([]models.Order, error) { return nil, nil }

func (s *stubOrdersRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return int64(len(s.created)), nil
}

func (s *stubOrdersRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	return false, nil
}

type stubCouponValidator struct {
	applied      *coupons.Applied
	validateErr  error
	commitOK     bool
	commitErr    error
	commitCalls  int
	validateCode string
}

func (s *stubCouponValidator) Validate(ctx context.Context, code string, now time.Time) (*coupons.Applied, error) {
	s.validateCode = code
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	return s.applied, nil
}

func (s *stubCouponValidator) CommitUsage(ctx context.Context, couponID uuid.UUID) (bool, error) {
	s.commitCalls++
	if s.commitErr != nil {
		return false, s.commitErr
	}
	return s.commitOK, nil
}

type stubReferralConverter struct {
	reward *models.Coupon
	err    error
	calls  int
}

func (s *stubReferralConverter) ConvertOnFirstOrder(ctx context.Context, referredID uuid.UUID) (*models.Coupon, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.reward, nil
}

type checkoutFixture struct {
	svc       *service
	products  *stubProductsRepo
	orders    *stubOrdersRepo
	coupons   *stubCouponValidator
	referrals *stubReferralConverter
}

func newFixture(product *models.Product) *checkoutFixture {
	productsRepo := &stubProductsRepo{product: product, decrementOK: true}
	ordersRepo := &stubOrdersRepo{}
	couponSvc := &stubCouponValidator{commitOK: true}
	referralSvc := &stubReferralConverter{}
	logg := logger.New(logger.Options{ServiceName: "checkout-test", Output: io.Discard})
	builder := whatsapp.NewBuilder(config.WhatsAppConfig{BusinessPhone: "201147124165", StoreName: "Veyron"})

	svc := NewService(
		stubTxRunner{},
		productsRepo,
		ordersRepo,
		couponSvc,
		referralSvc,
		builder,
		nil,
		logg,
		decimal.RequireFromString("0.01"),
	).(*service)
	svc.now = func() time.Time { return time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC) }

	return &checkoutFixture{
		svc:       svc,
		products:  productsRepo,
		orders:    ordersRepo,
		coupons:   couponSvc,
		referrals: referralSvc,
	}
}

func testProduct() *models.Product {
	return &models.Product{
		ID:                 uuid.New(),
		Name:               "Hoodie",
		Price:              decimal.NewFromInt(1000),
		DiscountPercentage: 20,
		StockQuantity:      10,
		Category:           "apparel",
		IsActive:           true,
	}
}

func validSubmitInput(productID uuid.UUID) Input {
	return Input{
		ProductID:       productID,
		Quantity:        1,
		DeliveryAddress: "12 Nile St, Cairo",
		Phone:           "+20 100 000 0000",
	}
}

func TestSubmitWithCouponComputesAmounts(t *testing.T) {
	product := testProduct()
	fixture := newFixture(product)
	fixture.coupons.applied = &coupons.Applied{
		CouponID:           uuid.New(),
		Code:               "SAVE15",
		DiscountPercentage: 15,
	}

	input := validSubmitInput(product.ID)
	input.CouponCode = "save15"

	result, err := fixture.svc.Submit(context.Background(), uuid.New(), input)
	require.NoError(t, err)

	assert.True(t, result.Order.TotalAmount.Equal(decimal.RequireFromString("680")), "total %s", result.Order.TotalAmount)
	assert.True(t, result.Order.ShippingCost.Equal(decimal.RequireFromString("6.80")), "shipping %s", result.Order.ShippingCost)
	assert.True(t, result.Order.FinalAmount.Equal(decimal.RequireFromString("686.80")), "final %s", result.Order.FinalAmount)
	require.NotNil(t, result.Order.CouponCode)
	assert.Equal(t, "SAVE15", *result.Order.CouponCode)
	assert.Equal(t, enums.OrderStatusPending, result.Order.Status)
	assert.Equal(t, 1, fixture.coupons.commitCalls)
	assert.Equal(t, 9, product.StockQuantity)
}

func TestSubmitWithoutCouponSkipsValidation(t *testing.T) {
	product := testProduct()
	fixture := newFixture(product)

	result, err := fixture.svc.Submit(context.Background(), uuid.New(), validSubmitInput(product.ID))
	require.NoError(t, err)

	assert.Nil(t, result.Coupon)
	assert.Nil(t, result.Order.CouponCode)
	assert.Equal(t, 0, fixture.coupons.commitCalls)
	assert.True(t, result.Order.TotalAmount.Equal(decimal.RequireFromString("800")))
}

func TestSubmitSnapshotsOrderItem(t *testing.T) {
	product := testProduct()
	fixture := newFixture(product)

	result, err := fixture.svc.Submit(context.Background(), uuid.New(), validSubmitInput(product.ID))
	require.NoError(t, err)

	require.Len(t, result.Order.Items, 1)
	item := result.Order.Items[0]
	assert.Equal(t, "Hoodie", item.ProductName)
	assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, 20, item.DiscountPercentage)
	assert.True(t, item.TotalPrice.Equal(result.Order.TotalAmount))
}

func TestSubmitBuildsHandoffURL(t *testing.T) {
	product := testProduct()
	fixture := newFixture(product)

	result, err := fixture.svc.Submit(context.Background(), uuid.New(), validSubmitInput(product.ID))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.WhatsAppURL, "https://wa.me/201147124165?text="))
	assert.Contains(t, result.WhatsAppURL, "Hoodie")
}

func TestSubmitInvalidCouponProceedsAtFullPrice(t *testing.T) {
	product := testProduct()
	fixture := newFixture(product)
	fixture.coupons.validateErr = pkgerrors.New(pkgerrors.CodeCouponInvalid, "coupon is not applicable")

	input := validSubmitInput(product.ID)
	input.CouponCode = "EXPIRED"

	result, err := fixture.svc.Submit(context.Background(), uuid.New(), input)
	require.NoError(t, err)

	assert.Nil(t, result.Coupon)
	assert.Equal(t, "coupon is not applicable", result.CouponDeclined)
	assert.Nil(t, result.Order.CouponCode)
	assert.True(t, result.Order.TotalAmount.Equal(decimal.RequireFromString("800")))
	assert.True(t, result.Order.ShippingCost.Equal(decimal.RequireFromString("8")))
	assert.True(t, result.Order.FinalAmount.Equal(decimal.RequireFromString("808")))
	assert.Zero(t, fixture.coupons.commitCalls)
}

func TestSubmitCouponInfrastructureErrorFails(t *testing.T) {
	product := testProduct()
	fixture := newFixture(product)
	fixture.coupons.validateErr = pkgerrors.New(pkgerrors.CodeInternal, "coupon lookup failed")

	input := validSubmitInput(product.ID)
	input.CouponCode = "SAVE15"

	_, err := fixture.svc.Submit(context.Background(), uuid.New(), input)
	require.Error(t, err)
	assert.Empty(t, fixture.orders.created)
	assert.Equal(t, 10, product.StockQuantity)
}

func TestSubmitInsufficientStock(t *testing.T) {
	product := testProduct()
	product.StockQuantity = 2
	fixture := newFixture(product)

	input := validSubmitInput(product.ID)
	input.Quantity = 3

	_, err := fixture.svc.Submit(context.Background(), uuid.New(), input)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeOutOfStock, appErr.Code())
	assert.Empty(t, fixture.orders.created)
}

func TestSubmitStockRaceSurfacesOutOfStock(t *testing.T) {
	product := testProduct()
	fixture := newFixture(product)
	fixture.products.decrementOK = false

	_, err := fixture.svc.Submit(context.Background(), uuid.New(), validSubmitInput(product.ID))
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeOutOfStock, appErr.Code())
}

func TestSubmitInactiveProduct(t *testing.T) {
	product := testProduct()
	product.IsActive = false
	fixture := newFixture(product)

	_, err := fixture.svc.Submit(context.Background(), uuid.New(), validSubmitInput(product.ID))
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestSubmitRequiresConfiguredOptions(t *testing.T) {
	product := testProduct()
	product.Colors = []string{"black", "navy"}
	product.Sizes = []string{"M", "L"}
	fixture := newFixture(product)

	input := validSubmitInput(product.ID)
	_, err := fixture.svc.Submit(context.Background(), uuid.New(), input)
	require.Error(t, err)

	input.SelectedColor = "black"
	_, err = fixture.svc.Submit(context.Background(), uuid.New(), input)
	require.Error(t, err)

	input.SelectedSize = "XL"
	_, err = fixture.svc.Submit(context.Background(), uuid.New(), input)
	require.Error(t, err)

	input.SelectedSize = "m"
	result, err := fixture.svc.Submit(context.Background(), uuid.New(), input)
	require.NoError(t, err)
	item := result.Order.Items[0]
	require.NotNil(t, item.SelectedColor)
	assert.Equal(t, "black", *item.SelectedColor)
	require.NotNil(t, item.SelectedSize)
	assert.Equal(t, "m", *item.SelectedSize)
}

func TestSubmitContactValidation(t *testing.T) {
	product := testProduct()
	fixture := newFixture(product)

	cases := []struct {
		name   string
		mutate func(*Input)
	}{
		{"missing address", func(in *Input) { in.DeliveryAddress = "  " }},
		{"missing phone", func(in *Input) { in.Phone = "" }},
		{"short phone", func(in *Input) { in.Phone = "+2010" }},
		{"bad phone characters", func(in *Input) { in.Phone = "call-me-maybe" }},
		{"zero quantity", func(in *Input) { in.Quantity = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validSubmitInput(product.ID)
			tc.mutate(&input)
			_, err := fixture.svc.Submit(context.Background(), uuid.New(), input)
			require.Error(t, err)
			appErr := pkgerrors.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
		})
	}
}

func TestSubmitConvertsReferral(t *testing.T) {
	product := testProduct()
	fixture := newFixture(product)
	fixture.referrals.reward = &models.Coupon{Code: "REFABC123"}

	_, err := fixture.svc.Submit(context.Background(), uuid.New(), validSubmitInput(product.ID))
	require.NoError(t, err)
	assert.Equal(t, 1, fixture.referrals.calls)
}

func TestSubmitSucceedsWhenReferralConversionFails(t *testing.T) {
	product := testProduct()
	fixture := newFixture(product)
	fixture.referrals.err = errors.New("referral store unavailable")

	result, err := fixture.svc.Submit(context.Background(), uuid.New(), validSubmitInput(product.ID))
	require.NoError(t, err)
	require.NotNil(t, result.Order)
}

func TestSubmitSucceedsWhenCouponCommitFails(t *testing.T) {
	product := testProduct()
	fixture := newFixture(product)
	fixture.coupons.applied = &coupons.Applied{CouponID: uuid.New(), Code: "SAVE15", DiscountPercentage: 15}
	fixture.coupons.commitErr = errors.New("coupon store unavailable")

	input := validSubmitInput(product.ID)
	input.CouponCode = "SAVE15"

	result, err := fixture.svc.Submit(context.Background(), uuid.New(), input)
	require.NoError(t, err)
	require.NotNil(t, result.Order)
}
