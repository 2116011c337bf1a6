package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/veyronstory/storefront-backend/pkg/db/models"
	pkgerrors "github.com/veyronstory/storefront-backend/pkg/errors"
)

type stubProductsRepo struct {
	byID map[uuid.UUID]*models.Product
}

func newStubProductsRepo(products ...*models.Product) *stubProductsRepo {
	repo := &stubProductsRepo{byID: map[uuid.UUID]*models.Product{}}
	for _, product := range products {
		if product.ID == uuid.Nil {
			product.ID = uuid.New()
		}
		repo.byID[product.ID] = product
	}
	return repo
}

func (s *stubProductsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubProductsRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	s.byID[product.ID] = product
	return product, nil
}

func (s *stubProductsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.byID[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *stubProductsRepo) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	var out []models.Product
	for _, product := range s.byID {
		if filter.ActiveOnly && !product.IsActive {
			continue
		}
		if filter.Category != "" && product.Category != filter.Category {
			continue
		}
		out = append(out, *product)
	}
	return out, nil
}

func (s *stubProductsRepo) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	s.byID[product.ID] = product
	return product, nil
}

func (s *stubProductsRepo) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	product, ok := s.byID[id]
	if !ok || product.StockQuantity < quantity {
		return false, nil
	}
	product.StockQuantity -= quantity
	return true, nil
}

func (s *stubProductsRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	product, ok := s.byID[id]
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	product.IsActive = active
	return nil
}

func (s *stubProductsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.byID[id]; !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	delete(s.byID, id)
	return nil
}

func validInput() UpsertInput {
	return UpsertInput{
		Name:          "Hoodie",
		Price:         decimal.NewFromInt(500),
		StockQuantity: 10,
		Category:      "apparel",
		Colors:        []string{"black", "navy"},
	}
}

func TestCreateProductDefaultsActive(t *testing.T) {
	svc := NewService(newStubProductsRepo())

	product, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.True(t, product.IsActive)
	assert.Equal(t, "Hoodie", product.Name)
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(newStubProductsRepo())

	cases := []struct {
		name   string
		mutate func(*UpsertInput)
	}{
		{"empty name", func(in *UpsertInput) { in.Name = "  " }},
		{"empty category", func(in *UpsertInput) { in.Category = "" }},
		{"zero price", func(in *UpsertInput) { in.Price = decimal.Zero }},
		{"negative price", func(in *UpsertInput) { in.Price = decimal.NewFromInt(-5) }},
		{"discount over 100", func(in *UpsertInput) { in.DiscountPercentage = 101 }},
		{"negative discount", func(in *UpsertInput) { in.DiscountPercentage = -1 }},
		{"negative stock", func(in *UpsertInput) { in.StockQuantity = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := svc.Create(context.Background(), input)
			require.Error(t, err)
			appErr := pkgerrors.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
		})
	}
}

func TestGetPurchasableHidesInactive(t *testing.T) {
	inactive := &models.Product{Name: "Retired", Price: decimal.NewFromInt(100), Category: "apparel", IsActive: false}
	repo := newStubProductsRepo(inactive)
	svc := NewService(repo)

	_, err := svc.GetPurchasable(context.Background(), inactive.ID)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())

	found, err := svc.Get(context.Background(), inactive.ID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)
}

func TestUpdateProductReplacesFields(t *testing.T) {
	existing := &models.Product{Name: "Hoodie", Price: decimal.NewFromInt(500), Category: "apparel", IsActive: true}
	repo := newStubProductsRepo(existing)
	svc := NewService(repo)

	input := validInput()
	input.Name = "Hoodie v2"
	input.DiscountPercentage = 20

	updated, err := svc.Update(context.Background(), existing.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "Hoodie v2", updated.Name)
	assert.Equal(t, 20, updated.DiscountPercentage)
	assert.True(t, updated.IsActive)
}
