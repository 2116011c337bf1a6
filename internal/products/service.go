package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/veyronstory/storefront-backend/pkg/db/models"
	pkgerrors "github.com/veyronstory/storefront-backend/pkg/errors"
)

// UpsertInput carries the admin-editable product fields.
type UpsertInput struct {
	Name               string
	Description        *string
	Price              decimal.Decimal
	DiscountPercentage int
	StockQuantity      int
	Category           string
	Colors             []string
	Sizes              []string
	ImageURL           *string
}

// Service exposes catalog reads for the storefront and writes for admins.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	// GetPurchasable returns the product only when it is active.
	GetPurchasable(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filter ListFilter) ([]models.Product, error)
	Create(ctx context.Context, input UpsertInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpsertInput) (*models.Product, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds the products service.
func NewService(repo Repository) Service {
	if repo == nil {
		panic("products: repository is required")
	}
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) GetPurchasable(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not available")
	}
	return product, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Create(ctx context.Context, input UpsertInput) (*models.Product, error) {
	if err := validateUpsert(input); err != nil {
		return nil, err
	}
	product := &models.Product{
		Name:               strings.TrimSpace(input.Name),
		Description:        input.Description,
		Price:              input.Price,
		DiscountPercentage: input.DiscountPercentage,
		StockQuantity:      input.StockQuantity,
		Category:           strings.TrimSpace(input.Category),
		Colors:             input.Colors,
		Sizes:              input.Sizes,
		ImageURL:           input.ImageURL,
		IsActive:           true,
	}
	return s.repo.Create(ctx, product)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpsertInput) (*models.Product, error) {
	if err := validateUpsert(input); err != nil {
		return nil, err
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Name = strings.TrimSpace(input.Name)
	product.Description = input.Description
	product.Price = input.Price
	product.DiscountPercentage = input.DiscountPercentage
	product.StockQuantity = input.StockQuantity
	product.Category = strings.TrimSpace(input.Category)
	product.Colors = input.Colors
	product.Sizes = input.Sizes
	product.ImageURL = input.ImageURL
	return s.repo.Update(ctx, product)
}

func (s *service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func validateUpsert(input UpsertInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product category required")
	}
	if input.Price.IsNegative() || input.Price.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.DiscountPercentage < 0 || input.DiscountPercentage > 100 {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount percentage must be between 0 and 100")
	}
	if input.StockQuantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock quantity must not be negative")
	}
	return nil
}
