package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/veyronstory/storefront-backend/api/responses"
	"github.com/veyronstory/storefront-backend/api/validators"
	"github.com/veyronstory/storefront-backend/internal/products"
	"github.com/veyronstory/storefront-backend/pkg/db/models"
	pkgerrors "github.com/veyronstory/storefront-backend/pkg/errors"
	"github.com/veyronstory/storefront-backend/pkg/logger"
)

type productResponse struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Description        *string   `json:"description,omitempty"`
	Price              string    `json:"price"`
	DiscountPercentage int       `json:"discount_percentage"`
	StockQuantity      int       `json:"stock_quantity"`
	Category           string    `json:"category"`
	Colors             []string  `json:"colors,omitempty"`
	Sizes              []string  `json:"sizes,omitempty"`
	ImageURL           *string   `json:"image_url,omitempty"`
	IsActive           bool      `json:"is_active"`
}

func toProductResponse(product *models.Product) productResponse {
	return productResponse{
		ID:                 product.ID,
		Name:               product.Name,
		Description:        product.Description,
		Price:              product.Price.StringFixed(2),
		DiscountPercentage: product.DiscountPercentage,
		StockQuantity:      product.StockQuantity,
		Category:           product.Category,
		Colors:             product.Colors,
		Sizes:              product.Sizes,
		ImageURL:           product.ImageURL,
		IsActive:           product.IsActive,
	}
}

func toProductResponses(items []models.Product) []productResponse {
	out := make([]productResponse, 0, len(items))
	for i := range items {
		out = append(out, toProductResponse(&items[i]))
	}
	return out
}

type productUpsertRequest struct {
	Name               string   `json:"name" validate:"required"`
	Description        *string  `json:"description"`
	Price              string   `json:"price" validate:"required"`
	DiscountPercentage int      `json:"discount_percentage" validate:"min=0,max=100"`
	StockQuantity      int      `json:"stock_quantity" validate:"min=0"`
	Category           string   `json:"category" validate:"required"`
	Colors             []string `json:"colors"`
	Sizes              []string `json:"sizes"`
	ImageURL           *string  `json:"image_url"`
}

func (req productUpsertRequest) toInput() (products.UpsertInput, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil {
		return products.UpsertInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price must be a decimal string")
	}
	return products.UpsertInput{
		Name:               req.Name,
		Description:        req.Description,
		Price:              price,
		DiscountPercentage: req.DiscountPercentage,
		StockQuantity:      req.StockQuantity,
		Category:           req.Category,
		Colors:             req.Colors,
		Sizes:              req.Sizes,
		ImageURL:           req.ImageURL,
	}, nil
}

// ListProducts serves the public catalog. Inactive products are only visible
// with include_inactive, which the router restricts to admins.
func ListProducts(svc products.Service, logg *logger.Logger, includeInactive bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := products.ListFilter{
			ActiveOnly: !includeInactive,
			Category:   strings.TrimSpace(r.URL.Query().Get("category")),
		}
		listed, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProductResponses(listed))
	}
}

func GetProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.GetPurchasable(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProductResponse(product))
	}
}

func AdminCreateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productUpsertRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, toProductResponse(created))
	}
}

func AdminUpdateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req productUpsertRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toProductResponse(updated))
	}
}

type productActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

func AdminSetProductActive(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req productActiveRequest
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

func AdminDeleteProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id, "deleted": true})
	}
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id").WithDetails(map[string]any{"param": name})
	}
	return id, nil
}
