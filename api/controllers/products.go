package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hmartinez-dev/tiendita-backend/api/responses"
	"github.com/hmartinez-dev/tiendita-backend/api/validators"
	productsvc "github.com/hmartinez-dev/tiendita-backend/internal/products"
	"github.com/hmartinez-dev/tiendita-backend/pkg/enums"
	pkgerrors "github.com/hmartinez-dev/tiendita-backend/pkg/errors"
	"github.com/hmartinez-dev/tiendita-backend/pkg/logger"
)

// ListProducts returns the whole catalog.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.List(r.Context()))
	}
}

// GetProduct returns one product by id.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// CreateProduct handles catalog additions.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// UpdateProduct applies a partial edit to one product.
func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// DeleteProduct removes a product. Past sales keep their snapshots.
func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}
		productID, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type createProductRequest struct {
	Name           string          `json:"name" validate:"required"`
	Type           string          `json:"type" validate:"required"`
	WholesalePrice decimal.Decimal `json:"wholesalePrice"`
	RetailPrice    decimal.Decimal `json:"retailPrice"`
	Quantity       decimal.Decimal `json:"quantity"`
}

func (r createProductRequest) toCreateInput() (productsvc.CreateInput, error) {
	productType, err := enums.ParseProductType(strings.TrimSpace(r.Type))
	if err != nil {
		return productsvc.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product type")
	}
	return productsvc.CreateInput{
		Name:           strings.TrimSpace(r.Name),
		Type:           productType,
		WholesalePrice: r.WholesalePrice,
		RetailPrice:    r.RetailPrice,
		Quantity:       r.Quantity,
	}, nil
}

type updateProductRequest struct {
	Name           *string          `json:"name,omitempty"`
	Type           *string          `json:"type,omitempty"`
	WholesalePrice *decimal.Decimal `json:"wholesalePrice,omitempty"`
	RetailPrice    *decimal.Decimal `json:"retailPrice,omitempty"`
	Quantity       *decimal.Decimal `json:"quantity,omitempty"`
}

func (r updateProductRequest) toUpdateInput() (productsvc.UpdateInput, error) {
	input := productsvc.UpdateInput{
		WholesalePrice: r.WholesalePrice,
		RetailPrice:    r.RetailPrice,
		Quantity:       r.Quantity,
	}
	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		input.Name = &trimmed
	}
	if r.Type != nil {
		productType, err := enums.ParseProductType(strings.TrimSpace(*r.Type))
		if err != nil {
			return productsvc.UpdateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product type")
		}
		input.Type = &productType
	}
	return input, nil
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id in path").WithDetails(map[string]any{"param": param})
	}
	return id, nil
}
