package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hmartinez-dev/tiendita-backend/api/responses"
	"github.com/hmartinez-dev/tiendita-backend/api/validators"
	salesvc "github.com/hmartinez-dev/tiendita-backend/internal/sales"
	pkgerrors "github.com/hmartinez-dev/tiendita-backend/pkg/errors"
	"github.com/hmartinez-dev/tiendita-backend/pkg/logger"
)

// ListSales returns the sale history, newest first.
func ListSales(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.List(r.Context()))
	}
}

// GetSale returns one sale by id.
func GetSale(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}
		saleID, err := pathUUID(r, "saleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sale, err := svc.Get(r.Context(), saleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

// RecordSale records a whole transaction and deducts stock atomically.
func RecordSale(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		var payload recordSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toRecordInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Record(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

// EditSale updates line quantities or the sale timestamp; stock levels
// absorb the difference.
func EditSale(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		saleID, err := pathUUID(r, "saleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload editSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toEditInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Edit(r.Context(), saleID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sale)
	}
}

// DeleteSale removes a sale and returns its quantities to stock.
func DeleteSale(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}
		saleID, err := pathUUID(r, "saleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), saleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type recordSaleRequest struct {
	SoldAt *time.Time              `json:"soldAt,omitempty"`
	Items  []recordSaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

type recordSaleItemRequest struct {
	ProductID string          `json:"productId" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

func (r recordSaleRequest) toRecordInput() (salesvc.RecordInput, error) {
	input := salesvc.RecordInput{}
	if r.SoldAt != nil {
		input.SoldAt = *r.SoldAt
	}
	for _, item := range r.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return salesvc.RecordInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id").WithDetails(map[string]any{"productId": item.ProductID})
		}
		input.Items = append(input.Items, salesvc.RecordItemInput{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}
	return input, nil
}

type editSaleRequest struct {
	SoldAt *time.Time            `json:"soldAt,omitempty"`
	Items  []editSaleItemRequest `json:"items,omitempty" validate:"omitempty,dive"`
}

type editSaleItemRequest struct {
	ItemID   string          `json:"itemId" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

func (r editSaleRequest) toEditInput() (salesvc.EditInput, error) {
	input := salesvc.EditInput{SoldAt: r.SoldAt}
	for _, item := range r.Items {
		itemID, err := uuid.Parse(item.ItemID)
		if err != nil {
			return salesvc.EditInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sale item id").WithDetails(map[string]any{"itemId": item.ItemID})
		}
		input.Items = append(input.Items, salesvc.EditItemInput{
			ItemID:   itemID,
			Quantity: item.Quantity,
		})
	}
	return input, nil
}
