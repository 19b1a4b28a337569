package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillpoint/pos-backend/api/middleware"
	"github.com/tillpoint/pos-backend/api/responses"
	"github.com/tillpoint/pos-backend/api/validators"
	"github.com/tillpoint/pos-backend/internal/catalog"
	"github.com/tillpoint/pos-backend/internal/registers"
	"github.com/tillpoint/pos-backend/internal/sales"
	"github.com/tillpoint/pos-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/pos-backend/pkg/errors"
	"github.com/tillpoint/pos-backend/pkg/logger"
)

type cartLineResponse struct {
	ProductID   uuid.UUID          `json:"productId"`
	Name        string             `json:"name"`
	Quantity    int                `json:"quantity"`
	VariantSize *enums.VariantSize `json:"variantSize,omitempty"`
	ManualPrice *decimal.Decimal   `json:"manualPrice,omitempty"`
	UnitPrice   decimal.Decimal    `json:"unitPrice"`
	LineTotal   decimal.Decimal    `json:"lineTotal"`
}

type cartResponse struct {
	ID          uuid.UUID          `json:"id"`
	DisplayName string             `json:"displayName"`
	Active      bool               `json:"active"`
	CreatedAt   time.Time          `json:"createdAt"`
	Items       []cartLineResponse `json:"items"`
	Total       decimal.Decimal    `json:"total"`
}

func newCartResponse(view registers.CartView) cartResponse {
	resp := cartResponse{
		ID:          view.ID,
		DisplayName: view.DisplayName,
		Active:      view.Active,
		CreatedAt:   view.CreatedAt,
		Items:       make([]cartLineResponse, 0, len(view.Items)),
		Total:       view.Total,
	}
	for _, line := range view.Items {
		resp.Items = append(resp.Items, cartLineResponse{
			ProductID:   line.Product.ID,
			Name:        line.Product.Name,
			Quantity:    line.Quantity,
			VariantSize: line.VariantSize,
			ManualPrice: line.ManualPrice,
			UnitPrice:   line.UnitPrice,
			LineTotal:   line.LineTotal,
		})
	}
	return resp
}

func CartList(manager *registers.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		views := manager.Carts()
		carts := make([]cartResponse, 0, len(views))
		for _, view := range views {
			carts = append(carts, newCartResponse(view))
		}
		responses.WriteSuccess(w, carts)
	}
}

func CartCreate(manager *registers.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(manager.CreateCart()))
	}
}

func CartActivate(manager *registers.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := cartIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := manager.ActivateCart(cartID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"activeCartId": cartID.String()})
	}
}

type cartRenameRequest struct {
	DisplayName string `json:"displayName" validate:"required"`
}

func CartRename(manager *registers.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := cartIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartRenameRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := manager.RenameCart(cartID, payload.DisplayName); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := manager.Snapshot(cartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

func CartDelete(manager *registers.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := cartIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := manager.DeleteCart(cartID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"deleted": cartID.String()})
	}
}

type cartAddItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
}

func CartAddItem(manager *registers.Manager, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, err := cartIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartAddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, sized, err := catalogSvc.GetProductWithSizing(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot := registers.ProductSnapshot{
			ID:        product.ID,
			Name:      product.Name,
			BasePrice: product.BasePrice,
			Sized:     sized,
		}
		if err := manager.AddItem(cartID, snapshot); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := manager.Snapshot(cartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

func CartRemoveItem(manager *registers.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, productID, err := cartItemIDsFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := manager.RemoveItem(cartID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := manager.Snapshot(cartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

type cartVariantRequest struct {
	Size string `json:"size" validate:"required"`
}

func CartSetVariant(manager *registers.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, productID, err := cartItemIDsFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartVariantRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := manager.SetVariant(cartID, productID, enums.VariantSize(payload.Size)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := manager.Snapshot(cartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

type cartPriceRequest struct {
	Price decimal.Decimal `json:"price" validate:"required"`
}

func CartSetManualPrice(manager *registers.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, productID, err := cartItemIDsFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartPriceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := manager.SetManualPrice(cartID, productID, payload.Price); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := manager.Snapshot(cartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(view))
	}
}

type checkoutRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=cash card"`
}

func CartCheckout(manager *registers.Manager, salesSvc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if salesSvc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		cartID, err := cartIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cashier := middleware.DisplayNameFromContext(r.Context())
		if cashier == "" {
			cashier = middleware.UsernameFromContext(r.Context())
		}

		sale, err := salesSvc.FinalizeSale(r.Context(), cartID, enums.PaymentMethod(payload.PaymentMethod), cashier)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

func cartIDFromRequest(r *http.Request) (uuid.UUID, error) {
	cartID, err := uuid.Parse(chi.URLParam(r, "cartId"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart id")
	}
	return cartID, nil
}

func cartItemIDsFromRequest(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	cartID, err := cartIDFromRequest(r)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return cartID, productID, nil
}
