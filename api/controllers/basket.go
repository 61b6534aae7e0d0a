package controllers

import (
	"net/http"

	"github.com/angelmondragon/basket-engine/api/middleware"
	"github.com/angelmondragon/basket-engine/api/responses"
	"github.com/angelmondragon/basket-engine/api/validators"
	"github.com/angelmondragon/basket-engine/internal/basket"
	"github.com/angelmondragon/basket-engine/internal/session"
	pkgerrors "github.com/angelmondragon/basket-engine/pkg/errors"
	"github.com/angelmondragon/basket-engine/pkg/logger"
	"github.com/angelmondragon/basket-engine/pkg/types"
)

type addItemRequest struct {
	ProductCode string `json:"product_code" validate:"required,product_code"`
}

// BasketView returns the caller's basket.
func BasketView(svc session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, ok := openBasket(w, r, svc, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, basketView(store.Snapshot()))
	}
}

// BasketAddItem adds one unit of a product to the caller's basket.
func BasketAddItem(svc session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body addItemRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, ok := openBasket(w, r, svc, logg)
		if !ok {
			return
		}

		message, err := store.Add(r.Context(), body.ProductCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, types.BasketMutationView{Message: message, Basket: basketView(store.Snapshot())})
	}
}

// BasketClear empties the caller's basket.
func BasketClear(svc session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, ok := openBasket(w, r, svc, logg)
		if !ok {
			return
		}

		message, err := store.Clear(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, types.BasketMutationView{Message: message, Basket: basketView(store.Snapshot())})
	}
}

func openBasket(w http.ResponseWriter, r *http.Request, svc session.Service, logg *logger.Logger) (*basket.Store, bool) {
	if svc == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
		return nil, false
	}

	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing"))
		return nil, false
	}

	store, err := svc.Basket(r.Context(), sessionID)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return nil, false
	}
	return store, true
}

func basketView(snap basket.Snapshot) types.BasketView {
	items := make([]types.LineItemView, 0, len(snap.Items))
	for _, item := range snap.Items {
		items = append(items, types.LineItemView{
			ProductCode: item.ProductCode,
			Description: item.Description,
			Price:       item.Price.StringFixed(2),
			Unit:        item.Unit,
			Qty:         item.Qty,
			Subtotal:    item.Subtotal().StringFixed(2),
		})
	}
	return types.BasketView{
		Items:     items,
		Total:     snap.Total.StringFixed(2),
		LineCount: snap.LineCount,
		UnitCount: snap.UnitCount,
		IsEmpty:   snap.IsEmpty,
	}
}
