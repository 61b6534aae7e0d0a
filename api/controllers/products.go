package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/basket-engine/api/responses"
	"github.com/angelmondragon/basket-engine/api/validators"
	"github.com/angelmondragon/basket-engine/internal/catalog"
	pkgerrors "github.com/angelmondragon/basket-engine/pkg/errors"
	"github.com/angelmondragon/basket-engine/pkg/logger"
	"github.com/angelmondragon/basket-engine/pkg/types"
)

const maxSearchLen = 100

// ProductList returns the catalog filtered by the optional ?q= term.
func ProductList(c *catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		query, err := validators.ParseSearchQuery(r, "q", maxSearchLen)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products := catalog.Filter(c, query)
		views := make([]types.ProductView, 0, len(products))
		for _, p := range products {
			views = append(views, productView(p))
		}
		responses.WriteSuccess(w, views)
	}
}

func ProductDetail(c *catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		code := strings.TrimSpace(chi.URLParam(r, "code"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product code is required"))
			return
		}

		product, err := c.FindByCode(code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, productView(product))
	}
}

func productView(p catalog.Product) types.ProductView {
	return types.ProductView{
		ProductCode: p.Code,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Unit:        p.Unit,
		Qty:         p.AvailableQty,
	}
}
