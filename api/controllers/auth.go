package controllers

import (
	"net/http"

	"github.com/angelmondragon/basket-engine/api/middleware"
	"github.com/angelmondragon/basket-engine/api/responses"
	"github.com/angelmondragon/basket-engine/api/validators"
	"github.com/angelmondragon/basket-engine/internal/session"
	pkgerrors "github.com/angelmondragon/basket-engine/pkg/errors"
	"github.com/angelmondragon/basket-engine/pkg/logger"
	"github.com/angelmondragon/basket-engine/pkg/types"
)

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		var body session.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("X-Basket-Token", result.AccessToken)
		responses.WriteSuccess(w, result)
	}
}

// AuthRefresh trades a refresh token plus the (possibly expired) access token
// for a new pair on the same session.
func AuthRefresh(svc session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		accessToken, err := validators.BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body session.RefreshRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Refresh(r.Context(), accessToken, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("X-Basket-Token", result.AccessToken)
		responses.WriteSuccess(w, result)
	}
}

// AuthLogout clears the session's basket and revokes its refresh token.
func AuthLogout(svc session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing"))
			return
		}

		message, err := svc.Logout(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, types.MessageView{Message: message})
	}
}
