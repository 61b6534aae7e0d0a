package middleware

import (
	"net/http"

	"github.com/angelmondragon/basket-engine/api/responses"
	"github.com/angelmondragon/basket-engine/api/validators"
	pkgAuth "github.com/angelmondragon/basket-engine/pkg/auth"
	"github.com/angelmondragon/basket-engine/pkg/auth/session"
	"github.com/angelmondragon/basket-engine/pkg/config"
	pkgerrors "github.com/angelmondragon/basket-engine/pkg/errors"
	"github.com/angelmondragon/basket-engine/pkg/logger"
)

// Auth validates a bearer token, checks the session is still live and seeds
// the request context with the session id.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := validators.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			sessionID := claims.SessionID()

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), sessionID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			ctx := WithSession(r.Context(), sessionID, claims.Username)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
