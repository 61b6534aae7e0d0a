package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/basket-engine/api/responses"
	"github.com/angelmondragon/basket-engine/pkg/config"
	pkgerrors "github.com/angelmondragon/basket-engine/pkg/errors"
	"github.com/angelmondragon/basket-engine/pkg/logger"
)

const readyTimeout = 2 * time.Second

// Pinger is any dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setEnvHeader(w, cfg)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every configured dependency; nil entries are skipped so the
// memory backend reports ready without redis or a database.
func HealthReady(cfg *config.Config, deps map[string]Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setEnvHeader(w, cfg)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}

func setEnvHeader(w http.ResponseWriter, cfg *config.Config) {
	if cfg != nil {
		w.Header().Set("X-Basket-Env", cfg.App.Env)
	}
}
