package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/basket-engine/api/controllers"
	"github.com/angelmondragon/basket-engine/api/middleware"
	"github.com/angelmondragon/basket-engine/internal/catalog"
	sessionsvc "github.com/angelmondragon/basket-engine/internal/session"
	"github.com/angelmondragon/basket-engine/pkg/auth/session"
	"github.com/angelmondragon/basket-engine/pkg/config"
	"github.com/angelmondragon/basket-engine/pkg/logger"
	"github.com/angelmondragon/basket-engine/pkg/redis"
)

// redisStore is the slice of the redis client the HTTP layer touches directly.
type redisStore interface {
	redis.IdempotencyStore
	redis.Pinger
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient redisStore,
	sessionChecker session.AccessSessionChecker,
	sessionService sessionsvc.Service,
	products *catalog.Catalog,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)

	readyDeps := map[string]controllers.Pinger{"db": dbP}
	if redisClient != nil {
		readyDeps["redis"] = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readyDeps, logg))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(sessionService, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessionService, logg))
		r.With(middleware.Auth(cfg.JWT, sessionChecker, logg)).Post("/logout", controllers.AuthLogout(sessionService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(products, logg))
		r.Get("/{code}", controllers.ProductDetail(products, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/api/ping", controllers.SessionPing())
		r.Get("/api/v1/basket", controllers.BasketView(sessionService, logg))
		r.Delete("/api/v1/basket", controllers.BasketClear(sessionService, logg))
		r.Post("/api/v1/basket/items", controllers.BasketAddItem(sessionService, logg))
	})

	return r
}
