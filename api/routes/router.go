package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arkanlabs/shopgate/api/controllers"
	"github.com/arkanlabs/shopgate/api/middleware"
	"github.com/arkanlabs/shopgate/pkg/config"
	"github.com/arkanlabs/shopgate/pkg/logger"
	pkgpubsub "github.com/arkanlabs/shopgate/pkg/pubsub"
	pkgredis "github.com/arkanlabs/shopgate/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *pkgredis.Client,
	pubsubClient *pkgpubsub.Client,
	checkoutService controllers.CheckoutService,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	deps := map[string]controllers.Pinger{}
	if redisClient != nil {
		deps["redis"] = redisClient
	}
	if pubsubClient != nil {
		deps["pubsub"] = pubsubClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	var store pkgredis.IdempotencyStore
	if redisClient != nil {
		store = redisClient
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, logg),
			middleware.Idempotency(store, cfg.Idempotency.CheckoutTTL, logg),
		)
		r.Post("/checkout", controllers.Checkout(checkoutService, logg))
	})

	return r
}
