package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/arkanlabs/shopgate/api/routes"
	"github.com/arkanlabs/shopgate/internal/cart"
	"github.com/arkanlabs/shopgate/internal/checkout"
	"github.com/arkanlabs/shopgate/internal/orders"
	"github.com/arkanlabs/shopgate/internal/products"
	"github.com/arkanlabs/shopgate/internal/users"
	"github.com/arkanlabs/shopgate/pkg/config"
	"github.com/arkanlabs/shopgate/pkg/logger"
	"github.com/arkanlabs/shopgate/pkg/metrics"
	"github.com/arkanlabs/shopgate/pkg/pubsub"
	"github.com/arkanlabs/shopgate/pkg/redis"
	"github.com/arkanlabs/shopgate/pkg/rpc"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "gateway"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "gateway",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	var pubsubClient *pubsub.Client
	var events checkout.EventPublisher
	if cfg.PubSub.Enabled() {
		pubsubClient, err = pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		orderEvents, err := pubsub.NewOrderEvents(pubsubClient, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to wire order events", err)
			os.Exit(1)
		}
		events = orderEvents
	}

	registry := prometheus.NewRegistry()
	rpcMetrics := metrics.NewRPCMetrics(registry)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	cartRPC, err := rpc.NewClient("cart", cfg.Services.CartURL, cfg.Services.CallTimeout, logg, rpcMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to build cart client", err)
		os.Exit(1)
	}
	usersRPC, err := rpc.NewClient("users", cfg.Services.UsersURL, cfg.Services.CallTimeout, logg, rpcMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to build users client", err)
		os.Exit(1)
	}
	productsRPC, err := rpc.NewClient("products", cfg.Services.ProductsURL, cfg.Services.CallTimeout, logg, rpcMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to build products client", err)
		os.Exit(1)
	}
	ordersRPC, err := rpc.NewClient("orders", cfg.Services.OrdersURL, cfg.Services.CallTimeout, logg, rpcMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to build orders client", err)
		os.Exit(1)
	}

	cartClient, err := cart.NewClient(cartRPC, cfg.Checkout.CartPageSize)
	if err != nil {
		logg.Error(context.Background(), "failed to build cart reader", err)
		os.Exit(1)
	}
	usersClient, err := users.NewClient(usersRPC)
	if err != nil {
		logg.Error(context.Background(), "failed to build address resolver", err)
		os.Exit(1)
	}
	productsClient, err := products.NewClient(productsRPC)
	if err != nil {
		logg.Error(context.Background(), "failed to build product finder", err)
		os.Exit(1)
	}
	ordersClient, err := orders.NewClient(ordersRPC)
	if err != nil {
		logg.Error(context.Background(), "failed to build order creator", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(
		cartClient,
		usersClient,
		productsClient,
		ordersClient,
		events,
		logg,
		checkoutMetrics,
		checkout.Config{
			Deadline:         cfg.Checkout.Deadline,
			PriceConcurrency: cfg.Checkout.PriceConcurrency,
		},
	)
	if err != nil {
		logg.Error(context.Background(), "failed to build checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting gateway server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, redisClient, pubsubClient, checkoutService, registry),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "gateway server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error draining server", err)
		}
	}

	var closeErr error
	closeErr = multierr.Append(closeErr, redisClient.Close())
	if pubsubClient != nil {
		closeErr = multierr.Append(closeErr, pubsubClient.Close())
	}
	if closeErr != nil {
		logg.Error(ctx, "error closing clients", closeErr)
		os.Exit(1)
	}

	logg.Info(ctx, "gateway stopped")
}
