package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/swiftcart-dev/swiftcart-backend/api/routes"
	"github.com/swiftcart-dev/swiftcart-backend/internal/address"
	"github.com/swiftcart-dev/swiftcart-backend/internal/availability"
	"github.com/swiftcart-dev/swiftcart-backend/internal/backorders"
	"github.com/swiftcart-dev/swiftcart-backend/internal/cart"
	"github.com/swiftcart-dev/swiftcart-backend/internal/catalog"
	"github.com/swiftcart-dev/swiftcart-backend/internal/checkout"
	"github.com/swiftcart-dev/swiftcart-backend/internal/coupons"
	"github.com/swiftcart-dev/swiftcart-backend/internal/ledger"
	"github.com/swiftcart-dev/swiftcart-backend/internal/orders"
	"github.com/swiftcart-dev/swiftcart-backend/internal/pricing"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/config"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/db"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/logger"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/metrics"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/migrate"
	"github.com/swiftcart-dev/swiftcart-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)

	gdb := dbClient.DB()
	catalogRepo := catalog.NewRepository(gdb)
	cartStore := cart.NewRepository(gdb)
	couponsRepo := coupons.NewRepository(gdb)
	addressRepo := address.NewRepository(gdb)
	ordersRepo := orders.NewRepository(gdb)
	backordersRepo := backorders.NewRepository(gdb)

	resolver, err := catalog.NewResolver(catalogRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog resolver", err)
		os.Exit(1)
	}

	partitioner, err := availability.NewPartitioner(resolver, catalogRepo, availability.Options{
		Workers:       cfg.Checkout.PartitionWorkers,
		LookupTimeout: cfg.Checkout.LookupTimeout,
	}, logg, checkoutMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create availability partitioner", err)
		os.Exit(1)
	}

	pricingEngine, err := pricing.NewEngine(couponsRepo, couponsRepo, cfg.Checkout.ShippingCents, logg, checkoutMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing engine", err)
		os.Exit(1)
	}

	marginLedger, err := ledger.NewService(ledger.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create resale ledger", err)
		os.Exit(1)
	}

	orderMaterializer, err := orders.NewMaterializer(ordersRepo, cartStore, marginLedger, couponsRepo, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order materializer", err)
		os.Exit(1)
	}

	backorderMaterializer, err := backorders.NewMaterializer(backordersRepo, cartStore, dbClient, logg, checkoutMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create backorder materializer", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(cartStore, partitioner, pricingEngine, orderMaterializer, backorderMaterializer, addressRepo, logg, checkoutMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
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
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			DBPinger:       dbClient,
			Redis:          redisClient,
			CartStore:      cartStore,
			Checkout:       checkoutService,
			OrdersRepo:     ordersRepo,
			BackordersRepo: backordersRepo,
			MetricsHTTP:    promhttp.Handler(),
		}),
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
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
