package main

import (
	"context"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/veyronstory/storefront-backend/api/routes"
	"github.com/veyronstory/storefront-backend/internal/checkout"
	"github.com/veyronstory/storefront-backend/internal/coupons"
	"github.com/veyronstory/storefront-backend/internal/orders"
	"github.com/veyronstory/storefront-backend/internal/products"
	"github.com/veyronstory/storefront-backend/internal/referrals"
	"github.com/veyronstory/storefront-backend/pkg/config"
	"github.com/veyronstory/storefront-backend/pkg/db"
	"github.com/veyronstory/storefront-backend/pkg/logger"
	"github.com/veyronstory/storefront-backend/pkg/metrics"
	"github.com/veyronstory/storefront-backend/pkg/migrate"
	"github.com/veyronstory/storefront-backend/pkg/redis"
	"github.com/veyronstory/storefront-backend/pkg/whatsapp"
	"github.com/joho/godotenv"
)

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

	couponCache := coupons.NewRedisCache(redisClient, cfg.Redis.CouponTTL, logg)
	couponService, err := coupons.NewService(coupons.NewRepository(dbClient.DB()), couponCache)
	if err != nil {
		logg.Error(context.Background(), "failed to create coupons service", err)
		os.Exit(1)
	}

	productService := products.NewService(products.NewRepository(dbClient.DB()))
	orderService := orders.NewService(orders.NewRepository(dbClient.DB()), logg)
	referralService := referrals.NewService(referrals.NewRepository(dbClient.DB()), couponService, logg)

	shippingRate, err := cfg.Checkout.Rate()
	if err != nil {
		logg.Error(context.Background(), "invalid shipping rate", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	checkoutService := checkout.NewService(
		dbClient,
		products.NewRepository(dbClient.DB()),
		orders.NewRepository(dbClient.DB()),
		couponService,
		referralService,
		whatsapp.NewBuilder(cfg.WhatsApp),
		checkoutMetrics,
		logg,
		shippingRate,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:    cfg,
			Logger:    logg,
			DB:        dbClient,
			Redis:     redisClient,
			Gatherer:  registry,
			Products:  productService,
			Coupons:   couponService,
			Referrals: referralService,
			Orders:    orderService,
			Checkout:  checkoutService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
