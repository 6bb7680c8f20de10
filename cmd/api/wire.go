package main

import (
	"fmt"

	"github.com/angelmondragon/storefront-backend/api/routes"
	"github.com/angelmondragon/storefront-backend/internal/admins"
	"github.com/angelmondragon/storefront-backend/internal/banners"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/categories"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/landing"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/internal/reviews"
	"github.com/angelmondragon/storefront-backend/internal/tracking"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/conversions"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// app is everything the api process runs besides the HTTP server.
type app struct {
	services   routes.Services
	dispatcher *tracking.Dispatcher
}

func buildApp(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, m *metrics.StorefrontMetrics) (*app, error) {
	conn := dbClient.DB()

	var (
		pixel    tracking.PixelSender
		notifier tracking.Notifier = tracking.Noop{}
		worker   *tracking.Dispatcher
	)
	if cfg.Tracking.Enabled() {
		client, err := conversions.NewClient(cfg.Tracking)
		if err != nil {
			return nil, fmt.Errorf("conversions client: %w", err)
		}
		pixel = client
		worker = tracking.NewDispatcher(client, tracking.DispatcherConfig{
			QueueSize:    cfg.Tracking.QueueSize,
			Workers:      cfg.Tracking.Workers,
			DrainTimeout: cfg.App.ShutdownWait / 3,
		}, m, logg)
		notifier = worker
	}

	trackingSvc, err := tracking.NewService(pixel, m, logg)
	if err != nil {
		return nil, fmt.Errorf("tracking service: %w", err)
	}

	categoryRepo := categories.NewRepository(conn)
	productRepo := products.NewRepository(conn)
	reviewRepo := reviews.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)

	categorySvc, err := categories.NewService(categoryRepo, dbClient)
	if err != nil {
		return nil, fmt.Errorf("categories service: %w", err)
	}
	productSvc, err := products.NewService(productRepo, dbClient, categorySvc, reviewRepo)
	if err != nil {
		return nil, fmt.Errorf("products service: %w", err)
	}
	reviewSvc, err := reviews.NewService(reviewRepo, productRepo)
	if err != nil {
		return nil, fmt.Errorf("reviews service: %w", err)
	}
	bannerSvc, err := banners.NewService(banners.NewRepository(conn))
	if err != nil {
		return nil, fmt.Errorf("banners service: %w", err)
	}
	ordersSvc, err := orders.NewService(ordersRepo, dbClient, orders.NewStockRestorer(), logg)
	if err != nil {
		return nil, fmt.Errorf("orders service: %w", err)
	}

	cartStore, err := cart.NewRedisStore(redisClient, cfg.Cart.TTL, logg)
	if err != nil {
		return nil, fmt.Errorf("cart store: %w", err)
	}
	cartSvc, err := cart.NewService(cartStore, productRepo, notifier, cfg.Checkout.Currency, logg)
	if err != nil {
		return nil, fmt.Errorf("cart service: %w", err)
	}

	checkoutSvc, err := checkout.NewService(dbClient, ordersRepo, productRepo, notifier, checkout.Pricing{
		Currency:         cfg.Checkout.Currency,
		ShippingFee:      cfg.Checkout.ShippingFee,
		FreeShippingOver: cfg.Checkout.FreeShippingOver,
	}, m, logg)
	if err != nil {
		return nil, fmt.Errorf("checkout service: %w", err)
	}
	landingSvc, err := landing.NewService(checkoutSvc)
	if err != nil {
		return nil, fmt.Errorf("landing service: %w", err)
	}

	adminSvc, err := admins.NewService(admins.NewRepository(conn), cfg.JWT, cfg.Password, logg)
	if err != nil {
		return nil, fmt.Errorf("admins service: %w", err)
	}

	return &app{
		services: routes.Services{
			Admins:     adminSvc,
			Banners:    bannerSvc,
			Cart:       cartSvc,
			Categories: categorySvc,
			Checkout:   checkoutSvc,
			Landing:    landingSvc,
			Orders:     ordersSvc,
			Products:   productSvc,
			Reviews:    reviewSvc,
			Tracking:   trackingSvc,
		},
		dispatcher: worker,
	}, nil
}
