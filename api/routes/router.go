package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
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
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// Services bundles the domain services the HTTP surface dispatches to.
type Services struct {
	Admins     admins.Service
	Banners    banners.Service
	Cart       cart.Service
	Categories categories.Service
	Checkout   checkout.Service
	Landing    landing.Service
	Orders     orders.Service
	Products   products.Service
	Reviews    reviews.Service
	Tracking   tracking.Service
}

// Infra is the shared infrastructure the router wires into middleware.
type Infra struct {
	DB       db.Pinger
	Redis    *redis.Client
	Registry *prometheus.Registry
	HTTP     *metrics.HTTPMetrics
	Now      func() time.Time
}

func NewRouter(cfg *config.Config, logg *logger.Logger, infra Infra, svc Services) http.Handler {
	now := infra.Now
	if now == nil {
		now = time.Now
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(infra.HTTP),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.LoginThrottle{
		Window:   cfg.RateLimit.LoginWindow,
		PerIP:    cfg.RateLimit.LoginIPLimit,
		PerEmail: cfg.RateLimit.LoginEmailLimit,
	}
	idempotent := middleware.Idempotency(infra.Redis, cfg.Checkout.IdempotencyTTL, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    infra.DB,
			"redis": infra.Redis,
		}))
	})
	if infra.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(infra.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/settings", controllers.PublicSettingsHandler(controllers.PublicSettings{
			PixelID:          svc.Tracking.PixelID(),
			TrackingEnabled:  svc.Tracking.Enabled(),
			Currency:         cfg.Checkout.Currency,
			ShippingFee:      cfg.Checkout.ShippingFee.StringFixed(2),
			FreeShippingOver: cfg.Checkout.FreeShippingOver.StringFixed(2),
		}))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(svc.Categories, logg))
			r.Get("/tree", controllers.CategoryTree(svc.Categories, logg))
			r.Get("/{slug}", controllers.CategoryDetail(svc.Categories, logg))
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(svc.Products, logg))
			r.Get("/{slug}", controllers.ProductDetail(svc.Products, logg))
			r.Get("/{slug}/reviews", controllers.ReviewList(svc.Reviews, logg))
			r.Post("/{slug}/reviews", controllers.ReviewSubmit(svc.Reviews, logg))
		})
		r.Get("/banners", controllers.BannerActive(svc.Banners, now, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.CartSession(cfg.Cart.TTL, cfg.App.IsProd(), logg))
			r.Get("/", controllers.CartFetch(svc.Cart, logg))
			r.Delete("/", controllers.CartClear(svc.Cart, logg))
			r.Post("/items", controllers.CartAddItem(svc.Cart, logg))
			r.Patch("/items/{productId}", controllers.CartUpdateItem(svc.Cart, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(svc.Cart, logg))
			r.With(idempotent).Post("/checkout", controllers.CartCheckout(svc.Cart, svc.Checkout, logg))
		})
	})

	r.Route("/api/functions", func(r chi.Router) {
		r.Use(middleware.FunctionEnvelope(logg))
		r.Use(middleware.RateLimit("functions", infra.Redis, cfg.RateLimit.FunctionsLimit, cfg.RateLimit.FunctionsWindow, logg))
		r.Use(idempotent)
		r.Post("/create-order", controllers.CreateOrder(svc.Checkout, logg))
		r.Post("/create-landing-order", controllers.CreateLandingOrder(svc.Landing, logg))
		r.Post("/track-event", controllers.TrackEvent(svc.Tracking, now, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.With(middleware.LoginRateLimit(loginPolicy, infra.Redis, logg)).Post("/login", controllers.AdminLogin(svc.Admins, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.AdminRoleOwner, enums.AdminRoleStaff))

		r.Get("/me", controllers.AdminMe(svc.Admins, logg))
		r.With(middleware.RequireRole(logg, enums.AdminRoleOwner)).Post("/admins", controllers.AdminCreate(svc.Admins, logg))

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.AdminCategoryList(svc.Categories, logg))
			r.Post("/", controllers.AdminCategoryCreate(svc.Categories, logg))
			r.Patch("/{id}", controllers.AdminCategoryUpdate(svc.Categories, logg))
			r.Delete("/{id}", controllers.AdminCategoryDelete(svc.Categories, logg))
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminProductList(svc.Products, logg))
			r.Post("/", controllers.AdminProductCreate(svc.Products, logg))
			r.Get("/{id}", controllers.AdminProductGet(svc.Products, logg))
			r.Patch("/{id}", controllers.AdminProductUpdate(svc.Products, logg))
			r.Delete("/{id}", controllers.AdminProductDelete(svc.Products, logg))
		})
		r.Route("/banners", func(r chi.Router) {
			r.Get("/", controllers.AdminBannerList(svc.Banners, logg))
			r.Post("/", controllers.AdminBannerCreate(svc.Banners, logg))
			r.Patch("/{id}", controllers.AdminBannerUpdate(svc.Banners, logg))
			r.Delete("/{id}", controllers.AdminBannerDelete(svc.Banners, logg))
		})
		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", controllers.AdminReviewList(svc.Reviews, logg))
			r.Post("/{id}/approve", controllers.AdminReviewApprove(svc.Reviews, logg))
			r.Delete("/{id}", controllers.AdminReviewDelete(svc.Reviews, logg))
		})
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(svc.Orders, logg))
			r.Get("/{id}", controllers.AdminOrderDetail(svc.Orders, logg))
			r.With(idempotent).Post("/{id}/status", controllers.AdminOrderStatus(svc.Orders, logg))
		})
	})

	return r
}
