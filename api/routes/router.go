package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veyronstory/storefront-backend/api/controllers"
	"github.com/veyronstory/storefront-backend/api/middleware"
	checkoutsvc "github.com/veyronstory/storefront-backend/internal/checkout"
	couponsvc "github.com/veyronstory/storefront-backend/internal/coupons"
	ordersvc "github.com/veyronstory/storefront-backend/internal/orders"
	productsvc "github.com/veyronstory/storefront-backend/internal/products"
	referralsvc "github.com/veyronstory/storefront-backend/internal/referrals"
	"github.com/veyronstory/storefront-backend/pkg/config"
	"github.com/veyronstory/storefront-backend/pkg/db"
	"github.com/veyronstory/storefront-backend/pkg/logger"
	"github.com/veyronstory/storefront-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        db.Pinger
	Redis     *redis.Client
	Gatherer  prometheus.Gatherer
	Products  productsvc.Service
	Coupons   couponsvc.Service
	Referrals referralsvc.Service
	Orders    ordersvc.Service
	Checkout  checkoutsvc.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.ExtraCORSOrigins...),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Route("/v1/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Products, logg, false))
			r.Get("/{productId}", controllers.GetProduct(deps.Products, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/ping", controllers.PrivatePing())
		r.Post("/profile/sync", controllers.SyncProfile(deps.Referrals, logg))
		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", controllers.ListMyCoupons(deps.Coupons, logg))
			r.Post("/apply", controllers.ApplyCoupon(deps.Coupons, logg))
		})
		r.Post("/checkout", controllers.Checkout(deps.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListMyOrders(deps.Orders, logg))
			r.Get("/{orderId}", controllers.GetOrder(deps.Orders, logg))
		})

		r.Route("/referrals", func(r chi.Router) {
			r.Get("/", controllers.ReferralDashboard(deps.Referrals, logg))
			r.Post("/register", controllers.RegisterReferral(deps.Referrals, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireAdmin(logg))

		r.Get("/ping", controllers.AdminPing())

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Products, logg, true))
			r.Post("/", controllers.AdminCreateProduct(deps.Products, logg))
			r.Put("/{productId}", controllers.AdminUpdateProduct(deps.Products, logg))
			r.Patch("/{productId}/active", controllers.AdminSetProductActive(deps.Products, logg))
			r.Delete("/{productId}", controllers.AdminDeleteProduct(deps.Products, logg))
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", controllers.AdminListCoupons(deps.Coupons, logg))
			r.Post("/", controllers.AdminCreateCoupon(deps.Coupons, logg))
			r.Patch("/{couponId}/active", controllers.AdminSetCouponActive(deps.Coupons, logg))
			r.Delete("/{couponId}", controllers.AdminDeleteCoupon(deps.Coupons, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(deps.Orders, logg))
			r.Patch("/{orderId}/status", controllers.AdminUpdateOrderStatus(deps.Orders, logg))
		})
	})

	return r
}
