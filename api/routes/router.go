package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/mallbilling/api/controllers"
	"github.com/angelmondragon/mallbilling/api/middleware"
	"github.com/angelmondragon/mallbilling/internal/auth"
	"github.com/angelmondragon/mallbilling/internal/cart"
	"github.com/angelmondragon/mallbilling/internal/catalog"
	"github.com/angelmondragon/mallbilling/internal/checkout"
	"github.com/angelmondragon/mallbilling/internal/orders"
	"github.com/angelmondragon/mallbilling/internal/promotions"
	"github.com/angelmondragon/mallbilling/internal/receipts"
	"github.com/angelmondragon/mallbilling/internal/reports"
	"github.com/angelmondragon/mallbilling/pkg/auth/session"
	"github.com/angelmondragon/mallbilling/pkg/config"
	"github.com/angelmondragon/mallbilling/pkg/enums"
	"github.com/angelmondragon/mallbilling/pkg/logger"
	"github.com/angelmondragon/mallbilling/pkg/metrics"
	"github.com/angelmondragon/mallbilling/pkg/redis"
)

// redisStore is the slice of the redis client the HTTP layer needs.
type redisStore interface {
	controllers.Pinger
	redis.IdempotencyStore
	middleware.RateLimiterStore
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient redisStore,
	sessions session.Checker,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	authService auth.Service,
	cartService cart.Service,
	catalogService catalog.Service,
	catalogExporter *catalog.Exporter,
	promoService promotions.Service,
	checkoutService checkout.Service,
	ordersService orders.Service,
	receiptRenderer *receipts.Renderer,
	reportService reports.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUsernameLimit,
	)

	var limiter middleware.RateLimiterStore
	var idempotencyStore redis.IdempotencyStore
	var redisPinger controllers.Pinger
	if redisClient != nil {
		limiter = redisClient
		redisPinger = redisClient
		if cfg.FeatureFlags.IdempotentCheckout {
			idempotencyStore = redisClient
		}
	}
	idempotent := middleware.Idempotency(idempotencyStore, cfg.Checkout.IdempotencyTTL, logg)
	authenticated := middleware.Auth(cfg.JWT, sessions, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, limiter, logg),
			middleware.OptionalAuth(cfg.JWT, sessions, logg),
		).Post("/register", controllers.AuthRegister(authService, cfg.FeatureFlags.OpenRegister, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authenticated)
		r.Use(middleware.RequireRoles(logg, enums.RoleAdmin, enums.RoleCashier))

		r.Route("/pos", func(r chi.Router) {
			r.Get("/", controllers.PosCart(cartService, logg))
			r.Delete("/", controllers.PosClearCart(cartService, logg))
			r.Post("/items", controllers.PosAddItem(cartService, logg))
			r.Put("/items/{productId}", controllers.PosSetQuantity(cartService, logg))
			r.Get("/products", controllers.PosProducts(catalogService, logg))
			r.Post("/products/{productId}/low-stock", controllers.PosFlagLowStock(catalogService, true, logg))
			r.Delete("/products/{productId}/low-stock", controllers.PosFlagLowStock(catalogService, false, logg))
		})

		r.With(idempotent).Post("/checkout", controllers.Checkout(checkoutService, cartService, logg))

		r.Route("/receipts/{orderId}", func(r chi.Router) {
			r.Get("/", controllers.Receipt(ordersService, logg))
			r.Get("/pdf", controllers.ReceiptPDF(receiptRenderer, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(authenticated)
		r.Use(middleware.RequireRoles(logg, enums.RoleAdmin))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminListProducts(catalogService, logg))
			r.With(idempotent).Post("/", controllers.AdminCreateProduct(catalogService, logg))
			r.Get("/export", controllers.AdminExportProducts(catalogExporter, time.Now, logg))
			r.Get("/{productId}", controllers.AdminGetProduct(catalogService, logg))
			r.Put("/{productId}", controllers.AdminUpdateProduct(catalogService, logg))
			r.Delete("/{productId}", controllers.AdminDeleteProduct(catalogService, logg))
		})

		r.Route("/promocodes", func(r chi.Router) {
			r.Get("/", controllers.AdminListPromos(promoService, logg))
			r.With(idempotent).Post("/", controllers.AdminCreatePromo(promoService, logg))
			r.Post("/{promoId}/toggle", controllers.AdminTogglePromo(promoService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(ordersService, logg))
			r.Get("/{orderId}", controllers.Receipt(ordersService, logg))
		})

		r.Get("/dashboard", controllers.AdminDashboard(reportService, logg))
		r.Get("/sales-summary", controllers.AdminSalesSummary(reportService, logg))
	})

	return r
}
