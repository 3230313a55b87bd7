package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angelmondragon/mallbilling/api/routes"
	"github.com/angelmondragon/mallbilling/internal/auth"
	"github.com/angelmondragon/mallbilling/internal/cart"
	"github.com/angelmondragon/mallbilling/internal/catalog"
	"github.com/angelmondragon/mallbilling/internal/checkout"
	"github.com/angelmondragon/mallbilling/internal/orders"
	"github.com/angelmondragon/mallbilling/internal/promotions"
	"github.com/angelmondragon/mallbilling/internal/receipts"
	"github.com/angelmondragon/mallbilling/internal/reports"
	"github.com/angelmondragon/mallbilling/internal/users"
	"github.com/angelmondragon/mallbilling/pkg/auth/session"
	"github.com/angelmondragon/mallbilling/pkg/config"
	"github.com/angelmondragon/mallbilling/pkg/db"
	"github.com/angelmondragon/mallbilling/pkg/logger"
	"github.com/angelmondragon/mallbilling/pkg/metrics"
	"github.com/angelmondragon/mallbilling/pkg/migrate"
	"github.com/angelmondragon/mallbilling/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
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

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	conn := dbClient.DB()
	productRepo := catalog.NewRepository(conn)
	orderRepo := orders.NewRepository(conn)

	catalogService, err := catalog.NewService(productRepo)
	if err != nil {
		return err
	}
	promoService, err := promotions.NewService(promotions.NewRepository(conn), time.Now)
	if err != nil {
		return err
	}
	cartStore, err := cart.NewStore(redisClient, cfg.Cart.TTL)
	if err != nil {
		return err
	}
	cartService, err := cart.NewService(cartStore, productRepo, promoService)
	if err != nil {
		return err
	}
	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(conn),
		SessionManager: sessionManager,
		Carts:          cartService,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return err
	}
	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		TX:       dbClient,
		Products: productRepo,
		Orders:   orderRepo,
		Promos:   promoService,
		Carts:    cartService,
		Metrics:  checkoutMetrics,
		Logger:   logg,
	})
	if err != nil {
		return err
	}
	orderService, err := orders.NewService(orderRepo)
	if err != nil {
		return err
	}
	renderer, err := receipts.NewRenderer(orderService, cfg.Receipt)
	if err != nil {
		return err
	}
	reportService, err := reports.NewService(reports.NewRepository(conn), time.Now)
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(
			cfg, logg, dbClient, redisClient, sessionManager, registry, httpMetrics,
			authService, cartService, catalogService, catalog.NewExporter(productRepo),
			promoService, checkoutService, orderService, renderer, reportService,
		),
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-serveErr
}
