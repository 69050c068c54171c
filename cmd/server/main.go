package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homefoods-be/internal/auth"
	"homefoods-be/internal/cache"
	"homefoods-be/internal/cart"
	"homefoods-be/internal/chat"
	"homefoods-be/internal/config"
	"homefoods-be/internal/customer"
	"homefoods-be/internal/db"
	"homefoods-be/internal/httpapi"
	"homefoods-be/internal/logger"
	"homefoods-be/internal/metrics"
	"homefoods-be/internal/middleware"
	"homefoods-be/internal/notify"
	"homefoods-be/internal/order"
	"homefoods-be/internal/payment"
	"homefoods-be/internal/payment/webhook"
	"homefoods-be/internal/pricing"
	"homefoods-be/internal/product"
	"homefoods-be/internal/review"
	"homefoods-be/internal/store"

	"go.uber.org/zap"
)

const (
	sessionTTL      = 30 * 24 * time.Hour
	shutdownTimeout = 10 * time.Second
	cacheNamespace  = "homefoods"
)

var (
	openDBFunc      = db.NewDatabase
	dialCacheFunc   = func(ctx context.Context, url string) (cache.Cache, error) { return cache.Dial(ctx, url, cacheNamespace) }
	startServerFunc = serve
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	c := openCache(cfg)
	defer c.Close()

	limiter := middleware.NewRateLimiter(cfg.InternalKey)
	defer limiter.Close()

	handler, err := newServer(cfg, st, c, limiter)
	if err != nil {
		return err
	}

	logger.L().Info("server starting",
		zap.String("port", cfg.AppPort),
		zap.String("env", cfg.AppEnv),
		zap.String("store", cfg.StoreDriver),
		zap.String("payment_mode", cfg.PaymentMode),
	)
	return startServerFunc(":"+cfg.AppPort, handler)
}

func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		logger.L().Warn("using in-memory store, data is lost on restart")
		return store.NewMemory(), nil
	}
	database, err := openDBFunc(cfg)
	if err != nil {
		return nil, err
	}
	return store.NewPostgres(database), nil
}

// openCache falls back to the in-process cache when Redis is absent or down.
func openCache(cfg *config.Config) cache.Cache {
	if cfg.RedisURL == "" {
		return cache.NewMemory()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := dialCacheFunc(ctx, cfg.RedisURL)
	if err != nil {
		logger.L().Warn("redis unavailable, using in-memory catalog cache", zap.Error(err))
		return cache.NewMemory()
	}
	return c
}

func newServer(cfg *config.Config, st store.Store, c cache.Cache, limiter *middleware.RateLimiter) (http.Handler, error) {
	sessions, err := auth.NewSessions(cfg.JWTSecret, sessionTTL)
	if err != nil {
		return nil, err
	}
	admin, err := auth.NewAdminChecker(cfg.AdminSecret, cfg.AdminSecretHash)
	if err != nil {
		return nil, err
	}

	gateway, err := payment.NewGateway(cfg)
	if err != nil {
		return nil, fmt.Errorf("payment gateway: %w", err)
	}

	productSvc := product.NewService(product.NewRepository(st), c)
	counters := metrics.NewCheckout()

	orderSvc, err := order.NewService(order.ServiceDeps{
		Orders:     order.NewRepository(st),
		Gateway:    gateway,
		Notifier:   notify.NewDispatcher(notify.NewChannel(cfg), cfg.WhatsAppRecipient),
		Calculator: pricing.NewCalculator(cfg.FreeDeliveryThreshold, cfg.DeliveryRatePerKg),
		Prices:     productSvc,
		Metrics:    counters,
	})
	if err != nil {
		return nil, err
	}

	reviewSvc, err := review.NewService(review.ServiceDeps{Repo: review.NewRepository(st)})
	if err != nil {
		return nil, err
	}

	deps := httpapi.Deps{
		Orders:        orderSvc,
		Customers:     customer.NewService(customer.NewRepository(st), sessions),
		Carts:         cart.NewService(cart.NewRepository(st)),
		Products:      productSvc,
		Reviews:       reviewSvc,
		Chat:          chat.NewClient(chat.Config{URL: cfg.ChatAPIURL, APIKey: cfg.ChatAPIKey, Model: cfg.ChatModel}),
		Store:         st,
		Metrics:       counters,
		Sessions:      sessions,
		Admin:         admin,
		Limiter:       limiter,
		CORSOrigin:    cfg.CORSOrigin,
		SecureCookies: cfg.IsProduction(),
	}
	if verifier, ok := gateway.(webhook.Verifier); ok {
		deps.Webhook = http.HandlerFunc(webhook.NewWebhookHandler(orderSvc, verifier).PaymentWebhookHandler)
	}

	return httpapi.NewRouter(deps)
}

// serve runs until SIGINT/SIGTERM, then drains in-flight requests.
func serve(addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.L().Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
