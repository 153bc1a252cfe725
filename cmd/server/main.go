package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/yourorg/payments-gateway/internal/api"
	apimock "github.com/yourorg/payments-gateway/internal/api/mock"
	"github.com/yourorg/payments-gateway/internal/controller"
	"github.com/yourorg/payments-gateway/internal/limiter"
	"github.com/yourorg/payments-gateway/internal/lock"
	"github.com/yourorg/payments-gateway/internal/order"
	"github.com/yourorg/payments-gateway/internal/payment/step"
	pstorage "github.com/yourorg/payments-gateway/internal/payment/storage"
	"github.com/yourorg/payments-gateway/internal/policy"
	"github.com/yourorg/payments-gateway/internal/reporting"
	"github.com/yourorg/payments-gateway/pkg/logging"
)

func newTracerProvider() (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return tp, nil
}

// newClient talks to the real payments API when PAYMENTS_API_URL is set,
// and falls back to the in-memory mock for local development.
func newClient(log *slog.Logger) api.Client {
	baseURL := os.Getenv("PAYMENTS_API_URL")
	if baseURL == "" {
		log.Info("PAYMENTS_API_URL not set, using the in-memory mock client")
		return apimock.NewClient()
	}
	return api.NewHTTPClient(nil, api.Config{
		BaseURL:   baseURL,
		SiteID:    os.Getenv("PAYMENTS_SITE_ID"),
		APIKey:    os.Getenv("PAYMENTS_API_KEY"),
		UserToken: os.Getenv("PAYMENTS_USER_TOKEN"),
	}, nil)
}

// newRedis connects when REDIS_ADDR is set, so multiple replicas share the
// per-order lock and the failed-attempt counters. A nil client selects the
// process-local fallbacks.
func newRedis(log *slog.Logger) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Info("REDIS_ADDR not set, using in-memory locking and rate limiting")
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr})
}

func setupRouter(log *slog.Logger) (*gin.Engine, error) {
	client := newClient(log)

	orders := order.NewMemoryService()
	demo := order.NewMemoryOrder("1001", 2599, "usd")
	demo.Name = "Demo Customer"
	demo.Email = "demo@example.com"
	demo.User = "user_demo"
	orders.Add(demo)

	fraudRules := []policy.RuleConfig{
		{Name: "LargeFirstPayment", Expression: "amount > 100000 && !saved_method"},
	}
	fraud, err := policy.NewEnforcer(fraudRules)
	if err != nil {
		return nil, err
	}

	rdb := newRedis(log)
	var locker lock.Locker = lock.NewMemoryLocker()
	var failedAttempts limiter.RateLimiter = limiter.NewMemoryRateLimiter(5, 10*time.Minute)
	if rdb != nil {
		locker = lock.NewRedisLocker(rdb, 30*time.Second)
		failedAttempts = limiter.NewRedisRateLimiter(rdb, 5, 10*time.Minute)
	}

	steps := step.NewBuilder(step.Deps{
		Client:  client,
		Fraud:   fraud,
		Tokens:  order.NewMemoryTokenService(),
		Limiter: failedAttempts,
		MinimumAmounts: map[string]int64{
			"usd": 50,
			"eur": 50,
			"gbp": 30,
		},
		ReturnURL: os.Getenv("PAYMENTS_RETURN_URL"),
	})

	ctl, err := controller.New(
		orders,
		client,
		pstorage.NewOrderMetaStorage(orders),
		steps,
		locker,
		reporting.NewRecorder(),
		log,
	)
	if err != nil {
		return nil, err
	}

	router := gin.Default()
	router.Use(otelgin.Middleware("payments-gateway"))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	ctl.Register(router)
	return router, nil
}

func main() {
	log := logging.New()

	tp, err := newTracerProvider()
	if err != nil {
		log.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Error("shutting down tracer provider", "error", err)
		}
	}()

	router, err := setupRouter(log)
	if err != nil {
		log.Error("failed to initialize server", "error", err)
		os.Exit(1)
	}

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	log.Info("starting server", "addr", addr)
	if err := router.Run(addr); err != nil && err != http.ErrServerClosed {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
