package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wolfman30/sly-barbershop/internal/api/router"
	"github.com/wolfman30/sly-barbershop/internal/app/bootstrap"
	appconfig "github.com/wolfman30/sly-barbershop/internal/config"
	"github.com/wolfman30/sly-barbershop/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/sly-barbershop/internal/http/middleware"
	"github.com/wolfman30/sly-barbershop/internal/observability/metrics"
	"github.com/wolfman30/sly-barbershop/internal/observability/tracing"
	"github.com/wolfman30/sly-barbershop/pkg/logging"
)

// app is the wired server plus the loops that keep its in-memory state small.
type app struct {
	handler  http.Handler
	visitors *handlers.Visitors
	limiter  *httpmiddleware.RateLimiter
	close    func()
}

func buildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *app {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	sessions := bootstrap.BuildSessionStore(redisClient, logger)
	issuer := bootstrap.BuildIssuer(cfg, logger)
	client := bootstrap.BuildBackendClient(cfg, reg, logger)

	visitors := handlers.NewVisitors(handlers.VisitorConfig{
		BookingAPI:          client,
		AdminAPI:            client,
		Auth:                bootstrap.BuildAuthenticator(cfg, issuer, logger),
		Sessions:            sessions,
		SessionTTL:          cfg.AdminSessionTTL,
		Location:            cfg.Location(),
		BookingWindowMonths: cfg.BookingWindowMonth,
		Metrics:             metrics.NewWorkflowMetrics(reg),
		Logger:              logger,
	}, cfg.VisitorIdleTTL)
	limiter := httpmiddleware.NewRateLimiter(cfg.BookingRateLimit, cfg.BookingRateBurst)

	handler := router.New(&router.Config{
		Logger:             logger,
		Booking:            handlers.NewBookingHandler(visitors, logger),
		Admin:              handlers.NewAdminHandler(visitors, logger),
		Sessions:           sessions,
		TokenVerifier:      issuer,
		BookingLimiter:     limiter,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		VisitorCookieTTL:   cfg.VisitorIdleTTL,
		SecureCookies:      cfg.Env == "production",
	})

	return &app{
		handler:  otelhttp.NewHandler(handler, "sly-barbershop"),
		visitors: visitors,
		limiter:  limiter,
		close: func() {
			if redisClient != nil {
				_ = redisClient.Close()
			}
		},
	}
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
	}

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting sly-barbershop web server",
		"env", cfg.Env,
		"port", cfg.Port,
		"api_base_url", cfg.APIBaseURL,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Enabled:      cfg.OTelEnabled,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SampleRatio:  cfg.OTelSampleRatio,
	})
	if err != nil {
		logger.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}

	a := buildApp(ctx, cfg, logger)
	defer a.close()
	go a.visitors.Run(ctx)
	go a.limiter.Run(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2*cfg.APITimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}
