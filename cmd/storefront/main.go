package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quanb-duy/custom-ecommerce-website/internal/config"
	flowlogsqlite "github.com/quanb-duy/custom-ecommerce-website/internal/coordinator/flowlog/sqlite"
	"github.com/quanb-duy/custom-ecommerce-website/internal/core/ports"
	"github.com/quanb-duy/custom-ecommerce-website/internal/core/service"
	"github.com/quanb-duy/custom-ecommerce-website/internal/infra/httpx"
	"github.com/quanb-duy/custom-ecommerce-website/internal/infra/packeta"
	"github.com/quanb-duy/custom-ecommerce-website/internal/infra/payment"
	"github.com/quanb-duy/custom-ecommerce-website/internal/infra/sqlite"
	"github.com/quanb-duy/custom-ecommerce-website/internal/pkg/cache"
	"github.com/quanb-duy/custom-ecommerce-website/internal/pkg/metrics"
	"github.com/quanb-duy/custom-ecommerce-website/internal/pkg/reviewqueue"
	"github.com/quanb-duy/custom-ecommerce-website/internal/pkg/telemetry"
)

const serviceName = "storefront"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	telemetry.InitLogger(serviceName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, serviceName)
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("tracer shutdown failed", "error", err)
		}
	}()

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	flowLog, err := flowlogsqlite.Open(cfg.FlowLogPath)
	if err != nil {
		slog.Error("failed to open flow log database", "error", err)
		os.Exit(1)
	}
	defer flowLog.Close()

	var c cache.Cache
	if cfg.RedisAddr != "" {
		c = cache.NewRedisCache(cfg.RedisAddr, serviceName)
	}

	queue := reviewqueue.NewPublisher(cfg.KafkaBrokers, cfg.ReviewTopic)
	defer queue.Close()
	if !queue.Enabled() {
		slog.Warn("review queue disabled: no kafka brokers configured")
	}

	// Providers are optional at boot; the endpoints that need them answer
	// ServiceUnavailable until credentials arrive.
	var gateway ports.PaymentGateway
	if cfg.Payment.Configured() {
		gateway = payment.NewClient(cfg.Payment.BaseURL, cfg.Payment.SecretKey)
	} else {
		slog.Warn("payment provider not configured; checkout endpoints will refuse requests")
	}

	var carrier ports.Carrier
	if cfg.Packeta.Configured() {
		carrier = packeta.NewClient(
			cfg.Packeta.APIURL, cfg.Packeta.APIPassword, cfg.Packeta.FeedURL, cfg.Packeta.Eshop,
		)
	} else {
		slog.Warn("carrier not configured; dispatch will refuse requests and tracking will be synthesized")
	}

	products := store.Products()
	carts := store.Carts()
	orders := store.Orders()

	cartSvc := service.NewCartService(carts, products)
	checkoutSvc := service.NewCheckoutService(cartSvc, gateway, store.Addresses())
	writerSvc := service.NewOrderWriterService(orders, products, carts, flowLog)
	reconciler := service.NewReconciler(products, queue)
	verifierSvc := service.NewVerifierService(gateway, orders, writerSvc, reconciler, c)
	dispatcherSvc := service.NewDispatcherService(orders, carrier, cfg.Currency, cfg.Packeta.WeightKG)
	trackingSvc := service.NewTrackingService(orders, carrier)
	pickupSvc := service.NewPickupPointService(carrier, c)

	handler := httpx.NewHandler(cartSvc, checkoutSvc, verifierSvc, writerSvc, dispatcherSvc, trackingSvc, pickupSvc)
	router := httpx.NewRouter(handler, metrics.NewServerMetrics("api"), cfg.CORSOrigins)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("storefront API listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown failed", "error", err)
	}
}
