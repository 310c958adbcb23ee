package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/backend-checkout/internal/catalog"
	"github.com/noah-isme/backend-checkout/internal/common"
	"github.com/noah-isme/backend-checkout/internal/config"
	"github.com/noah-isme/backend-checkout/internal/health"
	"github.com/noah-isme/backend-checkout/internal/obs"
	"github.com/noah-isme/backend-checkout/internal/order"
	"github.com/noah-isme/backend-checkout/internal/payment"
	"github.com/noah-isme/backend-checkout/internal/pricing"
	"github.com/noah-isme/backend-checkout/internal/repo"
	"github.com/noah-isme/backend-checkout/internal/security"
	"github.com/noah-isme/backend-checkout/internal/token"
)

const maxRequestBody = 1 << 20

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(envOrDefault("OBS_LOG_FORMAT", "json"), envOrDefault("OBS_LOG_LEVEL", "info")).
		With().Str("env", cfg.AppEnv).Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	store := repo.Orders{Pool: pool}

	catalogClient, err := catalog.NewHTTPClient(cfg.CatalogBaseURL, nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("configure catalog client")
	}
	catalogClient.Concurrency = cfg.CatalogConcurrency
	resolver := catalog.Resolver{Client: catalogClient}

	taxPolicy := pricing.BpsTable{Rates: cfg.TaxRates, DefaultBps: cfg.DefaultTaxBps}

	signer, err := token.NewSigner(token.Config{
		Secret:   cfg.JWTSecret,
		TTL:      cfg.TokenTTL,
		Issuer:   cfg.TokenIssuer,
		Audience: cfg.TokenAudience,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("configure token signer")
	}

	summarySvc := &order.SummaryService{
		Store:             store,
		Resolver:          resolver,
		Tax:               taxPolicy,
		Tokens:            signer,
		PlaceholderDomain: cfg.PlaceholderDomain,
	}
	orderHandler := &order.Handler{Store: store, Summary: summarySvc}

	assembler, err := payment.Select(cfg.PaymentProcessor, payment.PayPal{
		Store:      store,
		Resolver:   resolver,
		Tax:        taxPolicy,
		PayeeEmail: cfg.PayeeEmail,
		ReturnURL:  cfg.PaymentReturnURL,
		CancelURL:  cfg.PaymentCancelURL,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("configure payment assembler")
	}
	paymentHandler := &payment.Handler{Store: store, Assembler: assembler, Validate: validator.New()}

	healthHandler := health.Handler{Checker: probes{store: store, catalogURL: cfg.CatalogBaseURL}}
	metrics := obs.NewHTTPMetrics("checkout", nil, nil)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(security.Headers{Enable: true, EnableHSTS: cfg.AppEnv == "production"}.Middleware)
	r.Use(security.BodyLimit{Max: maxRequestBody}.Middleware)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
		}))
	}
	r.Use(obs.RoutePatternMiddleware)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(obs.HTTPObs{Metrics: metrics}.Middleware)
	r.Use(common.BearerMiddleware)

	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/v1/orders/{orderId}", func(r chi.Router) {
		r.Get("/summary", orderHandler.GetSummary)
		r.Post("/payment", paymentHandler.Create)
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	<-runCtx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
