package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/urfave/cli/v3"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/ourledger/internal/auth"
	"github.com/mmynk/ourledger/internal/config"
	"github.com/mmynk/ourledger/internal/events"
	"github.com/mmynk/ourledger/internal/metrics"
	"github.com/mmynk/ourledger/internal/middleware"
	"github.com/mmynk/ourledger/internal/service"
	"github.com/mmynk/ourledger/internal/storage"
	"github.com/mmynk/ourledger/internal/storage/sqlite"
	"github.com/mmynk/ourledger/pkg/api/apiconnect"
	"github.com/mmynk/ourledger/pkg/logging"
)

const shutdownTimeout = 30 * time.Second

var cmdServe = &cli.Command{
	Name:    "serve",
	Aliases: []string{"start"},
	Usage:   "Start the RPC server",
	Action:  serve,
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.Setup(os.Stderr, level)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.DBPath)

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           newHandler(cfg, store, publisher, m, logger),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Connect server starting", "address", srv.Addr, "metrics", m != nil, "events", cfg.AMQPURL != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

// newPublisher connects to the broker when one is configured.
func newPublisher(cfg *config.Config, logger *slog.Logger) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		logger.Info("Event publishing disabled")
		return events.NopPublisher{}, nil
	}
	publisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP broker: %w", err)
	}
	logger.Info("Event publishing enabled", "exchange", cfg.AMQPExchange)
	return publisher, nil
}

// newHandler mounts every service and the metrics endpoint behind the HTTP
// middleware chain. The auth service accepts anonymous calls; every other
// service requires a token.
func newHandler(cfg *config.Config, store storage.Store, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	var outer []connect.Interceptor
	if m != nil {
		outer = append(outer, m.Interceptor())
	}
	logged := middleware.LoggingInterceptor(logger)
	public := connect.WithInterceptors(slices.Concat(outer, []connect.Interceptor{middleware.OptionalAuth(jwtManager), logged})...)
	private := connect.WithInterceptors(slices.Concat(outer, []connect.Interceptor{middleware.RequireAuth(jwtManager), logged})...)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(service.NewAuthService(authenticator, jwtManager, store, logger), public))
	mux.Handle(apiconnect.NewHouseholdServiceHandler(service.NewHouseholdService(store, logger), private))
	mux.Handle(apiconnect.NewAccountServiceHandler(service.NewAccountService(store, logger), private))
	mux.Handle(apiconnect.NewEntryServiceHandler(service.NewEntryService(store, logger), private))
	mux.Handle(apiconnect.NewSummaryServiceHandler(service.NewSummaryService(store, logger), private))
	mux.Handle(apiconnect.NewSettlementServiceHandler(service.NewSettlementService(store, publisher, m, logger), private))

	if m != nil {
		mux.Handle("/metrics", m.Handler())
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := middleware.Logging(middleware.CORS(cfg.CORSOrigin)(mux))

	// h2c serves HTTP/2 without TLS for gRPC-style clients.
	return h2c.NewHandler(handler, &http2.Server{})
}
