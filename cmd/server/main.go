package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/config"
	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/seed"
	"github.com/mmynk/settleup/internal/service"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/internal/storage/memory"
	"github.com/mmynk/settleup/internal/storage/sqlite"
	"github.com/mmynk/settleup/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.UsesDefaultSecret() {
		logger.Warn("JWT_SECRET is not set, using an insecure default")
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	m := metrics.New()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return fmt.Errorf("failed to connect event publisher: %w", err)
		}
		publisher = p
		logger.Info("Publishing events", "exchange", cfg.AMQPExchange)
	}
	defer publisher.Close()

	opts := []ledger.Option{
		ledger.WithPublisher(publisher),
		ledger.WithMetrics(m),
		ledger.WithEpsilon(cfg.Epsilon()),
	}
	splits := ledger.NewSplitLedger(store, opts...)
	expenses := ledger.NewExpenseService(store, splits, opts...)
	authenticator := auth.NewPasswordAuthenticator(store)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.SeedData {
		if _, err := seed.NewLoader(store, authenticator, expenses, splits).Load(ctx); err != nil {
			return fmt.Errorf("failed to seed data: %w", err)
		}
	}

	mux := http.NewServeMux()
	service.Mount(mux, service.Deps{
		Store:         store,
		Splits:        splits,
		Balances:      ledger.NewBalanceAggregator(store),
		Expenses:      expenses,
		Authenticator: authenticator,
		JWT:           auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration),
		Metrics:       m,
		Logger:        logger,
	})
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if _, err := store.CountUsers(r.Context()); err != nil {
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})

	// h2c serves HTTP/2 without TLS, which Connect's gRPC protocol needs
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h2c.NewHandler(middleware.AccessLog(middleware.CORS(cfg.CORSOrigin)(mux)), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Connect server starting",
			"address", srv.Addr,
			"backend", cfg.DataBackend,
			"url", fmt.Sprintf("http://localhost%s", srv.Addr),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.DataBackend {
	case "memory":
		slog.Info("Storage initialized", "backend", "memory")
		return memory.New(), nil
	default:
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		slog.Info("Storage initialized", "backend", "sqlite", "database", cfg.DBPath)
		return store, nil
	}
}
