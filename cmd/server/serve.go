package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/xoulomon/stellarsave/internal/auth"
	"github.com/xoulomon/stellarsave/internal/config"
	"github.com/xoulomon/stellarsave/internal/engine"
	"github.com/xoulomon/stellarsave/internal/events"
	"github.com/xoulomon/stellarsave/internal/middleware"
	"github.com/xoulomon/stellarsave/internal/scheduler"
	"github.com/xoulomon/stellarsave/internal/service"
	"github.com/xoulomon/stellarsave/internal/storage/sqlite"
	"github.com/xoulomon/stellarsave/internal/telemetry"
	"github.com/xoulomon/stellarsave/pkg/logging"
)

type serveOptions struct {
	port     int
	dbPath   string
	ledgerDB string
}

func newServeCommand() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the RPC server and the payout scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = opts.port
			}
			if cmd.Flags().Changed("db") {
				cfg.DBPath = opts.dbPath
			}
			if cmd.Flags().Changed("ledger-db") {
				cfg.LedgerDBPath = opts.ledgerDB
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().IntVar(&opts.port, "port", 8080, "listen port (overrides PORT)")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "group database path (overrides DB_PATH)")
	cmd.Flags().StringVar(&opts.ledgerDB, "ledger-db", "", "ledger database path (overrides LEDGER_DB_PATH)")

	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	shutdownTracing, err := telemetry.Setup(ctx, "stellarsave", cfg.OTELEndpoint)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("Failed to flush traces", "error", err)
		}
	}()
	if cfg.OTELEndpoint != "" {
		logger.Info("Tracing enabled", "endpoint", cfg.OTELEndpoint)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.DBPath)

	ledger, err := sqlite.OpenLedger(cfg.LedgerDBPath)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer ledger.Close()
	logger.Info("Ledger initialized", "database", cfg.LedgerDBPath, "custody", cfg.CustodyAddress)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := events.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	eng, err := engine.New(engine.Config{
		Store:      store,
		Transferer: ledger,
		Authorizer: middleware.ContextAuthorizer{},
		Custody:    cfg.CustodyAddress,
		Emitter:    events.Multi{events.NewLogger(logger), metrics},
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store, cfg.CustodyAddress, cfg.OperatorAddress)
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	interceptors := connect.WithInterceptors(limiter.Interceptor(), middleware.LoggingInterceptor(logger))

	mux := http.NewServeMux()
	groupPath, groupHandler := service.NewGroupServiceHandler(service.NewGroupService(eng, logger), jwtManager, interceptors)
	mux.Handle(groupPath, groupHandler)
	authPath, authHandler := service.NewAuthServiceHandler(service.NewAuthService(authenticator, jwtManager, logger), interceptors)
	mux.Handle(authPath, authHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// h2c serves HTTP/2 without TLS, which Connect's gRPC protocol needs.
	handler := h2c.NewHandler(loggingMiddleware(logger, corsMiddleware(mux)), &http2.Server{})
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go scheduler.New(eng, cfg.OperatorAddress, cfg.SchedulerInterval, nil, logger).Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Connect server starting", "address", server.Addr, "url", fmt.Sprintf("http://localhost%s", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// loggingMiddleware logs all incoming requests.
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		logger.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		logger.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser clients.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
