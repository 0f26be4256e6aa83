// Package bridged implements app.Runner for the bridge middleware process:
// it assembles the paired settlement state machines, runs the relayer between
// them, and serves the query and admin APIs.
package bridged

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"

	adminservice "github.com/chainsafe/standard-bridge/pkg/admin/service"
	apphttp "github.com/chainsafe/standard-bridge/pkg/app/http"
	"github.com/chainsafe/standard-bridge/pkg/auth"
	"github.com/chainsafe/standard-bridge/pkg/config"
	"github.com/chainsafe/standard-bridge/pkg/migrations/bridgedb"
	"github.com/chainsafe/standard-bridge/pkg/pgutil"
	"github.com/chainsafe/standard-bridge/pkg/relayer"
	"github.com/chainsafe/standard-bridge/pkg/store"
	transferservice "github.com/chainsafe/standard-bridge/pkg/transfer/service"
)

const defaultRequestTimeout = 60 * time.Second

// Server holds cfg to init the bridged process.
type Server struct {
	cfg *config.Config
}

// NewServer initializes a new bridged server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("bridged config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting bridge middleware",
		zap.String("l1", cfg.L1.Name),
		zap.String("l2", cfg.L2.Name),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	dbBun, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer dbBun.Close()

	if err := s.migrate(ctx, dbBun, logger); err != nil {
		return err
	}

	st := store.NewStore(dbBun)

	world, err := BuildWorld(cfg, st, logger)
	if err != nil {
		return fmt.Errorf("assemble bridge pair: %w", err)
	}

	if err := SeedFastNonces(ctx, st, world, logger); err != nil {
		return fmt.Errorf("seed fast nonces: %w", err)
	}

	engine := relayer.NewEngine(&cfg.Relayer, &cfg.Bridge, world.L1.RelaySide, world.L2.RelaySide, st, logger)
	if err := engine.Start(ctx); err != nil {
		return fmt.Errorf("start relayer engine: %w", err)
	}

	if cfg.Monitoring.Enabled {
		go s.serveMetrics(ctx, logger)
	}

	router := s.setupRouter(st, world, logger)

	err = apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)

	// Stop the relayer before deferred DB close kicks in.
	engine.Stop()

	return err
}

// migrate applies any pending bridge database migrations.
func (s *Server) migrate(ctx context.Context, db *bun.DB, logger *zap.Logger) error {
	migrator := migrate.NewMigrator(db, bridgedb.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if group.IsZero() {
		logger.Info("Database schema up to date")
	} else {
		logger.Info("Applied database migrations", zap.String("group", group.String()))
	}
	return nil
}

func (s *Server) setupRouter(st store.Store, world *World, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	timeout := s.cfg.API.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	r.Use(middleware.Timeout(timeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	transfers := transferservice.NewLog(transferservice.NewService(st), logger)
	admin := adminservice.NewLog(adminservice.NewService(world.AdminTargets()), logger)
	tokens := auth.NewTokenService(&s.cfg.API)

	r.Route("/api/v1", func(r chi.Router) {
		transferservice.RegisterRoutes(r, transfers, logger)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireToken(tokens))
			adminservice.RegisterRoutes(r, admin, logger)
		})
	})

	return r
}

// serveMetrics runs the Prometheus endpoint on its own listener so scrapes
// never compete with API traffic.
func (s *Server) serveMetrics(ctx context.Context, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Monitoring.MetricsPort),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	logger.Info("Metrics endpoint enabled", zap.String("address", srv.Addr))
	if err := apphttp.RunServer(ctx, logger, srv, s.cfg.Server.ShutdownTimeout); err != nil {
		logger.Error("Metrics server failed", zap.Error(err))
	}
}

// parseWei parses a base-10 wei amount from config.
func parseWei(field, s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("%s must be a non-negative base-10 integer, got %q", field, s)
	}
	return v, nil
}

// mustAddr converts a validated config address string.
func mustAddr(s string) common.Address {
	return common.HexToAddress(s)
}
