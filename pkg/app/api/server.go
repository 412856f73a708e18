// Package api implements app.Runner for the reporter API server process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apphttp "github.com/roadguard/reporter-middleware/pkg/app/http"
	"github.com/roadguard/reporter-middleware/pkg/auth"
	"github.com/roadguard/reporter-middleware/pkg/chain"
	"github.com/roadguard/reporter-middleware/pkg/config"
	"github.com/roadguard/reporter-middleware/pkg/identity"
	identityservice "github.com/roadguard/reporter-middleware/pkg/identity/service"
	"github.com/roadguard/reporter-middleware/pkg/kvstore"
	"github.com/roadguard/reporter-middleware/pkg/pgutil"
	reportservice "github.com/roadguard/reporter-middleware/pkg/report/service"
	"github.com/roadguard/reporter-middleware/pkg/reportstore"
)

const defaultRequestTimeout = 60

// Server holds cfg to init the api server.
type Server struct {
	cfg *config.Config
}

// NewServer initializes new api server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("api server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting reporter API server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() { _ = db.Close() }()
	logger.Info("Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
	)

	sessions, err := s.setupSessions()
	if err != nil {
		return err
	}

	slots := kvstore.NewStore(db)
	manager := identity.NewManager(ctx, slots, logger)

	reports := reportstore.NewStore(db)
	reportSvc := reportservice.NewService(reports, logger)

	stopWorker, err := s.startAnchorWorker(ctx, reports, logger)
	if err != nil {
		return err
	}
	defer stopWorker()

	router := s.setupRouter(manager, reportSvc, sessions, logger)

	err = apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)

	// Stop background work before deferred DB close kicks in.
	stopWorker()

	return err
}

func (s *Server) setupSessions() (*auth.Sessions, error) {
	encoded := os.Getenv(s.cfg.Identity.SessionSecretEnv)
	if encoded == "" {
		return nil, fmt.Errorf(
			"session secret not set: env=%s (hint: openssl rand -base64 32)",
			s.cfg.Identity.SessionSecretEnv,
		)
	}

	secret, err := auth.SecretFromBase64(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid session secret: %w", err)
	}

	return auth.NewSessions(secret, s.cfg.Identity.SessionIssuer, s.cfg.Identity.SessionTTL)
}

// startAnchorWorker starts the on-chain anchoring loop when chain support is
// enabled. It returns a stopper, a no-op when anchoring is disabled.
func (s *Server) startAnchorWorker(
	ctx context.Context,
	reports reportstore.Store,
	logger *zap.Logger,
) (func(), error) {
	if !s.cfg.Chain.Enabled {
		logger.Info("Chain anchoring disabled, reports stay pending")
		return func() {}, nil
	}

	client, err := chain.NewClient(&s.cfg.Chain, logger)
	if err != nil {
		return nil, fmt.Errorf("create chain client: %w", err)
	}

	worker, err := chain.NewWorker(chain.WorkerConfig{
		Interval:   s.cfg.Anchor.Interval,
		BatchSize:  s.cfg.Anchor.BatchSize,
		MaxRetries: s.cfg.Anchor.MaxRetries,
	}, reports, client, logger)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("create anchor worker: %w", err)
	}

	worker.Start(ctx)

	var stopped bool
	return func() {
		if stopped {
			return
		}
		stopped = true
		worker.Stop()
		client.Close()
	}, nil
}

func (s *Server) setupRouter(
	manager *identity.Manager,
	reportSvc reportservice.Service,
	sessions *auth.Sessions,
	logger *zap.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Second * defaultRequestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if s.cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		identityservice.RegisterRoutes(r, manager, sessions, logger)
		reportservice.RegisterRoutes(r, reportservice.NewLog(reportSvc, logger), sessions, logger)
	})

	return r
}
