package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/appstrap/appstrap/internal/config"
	"github.com/appstrap/appstrap/internal/mysql"
	"github.com/appstrap/appstrap/internal/server"
)

// Service is the root lifecycle owner for the appstrap application
type Service struct {
	cfg config.Config

	// Lifecycle state
	started         chan struct{}
	stopped         chan struct{}
	shutdown        chan struct{}
	shutdownStarted atomic.Bool

	httpServer *http.Server
	db         *mysql.Manager

	logger *zap.Logger
}

// New creates a new Service with the given configuration
func New(cfg config.Config, baseLogger *zap.Logger) *Service {
	return &Service{
		cfg:      cfg,
		started:  make(chan struct{}),
		stopped:  make(chan struct{}),
		shutdown: make(chan struct{}),
		logger:   baseLogger.Named("service"),
	}
}

// Initialize sets up the service components (idempotent)
func (s *Service) Initialize(ctx context.Context) error {
	if s.httpServer != nil {
		return nil
	}

	log := s.logger.Sugar()
	log.Info("initializing HTTP server")

	s.db = mysql.NewManager(s.cfg.Database)
	h := server.NewHandler(s.db)
	srv := server.NewServer(fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port), h)
	srv.BaseContext = func(l net.Listener) context.Context { return ctx }
	s.httpServer = srv

	return nil
}

// Run starts the service and blocks until shutdown
func (s *Service) Run(ctx context.Context) error {
	log := s.logger.Sugar()

	select {
	case <-s.started:
		log.Errorw("service already started")
		return nil
	default:
	}

	if s.httpServer == nil {
		return fmt.Errorf("service not initialized - call Initialize() first")
	}

	log.Infow("starting service", "addr", s.httpServer.Addr)

	// Startup half of the lifespan: connect the database before serving
	if err := s.db.Startup(ctx); err != nil {
		return err
	}

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		log.Info("starting HTTP server")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-s.shutdown
		log.Info("initiating graceful shutdown")

		shutdownCtx := context.Background()
		if s.cfg.ShutdownGracePeriod > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(shutdownCtx, s.cfg.ShutdownGracePeriod)
			defer cancel()
		}
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil { //nolint:contextcheck // shutdown outlives the run context
			log.Errorw("graceful shutdown failed, closing", "error", err)
			if cerr := s.httpServer.Close(); cerr != nil {
				log.Errorw("failed to close HTTP server", "error", cerr)
			}
		}
		return nil
	})

	// Monitor for context cancellation (handles external cancellation)
	eg.Go(func() error {
		select {
		case <-s.shutdown:
			// Shutdown was called, let shutdown handler deal with it
			return nil
		case <-egCtx.Done():
			log.Info("context canceled, forcing immediate shutdown")
			// Signal shutdown first to unblock the shutdown handler
			if s.shutdownStarted.CompareAndSwap(false, true) {
				close(s.shutdown)
			}
			// Context canceled = immediate hard shutdown, no grace period
			if err := s.httpServer.Close(); err != nil {
				log.Errorw("failed to close HTTP server", "error", err)
			}
			return egCtx.Err()
		}
	})

	close(s.started)

	err := eg.Wait()

	s.stop()

	return err
}

// Shutdown initiates graceful shutdown of the service (non-blocking)
func (s *Service) Shutdown(ctx context.Context) {
	log := s.logger.Sugar()
	log.Info("shutdown requested")

	// Use atomic CAS to ensure only one shutdown
	if !s.shutdownStarted.CompareAndSwap(false, true) {
		log.Debug("already shutting down")
		return
	}

	close(s.shutdown)
}

// stop performs final cleanup after shutdown
func (s *Service) stop() {
	log := s.logger.Sugar()
	log.Info("stopping service")

	// Shutdown half of the lifespan: dispose of the database pool
	if err := s.db.Shutdown(); err != nil {
		log.Errorw("failed to shut down database", "error", err)
	}

	select {
	case <-s.stopped:
		log.Debug("service already stopped")
	default:
		close(s.stopped)
	}
}

// IsStarted returns true if the service has been started
func (s *Service) IsStarted() bool {
	select {
	case <-s.started:
		return true
	default:
		return false
	}
}

// IsStopped returns true if the service has been stopped
func (s *Service) IsStopped() bool {
	select {
	case <-s.stopped:
		return true
	default:
		return false
	}
}

// IsRunning returns true if the service is running (started but not stopped)
func (s *Service) IsRunning() bool {
	return s.IsStarted() && !s.IsStopped()
}
