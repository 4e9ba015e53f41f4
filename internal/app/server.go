package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/propship/internal/config"
	"github.com/bft-labs/propship/internal/metrics"
	"github.com/bft-labs/propship/internal/server"
	"github.com/bft-labs/propship/pkg/log"
)

// Server receives files from clients and writes them to the configured
// directory.
type Server struct {
	cfg       config.ServerConfig
	logger    log.Logger
	lifecycle *Lifecycle
}

// NewServer creates a server application. cfg is expected to be validated.
func NewServer(cfg config.ServerConfig, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Server{
		cfg:       cfg,
		logger:    logger,
		lifecycle: NewLifecycle(logger),
	}
}

// State returns the lifecycle state.
func (s *Server) State() State { return s.lifecycle.State() }

// Run accepts connections until ctx is cancelled. On return every connection
// has been closed.
func (s *Server) Run(ctx context.Context) (err error) {
	if err := s.lifecycle.TransitionTo(StateStarting, "run"); err != nil {
		return err
	}
	defer func() { s.lifecycle.finish(err) }()

	store := server.NewDirStore(s.cfg.Directory, s.logger.With(log.String("component", "store")))
	sup := server.NewSupervisor(store, server.WorkerConfig{
		Threshold:    s.cfg.FailureThreshold,
		FailureDelay: s.cfg.FailureDelay,
	}, s.logger)

	srv := server.New(server.Config{
		BindAddress: s.cfg.BindAddress,
		Port:        s.cfg.Port,
		RetryPeriod: s.cfg.RetryPeriod,
	}, sup, s.logger.With(log.String("component", "listener")))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if s.cfg.MetricsAddress != "" {
		g.Go(func() error {
			return metrics.Serve(ctx, s.cfg.MetricsAddress, s.logger)
		})
	}

	g.Go(func() error {
		defer cancel()
		if err := s.lifecycle.TransitionTo(StateRunning, "listening"); err != nil {
			return err
		}
		return srv.Run(ctx)
	})

	return g.Wait()
}
