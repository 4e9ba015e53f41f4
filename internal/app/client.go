package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/propship/internal/client"
	"github.com/bft-labs/propship/internal/config"
	"github.com/bft-labs/propship/internal/metrics"
	"github.com/bft-labs/propship/internal/retry"
	"github.com/bft-labs/propship/pkg/log"
)

// Client watches the configured directory and ships new files to the server.
type Client struct {
	cfg       config.ClientConfig
	logger    log.Logger
	lifecycle *Lifecycle
}

// NewClient creates a client application. cfg is expected to be validated.
func NewClient(cfg config.ClientConfig, logger log.Logger) *Client {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Client{
		cfg:       cfg,
		logger:    logger,
		lifecycle: NewLifecycle(logger),
	}
}

// State returns the lifecycle state.
func (c *Client) State() State { return c.lifecycle.State() }

// Run starts watching, connects to the server and ships files until ctx is
// cancelled. The directory is watched before connecting so files created
// while the server is unreachable are not missed.
func (c *Client) Run(ctx context.Context) (err error) {
	if err := c.lifecycle.TransitionTo(StateStarting, "run"); err != nil {
		return err
	}
	defer func() { c.lifecycle.finish(err) }()

	filter, err := c.cfg.KeyFilter()
	if err != nil {
		return err
	}
	watcher, err := client.NewWatcher(client.WatcherConfig{
		Dir:         c.cfg.Directory,
		Extension:   c.cfg.Extension,
		GracePeriod: c.cfg.GracePeriod,
	}, filter, c.logger.With(log.String("component", "watcher")))
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if c.cfg.MetricsAddress != "" {
		g.Go(func() error {
			return metrics.Serve(ctx, c.cfg.MetricsAddress, c.logger)
		})
	}

	g.Go(func() error {
		defer cancel()

		connLogger := c.logger.With(log.String("component", "transport"))
		conn, err := client.Connect(ctx, c.cfg.ServerAddress, c.cfg.ServerPort, retry.Fixed(c.cfg.ConnectionDelay), connLogger)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("connect: %w", err)
		}
		defer conn.Close()

		if err := c.lifecycle.TransitionTo(StateRunning, "connected"); err != nil {
			return err
		}
		return watcher.Run(ctx, conn)
	})

	return g.Wait()
}
