package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/bft-labs/propship/internal/retry"
	"github.com/bft-labs/propship/pkg/log"
)

// DefaultRetryPeriod is the pause between failed bind or accept attempts.
const DefaultRetryPeriod = 5 * time.Second

// Config holds the listener settings.
type Config struct {
	// BindAddress is the local address to listen on. Empty means all interfaces.
	BindAddress string
	// Port is the TCP port to listen on. Zero picks a free port per bind.
	Port int
	// RetryPeriod is the pause after a failed bind or accept.
	RetryPeriod time.Duration
}

// Address returns the host:port the server binds to.
func (c Config) Address() string {
	return net.JoinHostPort(c.BindAddress, strconv.Itoa(c.Port))
}

// Option configures a Server.
type Option func(*Server)

// WithListenHook registers fn to be called each time the server starts
// listening, with the bound address.
func WithListenHook(fn func(net.Addr)) Option {
	return func(s *Server) {
		s.onListen = fn
	}
}

// Server accepts one connection per bind and hands it to the supervisor.
type Server struct {
	cfg        Config
	policy     retry.Policy
	supervisor *Supervisor
	logger     log.Logger
	lc         net.ListenConfig
	onListen   func(net.Addr)
}

// New creates a server that registers accepted connections with sup.
func New(cfg Config, sup *Supervisor, logger log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if cfg.RetryPeriod <= 0 {
		cfg.RetryPeriod = DefaultRetryPeriod
	}
	s := &Server{
		cfg:        cfg,
		policy:     retry.Fixed(cfg.RetryPeriod),
		supervisor: sup,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run binds, accepts a connection, closes the listener and rebinds, until
// ctx is cancelled. Bind and accept failures are retried after the retry
// period. On return every connection worker has been shut down.
func (s *Server) Run(ctx context.Context) error {
	defer s.supervisor.ShutdownAll()

	addr := s.cfg.Address()
	for {
		var conn net.Conn
		err := s.policy.Do(ctx, func(int) error {
			c, err := s.acceptOne(ctx, addr)
			if err != nil {
				return err
			}
			conn = c
			return nil
		}, func(attempt int, err error, next time.Duration) {
			stats.BindFailed()
			if errors.Is(err, syscall.EADDRINUSE) {
				s.logger.Error("port is already in use, is another server running?",
					log.String("address", addr),
					log.Int("attempt", attempt),
					log.Duration("retry_in", next),
				)
				return
			}
			s.logger.Error("error while waiting for a client to connect",
				log.String("address", addr),
				log.Int("attempt", attempt),
				log.Duration("retry_in", next),
				log.Err(err),
			)
		})
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info("server stopping")
				return nil
			}
			return err
		}

		s.logger.Info("accepted connection", log.String("remote", conn.RemoteAddr().String()))
		s.supervisor.Register(conn)
	}
}

// acceptOne binds addr, waits for a single connection and closes the
// listener before returning.
func (s *Server) acceptOne(ctx context.Context, addr string) (net.Conn, error) {
	ln, err := s.lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}
	defer ln.Close()

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	s.logger.Debug("waiting for a connection", log.String("address", ln.Addr().String()))
	if s.onListen != nil {
		s.onListen(ln.Addr())
	}

	conn, err := ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("accept on %s: %w", addr, err)
	}
	return conn, nil
}
