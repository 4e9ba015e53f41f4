package client

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/bft-labs/propship/internal/domain"
	"github.com/bft-labs/propship/internal/ports"
	"github.com/bft-labs/propship/internal/retry"
	"github.com/bft-labs/propship/internal/wire"
	"github.com/bft-labs/propship/pkg/log"
)

var _ ports.RecordSender = (*Conn)(nil)

// Conn is an established connection to a propship server.
// Sends are serialized. A failed send does not reconnect; the connection
// stays in use for later sends.
type Conn struct {
	mu     sync.Mutex
	conn   net.Conn
	w      *bufio.Writer
	logger log.Logger
}

// Connect dials address:port, retrying with policy until it succeeds or ctx
// is cancelled.
func Connect(ctx context.Context, address string, port int, policy retry.Policy, logger log.Logger) (*Conn, error) {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	addr := net.JoinHostPort(address, strconv.Itoa(port))

	var (
		d  net.Dialer
		nc net.Conn
	)
	err := policy.Do(ctx, func(int) error {
		c, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return err
		}
		nc = c
		return nil
	}, func(attempt int, err error, next time.Duration) {
		stats.ConnectFailed()
		logger.Error("failed to connect to server",
			log.String("address", addr),
			log.Int("attempt", attempt),
			log.Duration("retry_in", next),
			log.Err(err),
		)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("connected to server", log.String("address", addr))
	return NewConn(nc, logger), nil
}

// NewConn wraps an established connection.
func NewConn(nc net.Conn, logger log.Logger) *Conn {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Conn{
		conn:   nc,
		w:      bufio.NewWriter(nc),
		logger: logger,
	}
}

// RemoteAddr returns the server address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Send writes rs as one frame and flushes it. A ctx deadline becomes the
// write deadline, and cancelling ctx aborts a blocked write.
//
// A failed send drops whatever part of the frame was still buffered and
// clears the write deadline, so the next Send starts from a clean writer.
// Bytes already on the wire are not recalled; the server counts the
// truncated frame as a read failure.
func (c *Conn) Send(ctx context.Context, rs *domain.RecordSet) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(dl)
	}
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetWriteDeadline(time.Now())
		close(fired)
	})
	defer func() {
		if !stop() {
			<-fired
		}
		_ = c.conn.SetWriteDeadline(time.Time{})
	}()

	err := wire.Encode(c.w, rs)
	if err == nil {
		if err = c.w.Flush(); err != nil {
			err = fmt.Errorf("flush: %w", err)
		}
	}
	if err != nil {
		c.w.Reset(c.conn)
		return fmt.Errorf("send %s: %w", rs.Name, err)
	}

	c.logger.Debug("sent record set", log.String("file", rs.Name), log.Int("entries", rs.Len()))
	return nil
}

// Close closes the connection.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}
