package server

import (
	"bufio"
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bft-labs/propship/internal/ports"
	"github.com/bft-labs/propship/internal/retry"
	"github.com/bft-labs/propship/internal/wire"
	"github.com/bft-labs/propship/pkg/log"
)

// Defaults for WorkerConfig.
const (
	DefaultFailureThreshold = 5
	DefaultFailureDelay     = 2 * time.Second
)

// WorkerState is the lifecycle state of a connection worker.
type WorkerState int32

const (
	// WorkerActive means the worker is reading from its connection.
	WorkerActive WorkerState = iota
	// WorkerClosed means the connection has been released. Terminal.
	WorkerClosed
)

func (s WorkerState) String() string {
	switch s {
	case WorkerActive:
		return "active"
	case WorkerClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// WorkerConfig tunes how a worker reacts to read failures.
type WorkerConfig struct {
	// Threshold is the number of read failures tolerated. The worker closes
	// on the first failure beyond it.
	Threshold int
	// FailureDelay is the pause after each tolerated failure.
	FailureDelay time.Duration
}

// DefaultWorkerConfig returns the stock failure policy.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		Threshold:    DefaultFailureThreshold,
		FailureDelay: DefaultFailureDelay,
	}
}

// Conn is the connection a worker reads from. net.Conn satisfies it.
type Conn interface {
	io.ReadCloser
}

// deadliner is implemented by connections whose blocked reads can be
// interrupted.
type deadliner interface {
	SetReadDeadline(t time.Time) error
}

// Worker reads record sets from one connection and stores them.
type Worker struct {
	id     string
	conn   Conn
	reader *bufio.Reader
	store  ports.RecordStore
	cfg    WorkerConfig
	logger log.Logger

	failures  atomic.Int32
	state     atomic.Int32
	closeOnce sync.Once
	done      chan struct{}
}

func newWorker(id string, conn Conn, store ports.RecordStore, cfg WorkerConfig, logger log.Logger) *Worker {
	return &Worker{
		id:     id,
		conn:   conn,
		reader: bufio.NewReader(conn),
		store:  store,
		cfg:    cfg,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// ID returns the connection identifier.
func (w *Worker) ID() string { return w.id }

// Failures returns the cumulative number of read failures.
func (w *Worker) Failures() int { return int(w.failures.Load()) }

// State returns the current lifecycle state.
func (w *Worker) State() WorkerState { return WorkerState(w.state.Load()) }

// Done is closed once the worker has stopped and released its connection.
func (w *Worker) Done() <-chan struct{} { return w.done }

// run is the worker loop. It returns when the failure threshold is exceeded
// or ctx is cancelled.
func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	reason := "shutdown"
	defer func() {
		w.close()
		stats.ConnectionClosed(reason)
	}()

	w.logger.Info("listening for files")
	for {
		if ctx.Err() != nil {
			w.logger.Info("connection worker stopping")
			return
		}

		rs, err := wire.Decode(w.reader)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("connection worker stopping")
				return
			}

			n := int(w.failures.Add(1))
			stats.ReadFailed()
			if n > w.cfg.Threshold {
				reason = "failures"
				w.logger.Error("too many read failures, closing connection",
					log.Int("failures", n),
					log.Err(err),
				)
				return
			}

			w.logger.Error("failed to read file from connection",
				log.Int("failures", n),
				log.Duration("retry_in", w.cfg.FailureDelay),
				log.Err(err),
			)
			if retry.Sleep(ctx, w.cfg.FailureDelay) != nil {
				w.logger.Info("connection worker stopping")
				return
			}
			continue
		}

		w.logger.Info("received file", log.String("file", rs.Name), log.Int("entries", rs.Len()))
		if err := w.store.Write(rs); err != nil {
			w.logger.Error("failed to store received file", log.String("file", rs.Name), log.Err(err))
		}
	}
}

// interrupt unblocks a pending read, if the connection supports deadlines.
func (w *Worker) interrupt() {
	if d, ok := w.conn.(deadliner); ok {
		_ = d.SetReadDeadline(time.Now())
	}
}

// close releases the connection and marks the worker closed. Idempotent.
func (w *Worker) close() {
	w.closeOnce.Do(func() {
		if err := w.conn.Close(); err != nil {
			w.logger.Debug("error closing connection", log.Err(err))
		}
		w.state.Store(int32(WorkerClosed))
		w.logger.Info("connection closed", log.Int("failures", w.Failures()))
	})
}
