package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/bft-labs/propship/internal/ports"
	"github.com/bft-labs/propship/pkg/log"
)

// Supervisor owns the connection workers. It is safe for concurrent use and
// remains usable after ShutdownAll.
type Supervisor struct {
	store  ports.RecordStore
	cfg    WorkerConfig
	logger log.Logger

	mu      sync.Mutex
	seq     int
	workers map[string]*handle
}

type handle struct {
	worker *Worker
	cancel context.CancelFunc
}

// NewSupervisor creates a supervisor whose workers write to store.
func NewSupervisor(store ports.RecordStore, cfg WorkerConfig, logger log.Logger) *Supervisor {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Supervisor{
		store:   store,
		cfg:     cfg,
		logger:  logger,
		workers: make(map[string]*handle),
	}
}

// Register starts a worker for conn and returns it.
func (s *Supervisor) Register(conn Conn) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.seq++
	id := fmt.Sprintf("%d-%s", s.seq, uuid.NewString()[:8])
	w := newWorker(id, conn, s.store, s.cfg, s.logger.With(log.String("conn", id)))
	s.workers[id] = &handle{worker: w, cancel: cancel}
	s.mu.Unlock()

	stats.ConnectionOpened()
	go func() {
		defer cancel()
		w.run(ctx)
		s.remove(id)
	}()
	return w
}

// Len returns the number of running workers.
func (s *Supervisor) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workers)
}

// ShutdownAll asks every running worker to stop and waits until each has
// released its connection.
func (s *Supervisor) ShutdownAll() {
	s.mu.Lock()
	handles := make([]*handle, 0, len(s.workers))
	for _, h := range s.workers {
		handles = append(handles, h)
	}
	s.mu.Unlock()

	if len(handles) == 0 {
		return
	}
	s.logger.Info("closing all connections", log.Int("count", len(handles)))

	for _, h := range handles {
		h.cancel()
		h.worker.interrupt()
	}
	for _, h := range handles {
		<-h.worker.Done()
	}
}

func (s *Supervisor) remove(id string) {
	s.mu.Lock()
	delete(s.workers, id)
	s.mu.Unlock()
}
