package server

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/propship/internal/domain"
	"github.com/bft-labs/propship/pkg/log"
)

// memStore records every written set and can be told to fail.
type memStore struct {
	err     error
	written chan *domain.RecordSet
}

func newMemStore() *memStore {
	return &memStore{written: make(chan *domain.RecordSet, 16)}
}

func (m *memStore) Write(rs *domain.RecordSet) error {
	m.written <- rs
	return m.err
}

func (m *memStore) next(t *testing.T) *domain.RecordSet {
	t.Helper()
	select {
	case rs := <-m.written:
		return rs
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a stored record set")
		return nil
	}
}

// recordingLogger keeps every message so tests can assert on them.
type recordingLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recordingLogger) record(level, msg string) {
	r.mu.Lock()
	r.msgs = append(r.msgs, level+" "+msg)
	r.mu.Unlock()
}

func (r *recordingLogger) Debug(msg string, _ ...log.Field) { r.record("DEBUG", msg) }
func (r *recordingLogger) Info(msg string, _ ...log.Field)  { r.record("INFO", msg) }
func (r *recordingLogger) Warn(msg string, _ ...log.Field)  { r.record("WARN", msg) }
func (r *recordingLogger) Error(msg string, _ ...log.Field) { r.record("ERROR", msg) }
func (r *recordingLogger) With(...log.Field) log.Logger     { return r }

func (r *recordingLogger) contains(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func waitDone(t *testing.T, w *Worker) {
	t.Helper()
	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("worker %s did not stop", w.ID())
	}
}
