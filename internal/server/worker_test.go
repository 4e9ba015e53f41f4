package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/propship/internal/domain"
	"github.com/bft-labs/propship/internal/wire"
	"github.com/bft-labs/propship/pkg/log"
)

// failingConn fails one read per error received on steps, or returns the
// bytes of a step that carries data.
type failingConn struct {
	steps     chan readStep
	pending   []byte
	closed    chan struct{}
	closeOnce sync.Once
}

type readStep struct {
	data []byte
	err  error
}

func newFailingConn() *failingConn {
	return &failingConn{steps: make(chan readStep), closed: make(chan struct{})}
}

func (c *failingConn) Read(p []byte) (int, error) {
	if len(c.pending) > 0 {
		n := copy(p, c.pending)
		c.pending = c.pending[n:]
		return n, nil
	}
	select {
	case s := <-c.steps:
		if s.err != nil {
			return 0, s.err
		}
		n := copy(p, s.data)
		c.pending = s.data[n:]
		return n, nil
	case <-c.closed:
		return 0, io.ErrClosedPipe
	}
}

func (c *failingConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *failingConn) push(t *testing.T, s readStep) {
	t.Helper()
	select {
	case c.steps <- s:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not read")
	}
}

func (c *failingConn) fail(t *testing.T, err error) {
	t.Helper()
	c.push(t, readStep{err: err})
}

func (c *failingConn) send(t *testing.T, rs *domain.RecordSet) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, wire.Encode(&buf, rs))
	c.push(t, readStep{data: buf.Bytes()})
}

func TestWorker_ClosesAfterSixthFailure(t *testing.T) {
	conn := newFailingConn()
	w := newWorker("test", conn, newMemStore(), WorkerConfig{Threshold: 5}, log.NewNoopLogger())
	go w.run(context.Background())

	readErr := errors.New("connection reset")
	for i := 0; i < 5; i++ {
		conn.fail(t, readErr)
	}
	assert.Equal(t, WorkerActive, w.State())
	select {
	case <-w.Done():
		t.Fatal("worker closed after 5 failures")
	default:
	}

	conn.fail(t, readErr)
	waitDone(t, w)

	assert.Equal(t, 6, w.Failures())
	assert.Equal(t, WorkerClosed, w.State())
	select {
	case <-conn.closed:
	default:
		t.Error("connection was not closed")
	}
}

func TestWorker_SuccessfulReadsDoNotResetFailures(t *testing.T) {
	conn := newFailingConn()
	store := newMemStore()
	w := newWorker("test", conn, store, WorkerConfig{Threshold: 5}, log.NewNoopLogger())
	go w.run(context.Background())

	readErr := errors.New("connection reset")
	for i := 0; i < 3; i++ {
		conn.fail(t, readErr)
	}
	conn.send(t, recordSet("a.properties", "name=", "bob"))
	assert.Equal(t, "a.properties", store.next(t).Name)
	assert.Equal(t, 3, w.Failures())
	assert.Equal(t, WorkerActive, w.State())

	conn.fail(t, readErr)
	conn.fail(t, readErr)
	assert.Equal(t, WorkerActive, w.State())

	conn.fail(t, readErr)
	waitDone(t, w)

	assert.Equal(t, 6, w.Failures())
	assert.Equal(t, WorkerClosed, w.State())
}

func TestWorker_StoresDecodedSets(t *testing.T) {
	srvConn, cliConn := net.Pipe()
	defer cliConn.Close()

	store := newMemStore()
	w := newWorker("test", srvConn, store, DefaultWorkerConfig(), log.NewNoopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go w.run(ctx)

	go func() {
		_ = wire.Encode(cliConn, recordSet("a.properties", "name=", "bob"))
		_ = wire.Encode(cliConn, recordSet("b.properties", "port:", "80"))
	}()

	assert.Equal(t, "a.properties", store.next(t).Name)
	got := store.next(t)
	assert.Equal(t, "b.properties", got.Name)
	assert.Equal(t, map[string]string{"port:": "80"}, got.Entries)

	cancel()
	w.interrupt()
	waitDone(t, w)
	assert.Zero(t, w.Failures())
}

func TestWorker_StoreErrorsAreNotReadFailures(t *testing.T) {
	srvConn, cliConn := net.Pipe()
	defer cliConn.Close()

	store := newMemStore()
	store.err = domain.ErrFileExists
	w := newWorker("test", srvConn, store, WorkerConfig{Threshold: 0}, log.NewNoopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go w.run(ctx)

	go func() {
		for i := 0; i < 3; i++ {
			_ = wire.Encode(cliConn, recordSet("dup.properties", "a=", "1"))
		}
	}()
	for i := 0; i < 3; i++ {
		store.next(t)
	}

	assert.Zero(t, w.Failures())
	assert.Equal(t, WorkerActive, w.State())

	cancel()
	w.interrupt()
	waitDone(t, w)
}

func TestWorker_CorruptFramesCountAsFailures(t *testing.T) {
	srvConn, cliConn := net.Pipe()
	defer cliConn.Close()

	w := newWorker("test", srvConn, newMemStore(), WorkerConfig{Threshold: 1, FailureDelay: time.Millisecond}, log.NewNoopLogger())
	go w.run(context.Background())

	go func() {
		_, _ = io.Copy(cliConn, bytes.NewReader(bytes.Repeat([]byte("garbage!"), 64)))
	}()

	waitDone(t, w)
	assert.Equal(t, 2, w.Failures())
}

func TestWorker_CancelDuringFailureDelay(t *testing.T) {
	conn := newFailingConn()
	w := newWorker("test", conn, newMemStore(), WorkerConfig{Threshold: 5, FailureDelay: time.Hour}, log.NewNoopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go w.run(ctx)

	conn.fail(t, errors.New("boom"))
	cancel()

	waitDone(t, w)
	assert.Equal(t, 1, w.Failures())
	assert.Equal(t, WorkerClosed, w.State())
}

func TestWorkerState_String(t *testing.T) {
	require.Equal(t, "active", WorkerActive.String())
	require.Equal(t, "closed", WorkerClosed.String())
	require.Equal(t, "unknown", WorkerState(9).String())
}
