package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/propship/internal/wire"
)

func nextAddr(t *testing.T, addrs <-chan net.Addr) net.Addr {
	t.Helper()
	select {
	case a := <-addrs:
		return a
	case <-time.After(3 * time.Second):
		t.Fatal("server did not start listening")
		return nil
	}
}

func runServer(t *testing.T, srv *Server) (cancel func()) {
	t.Helper()
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	return func() {
		stop()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(3 * time.Second):
			t.Fatal("server did not stop")
		}
	}
}

func TestServer_RebindsForEachClient(t *testing.T) {
	store := newMemStore()
	sup := NewSupervisor(store, DefaultWorkerConfig(), nil)
	addrs := make(chan net.Addr, 8)
	srv := New(Config{BindAddress: "127.0.0.1", RetryPeriod: 10 * time.Millisecond}, sup, nil,
		WithListenHook(func(a net.Addr) { addrs <- a }))
	stop := runServer(t, srv)

	for _, name := range []string{"a.properties", "b.properties"} {
		conn, err := net.Dial("tcp", nextAddr(t, addrs).String())
		require.NoError(t, err)
		defer conn.Close()

		require.NoError(t, wire.Encode(conn, recordSet(name, "k=", "v")))
		assert.Equal(t, name, store.next(t).Name)
	}
	assert.Equal(t, 2, sup.Len())

	stop()
	assert.Eventually(t, func() bool { return sup.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestServer_RetriesWhilePortInUse(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := occupied.Addr().(*net.TCPAddr).Port

	logger := &recordingLogger{}
	addrs := make(chan net.Addr, 8)
	srv := New(Config{BindAddress: "127.0.0.1", Port: port, RetryPeriod: 20 * time.Millisecond},
		NewSupervisor(newMemStore(), DefaultWorkerConfig(), nil), logger,
		WithListenHook(func(a net.Addr) { addrs <- a }))
	stop := runServer(t, srv)
	defer stop()

	require.Eventually(t, func() bool { return logger.contains("already in use") },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, occupied.Close())
	assert.Equal(t, port, nextAddr(t, addrs).(*net.TCPAddr).Port)
}

func TestServer_StopsWhileWaitingForClient(t *testing.T) {
	addrs := make(chan net.Addr, 1)
	srv := New(Config{BindAddress: "127.0.0.1"}, NewSupervisor(newMemStore(), DefaultWorkerConfig(), nil), nil,
		WithListenHook(func(a net.Addr) { addrs <- a }))
	stop := runServer(t, srv)

	nextAddr(t, addrs)
	stop()
}

func TestConfig_Address(t *testing.T) {
	assert.Equal(t, ":7000", Config{Port: 7000}.Address())
	assert.Equal(t, "127.0.0.1:7000", Config{BindAddress: "127.0.0.1", Port: 7000}.Address())
	assert.Equal(t, "[::1]:7000", Config{BindAddress: "::1", Port: 7000}.Address())
}
