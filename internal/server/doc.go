// Package server receives record sets from propship clients and writes them
// to the destination directory.
//
// The [Server] binds, accepts exactly one connection, hands it to the
// [Supervisor] and rebinds. The supervisor runs one [Worker] goroutine per
// connection; a worker closes its connection once its cumulative read
// failures exceed the configured threshold.
package server
