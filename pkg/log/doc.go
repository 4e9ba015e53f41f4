// Package log provides the logging abstraction shared by the propship client
// and server.
//
// Every component receives a Logger at construction time instead of reaching
// for a global. The zerolog adapter writes human-readable console output to
// stderr; the no-op logger is used by tests.
//
//	logger := log.NewZerologAdapter(os.Stderr, log.LevelInfo)
//	logger = logger.With(log.String("component", "watcher"))
//	logger.Info("observed new file", log.String("file", name))
package log
