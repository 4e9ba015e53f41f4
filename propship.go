// Package propship ships properties files from a watched directory to a
// remote server over TCP.
//
// A client watches a directory, keeps the entries whose key matches a
// pattern and sends each new file to a server, which writes it into its own
// directory without ever overwriting an existing file.
//
// Example usage:
//
//	cfg, err := propship.LoadServerConfig("server.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := propship.RunServer(ctx, cfg, nil); err != nil {
//	    log.Fatal(err)
//	}
package propship

import (
	"context"

	"github.com/bft-labs/propship/internal/app"
	"github.com/bft-labs/propship/internal/config"
	"github.com/bft-labs/propship/pkg/log"
)

// ClientConfig holds the configuration of the sending side.
type ClientConfig = config.ClientConfig

// ServerConfig holds the configuration of the receiving side.
type ServerConfig = config.ServerConfig

// DefaultClientConfig returns a ClientConfig with the optional settings
// filled in. Directory, server address and port, filter pattern and
// connection delay must still be set.
func DefaultClientConfig() ClientConfig {
	return config.DefaultClientConfig()
}

// DefaultServerConfig returns a ServerConfig with the optional settings
// filled in. Directory, port and retry period must still be set.
func DefaultServerConfig() ServerConfig {
	return config.DefaultServerConfig()
}

// LoadClientConfig reads and validates a client configuration file,
// applying PROPSHIP_CLIENT_* environment overrides.
func LoadClientConfig(path string) (ClientConfig, error) {
	return config.LoadClient(path, nil)
}

// LoadServerConfig reads and validates a server configuration file,
// applying PROPSHIP_SERVER_* environment overrides.
func LoadServerConfig(path string) (ServerConfig, error) {
	return config.LoadServer(path, nil)
}

// RunClient validates cfg and ships files until ctx is cancelled.
// A nil logger discards all output.
func RunClient(ctx context.Context, cfg ClientConfig, logger log.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return app.NewClient(cfg, logger).Run(ctx)
}

// RunServer validates cfg and receives files until ctx is cancelled.
// A nil logger discards all output.
func RunServer(ctx context.Context, cfg ServerConfig, logger log.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return app.NewServer(cfg, logger).Run(ctx)
}
