package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bft-labs/propship/internal/props"
	"github.com/bft-labs/propship/pkg/log"
)

// Application names, used as key prefixes.
const (
	AppClient = "client"
	AppServer = "server"
)

// Defaults for optional settings.
const (
	DefaultExtension        = "properties"
	DefaultGracePeriod      = 100 * time.Millisecond
	DefaultFailureThreshold = 5
	DefaultFailureDelay     = 2 * time.Second
)

// Common holds the settings shared by both applications.
type Common struct {
	// Directory is the watched directory for the client and the destination
	// directory for the server.
	Directory string
	LogLevel  string
	// MetricsAddress enables the /metrics endpoint when not empty.
	MetricsAddress string
}

// ClientConfig holds the client configuration.
type ClientConfig struct {
	Common

	ServerAddress   string
	ServerPort      int
	FilterPattern   string
	ConnectionDelay time.Duration
	Extension       string
	GracePeriod     time.Duration
}

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Common

	Port             int
	RetryPeriod      time.Duration
	BindAddress      string
	FailureThreshold int
	FailureDelay     time.Duration
}

// DefaultClientConfig returns a ClientConfig with the optional settings
// filled in.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Common:      Common{LogLevel: string(log.LevelInfo)},
		Extension:   DefaultExtension,
		GracePeriod: DefaultGracePeriod,
	}
}

// DefaultServerConfig returns a ServerConfig with the optional settings
// filled in.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Common:           Common{LogLevel: string(log.LevelInfo)},
		FailureThreshold: DefaultFailureThreshold,
		FailureDelay:     DefaultFailureDelay,
	}
}

// Validate checks the shared settings for app.
func (c *Common) Validate(app string) error {
	if err := checkDir(app+".directory", c.Directory); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return &Error{Key: app + ".logLevel", Err: err}
	}
	return nil
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *ClientConfig) Validate() error {
	if err := c.Common.Validate(AppClient); err != nil {
		return err
	}
	if c.ServerAddress == "" {
		return keyError("client.serverAddress", "must not be empty")
	}
	if err := checkPort("client.serverPort", c.ServerPort); err != nil {
		return err
	}
	if _, err := props.NewKeyFilter(c.FilterPattern); err != nil {
		return &Error{Key: "client.filterPattern", Err: err}
	}
	if c.ConnectionDelay <= 0 {
		return keyError("client.connectionDelay", "must be positive")
	}
	if c.Extension == "" {
		c.Extension = DefaultExtension
	}
	if c.GracePeriod < 0 {
		return keyError("client.gracePeriod", "must not be negative")
	}
	return nil
}

// KeyFilter compiles the filter pattern.
func (c *ClientConfig) KeyFilter() (*props.KeyFilter, error) {
	f, err := props.NewKeyFilter(c.FilterPattern)
	if err != nil {
		return nil, &Error{Key: "client.filterPattern", Err: err}
	}
	return f, nil
}

// Validate checks the configuration for errors.
func (c *ServerConfig) Validate() error {
	if err := c.Common.Validate(AppServer); err != nil {
		return err
	}
	if err := checkPort("server.port", c.Port); err != nil {
		return err
	}
	if c.RetryPeriod <= 0 {
		return keyError("server.retryPeriod", "must be positive")
	}
	if c.FailureThreshold < 0 {
		return keyError("server.failureThreshold", "must not be negative")
	}
	if c.FailureDelay < 0 {
		return keyError("server.failureDelay", "must not be negative")
	}
	return nil
}

func checkDir(key, dir string) error {
	if dir == "" {
		return keyError(key, "must not be empty")
	}
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return keyError(key, "directory %s does not exist", dir)
		}
		return &Error{Key: key, Err: err}
	}
	if !info.IsDir() {
		return keyError(key, "%s is not a directory", dir)
	}
	return nil
}

func checkPort(key string, port int) error {
	if port < 1 || port > 65535 {
		return keyError(key, "port %d out of range", port)
	}
	return nil
}

// String renders the configuration for logging.
func (c ClientConfig) String() string {
	return fmt.Sprintf("directory=%s server=%s:%d filter=%q connectionDelay=%s extension=%s gracePeriod=%s",
		c.Directory, c.ServerAddress, c.ServerPort, c.FilterPattern, c.ConnectionDelay, c.Extension, c.GracePeriod)
}

// String renders the configuration for logging.
func (c ServerConfig) String() string {
	return fmt.Sprintf("directory=%s bind=%s port=%d retryPeriod=%s failureThreshold=%d failureDelay=%s",
		c.Directory, c.BindAddress, c.Port, c.RetryPeriod, c.FailureThreshold, c.FailureDelay)
}
