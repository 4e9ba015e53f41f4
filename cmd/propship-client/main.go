package main

import (
	"context"
	"os"
	"strings"

	"github.com/bft-labs/propship/internal/app"
	"github.com/bft-labs/propship/internal/cli"
	"github.com/bft-labs/propship/internal/config"
	"github.com/bft-labs/propship/pkg/log"
)

const longHelp = `
Watch a directory for new properties files, keep the entries whose key
matches a pattern and ship them to a propship-server. A file is removed
from the watched directory once it has been sent.

The configuration file is TOML (.toml) or a properties file and must set
client.directory, client.serverAddress, client.serverPort,
client.filterPattern and client.connectionDelay (milliseconds).
`

func main() {
	cmd := cli.NewCommand(cli.Spec{
		App:     config.AppClient,
		Use:     "propship-client",
		Short:   "Ship filtered properties files to a propship server",
		Long:    strings.TrimSpace(longHelp),
		Example: "  propship-client client.properties\n  propship-client --log-level debug client.toml",
		Run:     run,
	})
	os.Exit(cli.Execute(cmd))
}

func run(ctx context.Context, path string, overrides config.Values) error {
	cfg, err := config.LoadClient(path, overrides)
	if err != nil {
		return err
	}
	logger, err := cli.LoggerFor(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.Info("configuration", log.String("config", cfg.String()))

	return app.NewClient(cfg, logger).Run(ctx)
}
