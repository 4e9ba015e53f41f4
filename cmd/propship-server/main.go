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
Accept connections from propship clients and write every received file to
the destination directory. Existing files are never overwritten.

The configuration file is TOML (.toml) or a properties file and must set
server.directory, server.port and server.retryPeriod (milliseconds).
`

func main() {
	cmd := cli.NewCommand(cli.Spec{
		App:     config.AppServer,
		Use:     "propship-server",
		Short:   "Receive properties files from propship clients",
		Long:    strings.TrimSpace(longHelp),
		Example: "  propship-server server.properties\n  propship-server --log-level debug server.toml",
		Run:     run,
	})
	os.Exit(cli.Execute(cmd))
}

func run(ctx context.Context, path string, overrides config.Values) error {
	cfg, err := config.LoadServer(path, overrides)
	if err != nil {
		return err
	}
	logger, err := cli.LoggerFor(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.Info("configuration", log.String("config", cfg.String()))

	return app.NewServer(cfg, logger).Run(ctx)
}
