// Package cli builds the cobra commands shared by propship-client and
// propship-server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/propship/internal/config"
	"github.com/bft-labs/propship/pkg/log"
)

// RunFunc runs an application with the configuration file at path.
// overrides holds values set explicitly on the command line.
type RunFunc func(ctx context.Context, path string, overrides config.Values) error

// Spec describes one propship command.
type Spec struct {
	// App is the configuration prefix, config.AppClient or config.AppServer.
	App     string
	Use     string
	Short   string
	Long    string
	Example string
	Run     RunFunc
}

var errUsage = errors.New("expected exactly one argument: the configuration file")

// NewCommand creates the root command for spec. It requires exactly one
// positional argument and cancels the run context on SIGINT or SIGTERM.
func NewCommand(spec Spec) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           spec.Use + " <config-file>",
		Short:         spec.Short,
		Long:          spec.Long,
		Example:       spec.Example,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				cmd.SilenceUsage = false
				return errUsage
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := config.Values{}
			cmd.Flags().Visit(func(f *pflag.Flag) {
				if f.Name == "log-level" {
					overrides[spec.App+".logLevel"] = f.Value.String()
				}
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return spec.Run(ctx, args[0], overrides)
		},
	}

	cmd.Flags().StringVar(&logLevel, "log-level", string(log.LevelInfo), "log level (debug, info, warn, error); overrides the configuration file")
	return cmd
}

// Execute runs cmd and returns the process exit code.
func Execute(cmd *cobra.Command) int {
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		NewLogger(log.LevelError).Error("propship failed", log.String("command", cmd.Name()), log.Err(err))
		return 1
	}
	return 0
}

// NewLogger returns a console logger on stderr.
func NewLogger(level log.Level) log.Logger {
	return log.NewZerologAdapter(os.Stderr, level)
}

// LoggerFor parses level and returns a console logger on stderr.
func LoggerFor(level string) (log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return NewLogger(lvl), nil
}

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}
