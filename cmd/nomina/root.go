package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"nominacli/internal/config"
	"nominacli/internal/infrastructure"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "nomina",
		Short:         "Extract payroll records from CFDI nómina receipts",
		SilenceUsage:  true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a nominacli.yaml config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	cmd.AddCommand(
		newExtractCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig reads the configuration and applies the persistent flag
// overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = strings.ToLower(o.logLevel)
	}
	return cfg, nil
}

// cliLogger writes text logs to w. File output from the config is ignored
// for one-shot commands.
func cliLogger(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	cfg.Output = "console"
	cfg.Format = "text"
	return infrastructure.NewLogger(cfg, w)
}
