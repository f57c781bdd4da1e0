package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marmos91/fingered/internal/cli/output"
	"github.com/marmos91/fingered/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the fingered configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  # Validate default config
  fingered config validate

  # Validate specific config file
  fingered config validate --config /etc/fingered/config.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configPath(cmd)

	cfg, err := config.MustLoad(path)
	if err != nil {
		return err
	}

	displayPath := path
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
		if !config.DefaultConfigExists() {
			displayPath += " (not found, using defaults)"
		}
	}

	var warnings []string
	if _, err := os.Stat(cfg.Server.UsersFile); errors.Is(err, os.ErrNotExist) {
		warnings = append(warnings, fmt.Sprintf("users file %s does not exist", cfg.Server.UsersFile))
	}
	if cfg.Server.Listen == "" {
		warnings = append(warnings, "server.listen is empty: ADDRESS or socket activation is required to start")
	}

	out := cmd.OutOrStdout()
	printer := output.NewPrinter(out, output.FormatTable, false)
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	printer.Success("Validation: OK")

	for _, w := range warnings {
		printer.Warning("warning: " + w)
	}

	listen := cfg.Server.Listen
	if listen == "" {
		listen = "-"
	}
	maxConns := "unlimited"
	if cfg.Server.MaxConnections > 0 {
		maxConns = strconv.Itoa(cfg.Server.MaxConnections)
	}
	metrics := "disabled"
	if cfg.Metrics.Enabled {
		metrics = fmt.Sprintf("enabled (port %d)", cfg.Metrics.Port)
	}

	_, _ = fmt.Fprintln(out, "\nConfiguration summary:")
	return output.PrintKeyValues(out, [][2]string{
		{"Listen", listen},
		{"Users file", cfg.Server.UsersFile},
		{"Max connections", maxConns},
		{"Shutdown timeout", cfg.Server.ShutdownTimeout.String()},
		{"Watch users file", strconv.FormatBool(cfg.Server.WatchUsersFile)},
		{"Log level", cfg.Logging.Level},
		{"Metrics", metrics},
		{"Tracing", strconv.FormatBool(cfg.Telemetry.Enabled)},
	})
}
