// Package config implements the "fingered config" subcommands.
package config

import "github.com/spf13/cobra"

// Cmd is the parent of the configuration subcommands.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the server configuration",
	Long: `Create, validate and describe the fingered configuration file.

The configuration file sets logging, telemetry, metrics and listener options.
Users live in a separate users file (server.users_file).`,
}

func init() {
	Cmd.AddCommand(initCmd)
	Cmd.AddCommand(validateCmd)
	Cmd.AddCommand(schemaCmd)
}

// configPath returns the --config persistent flag inherited from the root.
func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}
