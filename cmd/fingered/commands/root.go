// Package commands implements the fingered command line.
package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	configcmd "github.com/marmos91/fingered/cmd/fingered/commands/config"
	"github.com/marmos91/fingered/pkg/config"
	"github.com/marmos91/fingered/pkg/transport"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	cfgFile   string
	usersFile string
	inetd     bool
	watch     bool
	pidFile   string
)

// errNoListenAddr is returned when neither ADDRESS, server.listen nor
// LISTEN_FDS says where to listen.
var errNoListenAddr = errors.New("no listen address: give ADDRESS, set server.listen, or start with socket activation (LISTEN_FDS)")

var rootCmd = &cobra.Command{
	Use:   "fingered [ADDRESS]",
	Short: "RFC 1288 finger server",
	Long: `fingered answers finger (RFC 1288) queries from a static users file.

ADDRESS is an IP address (port 79), IP:port, [IPv6]:port, or a Unix socket
path starting with "/", "./" or "../". It may be omitted when the process is
started with socket activation (LISTEN_FDS), and must be omitted with --inetd.

Send SIGHUP to reload the users file; SIGINT, SIGQUIT or SIGTERM stop the
server after in-flight connections finish.

Examples:
  # Listen on all interfaces, port 79
  fingered 0.0.0.0

  # Listen on a Unix socket with a custom users file
  fingered /run/fingered.sock --users-file ./users.toml

  # Run from inetd, answering one request on stdin/stdout
  fingered --inetd --users-file /etc/fingered/users.toml`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (default: $XDG_CONFIG_HOME/fingered/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&usersFile, "users-file", "", "Path to the users file (default: "+config.DefaultUsersFile+")")

	rootCmd.Flags().BoolVar(&inetd, "inetd", false, "Run as an inetd child process, treating stdin and stdout as the connection")
	rootCmd.Flags().BoolVar(&watch, "watch", false, "Reload the users file when it changes on disk")
	rootCmd.Flags().StringVar(&pidFile, "pid-file", "", "Write the process ID to this file while running")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(configcmd.Cmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

func runRoot(cmd *cobra.Command, args []string) error {
	if inetd && len(args) > 0 {
		_ = cmd.Usage()
		return errors.New("ADDRESS cannot be combined with --inetd")
	}

	cfg, err := config.MustLoad(cfgFile)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg, args); err != nil {
		return err
	}

	if inetd {
		return runInetd(cmd.Context(), cfg)
	}

	err = runDaemon(cmd.Context(), cfg)
	if errors.Is(err, errNoListenAddr) {
		_ = cmd.Usage()
	}
	return err
}

// applyFlags overrides file and environment values with command line flags.
func applyFlags(cmd *cobra.Command, cfg *config.Config, args []string) error {
	if len(args) == 1 {
		if _, err := transport.ParseAddr(args[0]); err != nil {
			return fmt.Errorf("invalid ADDRESS: %w", err)
		}
		cfg.Server.Listen = args[0]
	}
	if cmd.Flags().Changed("users-file") {
		cfg.Server.UsersFile = usersFile
	}
	if cmd.Flags().Changed("watch") {
		cfg.Server.WatchUsersFile = watch
	}
	if cmd.Flags().Changed("pid-file") {
		cfg.Server.PidFile = pidFile
	}
	return nil
}
