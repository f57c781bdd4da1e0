package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/fingered/internal/cli/health"
	"github.com/marmos91/fingered/internal/cli/output"
	"github.com/marmos91/fingered/internal/cli/timeutil"
	"github.com/marmos91/fingered/internal/logger"
	"github.com/marmos91/fingered/pkg/config"
)

var (
	statusURL    string
	statusOutput string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Long: `Query the /health endpoint of a running fingered daemon.

The daemon serves /health next to /metrics when metrics are enabled. Without
--url the endpoint is http://localhost:<metrics.port> from the configuration.

Examples:
  # Check the local daemon
  fingered status

  # Check another host and print JSON
  fingered status --url http://finger.example.org:9079 -o json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusURL, "url", "", "Base URL of the metrics server")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// daemonStatus is the result of fingered status.
type daemonStatus struct {
	Server            string `json:"server" yaml:"server"`
	Status            string `json:"status" yaml:"status"`
	Healthy           bool   `json:"healthy" yaml:"healthy"`
	StartedAt         string `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Uptime            string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Users             int    `json:"users" yaml:"users"`
	Generation        uint64 `json:"generation" yaml:"generation"`
	ActiveConnections int    `json:"active_connections" yaml:"active_connections"`
	Error             string `json:"error,omitempty" yaml:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusOutput)
	if err != nil {
		return err
	}

	url := statusURL
	if url == "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		url = fmt.Sprintf("http://localhost:%d", cfg.Metrics.Port)
	}

	status := daemonStatus{Server: url, Status: "unreachable"}
	resp, err := health.Fetch(cmd.Context(), url)
	if err != nil {
		status.Error = err.Error()
	} else {
		status.Status = resp.Status
		status.Healthy = resp.Healthy()
		status.StartedAt = resp.Data.StartedAt
		status.Uptime = resp.Data.Uptime
		status.Users = resp.Data.Users
		status.Generation = resp.Data.Generation
		status.ActiveConnections = resp.Data.ActiveConnections
		status.Error = resp.Error
	}

	out := cmd.OutOrStdout()
	if format != output.FormatTable {
		if err := output.NewPrinter(out, format, false).Print(status); err != nil {
			return err
		}
	} else if err := printStatus(cmd, status); err != nil {
		return err
	}

	if !status.Healthy {
		return fmt.Errorf("daemon at %s is %s", url, status.Status)
	}
	return nil
}

func printStatus(cmd *cobra.Command, status daemonStatus) error {
	out := cmd.OutOrStdout()
	color := logger.IsTerminal(os.Stdout) && out == os.Stdout
	printer := output.NewPrinter(out, output.FormatTable, color)

	line := "● " + status.Status
	switch {
	case status.Healthy:
		printer.Success(line)
	case status.Status == "unreachable":
		printer.Error("○ " + status.Status)
	default:
		printer.Warning(line)
	}

	rows := [][2]string{{"Server", status.Server}}
	if status.StartedAt != "" {
		rows = append(rows, [2]string{"Started", timeutil.FormatTime(status.StartedAt)})
	}
	if status.Uptime != "" {
		rows = append(rows, [2]string{"Uptime", timeutil.FormatUptime(status.Uptime)})
	}
	if status.Healthy {
		rows = append(rows,
			[2]string{"Users", fmt.Sprint(status.Users)},
			[2]string{"Generation", fmt.Sprint(status.Generation)},
			[2]string{"Connections", fmt.Sprint(status.ActiveConnections)},
		)
	}
	if status.Error != "" {
		rows = append(rows, [2]string{"Error", status.Error})
	}
	return output.PrintKeyValues(out, rows)
}
