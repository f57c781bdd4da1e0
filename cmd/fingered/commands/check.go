package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/marmos91/fingered/internal/cli/output"
	"github.com/marmos91/fingered/internal/logger"
	"github.com/marmos91/fingered/pkg/config"
	"github.com/marmos91/fingered/pkg/directory"
)

var (
	checkOutput  string
	checkNoColor bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the users file",
	Long: `Decode the users file exactly as the server would and print its users.

Non-fatal problems (names clients cannot query, non-ASCII text) are listed as
warnings. The command fails when the file cannot be decoded; TOML syntax
errors point at the offending line.

Examples:
  # Check the users file named in the configuration
  fingered check

  # Check a specific file and print JSON
  fingered check --users-file ./users.toml -o json`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", "table", "Output format (table|json|yaml)")
	checkCmd.Flags().BoolVar(&checkNoColor, "no-color", false, "Disable colored output")
}

// checkReport is the result of fingered check.
type checkReport struct {
	File        string       `json:"file" yaml:"file"`
	EnableIndex bool         `json:"enable_index" yaml:"enable_index"`
	Users       []userReport `json:"users" yaml:"users"`
	Warnings    []string     `json:"warnings" yaml:"warnings"`
}

type userReport struct {
	Name          string `json:"name" yaml:"name"`
	Listed        bool   `json:"listed" yaml:"listed"`
	FixCRLF       bool   `json:"fix_crlf" yaml:"fix_crlf"`
	InfoBytes     int    `json:"info_bytes" yaml:"info_bytes"`
	LongInfoBytes int    `json:"long_info_bytes" yaml:"long_info_bytes"`
	HasLongInfo   bool   `json:"has_long_info" yaml:"has_long_info"`
}

func (r *checkReport) Headers() []string {
	return []string{"User", "Listed", "Info", "Long Info"}
}

func (r *checkReport) Rows() [][]string {
	rows := make([][]string, 0, len(r.Users))
	for _, u := range r.Users {
		longInfo := strconv.Itoa(u.LongInfoBytes) + " bytes"
		if !u.HasLongInfo {
			longInfo += " (info)"
		}
		rows = append(rows, []string{
			u.Name,
			yesNo(u.Listed && r.EnableIndex),
			strconv.Itoa(u.InfoBytes) + " bytes",
			longInfo,
		})
	}
	return rows
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(checkOutput)
	if err != nil {
		return err
	}

	path, err := resolveUsersFile(cmd)
	if err != nil {
		return err
	}

	report, err := checkUsersFile(cmd.Context(), path)
	if err != nil {
		var tomlErr *toml.DecodeError
		if errors.As(err, &tomlErr) {
			return fmt.Errorf("%s: invalid TOML\n%s", path, tomlErr.String())
		}
		return err
	}

	color := !checkNoColor && logger.IsTerminal(os.Stdout) && cmd.OutOrStdout() == os.Stdout
	printer := output.NewPrinter(cmd.OutOrStdout(), format, color)
	if err := printer.Print(report); err != nil {
		return err
	}

	if format == output.FormatTable {
		index := "enabled"
		if !report.EnableIndex {
			index = "disabled"
		}
		printer.Success(fmt.Sprintf("\n%s: %d users, listing %s", report.File, len(report.Users), index))
		for _, w := range report.Warnings {
			printer.Warning("warning: " + w)
		}
	}
	return nil
}

// resolveUsersFile picks --users-file, then server.users_file from the
// configuration, then the default path.
func resolveUsersFile(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("users-file") {
		return usersFile, nil
	}

	cfg, err := config.MustLoad(cfgFile)
	if err != nil {
		return "", err
	}
	return cfg.Server.UsersFile, nil
}

func checkUsersFile(ctx context.Context, path string) (*checkReport, error) {
	dir, err := directory.Load(ctx, directory.FileSource{Path: path})
	if err != nil {
		return nil, err
	}

	report := &checkReport{
		File:        path,
		EnableIndex: dir.EnableIndex,
		Users:       make([]userReport, 0, dir.Len()),
		Warnings:    directory.Warnings(dir),
	}
	if report.Warnings == nil {
		report.Warnings = []string{}
	}

	for _, name := range dir.Names() {
		u, _ := dir.Find(name)
		report.Users = append(report.Users, userReport{
			Name:          name,
			Listed:        !u.Unlisted,
			FixCRLF:       u.FixCRLF,
			InfoBytes:     len(u.InfoText()),
			LongInfoBytes: len(u.LongInfoText()),
			HasLongInfo:   u.LongInfo != nil,
		})
	}
	return report, nil
}
