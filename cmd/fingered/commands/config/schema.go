package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marmos91/fingered/pkg/config"
	"github.com/marmos91/fingered/pkg/directory"
)

var (
	schemaOutput string
	schemaUsers  bool
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate JSON schema for configuration",
	Long: `Generate a JSON schema for the fingered configuration file, or with
--users for the users file.

The schema can be used for:
  - IDE autocompletion (VS Code, IntelliJ, etc.)
  - Configuration file validation
  - Documentation generation

Examples:
  # Print schema to stdout
  fingered config schema

  # Save the users file schema to a file
  fingered config schema --users --output users.schema.json`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaOutput, "output", "o", "", "Output file (default: stdout)")
	schemaCmd.Flags().BoolVar(&schemaUsers, "users", false, "Generate the users file schema instead")
}

func runSchema(cmd *cobra.Command, args []string) error {
	generate := config.JSONSchema
	if schemaUsers {
		generate = directory.JSONSchema
	}

	schemaJSON, err := generate()
	if err != nil {
		return err
	}

	if schemaOutput != "" {
		if err := os.WriteFile(schemaOutput, schemaJSON, 0644); err != nil {
			return fmt.Errorf("failed to write schema file: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "JSON schema written to %s\n", schemaOutput)
		return nil
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(schemaJSON))
	return nil
}
