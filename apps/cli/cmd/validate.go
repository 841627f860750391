package cmd

import (
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/httpui/packages/core/httpfile"
	"github.com/spf13/cobra"
)

var validateOutputFlag string

var validateCmd = &cobra.Command{
	Use:   "validate <file|directory>...",
	Short: "Validate .http files for syntax errors",
	Long: `Validate .http files for syntax errors without sending anything.
Every malformed request is reported; the command fails if any file has one.

Examples:
  httpui validate api.http
  httpui validate ./requests/ --output junit > report.xml`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateCommand,
}

func init() {
	validateCmd.Flags().StringVarP(&validateOutputFlag, "output", "o", getEnvString("HTTPUI_OUTPUT", "console"), "Output format: console, json, junit, tap (env: HTTPUI_OUTPUT)")
}

func validateCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	if len(files) == 0 {
		return withExitCode(ExitUsageError, fmt.Errorf("no .http files found"))
	}

	if validateOutputFlag == "console" {
		return validateConsole(cmd, files)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	formatter, err := newFormatter(validateOutputFlag, cmd.OutOrStdout(), cfg)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	formatter.FormatHeader(version)

	start := time.Now()
	invalid := 0
	for _, file := range files {
		report, err := readReport(file)
		if err != nil {
			formatter.FormatError(err)
			invalid++
			continue
		}
		formatter.FormatReport(report)
		invalid += report.Failed()
	}

	if err := flush(formatter, time.Since(start)); err != nil {
		return err
	}
	if invalid > 0 {
		return withExitCode(ExitParseError, fmt.Errorf("validation failed: %d invalid requests", invalid))
	}
	return nil
}

// validateConsole prints one line per file, stopping at the first error
// of each.
func validateConsole(cmd *cobra.Command, files []string) error {
	hasErrors := false
	for _, file := range files {
		requests, err := httpfile.ParseFile(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error in %s\n", err)
			hasErrors = true
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s (%d requests)\n", file, len(requests))
	}

	if hasErrors {
		return withExitCode(ExitParseError, fmt.Errorf("validation failed"))
	}
	return nil
}
