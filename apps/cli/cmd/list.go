package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var listOutputFlag string

var listCmd = &cobra.Command{
	Use:   "list <file|directory>...",
	Short: "List all requests in .http files",
	Long: `List every request defined in .http files. Malformed requests are
reported in place and listing continues with the next one.

Examples:
  httpui list api.http
  httpui list ./requests/ --output json`,
	Args: cobra.MinimumNArgs(1),
	RunE: listCommand,
}

func init() {
	listCmd.Flags().StringVarP(&listOutputFlag, "output", "o", getEnvString("HTTPUI_OUTPUT", "console"), "Output format: console, json (env: HTTPUI_OUTPUT)")
}

func listCommand(cmd *cobra.Command, args []string) error {
	if listOutputFlag != "console" && listOutputFlag != "json" {
		return withExitCode(ExitUsageError, fmt.Errorf("unknown output format %q (use console or json)", listOutputFlag))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	files, err := collectFiles(args)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	if len(files) == 0 {
		return withExitCode(ExitUsageError, fmt.Errorf("no .http files found"))
	}

	formatter, err := newFormatter(listOutputFlag, cmd.OutOrStdout(), cfg)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}
	formatter.FormatHeader(version)

	start := time.Now()
	for _, file := range files {
		report, err := readReport(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error reading %s: %v\n", file, err)
			continue
		}
		formatter.FormatReport(report)
	}

	return flush(formatter, time.Since(start))
}
