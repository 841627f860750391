package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/httpui/packages/output"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <file> <index>",
	Short: "Show one request of a .http file",
	Long: `Show a single request by its 1-based position in the file, as
numbered by "httpui list".

Examples:
  httpui show api.http 2`,
	Args: cobra.ExactArgs(2),
	RunE: showCommand,
}

func showCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	report, err := readReport(args[0])
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	indexes, err := parseIndexes(args[1:], len(report.Items))
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	item := report.Items[indexes[0]-1]
	if item.Err != nil {
		return withExitCode(ExitParseError, item.Err)
	}

	f := output.NewConsoleFormatter(
		output.WithWriter(cmd.OutOrStdout()),
		output.WithVerbose(verboseFlag),
		output.WithNoColor(cfg.GetNoColor()),
		output.WithPrettyBody(cfg.GetPrettyBody()),
	)
	f.FormatRequest(item.Index, item.Request)
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
