package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/httpui/packages/core/httpfile"
	"github.com/abdul-hamid-achik/httpui/packages/coverage"
	"github.com/spf13/cobra"
)

var (
	coverageSpecFlag   string
	coverageOutputFlag string
	coverageMinFlag    float64
)

var coverageCmd = &cobra.Command{
	Use:   "coverage <file|directory>...",
	Short: "Report which OpenAPI operations the requests exercise",
	Long: `Match the requests of .http files against the operations of an OpenAPI
document and report which operations no request reaches.

Examples:
  httpui coverage ./requests --spec openapi.yaml
  httpui coverage api.http --spec openapi.yaml --min 80
  httpui coverage api.http --spec openapi.yaml --output json`,
	Args: cobra.MinimumNArgs(1),
	RunE: coverageCommand,
}

func init() {
	coverageCmd.Flags().StringVar(&coverageSpecFlag, "spec", getEnvString("HTTPUI_OPENAPI_SPEC", ""), "OpenAPI document to measure against (env: HTTPUI_OPENAPI_SPEC)")
	coverageCmd.Flags().StringVarP(&coverageOutputFlag, "output", "o", "console", "Output format: console, json")
	coverageCmd.Flags().Float64Var(&coverageMinFlag, "min", 0, "Fail when coverage is below this percentage")
}

func coverageCommand(cmd *cobra.Command, args []string) error {
	if coverageSpecFlag == "" {
		return withExitCode(ExitUsageError, fmt.Errorf("--spec is required"))
	}

	analyzer := coverage.NewAnalyzer()
	if err := analyzer.LoadOpenAPI(cmd.Context(), coverageSpecFlag); err != nil {
		return withExitCode(ExitConfigError, err)
	}

	files, err := collectFiles(args)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	var requests []*httpfile.Request
	for _, file := range files {
		report, err := readReport(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error reading %s: %v\n", file, err)
			continue
		}
		for _, item := range report.Items {
			if item.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", item.Err)
			}
		}
		requests = append(requests, report.Requests()...)
	}

	result := analyzer.Analyze(requests)

	switch coverageOutputFlag {
	case "json":
		out, err := result.FormatJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
	case "console":
		fmt.Fprint(cmd.OutOrStdout(), result.FormatConsole())
	default:
		return withExitCode(ExitUsageError, fmt.Errorf("unknown output format %q (use console or json)", coverageOutputFlag))
	}

	if coverageMinFlag > 0 && result.CoveragePercent < coverageMinFlag {
		return withExitCode(ExitRequestFailure, fmt.Errorf("coverage %.1f%% is below the minimum %.1f%%", result.CoveragePercent, coverageMinFlag))
	}
	return nil
}
