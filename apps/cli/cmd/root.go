package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFlag  string
	noColorFlag bool
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "httpui",
	Short: "Read, inspect and send requests from .http files.",
	Long: `httpui reads .http request files: plain text blocks of a request line,
headers and a body, separated by lines starting with ###. Requests can be
listed, validated and sent from the command line.`,
	SilenceUsage: true,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", getEnvString("HTTPUI_CONFIG", ""), "Path to config file (env: HTTPUI_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", getEnvBool("HTTPUI_NO_COLOR", false), "Disable colored output (env: HTTPUI_NO_COLOR)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", getEnvBool("HTTPUI_VERBOSE", false), "Verbose output (env: HTTPUI_VERBOSE)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(coverageCmd)
	rootCmd.AddCommand(versionCmd)
}
