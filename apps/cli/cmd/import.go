package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/httpui/packages/core/httpfile"
	"github.com/abdul-hamid-achik/httpui/packages/import/curl"
	"github.com/abdul-hamid-achik/httpui/packages/import/insomnia"
	"github.com/abdul-hamid-achik/httpui/packages/import/openapi"
	"github.com/spf13/cobra"
)

var (
	importOutputFlag  string
	importBaseURLFlag string
	importTagsFlag    string
	importEnvFlag     string
)

var importCmd = &cobra.Command{
	Use:   "import <format> <source>",
	Short: "Convert other request formats to .http files",
	Long: `Convert requests from other tools into .http files.

Supported formats:
  openapi  - OpenAPI 3.0/3.1 (YAML or JSON, file or URL)
  curl     - curl command lines (use - to read stdin)
  insomnia - Insomnia v4 export

Examples:
  httpui import openapi spec.yaml -o api.http
  httpui import openapi https://petstore3.swagger.io/api/v3/openapi.json --tags pet
  httpui import curl commands.txt
  httpui import insomnia export.json --env staging`,
}

var importOpenAPICmd = &cobra.Command{
	Use:   "openapi <spec-file-or-url>",
	Short: "Import from an OpenAPI specification",
	Long: `Generate one request per operation of an OpenAPI 3 document. Path and
required query parameters are filled with their examples or a value matching
their schema, and JSON bodies are generated from the request schema.`,
	Args: cobra.ExactArgs(1),
	RunE: importOpenAPICommand,
}

var importCurlCmd = &cobra.Command{
	Use:   "curl <file|->",
	Short: "Import from curl commands",
	Long: `Convert curl command lines into requests. Commands may span lines with a
trailing backslash. Options a .http file cannot express, such as -k, are
reported as warnings.`,
	Args: cobra.ExactArgs(1),
	RunE: importCurlCommand,
}

var importInsomniaCmd = &cobra.Command{
	Use:   "insomnia <export-file>",
	Short: "Import from an Insomnia export",
	Long: `Convert the requests of an Insomnia v4 export. Template variables are
resolved against the base environment, merged with --env when given.`,
	Args: cobra.ExactArgs(1),
	RunE: importInsomniaCommand,
}

func init() {
	importCmd.PersistentFlags().StringVarP(&importOutputFlag, "output", "o", "", "Output file path (default: stdout)")

	importOpenAPICmd.Flags().StringVar(&importBaseURLFlag, "base-url", "", "Override base URL from spec")
	importOpenAPICmd.Flags().StringVar(&importTagsFlag, "tags", "", "Filter operations by tags (comma-separated)")

	importInsomniaCmd.Flags().StringVar(&importEnvFlag, "env", getEnvString("HTTPUI_IMPORT_ENV", ""), "Sub-environment to resolve variables from (env: HTTPUI_IMPORT_ENV)")

	importCmd.AddCommand(importOpenAPICmd)
	importCmd.AddCommand(importCurlCmd)
	importCmd.AddCommand(importInsomniaCmd)
}

func importOpenAPICommand(cmd *cobra.Command, args []string) error {
	opts := []openapi.Option{openapi.WithWarnFunc(warnTo(cmd.ErrOrStderr()))}

	if importBaseURLFlag != "" {
		opts = append(opts, openapi.WithBaseURL(importBaseURLFlag))
	}

	if importTagsFlag != "" {
		tags := strings.Split(importTagsFlag, ",")
		for i := range tags {
			tags[i] = strings.TrimSpace(tags[i])
		}
		opts = append(opts, openapi.WithTags(tags))
	}

	requests, err := openapi.NewConverter(opts...).ConvertFile(cmd.Context(), args[0])
	if err != nil {
		return withExitCode(ExitParseError, fmt.Errorf("failed to convert OpenAPI spec: %w", err))
	}

	return writeImported(cmd, requests)
}

func importCurlCommand(cmd *cobra.Command, args []string) error {
	converter := curl.NewConverter(curl.WithWarnFunc(warnTo(cmd.ErrOrStderr())))

	var requests []*httpfile.Request
	var err error
	if args[0] == "-" {
		requests, err = converter.Convert(cmd.InOrStdin())
	} else {
		requests, err = converter.ConvertFile(args[0])
	}
	if err != nil {
		return withExitCode(ExitParseError, fmt.Errorf("failed to convert curl commands: %w", err))
	}

	return writeImported(cmd, requests)
}

func importInsomniaCommand(cmd *cobra.Command, args []string) error {
	opts := []insomnia.Option{insomnia.WithWarnFunc(warnTo(cmd.ErrOrStderr()))}
	if importEnvFlag != "" {
		opts = append(opts, insomnia.WithEnvironment(importEnvFlag))
	}

	requests, err := insomnia.NewConverter(opts...).ConvertFile(args[0])
	if err != nil {
		return withExitCode(ExitParseError, fmt.Errorf("failed to convert Insomnia export: %w", err))
	}

	return writeImported(cmd, requests)
}

func writeImported(cmd *cobra.Command, requests []*httpfile.Request) error {
	if len(requests) == 0 {
		return withExitCode(ExitParseError, fmt.Errorf("no requests found"))
	}

	if importOutputFlag == "" {
		return httpfile.Write(cmd.OutOrStdout(), requests)
	}

	if dir := filepath.Dir(importOutputFlag); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(importOutputFlag, []byte(httpfile.Format(requests)), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d requests to %s\n", len(requests), importOutputFlag)
	return nil
}

func warnTo(w io.Writer) func(format string, args ...any) {
	return func(format string, args ...any) {
		fmt.Fprintf(w, "warning: "+format+"\n", args...)
	}
}
