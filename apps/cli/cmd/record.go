package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/abdul-hamid-achik/httpui/packages/proxy"
	"github.com/spf13/cobra"
)

var (
	recordPortFlag    int
	recordTargetFlag  string
	recordOutputFlag  string
	recordExcludeFlag string
	recordDedupeFlag  bool
	recordJSONFlag    bool
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record requests through a proxy into a .http file",
	Long: `Start a reverse proxy that forwards every request to the target and
records it. On exit the recorded requests are written as a .http file.

Sensitive headers (Authorization, Cookie, X-Api-Key, Api-Key) are redacted.

Examples:
  httpui record --target https://api.example.com
  httpui record --port 9000 --target https://api.example.com -o recorded.http
  httpui record --target https://api.example.com --exclude /health,/metrics --dedupe`,
	RunE: recordCommand,
}

func init() {
	recordCmd.Flags().IntVarP(&recordPortFlag, "port", "p", getEnvInt("HTTPUI_RECORD_PORT", 8080), "Port to run the proxy on (env: HTTPUI_RECORD_PORT)")
	recordCmd.Flags().StringVarP(&recordTargetFlag, "target", "t", "", "Target URL to proxy to (required)")
	recordCmd.Flags().StringVarP(&recordOutputFlag, "output", "o", "", "Output file path (default: stdout)")
	recordCmd.Flags().StringVar(&recordExcludeFlag, "exclude", "", "Paths to exclude from recording (comma-separated)")
	recordCmd.Flags().BoolVar(&recordDedupeFlag, "dedupe", false, "Skip duplicate requests (same method+path)")
	recordCmd.Flags().BoolVar(&recordJSONFlag, "json", false, "Export as JSON instead of .http format")
}

func recordCommand(cmd *cobra.Command, args []string) error {
	if recordTargetFlag == "" {
		return withExitCode(ExitUsageError, fmt.Errorf("target URL is required (--target or -t)"))
	}

	var excludePaths []string
	for _, p := range strings.Split(recordExcludeFlag, ",") {
		if p = strings.TrimSpace(p); p != "" {
			excludePaths = append(excludePaths, p)
		}
	}

	opts := []proxy.Option{
		proxy.WithAddr(fmt.Sprintf(":%d", recordPortFlag)),
		proxy.WithTargetURL(recordTargetFlag),
		proxy.WithExclude(excludePaths),
		proxy.WithDeduplicate(recordDedupeFlag),
	}
	if verboseFlag {
		opts = append(opts, proxy.WithLogger(log.New(cmd.ErrOrStderr(), "", log.LstdFlags)))
	}
	recorder := proxy.NewRecorder(opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(cmd.ErrOrStderr(), "\nStopping proxy and exporting recordings...")
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintf(cmd.ErrOrStderr(), "Recording on http://localhost:%d -> %s (Ctrl+C to stop)\n", recordPortFlag, recordTargetFlag)
	if err := recorder.Start(ctx); err != nil {
		return withExitCode(ExitConfigError, err)
	}

	recordings := recorder.GetRecordings()
	if len(recordings) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "No requests recorded")
		return nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Recorded %d requests\n", len(recordings))

	var out string
	if recordJSONFlag {
		data, err := recorder.ExportToJSON()
		if err != nil {
			return fmt.Errorf("failed to export to JSON: %w", err)
		}
		out = string(data) + "\n"
	} else {
		out = recorder.Export()
	}

	if recordOutputFlag != "" {
		if err := os.WriteFile(recordOutputFlag, []byte(out), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", recordOutputFlag)
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}
