package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/httpui/packages/core/config"
	"github.com/abdul-hamid-achik/httpui/packages/core/httpfile"
	"github.com/abdul-hamid-achik/httpui/packages/dispatch"
	"github.com/abdul-hamid-achik/httpui/packages/export/metrics"
	"github.com/abdul-hamid-achik/httpui/packages/history"
	"github.com/abdul-hamid-achik/httpui/packages/http"
	"github.com/abdul-hamid-achik/httpui/packages/output"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <file> [index...]",
	Short: "Send requests from a .http file",
	Long: `Send requests from a .http file. Requests are picked by their 1-based
position as numbered by "httpui list"; --all sends every request in order.

Examples:
  httpui send api.http 1
  httpui send api.http 2 3 --verbose
  httpui send api.http --all --rate 5
  httpui send api.http 1 --select data.token
  httpui send api.http --all --history ~/.httpui/history.db
  httpui send api.http --all --metrics run.prom`,
	Args: cobra.MinimumNArgs(1),
	RunE: sendCommand,
}

var (
	sendAllFlag      bool
	sendOutputFlag   string
	selectFlag       string
	rateFlag         float64
	timeoutFlag      string
	proxyFlag        string
	insecureFlag     bool
	bailFlag         bool
	failFlag         bool
	historyFlag      string
	maxRedirectsFlag int
	metricsFlag      string
	metricsFmtFlag   string
)

func init() {
	sendCmd.Flags().BoolVarP(&sendAllFlag, "all", "a", false, "Send every request in the file")
	sendCmd.Flags().StringVarP(&sendOutputFlag, "output", "o", getEnvString("HTTPUI_OUTPUT", "console"), "Output format: console, json (env: HTTPUI_OUTPUT)")
	sendCmd.Flags().StringVarP(&selectFlag, "select", "s", "", "Print only the value at this JSON path of each response (gjson syntax)")
	sendCmd.Flags().Float64VarP(&rateFlag, "rate", "r", getEnvFloat("HTTPUI_RATE", 0), "Maximum requests per second, 0 for no limit (env: HTTPUI_RATE)")
	sendCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("HTTPUI_TIMEOUT", ""), "Request timeout (e.g., 30s, 1m) (env: HTTPUI_TIMEOUT)")
	sendCmd.Flags().StringVar(&proxyFlag, "proxy", getEnvString("HTTPUI_PROXY", ""), "Proxy URL for HTTP requests (env: HTTPUI_PROXY)")
	sendCmd.Flags().BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("HTTPUI_INSECURE", false), "Disable SSL certificate validation (env: HTTPUI_INSECURE)")
	sendCmd.Flags().BoolVar(&bailFlag, "bail", getEnvBool("HTTPUI_BAIL", false), "Stop at the first request that cannot be sent (env: HTTPUI_BAIL)")
	sendCmd.Flags().BoolVarP(&failFlag, "fail", "f", getEnvBool("HTTPUI_FAIL", false), "Exit with an error when a response has a 4xx or 5xx status (env: HTTPUI_FAIL)")
	sendCmd.Flags().StringVar(&historyFlag, "history", getEnvString("HTTPUI_HISTORY", ""), "SQLite database to record sent requests in (env: HTTPUI_HISTORY)")
	sendCmd.Flags().IntVar(&maxRedirectsFlag, "max-redirects", getEnvInt("HTTPUI_MAX_REDIRECTS", 0), "Maximum redirects to follow, 0 for the configured default (env: HTTPUI_MAX_REDIRECTS)")
	sendCmd.Flags().StringVar(&metricsFlag, "metrics", getEnvString("HTTPUI_METRICS", ""), "Write run metrics to this file (env: HTTPUI_METRICS)")
	sendCmd.Flags().StringVar(&metricsFmtFlag, "metrics-format", getEnvString("HTTPUI_METRICS_FORMAT", ""), "Metrics format: prometheus, json (default: from file extension) (env: HTTPUI_METRICS_FORMAT)")
}

func sendCommand(cmd *cobra.Command, args []string) error {
	if sendOutputFlag != "console" && sendOutputFlag != "json" {
		return withExitCode(ExitUsageError, fmt.Errorf("unknown output format %q (use console or json)", sendOutputFlag))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	overrides, err := sendFlagConfig()
	if err != nil {
		return err
	}
	cfg = cfg.Merge(overrides)

	file := args[0]
	report, err := readReport(file)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	requests, err := selectRequests(cmd, report, args[1:])
	if err != nil {
		return err
	}

	client := buildClient(cfg)

	runnerOpts := []dispatch.RunnerOption{
		dispatch.WithClient(client),
		dispatch.WithFile(file),
		dispatch.WithBail(bailFlag),
		dispatch.WithWarnFunc(warnTo(cmd.ErrOrStderr())),
	}

	if cfg.Rate > 0 {
		runnerOpts = append(runnerOpts, dispatch.WithRate(cfg.Rate))
	}

	if cfg.HistoryDB != "" {
		store, err := history.Open(cfg.HistoryDB)
		if err != nil {
			return withExitCode(ExitConfigError, err)
		}
		defer store.Close()
		runnerOpts = append(runnerOpts, dispatch.WithRecorder(store))
	}

	console := output.NewConsoleFormatter(
		output.WithWriter(cmd.OutOrStdout()),
		output.WithVerbose(verboseFlag),
		output.WithNoColor(cfg.GetNoColor()),
		output.WithPrettyBody(cfg.GetPrettyBody()),
	)
	if sendOutputFlag == "console" {
		runnerOpts = append(runnerOpts, dispatch.WithProgress(func(o *dispatch.Outcome) {
			printOutcome(cmd, console, o, len(requests) == 1)
		}))
	}

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(cmd.ErrOrStderr(), "\nReceived interrupt, stopping...")
			cancel()
		case <-ctx.Done():
		}
	}()

	result, runErr := dispatch.NewRunner(runnerOpts...).Run(ctx, requests)

	switch sendOutputFlag {
	case "json":
		f := output.NewJSONFormatter(output.JSONWithWriter(cmd.OutOrStdout()))
		f.FormatResult(result)
		if err := f.Flush(result.Duration); err != nil {
			return fmt.Errorf("error writing output: %w", err)
		}
	default:
		if len(result.Outcomes) > 1 && selectFlag == "" {
			console.FormatSummary(result)
		}
	}

	if metricsFlag != "" {
		if err := writeMetrics(result, metricsFlag, metricsFmtFlag); err != nil {
			return err
		}
	}

	if runErr != nil {
		return runErr
	}
	return sendExitError(result)
}

// selectRequests picks the requests named by 1-based indexes. Without
// indexes every request is sent when --all is set or the file holds a
// single request.
func selectRequests(cmd *cobra.Command, report *output.FileReport, args []string) ([]*httpfile.Request, error) {
	if len(report.Items) == 0 {
		return nil, withExitCode(ExitUsageError, fmt.Errorf("%s has no requests", report.File))
	}

	if len(args) == 0 {
		if !sendAllFlag && len(report.Items) > 1 {
			return nil, withExitCode(ExitUsageError, fmt.Errorf("%s has %d requests: pass an index or --all", report.File, len(report.Items)))
		}
		if !sendAllFlag {
			if err := report.Items[0].Err; err != nil {
				return nil, withExitCode(ExitParseError, err)
			}
			return report.Requests(), nil
		}
		for _, item := range report.Items {
			if item.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: skipping request %d: %v\n", item.Index, item.Err)
			}
		}
		requests := report.Requests()
		if len(requests) == 0 {
			return nil, withExitCode(ExitParseError, fmt.Errorf("%s has no valid requests", report.File))
		}
		return requests, nil
	}

	indexes, err := parseIndexes(args, len(report.Items))
	if err != nil {
		return nil, withExitCode(ExitUsageError, err)
	}

	requests := make([]*httpfile.Request, 0, len(indexes))
	for _, i := range indexes {
		item := report.Items[i-1]
		if item.Err != nil {
			return nil, withExitCode(ExitParseError, item.Err)
		}
		requests = append(requests, item.Request)
	}
	return requests, nil
}

// sendFlagConfig collects the send flags that override the config file.
func sendFlagConfig() (*config.Config, error) {
	overrides := &config.Config{
		MaxRedirects: maxRedirectsFlag,
		Proxy:        proxyFlag,
		Rate:         rateFlag,
		HistoryDB:    historyFlag,
	}

	if timeoutFlag != "" {
		timeout, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return nil, withExitCode(ExitUsageError, fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", timeoutFlag, err))
		}
		if timeout < time.Millisecond {
			return nil, withExitCode(ExitUsageError, fmt.Errorf("invalid timeout value %q: must be at least 1ms", timeoutFlag))
		}
		overrides.Timeout = int(timeout.Milliseconds())
	}

	if insecureFlag {
		overrides.ValidateSSL = config.BoolPtr(false)
	}

	return overrides, nil
}

func buildClient(cfg *config.Config) *http.Client {
	clientOpts := []http.ClientOption{
		http.WithFollowRedirects(cfg.GetFollowRedirects()),
		http.WithMaxRedirects(cfg.MaxRedirects),
		http.WithTimeout(cfg.TimeoutDuration()),
		http.WithValidateSSL(cfg.GetValidateSSL()),
		http.WithDefaultHeader("User-Agent", "httpui/"+version),
		http.WithDefaultHeaders(cfg.Headers),
	}
	if cfg.Proxy != "" {
		clientOpts = append(clientOpts, http.WithProxy(cfg.Proxy))
	}

	return http.NewClient(clientOpts...)
}

func printOutcome(cmd *cobra.Command, console *output.ConsoleFormatter, o *dispatch.Outcome, single bool) {
	if o.Err != nil {
		console.FormatOutcome(o)
		return
	}

	if selectFlag != "" {
		value, ok := output.SelectJSON(o.Response.Body, selectFlag)
		if !ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s %s: no value at %q\n", o.Request.Method, o.Request.URL, selectFlag)
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return
	}

	if single || verboseFlag {
		console.FormatResponse(o.Response)
		return
	}
	console.FormatOutcome(o)
}

func sendExitError(result *dispatch.Result) error {
	if result.Failed > 0 {
		var msgs []string
		for _, o := range result.Outcomes {
			if o.Err != nil {
				msgs = append(msgs, o.Err.Error())
			}
		}
		err := fmt.Errorf("%d of %d requests failed: %s", result.Failed, len(result.Outcomes), strings.Join(msgs, "; "))
		if allInvalid(result) {
			return withExitCode(ExitRequestFailure, err)
		}
		return withExitCode(ExitNetworkError, err)
	}

	if failFlag {
		for _, o := range result.Outcomes {
			if o.Response != nil && o.Response.StatusCode >= 400 {
				return withExitCode(ExitRequestFailure, fmt.Errorf("%s %s: %s", o.Request.Method, o.Request.URL, o.Response.Status))
			}
		}
	}
	return nil
}

// allInvalid reports whether every failure was rejected before any
// network traffic.
func allInvalid(result *dispatch.Result) bool {
	for _, o := range result.Outcomes {
		if o.Err == nil {
			continue
		}
		if !errors.Is(o.Err, http.ErrInvalidMethod) && !errors.Is(o.Err, http.ErrInvalidURL) &&
			!errors.Is(o.Err, http.ErrInvalidHeader) && !errors.Is(o.Err, http.ErrIncompleteRequest) {
			return false
		}
	}
	return true
}

func writeMetrics(result *dispatch.Result, path, format string) error {
	if format == "" {
		format = "prometheus"
		if strings.HasSuffix(path, ".json") {
			format = "json"
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create metrics file: %w", err)
	}
	defer f.Close()

	var exporter metrics.Exporter
	switch format {
	case "prometheus":
		exporter = metrics.NewPrometheusExporter(f)
	case "json":
		exporter = metrics.NewJSONExporter(f)
	default:
		return withExitCode(ExitUsageError, fmt.Errorf("unknown metrics format %q (use prometheus or json)", format))
	}

	if err := exporter.Export(metrics.Collect(result)); err != nil {
		return err
	}
	return f.Close()
}
