package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/httpui/packages/core/httpfile"
	"github.com/abdul-hamid-achik/httpui/packages/dispatch"
	"github.com/abdul-hamid-achik/httpui/packages/http"
	"github.com/fatih/color"
)

type ConsoleFormatter struct {
	writer     io.Writer
	verbose    bool
	noColor    bool
	prettyBody bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer:     os.Stdout,
		prettyBody: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// WithPrettyBody indents JSON bodies before printing them.
func WithPrettyBody(p bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.prettyBody = p
	}
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("httpui"), version)
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

// FormatReport lists every item of a parsed file.
func (f *ConsoleFormatter) FormatReport(report *FileReport) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s\n", bold(report.File))

	for _, item := range report.Items {
		fmt.Fprintf(f.writer, "\n")
		if item.Err != nil {
			fmt.Fprintf(f.writer, "  %s %s\n", red(fmt.Sprintf("[%d] x", item.Index)), red(item.Err.Error()))
			continue
		}
		f.writeRequest(item.Index, item.Request)
	}

	fmt.Fprintf(f.writer, "\nRequests: ")
	if failed := report.Failed(); failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d invalid", failed)))
	}
	fmt.Fprintf(f.writer, "%s\n", green(fmt.Sprintf("%d parsed", report.Parsed())))
}

// FormatRequest prints a single request.
func (f *ConsoleFormatter) FormatRequest(index int, req *httpfile.Request) {
	f.writeRequest(index, req)
}

func (f *ConsoleFormatter) writeRequest(index int, req *httpfile.Request) {
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "  %s", cyan(fmt.Sprintf("[%d]", index)))
	if req.Comment != "" {
		fmt.Fprintf(f.writer, " %s", yellow(req.Comment))
	}
	fmt.Fprintf(f.writer, "\n  %s\n", bold(req.Title()))

	for _, h := range req.Headers {
		fmt.Fprintf(f.writer, "  %s: %s\n", h.Name, h.Value)
	}

	if req.Body != "" {
		fmt.Fprintf(f.writer, "\n%s\n", indent(f.body(req.Body), "  "))
	}

	if f.verbose && req.Line > 0 {
		fmt.Fprintf(f.writer, "  %s\n", cyan(fmt.Sprintf("(line %d)", req.Line)))
	}
}

// FormatResponse prints a response with its status, headers and body.
func (f *ConsoleFormatter) FormatResponse(resp *http.Response) {
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s %s\n", resp.Proto, statusColor(resp)(resp.Status), cyan(fmt.Sprintf("(%dms)", resp.DurationMs())))

	if f.verbose {
		names := make([]string, 0, len(resp.Headers))
		for name := range resp.Headers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			for _, v := range resp.Headers[name] {
				fmt.Fprintf(f.writer, "%s: %s\n", name, v)
			}
		}
	}

	if len(resp.Body) > 0 {
		fmt.Fprintf(f.writer, "\n%s\n", f.body(resp.BodyString()))
	}
}

// FormatOutcome prints one line per dispatched request.
func (f *ConsoleFormatter) FormatOutcome(o *dispatch.Outcome) {
	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	name := o.Request.Method + " " + o.Request.URL
	if o.Err != nil {
		fmt.Fprintf(f.writer, "  %s %s %s\n", red("✗"), name, red(fmt.Sprintf("(%v)", o.Err)))
		return
	}

	fmt.Fprintf(f.writer, "  %s %s %s %s\n", green("✓"), name,
		statusColor(o.Response)(o.Response.Status), cyan(fmt.Sprintf("(%dms)", o.Response.DurationMs())))

	if f.verbose && len(o.Response.Body) > 0 {
		fmt.Fprintf(f.writer, "%s\n", indent(f.body(o.Response.BodyString()), "    "))
	}
}

// FormatSummary prints totals and latency percentiles of a run.
func (f *ConsoleFormatter) FormatSummary(result *dispatch.Result) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintf(f.writer, "\nRequests: ")
	if result.Succeeded > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d sent", result.Succeeded)))
	}
	if result.Failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", result.Failed)))
	}
	fmt.Fprintf(f.writer, "%d total\n", len(result.Outcomes))

	if result.Succeeded > 0 {
		fmt.Fprintf(f.writer, "Latency: min %s  p50 %s  p95 %s  p99 %s  max %s\n",
			result.Min, result.P50, result.P95, result.P99, result.Max)
	}
	fmt.Fprintf(f.writer, "Time:     %dms\n", result.Duration.Milliseconds())
}

func (f *ConsoleFormatter) body(body string) string {
	if !f.prettyBody {
		return body
	}
	return colorBody(body)
}

func statusColor(resp *http.Response) func(a ...any) string {
	switch {
	case resp.IsSuccess():
		return color.New(color.FgGreen).SprintFunc()
	case resp.IsRedirect():
		return color.New(color.FgYellow).SprintFunc()
	default:
		return color.New(color.FgRed).SprintFunc()
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
