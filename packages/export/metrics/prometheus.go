package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// DefaultPrefix namespaces every exported metric name.
const DefaultPrefix = "httpui"

// PrometheusExporter writes metrics in the Prometheus text exposition format.
type PrometheusExporter struct {
	writer io.Writer
	prefix string
}

// PrometheusOption is a functional option for PrometheusExporter
type PrometheusOption func(*PrometheusExporter)

// WithPrometheusPrefix overrides the metric name prefix.
func WithPrometheusPrefix(prefix string) PrometheusOption {
	return func(p *PrometheusExporter) {
		p.prefix = prefix
	}
}

func NewPrometheusExporter(w io.Writer, opts ...PrometheusOption) *PrometheusExporter {
	p := &PrometheusExporter{writer: w, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Export writes the aggregate of c.
func (p *PrometheusExporter) Export(c *Collector) error {
	agg := c.Aggregate()
	var sb strings.Builder

	p.metric(&sb, "requests_total", "counter", "Total number of HTTP requests sent")
	fmt.Fprintf(&sb, "%s_requests_total %d\n\n", p.prefix, agg.TotalRequests)

	p.metric(&sb, "requests_failed_total", "counter", "Requests that could not be sent or answered")
	fmt.Fprintf(&sb, "%s_requests_failed_total %d\n\n", p.prefix, agg.FailureCount)

	p.metric(&sb, "request_duration_ms", "gauge", "Request duration in milliseconds")
	fmt.Fprintf(&sb, "%s_request_duration_ms{quantile=\"min\"} %.2f\n", p.prefix, agg.MinDurationMs)
	fmt.Fprintf(&sb, "%s_request_duration_ms{quantile=\"max\"} %.2f\n", p.prefix, agg.MaxDurationMs)
	fmt.Fprintf(&sb, "%s_request_duration_ms{quantile=\"avg\"} %.2f\n", p.prefix, agg.AvgDurationMs)
	fmt.Fprintf(&sb, "%s_request_duration_ms{quantile=\"0.50\"} %.2f\n", p.prefix, agg.P50DurationMs)
	fmt.Fprintf(&sb, "%s_request_duration_ms{quantile=\"0.95\"} %.2f\n", p.prefix, agg.P95DurationMs)
	fmt.Fprintf(&sb, "%s_request_duration_ms{quantile=\"0.99\"} %.2f\n\n", p.prefix, agg.P99DurationMs)

	if len(agg.StatusCodes) > 0 {
		p.metric(&sb, "responses_by_status_total", "counter", "Responses by HTTP status code")
		codes := make([]int, 0, len(agg.StatusCodes))
		for code := range agg.StatusCodes {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			fmt.Fprintf(&sb, "%s_responses_by_status_total{status=\"%d\"} %d\n", p.prefix, code, agg.StatusCodes[code])
		}
		sb.WriteString("\n")
	}

	if len(agg.ByRequest) > 0 {
		names := make([]string, 0, len(agg.ByRequest))
		for name := range agg.ByRequest {
			names = append(names, name)
		}
		sort.Strings(names)

		p.metric(&sb, "request_duration_avg_ms", "gauge", "Average duration per request")
		for _, name := range names {
			fmt.Fprintf(&sb, "%s_request_duration_avg_ms{request=\"%s\"} %.2f\n", p.prefix, sanitizeLabel(name), agg.ByRequest[name].AvgDurationMs)
		}
	}

	_, err := io.WriteString(p.writer, sb.String())
	return err
}

func (p *PrometheusExporter) metric(sb *strings.Builder, name, kind, help string) {
	fmt.Fprintf(sb, "# HELP %s_%s %s\n", p.prefix, name, help)
	fmt.Fprintf(sb, "# TYPE %s_%s %s\n", p.prefix, name, kind)
}

// sanitizeLabel makes a string safe for use as a Prometheus label value
func sanitizeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
