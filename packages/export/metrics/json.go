package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// JSONExporter writes the aggregate and every request metric as one JSON
// document.
type JSONExporter struct {
	writer io.Writer
	pretty bool
}

// JSONOption is a functional option for JSONExporter
type JSONOption func(*JSONExporter)

// WithJSONPretty enables pretty-printed JSON output
func WithJSONPretty(pretty bool) JSONOption {
	return func(j *JSONExporter) {
		j.pretty = pretty
	}
}

func NewJSONExporter(w io.Writer, opts ...JSONOption) *JSONExporter {
	j := &JSONExporter{writer: w, pretty: true}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// JSONMetricsOutput is the complete JSON output structure
type JSONMetricsOutput struct {
	GeneratedAt string           `json:"generated_at"`
	Summary     *Aggregate       `json:"summary"`
	Requests    []*RequestMetric `json:"requests"`
}

func (j *JSONExporter) Export(c *Collector) error {
	out := JSONMetricsOutput{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Summary:     c.Aggregate(),
		Requests:    c.Metrics(),
	}
	if out.Requests == nil {
		out.Requests = []*RequestMetric{}
	}

	var data []byte
	var err error
	if j.pretty {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}

	if _, err := j.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
