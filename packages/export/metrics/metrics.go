// Package metrics exports the latency and status figures of a dispatch run
// for monitoring systems.
package metrics

import (
	"time"

	"github.com/abdul-hamid-achik/httpui/packages/dispatch"
)

// RequestMetric is the measurement of one dispatched request.
type RequestMetric struct {
	Name       string    `json:"name"`
	Method     string    `json:"method"`
	URL        string    `json:"url"`
	StatusCode int       `json:"status_code"`
	DurationMs float64   `json:"duration_ms"`
	Failed     bool      `json:"failed"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Aggregate summarizes every recorded request.
type Aggregate struct {
	TotalRequests   int64                        `json:"total_requests"`
	SuccessCount    int64                        `json:"success_count"`
	FailureCount    int64                        `json:"failure_count"`
	TotalDurationMs float64                      `json:"total_duration_ms"`
	MinDurationMs   float64                      `json:"min_duration_ms"`
	MaxDurationMs   float64                      `json:"max_duration_ms"`
	AvgDurationMs   float64                      `json:"avg_duration_ms"`
	P50DurationMs   float64                      `json:"p50_duration_ms"`
	P95DurationMs   float64                      `json:"p95_duration_ms"`
	P99DurationMs   float64                      `json:"p99_duration_ms"`
	StatusCodes     map[int]int64                `json:"status_codes"`
	ByRequest       map[string]*RequestAggregate `json:"by_request"`
}

// RequestAggregate summarizes the dispatches of one named request.
type RequestAggregate struct {
	Name          string  `json:"name"`
	TotalRequests int64   `json:"total_requests"`
	FailureCount  int64   `json:"failure_count"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
	MinDurationMs float64 `json:"min_duration_ms"`
	MaxDurationMs float64 `json:"max_duration_ms"`
}

// Exporter writes collected metrics to a destination.
type Exporter interface {
	Export(c *Collector) error
}

// Collector accumulates request metrics.
type Collector struct {
	metrics   []*RequestMetric
	aggregate *Aggregate
}

func NewCollector() *Collector {
	return &Collector{
		aggregate: &Aggregate{
			StatusCodes: make(map[int]int64),
			ByRequest:   make(map[string]*RequestAggregate),
		},
	}
}

// Collect records every outcome of result. Percentiles are taken from the
// run's latency histogram.
func Collect(result *dispatch.Result) *Collector {
	c := NewCollector()
	now := time.Now()
	for _, o := range result.Outcomes {
		m := &RequestMetric{
			Name:       o.Request.Method + " " + o.Request.URL,
			Method:     o.Request.Method,
			URL:        o.Request.URL,
			DurationMs: ms(o.Duration),
			Failed:     o.Failed(),
			Timestamp:  now,
		}
		if o.Response != nil {
			m.StatusCode = o.Response.StatusCode
		}
		if o.Err != nil {
			m.Error = o.Err.Error()
		}
		c.Record(m)
	}

	c.aggregate.P50DurationMs = ms(result.P50)
	c.aggregate.P95DurationMs = ms(result.P95)
	c.aggregate.P99DurationMs = ms(result.P99)
	return c
}

// Record adds one measurement.
func (c *Collector) Record(m *RequestMetric) {
	c.metrics = append(c.metrics, m)

	agg := c.aggregate
	agg.TotalRequests++
	agg.TotalDurationMs += m.DurationMs
	if m.Failed {
		agg.FailureCount++
	} else {
		agg.SuccessCount++
		agg.StatusCodes[m.StatusCode]++
	}

	if agg.TotalRequests == 1 || m.DurationMs < agg.MinDurationMs {
		agg.MinDurationMs = m.DurationMs
	}
	if m.DurationMs > agg.MaxDurationMs {
		agg.MaxDurationMs = m.DurationMs
	}
	agg.AvgDurationMs = agg.TotalDurationMs / float64(agg.TotalRequests)

	ra, ok := agg.ByRequest[m.Name]
	if !ok {
		ra = &RequestAggregate{Name: m.Name, MinDurationMs: m.DurationMs, MaxDurationMs: m.DurationMs}
		agg.ByRequest[m.Name] = ra
	}
	ra.TotalRequests++
	if m.Failed {
		ra.FailureCount++
	}
	ra.MinDurationMs = min(ra.MinDurationMs, m.DurationMs)
	ra.MaxDurationMs = max(ra.MaxDurationMs, m.DurationMs)
	ra.AvgDurationMs = (ra.AvgDurationMs*float64(ra.TotalRequests-1) + m.DurationMs) / float64(ra.TotalRequests)
}

func (c *Collector) Aggregate() *Aggregate {
	return c.aggregate
}

func (c *Collector) Metrics() []*RequestMetric {
	return c.metrics
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
