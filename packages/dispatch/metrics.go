package dispatch

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// latencies records request durations in microseconds.
type latencies struct {
	histogram *hdrhistogram.Histogram
}

func newLatencies() *latencies {
	return &latencies{
		// 1us to 60s range, 3 significant digits
		histogram: hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
	}
}

func (l *latencies) record(d time.Duration) {
	us := d.Microseconds()
	if us < minLatencyUs {
		us = minLatencyUs
	}
	if us > maxLatencyUs {
		us = maxLatencyUs
	}
	_ = l.histogram.RecordValue(us)
}

func (l *latencies) fill(r *Result) {
	if l.histogram.TotalCount() == 0 {
		return
	}
	r.Min = usToDuration(l.histogram.Min())
	r.Max = usToDuration(l.histogram.Max())
	r.Mean = time.Duration(l.histogram.Mean() * float64(time.Microsecond))
	r.P50 = usToDuration(l.histogram.ValueAtQuantile(50))
	r.P95 = usToDuration(l.histogram.ValueAtQuantile(95))
	r.P99 = usToDuration(l.histogram.ValueAtQuantile(99))
}

func usToDuration(us int64) time.Duration {
	return time.Duration(us) * time.Microsecond
}
