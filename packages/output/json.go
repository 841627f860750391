package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/httpui/packages/core/httpfile"
	"github.com/abdul-hamid-achik/httpui/packages/dispatch"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Summary  JSONSummary `json:"summary"`
	Files    []JSONFile  `json:"files,omitempty"`
	Runs     []JSONRun   `json:"runs,omitempty"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

// JSONSummary counts items across every file or run
type JSONSummary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// JSONFile is the listing of one parsed file
type JSONFile struct {
	File  string     `json:"file"`
	Items []JSONItem `json:"items"`
}

// JSONItem is one parsed request or the error that replaced it
type JSONItem struct {
	Index   int               `json:"index"`
	Request *httpfile.Request `json:"request,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// JSONRun is the outcome of dispatching the requests of one file
type JSONRun struct {
	File     string        `json:"file"`
	Outcomes []JSONOutcome `json:"outcomes"`
	Latency  *JSONLatency  `json:"latency,omitempty"`
	Duration float64       `json:"duration"`
}

// JSONOutcome represents one dispatched request
type JSONOutcome struct {
	Index    int           `json:"index"`
	Method   string        `json:"method"`
	URL      string        `json:"url"`
	Error    string        `json:"error,omitempty"`
	Response *JSONResponse `json:"response,omitempty"`
}

// JSONResponse represents response details
type JSONResponse struct {
	StatusCode int                 `json:"statusCode"`
	Status     string              `json:"status"`
	Headers    map[string][]string `json:"headers,omitempty"`
	Body       string              `json:"body,omitempty"`
	Duration   float64             `json:"duration"`
}

// JSONLatency holds latency percentiles in milliseconds
type JSONLatency struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	P50  float64 `json:"p50"`
	P95  float64 `json:"p95"`
	P99  float64 `json:"p99"`
}

// JSONFormatter accumulates reports and runs and writes them on Flush
type JSONFormatter struct {
	writer  io.Writer
	files   []JSONFile
	runs    []JSONRun
	summary JSONSummary
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatReport(report *FileReport) {
	file := JSONFile{
		File:  report.File,
		Items: make([]JSONItem, 0, len(report.Items)),
	}

	for _, item := range report.Items {
		ji := JSONItem{Index: item.Index, Request: item.Request}
		if item.Err != nil {
			ji.Error = item.Err.Error()
			f.summary.Failed++
		} else {
			f.summary.Passed++
		}
		f.summary.Total++
		file.Items = append(file.Items, ji)
	}

	f.files = append(f.files, file)
}

func (f *JSONFormatter) FormatResult(result *dispatch.Result) {
	run := JSONRun{
		File:     result.File,
		Outcomes: make([]JSONOutcome, 0, len(result.Outcomes)),
		Duration: ms(result.Duration),
	}

	for _, o := range result.Outcomes {
		jo := JSONOutcome{
			Index:  o.Index + 1,
			Method: o.Request.Method,
			URL:    o.Request.URL,
		}
		if o.Err != nil {
			jo.Error = o.Err.Error()
		}
		if o.Response != nil {
			jo.Response = &JSONResponse{
				StatusCode: o.Response.StatusCode,
				Status:     o.Response.Status,
				Headers:    o.Response.Headers,
				Body:       o.Response.BodyString(),
				Duration:   ms(o.Response.Duration),
			}
		}
		run.Outcomes = append(run.Outcomes, jo)
	}

	if result.Succeeded > 0 {
		run.Latency = &JSONLatency{
			Min:  ms(result.Min),
			Max:  ms(result.Max),
			Mean: ms(result.Mean),
			P50:  ms(result.P50),
			P95:  ms(result.P95),
			P99:  ms(result.P99),
		}
	}

	f.summary.Total += len(result.Outcomes)
	f.summary.Passed += result.Succeeded
	f.summary.Failed += result.Failed
	f.runs = append(f.runs, run)
}

func (f *JSONFormatter) FormatError(err error) {
	// Errors are included in individual items
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	output := JSONOutput{
		Summary:  f.summary,
		Files:    f.files,
		Runs:     f.runs,
		Duration: ms(totalDuration),
		Time:     time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
