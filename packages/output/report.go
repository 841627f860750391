package output

import (
	"fmt"
	"iter"
	"time"

	"github.com/abdul-hamid-achik/httpui/packages/core/httpfile"
)

// Item is one element of a parsed file: a request or the error that
// replaced it. Index is 1-based.
type Item struct {
	Index   int
	Request *httpfile.Request
	Err     error
}

// Name describes the item in one line.
func (i Item) Name() string {
	if i.Request != nil {
		return i.Request.Method + " " + i.Request.URL
	}
	return fmt.Sprintf("item %d", i.Index)
}

// FileReport holds every item parsed from one file, in order.
type FileReport struct {
	File     string
	Items    []Item
	Duration time.Duration
}

// NewFileReport drains seq into a report. Malformed requests are kept as
// failed items; a read failure ends the report since retrying the reader
// would fail the same way.
func NewFileReport(file string, seq iter.Seq2[*httpfile.Request, error]) *FileReport {
	start := time.Now()
	report := &FileReport{File: file}

	for req, err := range seq {
		report.Items = append(report.Items, Item{
			Index:   len(report.Items) + 1,
			Request: req,
			Err:     err,
		})
		if err != nil && !httpfile.IsSyntaxError(err) {
			break
		}
	}

	report.Duration = time.Since(start)
	return report
}

// Requests returns the successfully parsed requests.
func (r *FileReport) Requests() []*httpfile.Request {
	var requests []*httpfile.Request
	for _, item := range r.Items {
		if item.Err == nil {
			requests = append(requests, item.Request)
		}
	}
	return requests
}

// Failed returns the number of items that failed to parse.
func (r *FileReport) Failed() int {
	n := 0
	for _, item := range r.Items {
		if item.Err != nil {
			n++
		}
	}
	return n
}

// Parsed returns the number of requests parsed successfully.
func (r *FileReport) Parsed() int {
	return len(r.Items) - r.Failed()
}
