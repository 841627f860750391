package dispatch

import (
	"context"
	"time"

	"github.com/abdul-hamid-achik/httpui/packages/core/httpfile"
	"github.com/abdul-hamid-achik/httpui/packages/http"
	"golang.org/x/time/rate"
)

// Recorder stores the outcome of one dispatched request.
type Recorder interface {
	Record(ctx context.Context, file string, o *Outcome) error
}

// WarnFunc reports problems that do not fail a run.
type WarnFunc func(format string, args ...any)

// Outcome is the result of dispatching one request.
type Outcome struct {
	Index    int
	Request  *httpfile.Request
	Response *http.Response
	Err      error
	Duration time.Duration
}

// Failed reports whether the request could not be sent or answered.
func (o *Outcome) Failed() bool {
	return o.Err != nil
}

// Result summarizes a run.
type Result struct {
	File      string
	Outcomes  []*Outcome
	Succeeded int
	Failed    int
	Duration  time.Duration

	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
	P50  time.Duration
	P95  time.Duration
	P99  time.Duration
}

type Runner struct {
	client    *http.Client
	limiter   *rate.Limiter
	recorder  Recorder
	bail      bool
	file      string
	warn      WarnFunc
	onOutcome func(*Outcome)
}

type RunnerOption func(*Runner)

func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = http.NewClient()
	}
	return r
}

func WithClient(c *http.Client) RunnerOption {
	return func(r *Runner) {
		r.client = c
	}
}

// WithRate limits dispatch to rps requests per second. Zero disables pacing.
func WithRate(rps float64) RunnerOption {
	return func(r *Runner) {
		if rps > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

func WithRecorder(rec Recorder) RunnerOption {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// WithBail stops the run after the first failed request.
func WithBail(bail bool) RunnerOption {
	return func(r *Runner) {
		r.bail = bail
	}
}

// WithFile names the source file passed to the Recorder.
func WithFile(name string) RunnerOption {
	return func(r *Runner) {
		r.file = name
	}
}

func WithWarnFunc(fn WarnFunc) RunnerOption {
	return func(r *Runner) {
		r.warn = fn
	}
}

// WithProgress is called after every dispatched request.
func WithProgress(fn func(*Outcome)) RunnerOption {
	return func(r *Runner) {
		r.onOutcome = fn
	}
}

// Run dispatches requests in order. When ctx is cancelled the outcomes
// collected so far are returned together with the context error.
func (r *Runner) Run(ctx context.Context, requests []*httpfile.Request) (*Result, error) {
	start := time.Now()
	result := &Result{File: r.file}
	lat := newLatencies()

	finish := func() *Result {
		result.Duration = time.Since(start)
		lat.fill(result)
		return result
	}

	for i, req := range requests {
		if err := r.wait(ctx); err != nil {
			return finish(), err
		}

		o := r.dispatch(ctx, i, req)
		result.Outcomes = append(result.Outcomes, o)
		if o.Failed() {
			result.Failed++
		} else {
			result.Succeeded++
			lat.record(o.Duration)
		}

		if r.recorder != nil {
			if err := r.recorder.Record(ctx, r.file, o); err != nil {
				r.warnf("recording %s %s: %v", req.Method, req.URL, err)
			}
		}
		if r.onOutcome != nil {
			r.onOutcome(o)
		}

		if r.bail && o.Failed() {
			break
		}
	}

	return finish(), nil
}

func (r *Runner) wait(ctx context.Context) error {
	if r.limiter != nil {
		return r.limiter.Wait(ctx)
	}
	return ctx.Err()
}

func (r *Runner) dispatch(ctx context.Context, index int, req *httpfile.Request) *Outcome {
	o := &Outcome{Index: index, Request: req}

	start := time.Now()
	resp, err := r.client.Send(ctx, req)
	o.Duration = time.Since(start)
	if err != nil {
		o.Err = err
		return o
	}

	o.Response = resp
	o.Duration = resp.Duration
	return o
}

func (r *Runner) warnf(format string, args ...any) {
	if r.warn != nil {
		r.warn(format, args...)
	}
}
