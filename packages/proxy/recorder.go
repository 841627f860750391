// Package proxy provides a reverse proxy that records the requests passing
// through it as .http requests.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/httpui/packages/core/httpfile"
)

// RedactedValue replaces the value of sanitized headers.
const RedactedValue = "REDACTED"

// Recording is a recorded request and the status it was answered with.
type Recording struct {
	Timestamp  time.Time         `json:"timestamp"`
	Request    *httpfile.Request `json:"request"`
	Path       string            `json:"path"`
	StatusCode int               `json:"statusCode"`
	Status     string            `json:"status"`
	Duration   time.Duration     `json:"duration"`
}

type recordingKey struct{}

// skippedHeaders are set by the transport and would be wrong when replayed.
var skippedHeaders = map[string]bool{
	"Accept-Encoding":   true,
	"Connection":        true,
	"Content-Length":    true,
	"Keep-Alive":        true,
	"Proxy-Connection":  true,
	"Transfer-Encoding": true,
}

// Recorder is an HTTP proxy that records requests
type Recorder struct {
	addr        string
	target      *url.URL
	targetURL   string
	recordings  []Recording
	mutex       sync.Mutex
	logger      *log.Logger
	exclude     []string
	sanitize    []string
	deduplicate bool
	seen        map[string]bool
}

// Option is a functional option for Recorder
type Option func(*Recorder)

// WithAddr sets the listen address, e.g. ":8080".
func WithAddr(addr string) Option {
	return func(r *Recorder) {
		r.addr = addr
	}
}

// WithTargetURL sets the target URL to proxy to
func WithTargetURL(target string) Option {
	return func(r *Recorder) {
		r.targetURL = target
	}
}

// WithLogger logs every recorded or skipped request.
func WithLogger(l *log.Logger) Option {
	return func(r *Recorder) {
		r.logger = l
	}
}

// WithExclude sets paths to exclude from recording
func WithExclude(paths []string) Option {
	return func(r *Recorder) {
		r.exclude = paths
	}
}

// WithSanitize sets headers to redact
func WithSanitize(headers []string) Option {
	return func(r *Recorder) {
		r.sanitize = headers
	}
}

// WithDeduplicate keeps only the first request per method and path.
func WithDeduplicate(enabled bool) Option {
	return func(r *Recorder) {
		r.deduplicate = enabled
	}
}

// NewRecorder creates a new recording proxy
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{
		addr:     ":8080",
		sanitize: []string{"Authorization", "Cookie", "X-Api-Key", "Api-Key"},
		seen:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handler returns the recording reverse proxy.
func (r *Recorder) Handler() (http.Handler, error) {
	if r.targetURL == "" {
		return nil, fmt.Errorf("target URL is required")
	}

	target, err := url.Parse(r.targetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid target URL: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid target URL %q: scheme and host required", r.targetURL)
	}
	r.target = target

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.Host = target.Host
		},
		ModifyResponse: r.recordResponse,
	}
	return r.wrap(proxy), nil
}

// Start serves the proxy until ctx is cancelled.
func (r *Recorder) Start(ctx context.Context) error {
	handler, err := r.Handler()
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:    r.addr,
		Handler: handler,
	}

	ln, err := net.Listen("tcp", r.addr)
	if err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	r.logf("Recording proxy listening on %s, forwarding to %s", ln.Addr(), r.targetURL)

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (r *Recorder) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if r.shouldExclude(req.URL.Path) {
			r.logf("Excluded: %s %s", req.Method, req.URL.Path)
			next.ServeHTTP(w, req)
			return
		}

		var bodyBytes []byte
		if req.Body != nil {
			bodyBytes, _ = io.ReadAll(req.Body)
			req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		recording := &Recording{
			Timestamp: time.Now(),
			Path:      req.URL.Path,
			Request: &httpfile.Request{
				Method:  req.Method,
				URL:     r.targetFor(req.URL),
				Version: httpfile.DefaultVersion,
				Headers: r.headers(req.Header),
				Body:    string(bodyBytes),
			},
		}

		// Completed by recordResponse.
		ctx := context.WithValue(req.Context(), recordingKey{}, recording)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

func (r *Recorder) recordResponse(resp *http.Response) error {
	recording, ok := resp.Request.Context().Value(recordingKey{}).(*Recording)
	if !ok {
		return nil
	}

	recording.StatusCode = resp.StatusCode
	recording.Status = resp.Status
	recording.Duration = time.Since(recording.Timestamp)
	recording.Request.Comment = fmt.Sprintf("# %s %s -> %d", recording.Request.Method, recording.Path, resp.StatusCode)

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.deduplicate {
		key := recording.Request.Method + ":" + recording.Path
		if r.seen[key] {
			r.logf("Skipped duplicate: %s %s", recording.Request.Method, recording.Path)
			return nil
		}
		r.seen[key] = true
	}

	r.recordings = append(r.recordings, *recording)
	r.logf("Recorded: %s %s -> %d (%s)", recording.Request.Method, recording.Path, resp.StatusCode, recording.Duration)
	return nil
}

// targetFor rebuilds the URL the request was forwarded to.
func (r *Recorder) targetFor(u *url.URL) string {
	out := *r.target
	out.Path = strings.TrimSuffix(r.target.Path, "/") + u.Path
	out.RawPath = ""
	out.RawQuery = u.RawQuery
	return out.String()
}

func (r *Recorder) shouldExclude(path string) bool {
	for _, exclude := range r.exclude {
		if strings.Contains(path, exclude) {
			return true
		}
	}
	return false
}

// headers flattens h in name order. Empty values are dropped because a .http
// header line needs a value.
func (r *Recorder) headers(h http.Header) []httpfile.Header {
	names := make([]string, 0, len(h))
	for name := range h {
		if !skippedHeaders[http.CanonicalHeaderKey(name)] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	result := make([]httpfile.Header, 0, len(names))
	for _, name := range names {
		redact := r.shouldRedact(name)
		for _, value := range h[name] {
			if strings.TrimSpace(value) == "" {
				continue
			}
			if redact {
				value = RedactedValue
			}
			result = append(result, httpfile.Header{Name: name, Value: value})
		}
	}
	return result
}

func (r *Recorder) shouldRedact(name string) bool {
	for _, s := range r.sanitize {
		if strings.EqualFold(name, s) {
			return true
		}
	}
	return false
}

// GetRecordings returns all recorded requests
func (r *Recorder) GetRecordings() []Recording {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	result := make([]Recording, len(r.recordings))
	copy(result, r.recordings)
	return result
}

// Requests returns the recorded requests in arrival order.
func (r *Recorder) Requests() []*httpfile.Request {
	recordings := r.GetRecordings()
	requests := make([]*httpfile.Request, len(recordings))
	for i := range recordings {
		requests[i] = recordings[i].Request
	}
	return requests
}

// Clear clears all recordings
func (r *Recorder) Clear() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.recordings = nil
	r.seen = make(map[string]bool)
}

// Export renders the recordings as a .http document.
func (r *Recorder) Export() string {
	return httpfile.Format(r.Requests())
}

// ExportToJSON exports recordings to JSON format
func (r *Recorder) ExportToJSON() ([]byte, error) {
	return json.MarshalIndent(r.GetRecordings(), "", "  ")
}

func (r *Recorder) logf(format string, args ...any) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}
