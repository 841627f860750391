package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/httpui/packages/core/httpfile"
	"golang.org/x/net/http/httpguts"
)

var (
	// ErrIncompleteRequest is returned for descriptors without a method or url.
	ErrIncompleteRequest = errors.New("request has no method or url")
	// ErrInvalidMethod is returned when the method is not an HTTP token.
	ErrInvalidMethod = errors.New("invalid method")
	// ErrInvalidURL is returned when the url cannot be dispatched.
	ErrInvalidURL = errors.New("invalid URL")
	// ErrInvalidHeader is returned for header names or values that cannot be sent.
	ErrInvalidHeader = errors.New("invalid header")
)

type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    string
	Timeout time.Duration
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:  method,
		URL:     requestURL,
		Headers: make(http.Header),
	}
}

// AddHeader appends a value, keeping earlier values for the same name.
func (r *Request) AddHeader(key, value string) *Request {
	r.Headers.Add(key, value)
	return r
}

func (r *Request) SetHeader(key, value string) *Request {
	r.Headers.Set(key, value)
	return r
}

func (r *Request) SetBody(body string) *Request {
	r.Body = body
	return r
}

func (r *Request) SetTimeout(d time.Duration) *Request {
	r.Timeout = d
	return r
}

// FromDescriptor maps a parsed request onto an outbound request.
//
// The method is upper-cased, the url must be an absolute http(s) url and
// every header must be sendable. Requests without a body carry an explicit
// Content-Length of 0. Do leaves the header to net/http, which sends it for
// POST, PUT and PATCH and omits it for other methods.
func FromDescriptor(desc *httpfile.Request) (*Request, error) {
	if desc == nil || !desc.Complete() {
		return nil, ErrIncompleteRequest
	}

	method := strings.ToUpper(desc.Method)
	if !httpguts.ValidHeaderFieldName(method) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, desc.Method)
	}

	if err := ValidateURL(desc.URL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	r := NewRequest(method, desc.URL)
	for _, h := range desc.Headers {
		if !httpguts.ValidHeaderFieldName(h.Name) || !httpguts.ValidHeaderFieldValue(h.Value) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidHeader, h.Name)
		}
		r.AddHeader(h.Name, h.Value)
	}

	if desc.Body == "" {
		r.SetHeader("Content-Length", "0")
	} else {
		r.SetBody(desc.Body)
	}

	return r, nil
}
