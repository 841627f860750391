package httpfile

import "strings"

// DefaultVersion is used when a request line has no version token.
const DefaultVersion = "HTTP/1.1"

// Header is one "Name: Value" line of a request. Duplicates are kept.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Request is one parsed request block.
type Request struct {
	Comment string   `json:"comment,omitempty"`
	Method  string   `json:"method"`
	URL     string   `json:"url"`
	Version string   `json:"version"`
	Headers []Header `json:"headers"`
	Body    string   `json:"body,omitempty"`
	// Line is the 1-based line of the request line.
	Line int `json:"line"`
}

func newRequest() *Request {
	return &Request{
		Version: DefaultVersion,
		Headers: []Header{},
	}
}

// Complete reports whether the request has both a method and a url.
func (r *Request) Complete() bool {
	return r.Method != "" && r.URL != ""
}

// HeaderValues returns the values of every header named name, compared
// case-insensitively, in file order.
func (r *Request) HeaderValues(name string) []string {
	var values []string
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			values = append(values, h.Value)
		}
	}
	return values
}

// Title returns the "METHOD URL VERSION" line of the request.
func (r *Request) Title() string {
	return r.Method + " " + r.URL + " " + r.Version
}

func (r *Request) parseRequestLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) < 1 {
		return ErrNoMethod
	}
	if len(fields) < 2 {
		return ErrNoURL
	}

	r.Method = fields[0]
	r.URL = fields[1]
	if len(fields) > 2 {
		r.Version = fields[2]
	}
	return nil
}

func (r *Request) addComment(line string) {
	r.Comment += line
}

func (r *Request) addBody(line string) {
	r.Body += line
}
