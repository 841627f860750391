package httpfile

import (
	"errors"
	"io"
	"iter"
	"os"
	"strings"
)

const separatorPrefix = "###"

type state int

const (
	stateURL state = iota
	stateHeaders
	stateBody
)

// Parser produces the requests of a .http file one at a time. It is not
// safe for concurrent use.
type Parser struct {
	lines *lineSource
	file  string
}

// NewParser returns a parser reading from r. The caller owns r.
func NewParser(r io.Reader) *Parser {
	return &Parser{lines: newLineSource(r)}
}

// WithFile sets the file name used in parse errors.
func (p *Parser) WithFile(name string) *Parser {
	p.file = name
	return p
}

// Next parses the next request. It returns io.EOF when no requests remain.
//
// Any other error fails only this request. Calling Next again starts a
// fresh attempt from the current read position, which may be in the middle
// of the block that failed.
func (p *Parser) Next() (*Request, error) {
	req, err := p.parse()
	if errors.Is(err, errEndOfInput) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, &ParseError{File: p.file, Line: p.lines.line, Err: err}
	}
	return req, nil
}

// All iterates over every remaining request. Failed requests are yielded
// with their error and iteration continues with the next attempt.
func (p *Parser) All() iter.Seq2[*Request, error] {
	return func(yield func(*Request, error) bool) {
		for {
			req, err := p.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(req, err) {
				return
			}
		}
	}
}

// parse runs one attempt of the state machine.
func (p *Parser) parse() (*Request, error) {
	req := newRequest()
	st := stateURL

	ok, err := p.lines.hasData()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errEndOfInput
	}

	for {
		raw, ok, err := p.lines.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			if !req.Complete() {
				return nil, errEndOfInput
			}
			return req, nil
		}

		line := strings.TrimSpace(raw)

		switch st {
		case stateURL:
			if line == "" || isSeparator(line) {
				continue
			}
			if strings.HasPrefix(line, "#") {
				req.addComment(line)
				continue
			}
			if err := req.parseRequestLine(line); err != nil {
				return nil, err
			}
			req.Line = p.lines.line
			st = stateHeaders

		case stateHeaders:
			if line == "" {
				st = stateBody
				continue
			}
			h, err := parseHeader(line)
			if err != nil {
				return nil, err
			}
			req.Headers = append(req.Headers, h)

		case stateBody:
			if line == "" {
				continue
			}
			if isSeparator(line) {
				return req, nil
			}
			req.addBody(line)
		}
	}
}

func isSeparator(line string) bool {
	return strings.HasPrefix(line, separatorPrefix)
}

// Parse reads every request from r. It stops at the first failed request.
func Parse(r io.Reader) ([]*Request, error) {
	return parseAll(NewParser(r))
}

// ParseString parses an in-memory .http document.
func ParseString(input string) ([]*Request, error) {
	return Parse(strings.NewReader(input))
}

// ParseFile opens path and parses every request in it.
func ParseFile(path string) ([]*Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parseAll(NewParser(f).WithFile(path))
}

func parseAll(p *Parser) ([]*Request, error) {
	requests := []*Request{}
	for req, err := range p.All() {
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}
