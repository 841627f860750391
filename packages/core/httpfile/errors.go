package httpfile

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMethod is returned when a request line has no method token.
	ErrNoMethod = errors.New("couldn't parse http method")
	// ErrNoURL is returned when a request line has a method but no url.
	ErrNoURL = errors.New("couldn't parse http url")
	// ErrInvalidHeaderName is returned for header lines without a "Name: " prefix.
	ErrInvalidHeaderName = errors.New("invalid header name")
	// ErrInvalidHeaderValue is returned for header lines with nothing after the separator.
	ErrInvalidHeaderValue = errors.New("invalid header value")
)

// errEndOfInput ends a parse attempt that found no request. It never leaves
// the package: the sequence turns it into io.EOF.
var errEndOfInput = errors.New("end of input before a request was parsed")

// ParseError wraps a failure of one parse attempt with its position.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		if e.File != "" {
			return fmt.Sprintf("%s: %v", e.File, e.Err)
		}
		return e.Err.Error()
	}
	if e.File != "" {
		return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsSyntaxError reports whether err is a malformed request line or header,
// as opposed to a failure of the underlying reader.
func IsSyntaxError(err error) bool {
	return errors.Is(err, ErrNoMethod) ||
		errors.Is(err, ErrNoURL) ||
		errors.Is(err, ErrInvalidHeaderName) ||
		errors.Is(err, ErrInvalidHeaderValue)
}
