package httpfile

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// lineSource hands out the lines of a reader one at a time. Its cursor is
// shared by every parse attempt and never rewinds.
type lineSource struct {
	r    *bufio.Reader
	line int
}

func newLineSource(r io.Reader) *lineSource {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &lineSource{r: br}
}

// hasData reports whether at least one more byte can be read.
func (s *lineSource) hasData() (bool, error) {
	_, err := s.r.Peek(1)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	return false, err
}

// next returns the next line without its line ending. ok is false once the
// input is exhausted.
func (s *lineSource) next() (line string, ok bool, err error) {
	line, err = s.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	if err != nil && line == "" {
		return "", false, nil
	}

	s.line++
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, true, nil
}
