package httpfile

import (
	"bufio"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineSource_Next(t *testing.T) {
	s := newLineSource(strings.NewReader("first\r\nsecond\n\nlast"))

	var lines []string
	for {
		line, ok, err := s.next()
		require.NoError(t, err)
		if !ok {
			break
		}
		lines = append(lines, line)
	}

	assert.Equal(t, []string{"first", "second", "", "last"}, lines)
	assert.Equal(t, 4, s.line)
}

func TestLineSource_HasData(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		s := newLineSource(strings.NewReader(""))
		ok, err := s.hasData()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("probe does not consume", func(t *testing.T) {
		s := newLineSource(strings.NewReader("GET /"))
		ok, err := s.hasData()
		require.NoError(t, err)
		assert.True(t, ok)

		line, ok, err := s.next()
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "GET /", line)

		ok, err = s.hasData()
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("read failure", func(t *testing.T) {
		boom := errors.New("boom")
		s := newLineSource(iotest.ErrReader(boom))
		_, err := s.hasData()
		assert.ErrorIs(t, err, boom)
	})
}

func TestLineSource_ReusesBufferedReader(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("x"))
	s := newLineSource(br)
	assert.Same(t, br, s.r)
}
