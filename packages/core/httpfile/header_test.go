package httpfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	t.Run("name and value", func(t *testing.T) {
		h, err := parseHeader("content-type: application/json")
		require.NoError(t, err)
		assert.Equal(t, Header{Name: "content-type", Value: "application/json"}, h)
	})

	t.Run("value keeps inner colons without space", func(t *testing.T) {
		h, err := parseHeader("Host: localhost:8080")
		require.NoError(t, err)
		assert.Equal(t, "localhost:8080", h.Value)
	})

	t.Run("value is cut at second separator", func(t *testing.T) {
		h, err := parseHeader("Date: Wed: 21 Oct 2015")
		require.NoError(t, err)
		assert.Equal(t, "Date", h.Name)
		assert.Equal(t, "Wed", h.Value)
	})

	t.Run("missing separator", func(t *testing.T) {
		_, err := parseHeader("content-type application/json")
		assert.ErrorIs(t, err, ErrInvalidHeaderName)
	})

	t.Run("separator line", func(t *testing.T) {
		_, err := parseHeader("###")
		assert.ErrorIs(t, err, ErrInvalidHeaderName)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := parseHeader(": value")
		assert.ErrorIs(t, err, ErrInvalidHeaderName)
	})

	t.Run("nothing after separator", func(t *testing.T) {
		_, err := parseHeader("Accept: ")
		assert.ErrorIs(t, err, ErrInvalidHeaderValue)
	})

	t.Run("trimmed name with trailing colon", func(t *testing.T) {
		_, err := parseHeader("Accept:")
		assert.ErrorIs(t, err, ErrInvalidHeaderValue)
	})
}
