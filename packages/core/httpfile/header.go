package httpfile

import "strings"

const headerSeparator = ": "

// parseHeader splits a trimmed header line into name and value.
//
// Only the text between the first and second ": " becomes the value, so
// "Date: Wed: 21" yields "Wed". Values containing ": " are truncated.
func parseHeader(line string) (Header, error) {
	parts := strings.SplitN(line, headerSeparator, 3)
	if len(parts) < 2 {
		// "Name: " arrives here trimmed to "Name:".
		if len(line) > 1 && strings.HasSuffix(line, ":") {
			return Header{}, ErrInvalidHeaderValue
		}
		return Header{}, ErrInvalidHeaderName
	}

	name, value := parts[0], parts[1]
	if name == "" {
		return Header{}, ErrInvalidHeaderName
	}
	if value == "" && len(parts) == 2 {
		return Header{}, ErrInvalidHeaderValue
	}
	return Header{Name: name, Value: value}, nil
}
