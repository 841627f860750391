package output

import (
	"strings"

	"github.com/fatih/color"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// PrettyBody indents body when it is valid JSON and returns it unchanged
// otherwise.
func PrettyBody(body string) string {
	if body == "" || !gjson.Valid(body) {
		return body
	}
	return strings.TrimRight(string(pretty.Pretty([]byte(body))), "\n")
}

// colorBody is PrettyBody with terminal colors unless colors are disabled.
func colorBody(body string) string {
	if color.NoColor || !gjson.Valid(body) {
		return PrettyBody(body)
	}
	colored := pretty.Color(pretty.Pretty([]byte(body)), pretty.TerminalStyle)
	return strings.TrimRight(string(colored), "\n")
}

// SelectJSON returns the value at a gjson path of a JSON document. Strings
// are returned unquoted, other values as raw JSON.
func SelectJSON(body []byte, path string) (string, bool) {
	if !gjson.ValidBytes(body) {
		return "", false
	}
	result := gjson.GetBytes(body, path)
	if !result.Exists() {
		return "", false
	}
	if result.Type == gjson.String {
		return result.String(), true
	}
	return result.Raw, true
}
