// Package curl converts curl command lines into .http requests.
package curl

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/abdul-hamid-achik/httpui/packages/core/httpfile"
)

// Converter converts curl commands to requests.
type Converter struct {
	warn func(format string, args ...any)
}

// Option is a functional option for Converter.
type Option func(*Converter)

// WithWarnFunc receives notes about curl options that a .http file cannot
// express.
func WithWarnFunc(fn func(format string, args ...any)) Option {
	return func(c *Converter) {
		c.warn = fn
	}
}

// NewConverter creates a new curl converter.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParsedCurl represents a parsed curl command.
type ParsedCurl struct {
	Method          string
	URL             string
	Headers         []httpfile.Header
	Body            string
	BasicAuth       string
	Insecure        bool
	FollowRedirects bool
	Name            string
}

// ConvertCommand converts a single curl command.
func (c *Converter) ConvertCommand(curlCmd string) (*httpfile.Request, error) {
	parsed, err := c.Parse(curlCmd)
	if err != nil {
		return nil, err
	}
	return c.ToRequest(parsed), nil
}

// ConvertFile converts a file of curl commands, one per line or continued
// with a trailing backslash.
func (c *Converter) ConvertFile(path string) ([]*httpfile.Request, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return c.Convert(file)
}

// Convert reads curl commands from r.
func (c *Converter) Convert(r io.Reader) ([]*httpfile.Request, error) {
	var commands []string
	var currentCmd strings.Builder
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Handle line continuations
		if strings.HasSuffix(line, "\\") {
			currentCmd.WriteString(strings.TrimSuffix(line, "\\"))
			currentCmd.WriteString(" ")
			continue
		}

		currentCmd.WriteString(line)
		commands = append(commands, currentCmd.String())
		currentCmd.Reset()
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// Handle any remaining command
	if currentCmd.Len() > 0 {
		commands = append(commands, currentCmd.String())
	}

	requests := make([]*httpfile.Request, 0, len(commands))
	for i, cmd := range commands {
		req, err := c.ConvertCommand(cmd)
		if err != nil {
			return nil, fmt.Errorf("failed to convert command %d: %w", i+1, err)
		}
		requests = append(requests, req)
	}

	return requests, nil
}

// Parse parses a curl command string into a ParsedCurl struct.
func (c *Converter) Parse(curlCmd string) (*ParsedCurl, error) {
	parsed := &ParsedCurl{
		Headers: []httpfile.Header{},
	}

	curlCmd = strings.TrimSpace(curlCmd)
	if curlCmd == "curl" {
		return nil, fmt.Errorf("no URL specified")
	}
	curlCmd = strings.TrimPrefix(curlCmd, "curl ")

	tokens := tokenize(curlCmd)

	var data []string
	head := false

	value := func(i int) (string, error) {
		if i+1 < len(tokens) {
			return tokens[i+1], nil
		}
		return "", fmt.Errorf("missing value for %s", tokens[i])
	}

	i := 0
	for i < len(tokens) {
		token := tokens[i]

		switch token {
		case "-X", "--request":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			parsed.Method = strings.ToUpper(v)
			i += 2

		case "-H", "--header":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			c.addHeader(parsed, v)
			i += 2

		case "-d", "--data", "--data-raw", "--data-binary", "--data-ascii":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			data = append(data, v)
			i += 2

		case "--json":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			data = append(data, v)
			parsed.Headers = append(parsed.Headers,
				httpfile.Header{Name: "Content-Type", Value: "application/json"},
				httpfile.Header{Name: "Accept", Value: "application/json"})
			i += 2

		case "-u", "--user":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			parsed.BasicAuth = v
			i += 2

		case "-A", "--user-agent", "-e", "--referer", "-b", "--cookie":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			parsed.Headers = append(parsed.Headers, httpfile.Header{Name: headerFor(token), Value: v})
			i += 2

		case "--url":
			v, err := value(i)
			if err != nil {
				return nil, err
			}
			parsed.URL = v
			i += 2

		case "-I", "--head":
			head = true
			i++

		case "-k", "--insecure":
			parsed.Insecure = true
			i++

		case "-L", "--location":
			parsed.FollowRedirects = true
			i++

		default:
			switch {
			case strings.HasPrefix(token, "-"):
				// Skip unknown flags with potential values
				if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") && !isURL(tokens[i+1]) {
					i += 2
				} else {
					i++
				}
			default:
				if parsed.URL == "" && isURL(token) {
					parsed.URL = token
				}
				i++
			}
		}
	}

	if parsed.URL == "" {
		return nil, fmt.Errorf("no URL found in curl command")
	}

	if len(data) > 0 {
		parsed.Body = strings.Join(data, "&")
	}

	if parsed.Method == "" {
		switch {
		case head:
			parsed.Method = "HEAD"
		case parsed.Body != "":
			parsed.Method = "POST"
		default:
			parsed.Method = "GET"
		}
	}

	parsed.Name = generateName(parsed.URL, parsed.Method)

	return parsed, nil
}

func (c *Converter) addHeader(parsed *ParsedCurl, header string) {
	parts := strings.SplitN(header, ":", 2)
	if len(parts) != 2 {
		c.warnf("skipping header %q: no colon", header)
		return
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" || value == "" {
		c.warnf("skipping header %q: .http headers need a name and a value", header)
		return
	}
	parsed.Headers = append(parsed.Headers, httpfile.Header{Name: key, Value: value})
}

// ToRequest converts a ParsedCurl to a request. Basic credentials become an
// Authorization header.
func (c *Converter) ToRequest(parsed *ParsedCurl) *httpfile.Request {
	req := &httpfile.Request{
		Comment: "# " + parsed.Name,
		Method:  parsed.Method,
		URL:     parsed.URL,
		Version: httpfile.DefaultVersion,
		Headers: append([]httpfile.Header{}, parsed.Headers...),
		Body:    parsed.Body,
	}

	if parsed.BasicAuth != "" {
		token := base64.StdEncoding.EncodeToString([]byte(parsed.BasicAuth))
		req.Headers = append(req.Headers, httpfile.Header{Name: "Authorization", Value: "Basic " + token})
	}

	if parsed.Insecure {
		c.warnf("%s: -k has no .http equivalent, send with --insecure", parsed.Name)
	}
	if parsed.FollowRedirects {
		c.warnf("%s: -L has no .http equivalent, redirects follow the followRedirects setting", parsed.Name)
	}

	return req
}

func (c *Converter) warnf(format string, args ...any) {
	if c.warn != nil {
		c.warn(format, args...)
	}
}

func headerFor(flag string) string {
	switch flag {
	case "-A", "--user-agent":
		return "User-Agent"
	case "-e", "--referer":
		return "Referer"
	default:
		return "Cookie"
	}
}

// tokenize splits a curl command into tokens, respecting quotes.
func tokenize(cmd string) []string {
	var tokens []string
	var current strings.Builder
	inSingleQuote := false
	inDoubleQuote := false
	escaped := false

	for _, r := range cmd {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}

		switch r {
		case '\\':
			if inSingleQuote {
				current.WriteRune(r)
			} else {
				escaped = true
			}
		case '\'':
			if !inDoubleQuote {
				inSingleQuote = !inSingleQuote
			} else {
				current.WriteRune(r)
			}
		case '"':
			if !inSingleQuote {
				inDoubleQuote = !inDoubleQuote
			} else {
				current.WriteRune(r)
			}
		case ' ', '\t':
			if inSingleQuote || inDoubleQuote {
				current.WriteRune(r)
			} else if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// isURL checks if a string looks like a URL.
func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

var urlPattern = regexp.MustCompile(`https?://[^/]+(/[^?#]*)?`)

// generateName generates a request name from the URL and method.
func generateName(url, method string) string {
	matches := urlPattern.FindStringSubmatch(url)

	path := "/"
	if len(matches) > 1 && matches[1] != "" {
		path = matches[1]
	}

	path = strings.Trim(path, "/")
	if path == "" {
		path = "root"
	}

	path = strings.ReplaceAll(path, "/", "_")
	path = strings.ReplaceAll(path, "-", "_")

	return strings.ToLower(method) + "_" + path
}
