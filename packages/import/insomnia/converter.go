// Package insomnia converts Insomnia exports into .http requests.
package insomnia

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/abdul-hamid-achik/httpui/packages/core/httpfile"
)

// Converter converts Insomnia exports to requests.
type Converter struct {
	environment string
	warn        func(format string, args ...any)
}

// Option is a functional option for Converter.
type Option func(*Converter)

// WithEnvironment selects the sub-environment whose values are substituted
// for template tags, on top of the base environment.
func WithEnvironment(name string) Option {
	return func(c *Converter) {
		c.environment = name
	}
}

// WithWarnFunc receives notes about data that cannot be carried over.
func WithWarnFunc(fn func(format string, args ...any)) Option {
	return func(c *Converter) {
		c.warn = fn
	}
}

// NewConverter creates a new Insomnia converter.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Export represents an Insomnia export file.
type Export struct {
	Type         string     `json:"_type"`
	ExportFormat int        `json:"__export_format"`
	Resources    []Resource `json:"resources"`
}

// Resource represents an Insomnia resource (request, folder, environment, etc).
type Resource struct {
	ID             string         `json:"_id"`
	Type           string         `json:"_type"`
	ParentID       string         `json:"parentId"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Method         string         `json:"method,omitempty"`
	URL            string         `json:"url,omitempty"`
	Headers        []Header       `json:"headers,omitempty"`
	Body           *Body          `json:"body,omitempty"`
	Parameters     []Parameter    `json:"parameters,omitempty"`
	Authentication *Auth          `json:"authentication,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
}

// Header represents an Insomnia header.
type Header struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Body represents an Insomnia request body.
type Body struct {
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
}

// Parameter represents an Insomnia query parameter.
type Parameter struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Auth represents Insomnia authentication.
type Auth struct {
	Type     string `json:"type"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
}

// ConvertFile converts an Insomnia export file.
func (c *Converter) ConvertFile(path string) ([]*httpfile.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return c.Convert(data)
}

// Convert converts Insomnia export JSON. Template tags are replaced with
// environment values since .http files have no variables.
func (c *Converter) Convert(data []byte) ([]*httpfile.Request, error) {
	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("failed to parse Insomnia export: %w", err)
	}

	var resources []Resource
	folders := make(map[string]Resource)
	var environments []Resource

	for _, res := range export.Resources {
		switch res.Type {
		case "request":
			resources = append(resources, res)
		case "request_group":
			folders[res.ID] = res
		case "environment":
			environments = append(environments, res)
		}
	}

	vars := c.variables(environments)

	requests := make([]*httpfile.Request, 0, len(resources))
	for _, res := range resources {
		requests = append(requests, c.toRequest(res, folders, vars))
	}

	return requests, nil
}

// variables merges the base environment (child of the workspace) with the
// selected sub-environment.
func (c *Converter) variables(environments []Resource) map[string]any {
	vars := make(map[string]any)
	var baseID string

	for _, env := range environments {
		if strings.HasPrefix(env.ParentID, "wrk_") {
			baseID = env.ID
			for k, v := range env.Data {
				vars[k] = v
			}
		}
	}

	if c.environment == "" {
		return vars
	}

	found := false
	for _, env := range environments {
		if env.ParentID == baseID && env.Name == c.environment {
			found = true
			for k, v := range env.Data {
				vars[k] = v
			}
		}
	}
	if !found {
		c.warnf("environment %q not found in export", c.environment)
	}

	return vars
}

func (c *Converter) toRequest(res Resource, folders map[string]Resource, vars map[string]any) *httpfile.Request {
	name := res.Name
	if folderPath := c.getFolderPath(res.ParentID, folders); folderPath != "" {
		name = folderPath + " - " + name
	}

	method := strings.ToUpper(res.Method)
	if method == "" {
		method = "GET"
	}

	req := &httpfile.Request{
		Comment: "# " + name,
		Method:  method,
		URL:     c.withQuery(c.resolve(res.URL, vars), res.Parameters, vars),
		Version: httpfile.DefaultVersion,
		Headers: []httpfile.Header{},
	}

	for _, h := range res.Headers {
		if h.Disabled {
			continue
		}
		value := c.resolve(h.Value, vars)
		if h.Name == "" || value == "" {
			c.warnf("%s: skipping header %q without a value", res.Name, h.Name)
			continue
		}
		req.Headers = append(req.Headers, httpfile.Header{Name: h.Name, Value: value})
	}

	if res.Authentication != nil {
		if h, ok := c.authHeader(res.Authentication, vars); ok {
			req.Headers = append(req.Headers, h)
		}
	}

	if res.Body != nil && res.Body.Text != "" {
		req.Body = c.resolve(res.Body.Text, vars)
		if res.Body.MimeType != "" && len(req.HeaderValues("Content-Type")) == 0 {
			req.Headers = append(req.Headers, httpfile.Header{Name: "Content-Type", Value: res.Body.MimeType})
		}
	}

	return req
}

func (c *Converter) authHeader(auth *Auth, vars map[string]any) (httpfile.Header, bool) {
	switch auth.Type {
	case "basic":
		if auth.Username != "" {
			creds := c.resolve(auth.Username, vars) + ":" + c.resolve(auth.Password, vars)
			return httpfile.Header{
				Name:  "Authorization",
				Value: "Basic " + base64.StdEncoding.EncodeToString([]byte(creds)),
			}, true
		}
	case "bearer":
		if auth.Token != "" {
			return httpfile.Header{Name: "Authorization", Value: "Bearer " + c.resolve(auth.Token, vars)}, true
		}
	case "", "none":
	default:
		c.warnf("authentication type %q is not supported", auth.Type)
	}
	return httpfile.Header{}, false
}

func (c *Converter) withQuery(rawURL string, params []Parameter, vars map[string]any) string {
	query := url.Values{}
	var keys []string
	for _, p := range params {
		if p.Disabled {
			continue
		}
		if _, ok := query[p.Name]; !ok {
			keys = append(keys, p.Name)
		}
		query.Add(p.Name, c.resolve(p.Value, vars))
	}
	if len(keys) == 0 {
		return rawURL
	}

	var sb strings.Builder
	sb.WriteString(rawURL)
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	// Keep parameter order from the export.
	for _, k := range keys {
		for _, v := range query[k] {
			sb.WriteString(sep)
			sb.WriteString(url.QueryEscape(k))
			sb.WriteString("=")
			sb.WriteString(url.QueryEscape(v))
			sep = "&"
		}
	}
	return sb.String()
}

func (c *Converter) getFolderPath(parentID string, folders map[string]Resource) string {
	var path []string
	currentID := parentID

	for {
		folder, exists := folders[currentID]
		if !exists {
			break
		}
		path = append([]string{folder.Name}, path...)
		currentID = folder.ParentID
	}

	return strings.Join(path, "/")
}

// Insomnia uses {{ _.variableName }} or {{ variableName }}
var templateTag = regexp.MustCompile(`\{\{\s*(?:_\.)?([\w.-]+)\s*\}\}`)

// resolve replaces template tags with environment values. Unknown tags are
// normalized to {{name}} and reported.
func (c *Converter) resolve(s string, vars map[string]any) string {
	return templateTag.ReplaceAllStringFunc(s, func(tag string) string {
		name := templateTag.FindStringSubmatch(tag)[1]
		if v, ok := lookup(vars, name); ok {
			return fmt.Sprint(v)
		}
		c.warnf("no value for {{%s}}", name)
		return "{{" + name + "}}"
	})
}

// lookup resolves dotted names through nested environment objects.
func lookup(vars map[string]any, name string) (any, bool) {
	if v, ok := vars[name]; ok {
		return v, true
	}
	parts := strings.Split(name, ".")
	var cur any = vars
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[p]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func (c *Converter) warnf(format string, args ...any) {
	if c.warn != nil {
		c.warn(format, args...)
	}
}
