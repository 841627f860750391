// Package openapi generates .http requests from OpenAPI 3 documents.
package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/httpui/packages/core/httpfile"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"
)

// DefaultBaseURL is used when the document declares no server.
const DefaultBaseURL = "http://localhost:3000"

// Converter converts OpenAPI specs to requests
type Converter struct {
	baseURL     string
	includeTags []string
	excludeTags []string
	includeOnly []string // specific operation IDs
	warn        func(format string, args ...any)
}

// Option is a functional option for Converter
type Option func(*Converter)

// WithBaseURL sets a custom base URL, overriding the one from spec
func WithBaseURL(url string) Option {
	return func(c *Converter) {
		c.baseURL = url
	}
}

// WithTags filters operations by tags
func WithTags(tags []string) Option {
	return func(c *Converter) {
		c.includeTags = tags
	}
}

// WithExcludeTags excludes operations with these tags
func WithExcludeTags(tags []string) Option {
	return func(c *Converter) {
		c.excludeTags = tags
	}
}

// WithOperations filters to specific operation IDs
func WithOperations(ops []string) Option {
	return func(c *Converter) {
		c.includeOnly = ops
	}
}

// WithWarnFunc receives document validation problems.
func WithWarnFunc(fn func(format string, args ...any)) Option {
	return func(c *Converter) {
		c.warn = fn
	}
}

// NewConverter creates a new OpenAPI converter
func NewConverter(opts ...Option) *Converter {
	c := &Converter{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ConvertFile converts an OpenAPI document read from a file path or an
// http(s) URL.
func (c *Converter) ConvertFile(ctx context.Context, path string) ([]*httpfile.Request, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = true

	var doc *openapi3.T
	var err error

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		var u *url.URL
		u, err = url.Parse(path)
		if err == nil {
			doc, err = loader.LoadFromURI(u)
		}
	} else {
		doc, err = loader.LoadFromFile(path)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}

	return c.Convert(ctx, doc)
}

// ConvertData converts an OpenAPI document held in memory (JSON or YAML).
func (c *Converter) ConvertData(ctx context.Context, data []byte) ([]*httpfile.Request, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}
	return c.Convert(ctx, doc)
}

// Convert generates one request per operation, ordered by path and method.
// Parameters are filled with their examples or a value matching their schema.
func (c *Converter) Convert(ctx context.Context, doc *openapi3.T) ([]*httpfile.Request, error) {
	if err := doc.Validate(ctx); err != nil {
		// Some specs have minor validation issues; convert them anyway.
		c.warnf("OpenAPI spec validation: %v", err)
	}

	baseURL := c.baseURL
	if baseURL == "" {
		baseURL = c.getBaseURL(doc)
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	requests := []*httpfile.Request{}
	if doc.Paths == nil {
		return requests, nil
	}

	// Get sorted paths for consistent output
	paths := make([]string, 0, len(doc.Paths.Map()))
	for path := range doc.Paths.Map() {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		pathItem := doc.Paths.Map()[path]
		if pathItem == nil {
			continue
		}

		operations := []struct {
			method string
			op     *openapi3.Operation
		}{
			{"GET", pathItem.Get},
			{"POST", pathItem.Post},
			{"PUT", pathItem.Put},
			{"PATCH", pathItem.Patch},
			{"DELETE", pathItem.Delete},
			{"HEAD", pathItem.Head},
			{"OPTIONS", pathItem.Options},
		}

		for _, op := range operations {
			if op.op == nil || !c.shouldInclude(op.op) {
				continue
			}
			requests = append(requests, c.convertOperation(baseURL, path, op.method, op.op, pathItem.Parameters))
		}
	}

	return requests, nil
}

func (c *Converter) getBaseURL(doc *openapi3.T) string {
	if len(doc.Servers) > 0 && doc.Servers[0].URL != "" {
		return doc.Servers[0].URL
	}
	return DefaultBaseURL
}

func (c *Converter) shouldInclude(op *openapi3.Operation) bool {
	if len(c.includeOnly) > 0 && !contains(c.includeOnly, op.OperationID) {
		return false
	}

	if len(c.includeTags) > 0 {
		found := false
		for _, tag := range op.Tags {
			if contains(c.includeTags, tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	for _, tag := range op.Tags {
		if contains(c.excludeTags, tag) {
			return false
		}
	}

	return true
}

func (c *Converter) convertOperation(baseURL, path, method string, op *openapi3.Operation, pathParams openapi3.Parameters) *httpfile.Request {
	name := op.OperationID
	if name == "" {
		name = strings.ToLower(method) + strings.ReplaceAll(toTitle(path), "/", "")
	}
	comment := "# " + sanitizeName(name)
	if op.Summary != "" {
		comment += ": " + strings.ReplaceAll(op.Summary, "\n", " ")
	}

	allParams := make(openapi3.Parameters, 0, len(pathParams)+len(op.Parameters))
	allParams = append(allParams, pathParams...)
	allParams = append(allParams, op.Parameters...)

	req := &httpfile.Request{
		Comment: comment,
		Method:  method,
		URL:     baseURL + c.convertPathParams(path, allParams) + c.queryString(allParams),
		Version: httpfile.DefaultVersion,
		Headers: []httpfile.Header{},
	}

	for _, paramRef := range allParams {
		if paramRef == nil || paramRef.Value == nil || paramRef.Value.In != "header" {
			continue
		}
		param := paramRef.Value
		req.Headers = append(req.Headers, httpfile.Header{Name: param.Name, Value: c.getParamExample(param)})
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		contentType, body := c.generateRequestBody(op.RequestBody.Value)
		if body != "" {
			req.Headers = append(req.Headers, httpfile.Header{Name: "Content-Type", Value: contentType})
			req.Body = body
		}
	}

	if accept := acceptType(op); accept != "" {
		req.Headers = append(req.Headers, httpfile.Header{Name: "Accept", Value: accept})
	}

	return req
}

func (c *Converter) convertPathParams(path string, params openapi3.Parameters) string {
	result := path
	for _, paramRef := range params {
		if paramRef == nil || paramRef.Value == nil || paramRef.Value.In != "path" {
			continue
		}
		param := paramRef.Value
		result = strings.ReplaceAll(result, "{"+param.Name+"}", url.PathEscape(c.getParamExample(param)))
	}
	return result
}

func (c *Converter) queryString(params openapi3.Parameters) string {
	var parts []string
	for _, paramRef := range params {
		if paramRef == nil || paramRef.Value == nil || paramRef.Value.In != "query" {
			continue
		}
		param := paramRef.Value
		if !param.Required && param.Example == nil {
			continue
		}
		parts = append(parts, url.QueryEscape(param.Name)+"="+url.QueryEscape(c.getParamExample(param)))
	}
	if len(parts) == 0 {
		return ""
	}
	return "?" + strings.Join(parts, "&")
}

func (c *Converter) getParamExample(param *openapi3.Parameter) string {
	if param.Example != nil {
		return fmt.Sprintf("%v", param.Example)
	}

	if param.Schema != nil && param.Schema.Value != nil {
		schema := param.Schema.Value
		if schema.Example != nil {
			return fmt.Sprintf("%v", schema.Example)
		}
		if len(schema.Enum) > 0 {
			return fmt.Sprintf("%v", schema.Enum[0])
		}

		switch schemaType(schema) {
		case "integer":
			return "1"
		case "number":
			return "1.0"
		case "boolean":
			return "true"
		case "string":
			return stringExample(schema, param.Name)
		}
	}

	return param.Name
}

// generateRequestBody returns the content type and an example body, JSON
// preferred over forms.
func (c *Converter) generateRequestBody(reqBody *openapi3.RequestBody) (string, string) {
	for _, contentType := range sortedKeys(reqBody.Content) {
		mediaType := reqBody.Content[contentType]
		if strings.Contains(contentType, "json") && mediaType.Schema != nil {
			if mediaType.Example != nil {
				if data, err := json.Marshal(mediaType.Example); err == nil {
					return contentType, string(data)
				}
			}
			return contentType, c.generateJSONFromSchema(mediaType.Schema.Value, 0)
		}
	}

	for _, contentType := range sortedKeys(reqBody.Content) {
		mediaType := reqBody.Content[contentType]
		if strings.Contains(contentType, "form-urlencoded") && mediaType.Schema != nil {
			return contentType, c.generateFormFromSchema(mediaType.Schema.Value)
		}
	}

	return "", ""
}

func (c *Converter) generateJSONFromSchema(schema *openapi3.Schema, depth int) string {
	if schema == nil || depth > 5 {
		return "{}"
	}

	switch schemaType(schema) {
	case "":
		return "{}"
	case "object":
		var sb strings.Builder
		sb.WriteString("{\n")

		props := make([]string, 0, len(schema.Properties))
		for name := range schema.Properties {
			props = append(props, name)
		}
		sort.Strings(props)

		for i, name := range props {
			propSchema := schema.Properties[name]
			sb.WriteString(strings.Repeat("  ", depth+1))
			sb.WriteString("\"")
			sb.WriteString(name)
			sb.WriteString("\": ")

			if propSchema != nil && propSchema.Value != nil {
				sb.WriteString(c.generateJSONValue(propSchema.Value, name, depth+1))
			} else {
				sb.WriteString("null")
			}

			if i < len(props)-1 {
				sb.WriteString(",")
			}
			sb.WriteString("\n")
		}

		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString("}")
		return sb.String()

	default:
		return c.generateJSONValue(schema, "", depth)
	}
}

func (c *Converter) generateJSONValue(schema *openapi3.Schema, name string, depth int) string {
	if schema == nil {
		return "null"
	}

	if schema.Example != nil {
		data, err := json.Marshal(schema.Example)
		if err == nil {
			return string(data)
		}
	}

	switch schemaType(schema) {
	case "string":
		if len(schema.Enum) > 0 {
			return fmt.Sprintf("%q", fmt.Sprint(schema.Enum[0]))
		}
		return fmt.Sprintf("%q", stringExample(schema, name))
	case "integer":
		if schema.Min != nil {
			return fmt.Sprintf("%.0f", *schema.Min)
		}
		return "1"
	case "number":
		if schema.Min != nil {
			return fmt.Sprintf("%v", *schema.Min)
		}
		return "1.0"
	case "boolean":
		return "true"
	case "array":
		if schema.Items != nil && schema.Items.Value != nil {
			return "[" + c.generateJSONValue(schema.Items.Value, name, depth+1) + "]"
		}
		return "[]"
	case "object":
		return c.generateJSONFromSchema(schema, depth)
	default:
		return "null"
	}
}

func (c *Converter) generateFormFromSchema(schema *openapi3.Schema) string {
	if schema == nil || len(schema.Properties) == 0 {
		return ""
	}

	var parts []string
	for name, propSchema := range schema.Properties {
		value := "example"
		if propSchema != nil && propSchema.Value != nil && propSchema.Value.Example != nil {
			value = fmt.Sprintf("%v", propSchema.Value.Example)
		}
		parts = append(parts, url.QueryEscape(name)+"="+url.QueryEscape(value))
	}
	sort.Strings(parts)
	return strings.Join(parts, "&")
}

// acceptType picks the media type of the first documented 2xx response.
func acceptType(op *openapi3.Operation) string {
	if op.Responses == nil {
		return ""
	}

	codes := make([]string, 0, op.Responses.Len())
	for code := range op.Responses.Map() {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		respRef := op.Responses.Value(code)
		if !strings.HasPrefix(code, "2") || respRef == nil || respRef.Value == nil {
			continue
		}
		if types := sortedKeys(respRef.Value.Content); len(types) > 0 {
			return types[0]
		}
	}
	return ""
}

func schemaType(schema *openapi3.Schema) string {
	if schema.Type == nil || len(schema.Type.Slice()) == 0 {
		return ""
	}
	return schema.Type.Slice()[0]
}

func stringExample(schema *openapi3.Schema, name string) string {
	switch schema.Format {
	case "date":
		return "2024-01-01"
	case "date-time":
		return "2024-01-01T00:00:00Z"
	case "email":
		return "user@example.com"
	case "uuid":
		// Stable per field so regenerated files diff cleanly.
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
	}
	return "example"
}

func sortedKeys(content openapi3.Content) []string {
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sanitizeName(name string) string {
	result := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, name)

	for strings.Contains(result, "__") {
		result = strings.ReplaceAll(result, "__", "_")
	}
	return strings.Trim(result, "_")
}

// toTitle converts a string to title case (simple implementation)
func toTitle(s string) string {
	var result strings.Builder
	capitalizeNext := true
	for _, r := range s {
		if r == '/' || r == '-' || r == '_' || r == ' ' || r == '{' || r == '}' {
			capitalizeNext = true
			continue
		}
		if capitalizeNext && r >= 'a' && r <= 'z' {
			result.WriteRune(r - 32)
		} else {
			result.WriteRune(r)
		}
		capitalizeNext = false
	}
	return result.String()
}

func (c *Converter) warnf(format string, args ...any) {
	if c.warn != nil {
		c.warn(format, args...)
	}
}
