// Package coverage reports which operations of an OpenAPI document are
// exercised by the requests of .http files.
package coverage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/httpui/packages/core/httpfile"
	"github.com/getkin/kin-openapi/openapi3"
)

// quotedParam matches a {param} segment after regexp.QuoteMeta.
var quotedParam = regexp.MustCompile(`\\\{[^}]+\\\}`)

// Report represents an API coverage report.
type Report struct {
	TotalEndpoints   int                   `json:"totalEndpoints"`
	CoveredEndpoints int                   `json:"coveredEndpoints"`
	CoveragePercent  float64               `json:"coveragePercent"`
	ByTag            map[string]*TagReport `json:"byTag,omitempty"`
	Endpoints        []EndpointStatus      `json:"endpoints"`
	Unmatched        []string              `json:"unmatched,omitempty"`
}

// TagReport represents coverage for a specific tag.
type TagReport struct {
	Tag              string  `json:"tag"`
	TotalEndpoints   int     `json:"totalEndpoints"`
	CoveredEndpoints int     `json:"coveredEndpoints"`
	CoveragePercent  float64 `json:"coveragePercent"`
}

// EndpointStatus represents the coverage status of an endpoint.
type EndpointStatus struct {
	Method       string   `json:"method"`
	Path         string   `json:"path"`
	OperationID  string   `json:"operationId,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Covered      bool     `json:"covered"`
	RequestCount int      `json:"requestCount"`
}

// Endpoint represents an API endpoint from the OpenAPI spec.
type Endpoint struct {
	Method      string
	Path        string
	OperationID string
	Tags        []string

	pattern *regexp.Regexp
}

func NewEndpoint(method, path string) Endpoint {
	pattern := quotedParam.ReplaceAllString(regexp.QuoteMeta(path), `[^/]+`)
	return Endpoint{
		Method:  strings.ToUpper(method),
		Path:    path,
		pattern: regexp.MustCompile("^" + pattern + "/?$"),
	}
}

// Matches reports whether a request path is served by the endpoint.
func (e Endpoint) Matches(method, path string) bool {
	return strings.EqualFold(method, e.Method) && e.pattern.MatchString(path)
}

// Analyzer analyzes API coverage against an OpenAPI spec.
type Analyzer struct {
	endpoints []Endpoint
	basePath  string
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// LoadOpenAPI loads endpoints from an OpenAPI specification file.
func (a *Analyzer) LoadOpenAPI(ctx context.Context, path string) error {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("failed to load spec: %w", err)
	}
	return a.LoadDocument(doc)
}

// LoadDocument registers every operation of doc. The path of the first
// server URL is treated as a prefix of every request path.
func (a *Analyzer) LoadDocument(doc *openapi3.T) error {
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return fmt.Errorf("no paths found in OpenAPI spec")
	}

	if len(doc.Servers) > 0 {
		if u, err := url.Parse(doc.Servers[0].URL); err == nil {
			a.basePath = strings.TrimSuffix(u.Path, "/")
		}
	}

	for path, item := range doc.Paths.Map() {
		for method, op := range item.Operations() {
			endpoint := NewEndpoint(method, path)
			endpoint.OperationID = op.OperationID
			endpoint.Tags = op.Tags
			a.endpoints = append(a.endpoints, endpoint)
		}
	}

	// Literal segments sort before {params}, so /users/me wins over /users/{id}.
	sort.Slice(a.endpoints, func(i, j int) bool {
		if a.endpoints[i].Path != a.endpoints[j].Path {
			return a.endpoints[i].Path < a.endpoints[j].Path
		}
		return a.endpoints[i].Method < a.endpoints[j].Method
	})
	return nil
}

// AddEndpoint registers an endpoint directly.
func (a *Analyzer) AddEndpoint(e Endpoint) {
	if e.pattern == nil {
		built := NewEndpoint(e.Method, e.Path)
		e.Method, e.pattern = built.Method, built.pattern
	}
	a.endpoints = append(a.endpoints, e)
}

// Analyze compares requests against the loaded endpoints. Each request
// counts for the first endpoint it matches.
func (a *Analyzer) Analyze(requests []*httpfile.Request) *Report {
	report := &Report{
		TotalEndpoints: len(a.endpoints),
		ByTag:          make(map[string]*TagReport),
		Endpoints:      make([]EndpointStatus, 0, len(a.endpoints)),
	}

	counts := make([]int, len(a.endpoints))
	for _, req := range requests {
		path := a.requestPath(req.URL)
		matched := false
		for i, endpoint := range a.endpoints {
			if endpoint.Matches(req.Method, path) {
				counts[i]++
				matched = true
				break
			}
		}
		if !matched {
			report.Unmatched = append(report.Unmatched, req.Method+" "+req.URL)
		}
	}

	for i, endpoint := range a.endpoints {
		covered := counts[i] > 0
		report.Endpoints = append(report.Endpoints, EndpointStatus{
			Method:       endpoint.Method,
			Path:         endpoint.Path,
			OperationID:  endpoint.OperationID,
			Tags:         endpoint.Tags,
			Covered:      covered,
			RequestCount: counts[i],
		})

		if covered {
			report.CoveredEndpoints++
		}

		for _, tag := range endpoint.Tags {
			tagReport, exists := report.ByTag[tag]
			if !exists {
				tagReport = &TagReport{Tag: tag}
				report.ByTag[tag] = tagReport
			}
			tagReport.TotalEndpoints++
			if covered {
				tagReport.CoveredEndpoints++
			}
		}
	}

	if report.TotalEndpoints > 0 {
		report.CoveragePercent = float64(report.CoveredEndpoints) / float64(report.TotalEndpoints) * 100
	}
	for _, tagReport := range report.ByTag {
		if tagReport.TotalEndpoints > 0 {
			tagReport.CoveragePercent = float64(tagReport.CoveredEndpoints) / float64(tagReport.TotalEndpoints) * 100
		}
	}

	sort.Slice(report.Endpoints, func(i, j int) bool {
		if report.Endpoints[i].Path != report.Endpoints[j].Path {
			return report.Endpoints[i].Path < report.Endpoints[j].Path
		}
		return report.Endpoints[i].Method < report.Endpoints[j].Method
	})

	return report
}

// requestPath extracts the path of a request URL relative to the server
// base path. Relative URLs are taken as paths.
func (a *Analyzer) requestPath(rawURL string) string {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	if a.basePath != "" && strings.HasPrefix(path, a.basePath) {
		path = strings.TrimPrefix(path, a.basePath)
	}
	if path == "" {
		path = "/"
	}
	return path
}

// FormatConsole formats the report for console output.
func (r *Report) FormatConsole() string {
	var sb strings.Builder

	sb.WriteString("API Coverage Report\n")
	sb.WriteString("===================\n\n")

	fmt.Fprintf(&sb, "Total Endpoints:   %d\n", r.TotalEndpoints)
	fmt.Fprintf(&sb, "Covered Endpoints: %d\n", r.CoveredEndpoints)
	fmt.Fprintf(&sb, "Coverage:          %.1f%%\n\n", r.CoveragePercent)

	if len(r.ByTag) > 0 {
		sb.WriteString("Coverage by Tag:\n")

		tags := make([]string, 0, len(r.ByTag))
		for tag := range r.ByTag {
			tags = append(tags, tag)
		}
		sort.Strings(tags)

		for _, tag := range tags {
			tagReport := r.ByTag[tag]
			fmt.Fprintf(&sb, "  %s: %d/%d (%.1f%%)\n", tag, tagReport.CoveredEndpoints, tagReport.TotalEndpoints, tagReport.CoveragePercent)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Endpoint Details:\n")
	for _, endpoint := range r.Endpoints {
		status := "[ ]"
		if endpoint.Covered {
			status = "[x]"
		}
		fmt.Fprintf(&sb, "  %s %s %s", status, endpoint.Method, endpoint.Path)
		if endpoint.RequestCount > 1 {
			fmt.Fprintf(&sb, " (x%d)", endpoint.RequestCount)
		}
		sb.WriteString("\n")
	}

	if len(r.Unmatched) > 0 {
		sb.WriteString("\nRequests matching no operation:\n")
		for _, u := range r.Unmatched {
			fmt.Fprintf(&sb, "  %s\n", u)
		}
	}

	return sb.String()
}

// FormatJSON formats the report as JSON.
func (r *Report) FormatJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
