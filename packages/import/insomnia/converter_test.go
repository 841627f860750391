package insomnia

import (
	"fmt"
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/httpui/packages/core/httpfile"
)

func wrap(resources string) []byte {
	return []byte(`{"_type": "export", "__export_format": 4, "resources": [` + resources + `]}`)
}

func TestConvert_SimpleRequest(t *testing.T) {
	converter := NewConverter()

	requests, err := converter.Convert(wrap(`{
		"_id": "req_1",
		"_type": "request",
		"parentId": "wrk_1",
		"name": "Get Users",
		"method": "get",
		"url": "https://api.example.com/users"
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}
	if requests[0].Title() != "GET https://api.example.com/users HTTP/1.1" {
		t.Errorf("unexpected title %q", requests[0].Title())
	}
	if requests[0].Comment != "# Get Users" {
		t.Errorf("expected request name as comment, got %q", requests[0].Comment)
	}
}

func TestConvert_RequestWithHeaders(t *testing.T) {
	converter := NewConverter()

	requests, err := converter.Convert(wrap(`{
		"_id": "req_1",
		"_type": "request",
		"parentId": "wrk_1",
		"name": "Create User",
		"method": "POST",
		"url": "https://api.example.com/users",
		"headers": [
			{"name": "Content-Type", "value": "application/json"},
			{"name": "X-Debug", "value": "1", "disabled": true},
			{"name": "Authorization", "value": "Bearer token123"}
		]
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	headers := requests[0].Headers
	if len(headers) != 2 {
		t.Fatalf("expected 2 enabled headers, got %v", headers)
	}
	if headers[0] != (httpfile.Header{Name: "Content-Type", Value: "application/json"}) {
		t.Errorf("unexpected first header %v", headers[0])
	}
	if headers[1] != (httpfile.Header{Name: "Authorization", Value: "Bearer token123"}) {
		t.Errorf("unexpected second header %v", headers[1])
	}
}

func TestConvert_RequestWithBody(t *testing.T) {
	converter := NewConverter()

	requests, err := converter.Convert(wrap(`{
		"_id": "req_1",
		"_type": "request",
		"parentId": "wrk_1",
		"name": "Create User",
		"method": "POST",
		"url": "https://api.example.com/users",
		"body": {
			"mimeType": "application/json",
			"text": "{\"name\":\"John\"}"
		}
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if requests[0].Body != `{"name":"John"}` {
		t.Errorf("expected body, got %q", requests[0].Body)
	}
	if got := requests[0].HeaderValues("Content-Type"); len(got) != 1 || got[0] != "application/json" {
		t.Errorf("expected content type from mime type, got %v", got)
	}
}

func TestConvert_Environments(t *testing.T) {
	converter := NewConverter(WithEnvironment("staging"))

	requests, err := converter.Convert(wrap(`
		{"_id": "env_base", "_type": "environment", "parentId": "wrk_1", "name": "Base",
		 "data": {"baseUrl": "http://localhost:8080", "userId": 7, "auth": {"token": "abc"}}},
		{"_id": "env_stg", "_type": "environment", "parentId": "env_base", "name": "staging",
		 "data": {"baseUrl": "https://staging.example.com"}},
		{"_id": "req_1", "_type": "request", "parentId": "wrk_1", "name": "Get User",
		 "method": "GET", "url": "{{ _.baseUrl }}/users/{{ userId }}",
		 "headers": [{"name": "Authorization", "value": "Bearer {{ _.auth.token }}"}]}
	`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if requests[0].URL != "https://staging.example.com/users/7" {
		t.Errorf("expected resolved url, got %q", requests[0].URL)
	}
	if got := requests[0].HeaderValues("Authorization"); len(got) != 1 || got[0] != "Bearer abc" {
		t.Errorf("expected resolved nested value, got %v", got)
	}
}

func TestConvert_UnknownVariableIsKept(t *testing.T) {
	var warnings []string
	converter := NewConverter(WithWarnFunc(func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}))

	requests, err := converter.Convert(wrap(`{
		"_id": "req_1", "_type": "request", "parentId": "wrk_1", "name": "Get",
		"method": "GET", "url": "{{ _.host }}/{{ path }}"
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if requests[0].URL != "{{host}}/{{path}}" {
		t.Errorf("expected normalized tags, got %q", requests[0].URL)
	}
	if len(warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", warnings)
	}
}

func TestConvert_RequestWithAuth(t *testing.T) {
	converter := NewConverter()

	requests, err := converter.Convert(wrap(`
		{"_id": "req_1", "_type": "request", "parentId": "wrk_1", "name": "Admin",
		 "method": "GET", "url": "https://api.example.com/admin",
		 "authentication": {"type": "basic", "username": "admin", "password": "secret"}},
		{"_id": "req_2", "_type": "request", "parentId": "wrk_1", "name": "Me",
		 "method": "GET", "url": "https://api.example.com/me",
		 "authentication": {"type": "bearer", "token": "t0k"}}
	`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := requests[0].HeaderValues("Authorization"); len(got) != 1 || got[0] != "Basic YWRtaW46c2VjcmV0" {
		t.Errorf("expected basic auth header, got %v", got)
	}
	if got := requests[1].HeaderValues("Authorization"); len(got) != 1 || got[0] != "Bearer t0k" {
		t.Errorf("expected bearer auth header, got %v", got)
	}
}

func TestConvert_RequestWithQueryParams(t *testing.T) {
	converter := NewConverter()

	requests, err := converter.Convert(wrap(`{
		"_id": "req_1",
		"_type": "request",
		"parentId": "wrk_1",
		"name": "Search Users",
		"method": "GET",
		"url": "https://api.example.com/users",
		"parameters": [
			{"name": "q", "value": "john doe"},
			{"name": "limit", "value": "10"},
			{"name": "debug", "value": "1", "disabled": true}
		]
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if requests[0].URL != "https://api.example.com/users?q=john+doe&limit=10" {
		t.Errorf("unexpected url %q", requests[0].URL)
	}
}

func TestConvert_RequestInFolder(t *testing.T) {
	converter := NewConverter()

	requests, err := converter.Convert(wrap(`
		{"_id": "fld_1", "_type": "request_group", "parentId": "wrk_1", "name": "Users"},
		{"_id": "fld_2", "_type": "request_group", "parentId": "fld_1", "name": "Admin"},
		{"_id": "req_1", "_type": "request", "parentId": "fld_2", "name": "Get Users",
		 "method": "GET", "url": "https://api.example.com/users"}
	`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if requests[0].Comment != "# Users/Admin - Get Users" {
		t.Errorf("expected folder path in comment, got %q", requests[0].Comment)
	}
}

func TestConvert_InvalidJSON(t *testing.T) {
	converter := NewConverter()

	if _, err := converter.Convert([]byte("{")); err == nil {
		t.Error("expected an error for invalid JSON")
	}
}

func TestConvert_OutputParses(t *testing.T) {
	converter := NewConverter()

	requests, err := converter.Convert(wrap(`
		{"_id": "req_1", "_type": "request", "parentId": "wrk_1", "name": "A",
		 "method": "POST", "url": "https://api.example.com/a",
		 "body": {"mimeType": "application/json", "text": "{\n  \"a\": 1\n}"}},
		{"_id": "req_2", "_type": "request", "parentId": "wrk_1", "name": "B",
		 "method": "DELETE", "url": "https://api.example.com/b"}
	`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parsed, err := httpfile.ParseString(httpfile.Format(requests))
	if err != nil {
		t.Fatalf("formatted output does not parse: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(parsed))
	}
	if parsed[0].Body != `{"a": 1}` {
		t.Errorf("unexpected body %q", parsed[0].Body)
	}
	if strings.Join(parsed[0].HeaderValues("Content-Type"), ",") != "application/json" {
		t.Errorf("unexpected headers %v", parsed[0].Headers)
	}
}
