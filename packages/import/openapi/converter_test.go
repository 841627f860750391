package openapi

import (
	"context"
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/httpui/packages/core/httpfile"
)

const petstore = `openapi: 3.0.3
info:
  title: Petstore
  version: "1.0"
servers:
  - url: https://api.example.com/v1/
paths:
  /pets:
    get:
      operationId: listPets
      summary: List pets
      tags: [pets]
      parameters:
        - name: limit
          in: query
          required: true
          schema:
            type: integer
        - name: cursor
          in: query
          schema:
            type: string
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: array
                items:
                  type: object
    post:
      operationId: createPet
      tags: [pets]
      parameters:
        - name: X-Request-Id
          in: header
          schema:
            type: string
            example: abc
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                name:
                  type: string
                  example: Rex
                age:
                  type: integer
      responses:
        "201":
          description: created
  /pets/{petId}:
    parameters:
      - name: petId
        in: path
        required: true
        schema:
          type: integer
    delete:
      operationId: deletePet
      tags: [admin]
      responses:
        "204":
          description: deleted
`

func convert(t *testing.T, opts ...Option) []*httpfile.Request {
	t.Helper()
	requests, err := NewConverter(opts...).ConvertData(context.Background(), []byte(petstore))
	if err != nil {
		t.Fatalf("ConvertData() error = %v", err)
	}
	return requests
}

func find(requests []*httpfile.Request, method string) *httpfile.Request {
	for _, req := range requests {
		if req.Method == method {
			return req
		}
	}
	return nil
}

func headerValue(req *httpfile.Request, name string) string {
	for _, h := range req.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

func TestConvert_Operations(t *testing.T) {
	requests := convert(t)
	if len(requests) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(requests))
	}

	// Sorted by path, then method order.
	methods := []string{requests[0].Method, requests[1].Method, requests[2].Method}
	if strings.Join(methods, ",") != "GET,POST,DELETE" {
		t.Errorf("unexpected order %v", methods)
	}
}

func TestConvert_QueryAndBaseURL(t *testing.T) {
	get := find(convert(t), "GET")
	if get == nil {
		t.Fatal("missing GET request")
	}

	if get.URL != "https://api.example.com/v1/pets?limit=1" {
		t.Errorf("URL = %q", get.URL)
	}
	if get.Comment != "# listPets: List pets" {
		t.Errorf("Comment = %q", get.Comment)
	}
	if headerValue(get, "Accept") != "application/json" {
		t.Errorf("Accept = %q", headerValue(get, "Accept"))
	}
}

func TestConvert_PathParams(t *testing.T) {
	del := find(convert(t), "DELETE")
	if del == nil {
		t.Fatal("missing DELETE request")
	}
	if del.URL != "https://api.example.com/v1/pets/1" {
		t.Errorf("URL = %q", del.URL)
	}
}

func TestConvert_Body(t *testing.T) {
	post := find(convert(t), "POST")
	if post == nil {
		t.Fatal("missing POST request")
	}

	if headerValue(post, "X-Request-Id") != "abc" {
		t.Errorf("X-Request-Id = %q", headerValue(post, "X-Request-Id"))
	}
	if headerValue(post, "Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", headerValue(post, "Content-Type"))
	}
	if !strings.Contains(post.Body, `"name": "Rex"`) || !strings.Contains(post.Body, `"age": 1`) {
		t.Errorf("unexpected body %q", post.Body)
	}
}

func TestConvert_BaseURLOverride(t *testing.T) {
	get := find(convert(t, WithBaseURL("http://localhost:8080/")), "GET")
	if get == nil || !strings.HasPrefix(get.URL, "http://localhost:8080/pets") {
		t.Errorf("base URL not applied: %+v", get)
	}
}

func TestConvert_Filters(t *testing.T) {
	if got := convert(t, WithTags([]string{"admin"})); len(got) != 1 || got[0].Method != "DELETE" {
		t.Errorf("WithTags: %d requests", len(got))
	}
	if got := convert(t, WithExcludeTags([]string{"admin"})); len(got) != 2 {
		t.Errorf("WithExcludeTags: %d requests", len(got))
	}
	if got := convert(t, WithOperations([]string{"createPet"})); len(got) != 1 || got[0].Method != "POST" {
		t.Errorf("WithOperations: %d requests", len(got))
	}
}

func TestConvert_OutputParses(t *testing.T) {
	requests := convert(t)

	parsed, err := httpfile.ParseString(httpfile.Format(requests))
	if err != nil {
		t.Fatalf("generated file does not parse: %v", err)
	}
	if len(parsed) != len(requests) {
		t.Fatalf("expected %d requests, got %d", len(requests), len(parsed))
	}
	for i := range requests {
		if parsed[i].URL != requests[i].URL {
			t.Errorf("request %d URL = %q, want %q", i, parsed[i].URL, requests[i].URL)
		}
	}
}

func TestConvertData_Invalid(t *testing.T) {
	if _, err := NewConverter().ConvertData(context.Background(), []byte("{not yaml")); err == nil {
		t.Error("expected error for malformed document")
	}
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"getUser":       "getUser",
		"get-user/{id}": "get_user_id",
		"__x__":         "x",
	}
	for in, want := range tests {
		if got := sanitizeName(in); got != want {
			t.Errorf("sanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
}
