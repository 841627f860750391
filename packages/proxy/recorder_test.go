package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/httpui/packages/core/httpfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, opts ...Option) (*Recorder, *httptest.Server, string) {
	t.Helper()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write(body)
	}))
	t.Cleanup(backend.Close)

	recorder := NewRecorder(append([]Option{WithTargetURL(backend.URL)}, opts...)...)
	handler, err := recorder.Handler()
	require.NoError(t, err)

	proxy := httptest.NewServer(handler)
	t.Cleanup(proxy.Close)
	return recorder, proxy, backend.URL
}

func send(t *testing.T, method, url, body string, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp
}

func TestRecorder_Records(t *testing.T) {
	recorder, proxy, target := setup(t)

	resp := send(t, http.MethodPost, proxy.URL+"/users?active=true", `{"name":"ada"}`, map[string]string{
		"Authorization": "Bearer secret",
		"Content-Type":  "application/json",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	recordings := recorder.GetRecordings()
	require.Len(t, recordings, 1)

	rec := recordings[0]
	assert.Equal(t, http.StatusCreated, rec.StatusCode)
	assert.Equal(t, "/users", rec.Path)
	assert.Equal(t, "POST", rec.Request.Method)
	assert.Equal(t, target+"/users?active=true", rec.Request.URL)
	assert.Equal(t, `{"name":"ada"}`, rec.Request.Body)
	assert.Equal(t, "# POST /users -> 201", rec.Request.Comment)

	assert.Contains(t, rec.Request.Headers, httpfile.Header{Name: "Authorization", Value: RedactedValue})
	assert.Contains(t, rec.Request.Headers, httpfile.Header{Name: "Content-Type", Value: "application/json"})
	for _, h := range rec.Request.Headers {
		assert.NotEqual(t, "Content-Length", h.Name)
		assert.NotEqual(t, "Accept-Encoding", h.Name)
	}
}

func TestRecorder_ExcludeAndDeduplicate(t *testing.T) {
	recorder, proxy, _ := setup(t, WithExclude([]string{"/health"}), WithDeduplicate(true))

	send(t, http.MethodGet, proxy.URL+"/health", "", nil)
	send(t, http.MethodGet, proxy.URL+"/users", "", nil)
	send(t, http.MethodGet, proxy.URL+"/users?page=2", "", nil)
	send(t, http.MethodGet, proxy.URL+"/missing", "", nil)

	recordings := recorder.GetRecordings()
	require.Len(t, recordings, 2)
	assert.Equal(t, "/users", recordings[0].Path)
	assert.Equal(t, http.StatusNotFound, recordings[1].StatusCode)

	recorder.Clear()
	assert.Empty(t, recorder.GetRecordings())
}

func TestRecorder_Export(t *testing.T) {
	recorder, proxy, target := setup(t)

	send(t, http.MethodGet, proxy.URL+"/a", "", map[string]string{"Accept": "application/json"})
	send(t, http.MethodPut, proxy.URL+"/b", "x=1", map[string]string{"Content-Type": "application/x-www-form-urlencoded"})

	requests, err := httpfile.ParseString(recorder.Export())
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, target+"/a", requests[0].URL)
	assert.Equal(t, "PUT", requests[1].Method)
	assert.Equal(t, "x=1", requests[1].Body)

	data, err := recorder.ExportToJSON()
	require.NoError(t, err)

	var decoded []Recording
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 2)
}

func TestRecorder_Handler_RequiresTarget(t *testing.T) {
	_, err := NewRecorder().Handler()
	assert.Error(t, err)

	_, err = NewRecorder(WithTargetURL("localhost")).Handler()
	assert.Error(t, err)
}
