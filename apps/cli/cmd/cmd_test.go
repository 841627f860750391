package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/httpui/packages/core/config"
	"github.com/abdul-hamid-achik/httpui/packages/core/httpfile"
	"github.com/abdul-hamid-achik/httpui/packages/history"
	"github.com/abdul-hamid-achik/httpui/packages/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags() {
	configFlag = ""
	noColorFlag = false
	verboseFlag = false

	listOutputFlag = "console"
	validateOutputFlag = "console"

	sendAllFlag = false
	sendOutputFlag = "console"
	selectFlag = ""
	rateFlag = 0
	timeoutFlag = ""
	proxyFlag = ""
	insecureFlag = false
	bailFlag = false
	failFlag = false
	historyFlag = ""
	maxRedirectsFlag = 0
	metricsFlag = ""
	metricsFmtFlag = ""

	historyDBFlag = ""
	historyLimitFlag = 20
	historyClearFlag = false
	historyOutputFlag = "console"

	forceInit = false

	importOutputFlag = ""
	importBaseURLFlag = ""
	importTagsFlag = ""
	importEnvFlag = ""

	recordPortFlag = 8080
	recordTargetFlag = ""
	recordOutputFlag = ""
	recordExcludeFlag = ""
	recordDedupeFlag = false
	recordJSONFlag = false

	coverageSpecFlag = ""
	coverageOutputFlag = "console"
	coverageMinFlag = 0
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append(args, "--no-color"))
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(nethttp.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"method":%q,"path":%q,"token":"abc"}`, r.Method, r.URL.Path)
	}))
	t.Cleanup(server.Close)
	return server
}

const listing = `# users
GET https://example.com/users
Accept: application/json

###
POST
###
DELETE https://example.com/users/1
`

func TestList(t *testing.T) {
	path := writeFile(t, "api.http", listing)

	t.Run("console", func(t *testing.T) {
		out, _, err := execute(t, "list", path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "httpui "+version+"\n"), out)
		assert.Contains(t, out, "GET https://example.com/users HTTP/1.1")
		assert.Contains(t, out, "Accept: application/json")
		assert.Contains(t, out, "couldn't parse http url")
		assert.Contains(t, out, "DELETE https://example.com/users/1 HTTP/1.1")
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, "list", path, "--output", "json")
		require.NoError(t, err)

		var doc output.JSONOutput
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		require.Len(t, doc.Files, 1)
		assert.Len(t, doc.Files[0].Items, 3)
		assert.Equal(t, 1, doc.Summary.Failed)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := execute(t, "list", path, "--output", "xml")
		assert.Equal(t, ExitUsageError, exitCode(err))
	})
}

func TestShow(t *testing.T) {
	path := writeFile(t, "api.http", listing)

	out, _, err := execute(t, "show", path, "3")
	require.NoError(t, err)
	assert.Contains(t, out, "DELETE https://example.com/users/1")
	assert.NotContains(t, out, "GET")

	_, _, err = execute(t, "show", path, "2")
	assert.Equal(t, ExitParseError, exitCode(err))

	_, _, err = execute(t, "show", path, "9")
	assert.Equal(t, ExitUsageError, exitCode(err))
}

func TestValidate(t *testing.T) {
	valid := writeFile(t, "valid.http", "GET https://example.com\n")
	invalid := writeFile(t, "invalid.http", listing)

	out, _, err := execute(t, "validate", valid)
	require.NoError(t, err)
	assert.Contains(t, out, "Valid: "+valid+" (1 requests)")

	_, errOut, err := execute(t, "validate", invalid)
	assert.Equal(t, ExitParseError, exitCode(err))
	assert.Contains(t, errOut, "invalid.http:6: couldn't parse http url")

	out, _, err = execute(t, "validate", invalid, "--output", "tap")
	assert.Equal(t, ExitParseError, exitCode(err))
	assert.NotContains(t, out, "httpui")
	assert.Contains(t, out, "1..3")
	assert.Contains(t, out, "not ok 2")
}

func TestSend(t *testing.T) {
	server := newServer(t)
	path := writeFile(t, "api.http", fmt.Sprintf(`GET %[1]s/users

###
POST %[1]s/users
Content-Type: application/json

{"name": "ada"}

###
GET %[1]s/missing
`, server.URL))

	t.Run("single request prints the response", func(t *testing.T) {
		out, _, err := execute(t, "send", path, "2")
		require.NoError(t, err)
		assert.Contains(t, out, "200 OK")
		assert.Contains(t, out, `"method": "POST"`)
	})

	t.Run("select", func(t *testing.T) {
		out, _, err := execute(t, "send", path, "1", "--select", "path")
		require.NoError(t, err)
		assert.Equal(t, "/users\n", out)
	})

	t.Run("index required for several requests", func(t *testing.T) {
		_, _, err := execute(t, "send", path)
		assert.Equal(t, ExitUsageError, exitCode(err))
	})

	t.Run("all with summary", func(t *testing.T) {
		out, _, err := execute(t, "send", path, "--all")
		require.NoError(t, err)
		assert.Contains(t, out, "3 sent")
		assert.Contains(t, out, "404 Not Found")
	})

	t.Run("fail on error status", func(t *testing.T) {
		_, _, err := execute(t, "send", path, "3", "--fail")
		assert.Equal(t, ExitRequestFailure, exitCode(err))
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, "send", path, "1", "3", "--output", "json")
		require.NoError(t, err)

		var doc output.JSONOutput
		require.NoError(t, json.Unmarshal([]byte(out), &doc))
		require.Len(t, doc.Runs, 1)
		require.Len(t, doc.Runs[0].Outcomes, 2)
		assert.Equal(t, 404, doc.Runs[0].Outcomes[1].Response.StatusCode)
	})

	t.Run("metrics", func(t *testing.T) {
		prom := filepath.Join(t.TempDir(), "run.prom")
		_, _, err := execute(t, "send", path, "--all", "--metrics", prom)
		require.NoError(t, err)

		data, err := os.ReadFile(prom)
		require.NoError(t, err)
		assert.Contains(t, string(data), "httpui_requests_total 3")
		assert.Contains(t, string(data), `httpui_responses_by_status_total{status="404"} 1`)

		jsonPath := filepath.Join(t.TempDir(), "run.json")
		_, _, err = execute(t, "send", path, "1", "--metrics", jsonPath)
		require.NoError(t, err)

		data, err = os.ReadFile(jsonPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"total_requests": 1`)
	})
}

func TestSend_UserAgent(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"ua":%q}`, r.UserAgent())
	}))
	t.Cleanup(server.Close)

	path := writeFile(t, "ua.http", "GET "+server.URL+"/\n\n###\nGET "+server.URL+"/\nUser-Agent: from-file\n")

	out, _, err := execute(t, "send", path, "1", "--select", "ua")
	require.NoError(t, err)
	assert.Equal(t, "httpui/"+version+"\n", out)

	out, _, err = execute(t, "send", path, "2", "--select", "ua")
	require.NoError(t, err)
	assert.Equal(t, "from-file\n", out)

	cfgPath := writeFile(t, "httpui.yaml", "headers:\n  User-Agent: from-config\n")
	out, _, err = execute(t, "send", path, "1", "--select", "ua", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "from-config\n", out)
}

func TestSendFlagConfig(t *testing.T) {
	t.Cleanup(resetFlags)

	base := config.DefaultConfig()
	base.Proxy = "http://config-proxy:3128"
	base.HistoryDB = "config.db"

	t.Run("unset flags keep the config", func(t *testing.T) {
		resetFlags()
		overrides, err := sendFlagConfig()
		require.NoError(t, err)

		merged := base.Merge(overrides)
		assert.Equal(t, base.Timeout, merged.Timeout)
		assert.Equal(t, "http://config-proxy:3128", merged.Proxy)
		assert.Equal(t, "config.db", merged.HistoryDB)
		assert.True(t, merged.GetValidateSSL())
	})

	t.Run("set flags win", func(t *testing.T) {
		resetFlags()
		timeoutFlag = "1.5s"
		maxRedirectsFlag = 3
		proxyFlag = "http://flag-proxy:8080"
		insecureFlag = true
		rateFlag = 2.5
		historyFlag = "flag.db"

		overrides, err := sendFlagConfig()
		require.NoError(t, err)

		merged := base.Merge(overrides)
		assert.Equal(t, 1500, merged.Timeout)
		assert.Equal(t, 3, merged.MaxRedirects)
		assert.Equal(t, "http://flag-proxy:8080", merged.Proxy)
		assert.False(t, merged.GetValidateSSL())
		assert.Equal(t, 2.5, merged.Rate)
		assert.Equal(t, "flag.db", merged.HistoryDB)
	})

	t.Run("invalid timeout", func(t *testing.T) {
		for _, value := range []string{"soon", "500us"} {
			resetFlags()
			timeoutFlag = value
			_, err := sendFlagConfig()
			assert.Equal(t, ExitUsageError, exitCode(err), value)
		}
	})
}

func TestSend_NetworkError(t *testing.T) {
	server := httptest.NewServer(nethttp.NotFoundHandler())
	url := server.URL
	server.Close()

	path := writeFile(t, "down.http", "GET "+url+"/\n")

	_, _, err := execute(t, "send", path)
	assert.Equal(t, ExitNetworkError, exitCode(err))
}

func TestSend_InvalidURL(t *testing.T) {
	path := writeFile(t, "bad.http", "GET ftp://example.com/file\n")

	_, _, err := execute(t, "send", path)
	assert.Equal(t, ExitRequestFailure, exitCode(err))
}

func TestHistory(t *testing.T) {
	server := newServer(t)
	db := filepath.Join(t.TempDir(), "history.db")
	path := writeFile(t, "api.http", fmt.Sprintf("GET %[1]s/a\n\n###\nGET %[1]s/b\n", server.URL))

	_, _, err := execute(t, "send", path, "--all", "--history", db)
	require.NoError(t, err)

	out, _, err := execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, server.URL+"/a")
	assert.Contains(t, out, server.URL+"/b")

	out, _, err = execute(t, "history", "--db", db, "--output", "json")
	require.NoError(t, err)
	var entries []history.Entry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)

	out, _, err = execute(t, "history", "--db", db, entries[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "id:   "+entries[0].ID)

	_, _, err = execute(t, "history", "--db", db, "nope")
	assert.Equal(t, ExitUsageError, exitCode(err))

	out, _, err = execute(t, "history", "--db", db, "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 2 entries")

	_, _, err = execute(t, "history")
	assert.Equal(t, ExitConfigError, exitCode(err))
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "project")

	out, _, err := execute(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "example.http")

	cfg, err := config.LoadConfig(filepath.Join(dir, ".httpui.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultTimeoutMs, cfg.Timeout)
	assert.Contains(t, cfg.Headers, "User-Agent")

	requests, err := httpfile.ParseFile(filepath.Join(dir, "example.http"))
	require.NoError(t, err)
	assert.Len(t, requests, 3)

	_, _, err = execute(t, "init", dir)
	assert.Equal(t, ExitUsageError, exitCode(err))

	_, _, err = execute(t, "init", dir, "--force")
	assert.NoError(t, err)
}

func TestImport(t *testing.T) {
	t.Run("curl to stdout", func(t *testing.T) {
		src := writeFile(t, "commands.txt", "curl -k https://api.example.com/health\ncurl -X POST https://api.example.com/users \\\n  -H 'Content-Type: application/json' \\\n  -d '{\"name\":\"a\"}'\n")

		out, errOut, err := execute(t, "import", "curl", src)
		require.NoError(t, err)
		assert.Contains(t, errOut, "warning:")

		requests, err := httpfile.ParseString(out)
		require.NoError(t, err)
		require.Len(t, requests, 2)
		assert.Equal(t, "GET", requests[0].Method)
		assert.Equal(t, "POST", requests[1].Method)
		assert.Equal(t, `{"name":"a"}`, requests[1].Body)
	})

	t.Run("insomnia to file", func(t *testing.T) {
		src := writeFile(t, "export.json", `{"_type": "export", "__export_format": 4, "resources": [
			{"_id": "env_base", "_type": "environment", "parentId": "wrk_1", "name": "Base", "data": {"host": "https://api.example.com"}},
			{"_id": "req_1", "_type": "request", "parentId": "wrk_1", "name": "Users", "method": "GET", "url": "{{ _.host }}/users"}
		]}`)
		dest := filepath.Join(t.TempDir(), "out", "api.http")

		out, _, err := execute(t, "import", "insomnia", src, "-o", dest)
		require.NoError(t, err)
		assert.Contains(t, out, "Imported 1 requests")

		requests, err := httpfile.ParseFile(dest)
		require.NoError(t, err)
		require.Len(t, requests, 1)
		assert.Equal(t, "https://api.example.com/users", requests[0].URL)
	})

	t.Run("openapi", func(t *testing.T) {
		src := writeFile(t, "spec.yaml", `openapi: 3.0.3
info:
  title: Test
  version: "1.0"
servers:
  - url: https://api.example.com
paths:
  /users/{id}:
    get:
      operationId: getUser
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: integer
      responses:
        "200":
          description: ok
`)

		out, _, err := execute(t, "import", "openapi", src, "--base-url", "http://localhost:8080")
		require.NoError(t, err)

		requests, err := httpfile.ParseString(out)
		require.NoError(t, err)
		require.Len(t, requests, 1)
		assert.Equal(t, "http://localhost:8080/users/1", requests[0].URL)
	})

	t.Run("missing source", func(t *testing.T) {
		_, _, err := execute(t, "import", "curl", filepath.Join(t.TempDir(), "nope.txt"))
		assert.Equal(t, ExitParseError, exitCode(err))
	})
}

func TestRecord_RequiresTarget(t *testing.T) {
	_, _, err := execute(t, "record")
	assert.Equal(t, ExitUsageError, exitCode(err))
}

func TestCoverage(t *testing.T) {
	spec := writeFile(t, "openapi.yaml", `openapi: 3.0.3
info:
  title: Test
  version: "1.0"
paths:
  /users:
    get:
      responses:
        "200":
          description: ok
  /users/{id}:
    delete:
      responses:
        "204":
          description: deleted
`)
	path := writeFile(t, "api.http", "GET http://localhost/users\n\n###\nGET http://localhost/health\n")

	out, _, err := execute(t, "coverage", path, "--spec", spec)
	require.NoError(t, err)
	assert.Contains(t, out, "[x] GET /users")
	assert.Contains(t, out, "[ ] DELETE /users/{id}")
	assert.Contains(t, out, "GET http://localhost/health")

	_, _, err = execute(t, "coverage", path, "--spec", spec, "--min", "80")
	assert.Equal(t, ExitRequestFailure, exitCode(err))

	_, _, err = execute(t, "coverage", path)
	assert.Equal(t, ExitUsageError, exitCode(err))
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "httpui version")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, exitCode(nil))
	assert.Equal(t, ExitRequestFailure, exitCode(errors.New("boom")))
	assert.Equal(t, ExitParseError, exitCode(fmt.Errorf("wrapped: %w", withExitCode(ExitParseError, errors.New("bad")))))
	assert.NoError(t, withExitCode(ExitConfigError, nil))
}

func TestParseIndexes(t *testing.T) {
	got, err := parseIndexes([]string{"2", "1"}, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, got)

	_, err = parseIndexes([]string{"0"}, 3)
	assert.Error(t, err)
	_, err = parseIndexes([]string{"x"}, 3)
	assert.Error(t, err)
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.http"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.http"), nil, 0o644))

	files, err := collectFiles([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.http"), filepath.Join(dir, "nested", "b.http")}, files)

	_, err = collectFiles([]string{filepath.Join(dir, "missing")})
	assert.Error(t, err)
}
