package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yildizdb/yildiz-go/transport"
)

type call struct {
	method string
	path   string
	prefix string
	auth   string
	body   map[string]interface{}
}

type fakeServer struct {
	*httptest.Server
	host string
	port string

	mu     sync.Mutex
	routes map[string]route
	calls  []call
}

type route struct {
	status int
	body   string
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	s := &fakeServer{routes: map[string]route{}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)

	u, err := url.Parse(s.URL)
	require.NoError(t, err)
	s.host, s.port, err = net.SplitHostPort(u.Host)
	require.NoError(t, err)
	return s
}

func (s *fakeServer) on(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[method+" "+path] = route{status: status, body: body}
}

func (s *fakeServer) handle(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	c := call{
		method: r.Method,
		path:   r.URL.EscapedPath(),
		prefix: r.Header.Get("x-yildiz-prefix"),
		auth:   r.Header.Get("authorization"),
	}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &c.body)
	}

	s.mu.Lock()
	s.calls = append(s.calls, c)
	rt, ok := s.routes[r.Method+" "+c.path]
	s.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rt.status)
	_, _ = w.Write([]byte(rt.body))
}

func (s *fakeServer) last(t *testing.T) call {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.calls, "no request reached the server")
	return s.calls[len(s.calls)-1]
}

func (s *fakeServer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// run executes the CLI against the fake server and returns stdout.
func run(t *testing.T, s *fakeServer, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd(&out, &errOut)
	base := []string{"--host", s.host, "--port", s.port, "--no-color", "--log-level", "error"}
	root.SetArgs(append(base, args...))
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	s := newFakeServer(t)
	s.on("GET", "/", 200, `{"version":"9.1.0"}`)

	out, err := run(t, s, "version")
	require.NoError(t, err)
	assert.Equal(t, "9.1.0\n", out)
	assert.Equal(t, "default", s.last(t).prefix)
	assert.Empty(t, s.last(t).auth)
}

func TestClientReleasedWhenCommandFails(t *testing.T) {
	s := newFakeServer(t)
	s.on("GET", "/node/7", 500, `{"error":"database down"}`)

	var out, errOut bytes.Buffer
	a := newApp(&out, &errOut)
	root := newRootCmd(a)
	root.SetArgs([]string{"--host", s.host, "--port", s.port, "--no-color", "--log-level", "error", "node", "get", "7"})

	err := root.Execute()
	require.Error(t, err)
	assert.Equal(t, 1, s.count())
	assert.Nil(t, a.client, "client must be closed after a failed command")
}

func TestAdminCommands(t *testing.T) {
	s := newFakeServer(t)
	s.on("GET", "/admin/healthcheck", 200, `{}`)
	s.on("GET", "/admin/health", 200, `{"status":"UP"}`)
	s.on("GET", "/admin/authcheck", 200, `{}`)

	out, err := run(t, s, "admin", "alive")
	require.NoError(t, err)
	assert.Equal(t, "✓ alive\n", out)

	out, err = run(t, s, "admin", "health", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"UP"}`, out)

	out, err = run(t, s, "admin", "auth", "--token", "secret")
	require.NoError(t, err)
	assert.Equal(t, "✓ authorized (200)\n", out)
	assert.Equal(t, "secret", s.last(t).auth)

	_, err = run(t, s, "admin", "stats")
	var statusErr *transport.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 404, statusErr.StatusCode)
}

func TestNodeCommands(t *testing.T) {
	s := newFakeServer(t)
	s.on("POST", "/node", 201, `{"id":"7","identifier":42}`)
	s.on("GET", "/node/42", 200, `{"id":"7","identifier":42}`)

	out, err := run(t, s, "--prefix", "tenant-a", "node", "create", "42", "--data", `{"a":1}`, "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"7","identifier":42}`, out)

	c := s.last(t)
	assert.Equal(t, "tenant-a", c.prefix)
	assert.Equal(t, float64(42), c.body["identifier"])
	assert.Equal(t, map[string]interface{}{"a": float64(1)}, c.body["data"])
	assert.Equal(t, map[string]interface{}{}, c.body["extend"])

	out, err = run(t, s, "node", "get", "42", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"7","identifier":42}`, out)

	out, err = run(t, s, "node", "get", "43")
	require.NoError(t, err)
	assert.Equal(t, "null\n", out)

	_, err = run(t, s, "node", "create", "x", "--data", "{broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--data: invalid JSON")
}

func TestEdgeCommands(t *testing.T) {
	s := newFakeServer(t)
	s.on("POST", "/edge", 201, `{"leftNodeId":"1","rightNodeId":"2"}`)
	s.on("GET", "/edge/1/2/follows", 200, `{"depth":1}`)
	s.on("PUT", "/edge/depth/increase", 200, `{"depth":2}`)
	s.on("GET", "/edge/left/1/1", 200, `{"edges":[]}`)

	_, err := run(t, s, "edge", "create", "1", "2")
	require.NoError(t, err)
	c := s.last(t)
	assert.Equal(t, "1", c.body["relation"])
	assert.Equal(t, float64(1), c.body["leftId"])

	out, err := run(t, s, "edge", "get", "1", "2", "-r", "follows", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"depth":1}`, out)

	out, err = run(t, s, "edge", "increase", "1", "2", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"depth":2}`, out)
	assert.Equal(t, "PUT", s.last(t).method)

	out, err = run(t, s, "edge", "decrease", "1", "2")
	require.NoError(t, err)
	assert.Equal(t, "null\n", out)

	out, err = run(t, s, "edge", "left", "1", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"edges":[]}`, out)
}

func TestUpsertCommand(t *testing.T) {
	s := newFakeServer(t)
	s.on("POST", "/access/upsert-singular-relation", 200, `{"edge":{}}`)
	s.on("POST", "/access/upsert-singular-relation-no-transaction", 200, `{"edge":{}}`)

	_, err := run(t, s, "upsert", "alice", "bob", "--relation", "knows")
	require.NoError(t, err)
	c := s.last(t)
	assert.Equal(t, "/access/upsert-singular-relation", c.path)
	assert.Equal(t, "alice", c.body["leftNodeIdentifierVal"])
	assert.Equal(t, "bob", c.body["rightNodeIdentifierVal"])
	assert.Equal(t, "knows", c.body["relation"])
	assert.Equal(t, true, c.body["depthBeforeCreation"])
	assert.Greater(t, c.body["edgeTime"], float64(0))

	_, err = run(t, s, "upsert", "1", "2", "--no-transaction", "--increase-depth")
	require.NoError(t, err)
	c = s.last(t)
	assert.Equal(t, "/access/upsert-singular-relation-no-transaction", c.path)
	assert.Equal(t, false, c.body["depthBeforeCreation"])
}

func TestQueryAndPathCommands(t *testing.T) {
	s := newFakeServer(t)
	s.on("POST", "/raw/query", 200, `[{"n":1}]`)
	s.on("POST", "/raw/spread", 200, `[]`)
	s.on("POST", "/path/shortest-path", 200, `{"path":[1,2]}`)
	s.on("POST", "/access/translated-edge-info", 200, `{"edges":[]}`)

	out, err := run(t, s, "query", "SELECT 1", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"n":1}]`, out)
	assert.NotContains(t, s.last(t).body, "replacements")

	_, err = run(t, s, "query", "SELECT :x", "--spread", "--replacements", `{"x":5}`)
	require.NoError(t, err)
	assert.Equal(t, "/raw/spread", s.last(t).path)
	assert.Equal(t, map[string]interface{}{"x": float64(5)}, s.last(t).body["replacements"])

	_, err = run(t, s, "path", "1", "2")
	require.NoError(t, err)
	assert.Equal(t, float64(1), s.last(t).body["start"])

	_, err = run(t, s, "edge-info", "a", "42", "b")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"a", float64(42), "b"}, s.last(t).body["values"])
}

func TestRawCommand(t *testing.T) {
	s := newFakeServer(t)
	s.on("POST", "/node", 201, `{"nodes":[{"identifier":42}]}`)
	s.on("GET", "/crash", 500, `database unavailable`)

	out, err := run(t, s, "raw", "post", "/node", "--body", `{"identifier":42}`, "--extract", "$.nodes[0].identifier")
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)
	assert.Equal(t, float64(42), s.last(t).body["identifier"])

	out, err = run(t, s, "raw", "GET", "/crash")
	require.NoError(t, err)
	assert.Contains(t, out, "500 Internal Server Error")
	assert.Contains(t, out, "database unavailable")

	_, err = run(t, s, "raw", "GET", "/crash", "--expect", "200")
	var statusErr *transport.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, "response status code: 500 does not match expected status code: 200. database unavailable.", statusErr.Error())

	_, err = run(t, s, "raw", "GET", "/node", "-H", "no-colon")
	require.Error(t, err)
}

func TestRawCommandSchema(t *testing.T) {
	s := newFakeServer(t)
	s.on("GET", "/node/1", 200, `{"identifier":1}`)

	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "node.json")
	require.NoError(t, os.WriteFile(schemaPath, []byte(`{
		"type": "object",
		"required": ["identifier"],
		"properties": {"identifier": {"type": "integer"}}
	}`), 0644))
	strictPath := filepath.Join(dir, "strict.json")
	require.NoError(t, os.WriteFile(strictPath, []byte(`{"type": "object", "required": ["data"]}`), 0644))

	_, err := run(t, s, "raw", "GET", "/node/1", "--schema", schemaPath)
	require.NoError(t, err)

	_, err = run(t, s, "raw", "GET", "/node/1", "--schema", strictPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "response does not match schema")
}

func TestBenchCommand(t *testing.T) {
	s := newFakeServer(t)
	s.on("GET", "/admin/healthcheck", 200, `{}`)

	out, err := run(t, s, "bench", "-n", "20", "-C", "4", "-o", "json")
	require.NoError(t, err)

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.EqualValues(t, 20, report["total"])
	assert.EqualValues(t, 0, report["failed"])
	assert.Equal(t, 20, s.count())

	out, err = run(t, s, "bench", "-n", "5", "--path", "/missing")
	require.NoError(t, err)
	assert.Contains(t, out, "completed with 5 failures")
	assert.Contains(t, out, "does not match expected status code: 200")
}

func TestConfigPrecedence(t *testing.T) {
	s := newFakeServer(t)
	s.on("GET", "/", 200, `{"version":"1"}`)

	path := filepath.Join(t.TempDir(), "yildiz.yaml")
	content := strings.Join([]string{
		"defaultProfile: local",
		"profiles:",
		"  local:",
		"    host: " + s.host,
		"    port: " + s.port,
		"    prefix: from-file",
		"    token: file-token",
		"  other:",
		"    host: " + s.host,
		"    port: " + s.port,
		"    prefix: other-file",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	runWith := func(args ...string) call {
		t.Helper()
		var out, errOut bytes.Buffer
		root := NewRootCmd(&out, &errOut)
		root.SetArgs(append([]string{"--config", path, "--log-level", "error"}, args...))
		require.NoError(t, root.Execute())
		return s.last(t)
	}

	c := runWith("version")
	assert.Equal(t, "from-file", c.prefix)
	assert.Equal(t, "file-token", c.auth)

	c = runWith("--profile", "other", "version")
	assert.Equal(t, "other-file", c.prefix)

	t.Setenv("YILDIZ_PREFIX", "from-env")
	c = runWith("version")
	assert.Equal(t, "from-env", c.prefix)
	assert.Equal(t, "file-token", c.auth)

	c = runWith("--prefix", "from-flag", "version")
	assert.Equal(t, "from-flag", c.prefix)
}

func TestSetupErrors(t *testing.T) {
	s := newFakeServer(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown output", []string{"-o", "xml", "version"}, "unknown output format"},
		{"unknown log level", []string{"--log-level", "loud", "version"}, "unknown log level"},
		{"profile without config", []string{"--profile", "x", "version"}, "--profile requires --config"},
		{"missing config", []string{"--config", "/nonexistent/yildiz.yaml", "version"}, "config file not found"},
		{"bad proto", []string{"--proto", "ftp", "version"}, "ftp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			root := NewRootCmd(&out, &errOut)
			root.SetArgs(append([]string{"--host", s.host, "--port", s.port}, tt.args...))
			err := root.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestTransportErrorSurfaces(t *testing.T) {
	s := newFakeServer(t)
	s.Close()

	_, err := run(t, s, "admin", "alive", "--timeout", "500ms")
	var transportErr *transport.TransportError
	require.True(t, errors.As(err, &transportErr), "got %v", err)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		arg  string
		want interface{}
	}{
		{"42", json.Number("42")},
		{"9007199254740993", json.Number("9007199254740993")},
		{"abc", "abc"},
		{`"42"`, "42"},
		{"42abc", "42abc"},
		{"true", true},
		{`{"a":1}`, map[string]interface{}{"a": json.Number("1")}},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValue(tt.arg))
		})
	}
}

func TestParseObject(t *testing.T) {
	v, err := parseObject("data", "")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = parseObject("data", `{"a":1} {"b":2}`)
	assert.Error(t, err)

	_, err = parseObject("data", `{`)
	assert.Error(t, err)
}
