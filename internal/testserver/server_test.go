package testserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yildizdb/yildiz-go/transport"
)

func do(t *testing.T, s *Server, method, path, prefix, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if prefix != "" {
		req.Header.Set(transport.PrefixHeader, prefix)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var out map[string]interface{}
	if bytes.HasPrefix(bytes.TrimSpace(rec.Body.Bytes()), []byte("{")) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func TestRequiresPrefix(t *testing.T) {
	s := New()
	status, body := do(t, s, http.MethodGet, "/node/1", "", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], transport.PrefixHeader)

	status, body = do(t, s, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, Version, body["version"])
}

func TestRejectsBadInput(t *testing.T) {
	s := New()
	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"broken json", http.MethodPost, "/node", "{"},
		{"missing identifier", http.MethodPost, "/node", "{}"},
		{"non numeric edge id", http.MethodGet, "/edge/a/1/1", ""},
		{"edge without ids", http.MethodPost, "/edge", `{"leftId":"x","rightId":1}`},
		{"empty query", http.MethodPost, "/raw/query", `{"query":""}`},
		{"upsert without values", http.MethodPost, "/access/upsert-singular-relation", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, s, tt.method, tt.path, "p", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	status, _ := do(t, New(), http.MethodGet, "/nowhere", "p", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTokenCheck(t *testing.T) {
	s := New(WithToken("t"))

	status, _ := do(t, s, http.MethodGet, "/admin/authcheck", "p", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	req := httptest.NewRequest(http.MethodGet, "/admin/authcheck", nil)
	req.Header.Set("authorization", "t")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDepthNeverNegative(t *testing.T) {
	s := New()
	do(t, s, http.MethodPost, "/edge", "p", `{"leftId":1,"rightId":2,"relation":"1"}`)

	key := `{"leftId":1,"rightId":2,"relation":"1"}`
	_, body := do(t, s, http.MethodPut, "/edge/depth/decrease", "p", key)
	assert.EqualValues(t, 0, body["depth"])
	_, body = do(t, s, http.MethodPut, "/edge/depth/decrease", "p", key)
	assert.EqualValues(t, 0, body["depth"])
}

func TestIdentify(t *testing.T) {
	assert.EqualValues(t, 42, identify(json.Number("42")))
	assert.EqualValues(t, 42, identify(float64(42)))
	assert.EqualValues(t, 42, identify("42"))
	assert.Equal(t, identify("alice"), identify("alice"))
	assert.NotEqual(t, identify("alice"), identify("bob"))
	assert.Equal(t, identify(map[string]interface{}{"a": 1}), identify(map[string]interface{}{"a": 1}))
}
