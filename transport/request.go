package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Request describes a single call against the server. It is built fresh per
// call with NewRequest and the With* methods.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Body    interface{}

	// Timeout overrides Config.DefaultTimeout when positive.
	Timeout time.Duration

	expected    int
	hasExpected bool
}

// NewRequest creates a request for the given verb and path. The path is
// relative to the configured origin.
//
// Example:
//
//	req := transport.NewRequest("POST", "/node").
//	    WithBody(map[string]interface{}{"identifier": 42}).
//	    ExpectStatus(201)
func NewRequest(method, path string) *Request {
	return &Request{
		Method:  strings.ToUpper(method),
		Path:    path,
		Headers: make(map[string]string),
	}
}

// WithHeader adds a header to the request.
// The content-type, tenant and authorization headers are always set by the
// client and cannot be overridden here.
func (r *Request) WithHeader(key, value string) *Request {
	r.Headers[key] = value
	return r
}

// WithBody sets the body of the request.
// Strings and byte slices are sent as-is, anything else is marshaled as JSON.
func (r *Request) WithBody(body interface{}) *Request {
	r.Body = body
	return r
}

// WithTimeout bounds this request only.
func (r *Request) WithTimeout(timeout time.Duration) *Request {
	r.Timeout = timeout
	return r
}

// ExpectStatus makes Do fail with a *StatusError when the response carries
// any other status code. Without it no status check is performed.
func (r *Request) ExpectStatus(code int) *Request {
	r.expected = code
	r.hasExpected = true
	return r
}

// Expected reports the expected status code and whether one was set.
func (r *Request) Expected() (int, bool) {
	return r.expected, r.hasExpected
}

func (r *Request) validate() error {
	if strings.TrimSpace(r.Path) == "" {
		return fmt.Errorf("transport: request path is required")
	}
	switch r.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
		return nil
	case "":
		return fmt.Errorf("transport: request method is required")
	default:
		return fmt.Errorf("transport: unsupported method %q", r.Method)
	}
}

// encodeBody returns the wire form of the body, or nil when there is none.
func (r *Request) encodeBody() (io.Reader, error) {
	switch body := r.Body.(type) {
	case nil:
		return nil, nil
	case string:
		return strings.NewReader(body), nil
	case []byte:
		return bytes.NewReader(body), nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("transport: encode request body: %w", err)
		}
		return bytes.NewReader(data), nil
	}
}

// build turns the request into an *http.Request against origin.
func (r *Request) build(ctx context.Context, origin string) (*http.Request, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	path := r.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	body, err := r.encodeBody()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, origin+path, body)
	if err != nil {
		return nil, fmt.Errorf("transport: build request: %w", err)
	}

	for key, value := range r.Headers {
		req.Header.Set(key, value)
	}

	return req, nil
}
