package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// Response is the normalized result of a call.
type Response struct {
	// StatusCode is the HTTP status code (e.g., 200, 404, 500)
	StatusCode int

	// Status is the HTTP status string (e.g., "200 OK")
	Status string

	// Headers contains the response headers
	Headers http.Header

	// Body is the decoded JSON value, the raw text when the payload is not
	// JSON, or nil when the response had no body.
	Body interface{}

	// Timing is set only when the client was built with EnableTimings.
	Timing *TimingInfo

	raw []byte
}

func newResponse(resp *http.Response, raw []byte) *Response {
	r := NewResponse(resp.StatusCode, resp.Header, raw)
	r.Status = resp.Status
	return r
}

// NewResponse builds a normalized response from its parts. It is meant for
// fakes and tests; Client.Do builds responses itself.
func NewResponse(statusCode int, headers http.Header, raw []byte) *Response {
	if headers == nil {
		headers = http.Header{}
	}
	return &Response{
		StatusCode: statusCode,
		Status:     fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode)),
		Headers:    headers,
		Body:       parseBody(raw),
		raw:        raw,
	}
}

// parseBody decodes raw as JSON, falling back to the raw text.
func parseBody(raw []byte) interface{} {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

// Raw returns the undecoded response body.
func (r *Response) Raw() []byte {
	return r.raw
}

// Header returns the first value of the named response header.
func (r *Response) Header(key string) string {
	return r.Headers.Get(key)
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v interface{}) error {
	if len(bytes.TrimSpace(r.raw)) == 0 {
		return fmt.Errorf("transport: empty response body")
	}
	return json.Unmarshal(r.raw, v)
}

// IsSuccess returns true if the response status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsRedirect returns true if the response status code is in the 3xx range.
func (r *Response) IsRedirect() bool {
	return r.StatusCode >= 300 && r.StatusCode < 400
}

// errorMessage extracts the best available explanation from a failed
// response: the body's "error" field, the raw text of a 500, or a marker.
func (r *Response) errorMessage() string {
	if obj, ok := r.Body.(map[string]interface{}); ok {
		switch e := obj["error"].(type) {
		case nil:
		case string:
			if e != "" {
				return e
			}
		default:
			if data, err := json.Marshal(e); err == nil {
				return string(data)
			}
		}
	}
	if r.StatusCode == http.StatusInternalServerError && len(r.raw) > 0 {
		return string(r.raw)
	}
	return noErrorMessage
}

const noErrorMessage = "No error message present in body"
