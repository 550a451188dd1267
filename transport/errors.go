package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// TransportError reports a call that never produced a response: DNS
// failures, refused connections, timeouts, or a body that could not be read.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the call failed because its deadline passed.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// StatusError reports a response whose status differs from the one the
// caller asked for with Request.ExpectStatus.
type StatusError struct {
	StatusCode int
	Expected   int
	Message    string

	// Response is the full normalized response that failed the check.
	Response *Response
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("response status code: %d does not match expected status code: %d. %s.",
		e.StatusCode, e.Expected, e.Message)
}

func newStatusError(resp *Response, expected int) *StatusError {
	return &StatusError{
		StatusCode: resp.StatusCode,
		Expected:   expected,
		Message:    resp.errorMessage(),
		Response:   resp,
	}
}
