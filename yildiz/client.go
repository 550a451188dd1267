package yildiz

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/yildizdb/yildiz-go/transport"
)

// Config is the client configuration. See transport.Config.
type Config = transport.Config

// Client exposes the yildiz graph API as typed methods. Every method is a
// single call through the underlying transport; there is no session state.
// Client is safe for concurrent use by multiple goroutines.
type Client struct {
	transport *transport.Client
	now       func() time.Time
}

// New creates a Client for cfg.
func New(cfg Config, options ...transport.Option) (*Client, error) {
	t, err := transport.New(cfg, options...)
	if err != nil {
		return nil, err
	}
	return &Client{transport: t, now: time.Now}, nil
}

// Transport returns the underlying request executor.
func (c *Client) Transport() *transport.Client {
	return c.transport
}

// Raw dispatches an arbitrary request and returns the normalized response.
func (c *Client) Raw(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	return c.transport.Do(ctx, req)
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.transport.Close()
}

// expect performs a call that must answer with status and returns its body.
func (c *Client) expect(ctx context.Context, method, path string, body interface{}, status int) (*Document, error) {
	req := transport.NewRequest(method, path).ExpectStatus(status)
	if body != nil {
		req.WithBody(body)
	}
	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return documentFrom(resp), nil
}

// lookup performs a keyed call and interprets 200/404/other.
func (c *Client) lookup(ctx context.Context, method, path string, body interface{}) Result {
	req := transport.NewRequest(method, path)
	if body != nil {
		req.WithBody(body)
	}
	return interpret(c.transport.Do(ctx, req))
}

// resourcePath joins escaped segments under base.
func resourcePath(base string, segments ...string) (string, error) {
	var b strings.Builder
	b.WriteString(base)
	for _, s := range segments {
		if s == "" {
			return "", fmt.Errorf("yildiz: empty path segment for %s", base)
		}
		b.WriteString("/")
		b.WriteString(url.PathEscape(s))
	}
	return b.String(), nil
}

// emptyObject stands in for optional object fields the caller left nil.
func emptyObject(v interface{}) interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	return v
}
