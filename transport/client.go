package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Client executes single-attempt requests against one yildiz server on
// behalf of one tenant. Client is safe for concurrent use by multiple
// goroutines; the connection pool is the only state shared between calls.
type Client struct {
	cfg    Config
	origin string
	logger *zap.Logger

	// pool is nil when connection reuse is disabled or after Close.
	pool    atomic.Pointer[http.Transport]
	oneShot *http.Transport
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for per-call debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client for cfg.
//
// Example:
//
//	client, err := transport.New(transport.Config{
//	    Prefix: "tenant-a",
//	    Host:   "yildiz.internal",
//	    Port:   3058,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
func New(cfg Config, options ...Option) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := &Client{
		cfg:     cfg,
		origin:  cfg.Origin(),
		logger:  zap.NewNop(),
		oneShot: newTransport(false),
	}

	for _, option := range options {
		option(client)
	}

	if !cfg.DisableConnectionReuse {
		client.pool.Store(newTransport(true))
	}

	client.logger.Debug("client ready",
		zap.String("origin", client.origin),
		zap.String("prefix", cfg.Prefix),
		zap.Bool("reuse", !cfg.DisableConnectionReuse))

	return client, nil
}

func newTransport(keepAlive bool) *http.Transport {
	dialer := &net.Dialer{KeepAlive: idleKeepAlive}
	t := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		DialContext:       dialer.DialContext,
		ForceAttemptHTTP2: true,
	}
	if keepAlive {
		t.MaxConnsPerHost = maxConnsPerHost
		t.MaxIdleConns = maxIdleConns
		t.MaxIdleConnsPerHost = maxIdleConns
		t.IdleConnTimeout = idleKeepAlive
	} else {
		t.DisableKeepAlives = true
	}
	return t
}

// Config returns the effective configuration, defaults included.
func (c *Client) Config() Config {
	return c.cfg
}

// Pooled reports whether calls currently go through the shared pool.
func (c *Client) Pooled() bool {
	return c.pool.Load() != nil
}

func (c *Client) httpClient() *http.Client {
	if pool := c.pool.Load(); pool != nil {
		return &http.Client{Transport: pool}
	}
	return &http.Client{Transport: c.oneShot}
}

// Do dispatches req exactly once and returns the normalized response.
//
// It fails with a *TransportError when no response was received and with a
// *StatusError when req carries an expected status that the response does
// not match. A body that is not JSON is not an error; it is kept as text.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.New("transport: request is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.cfg.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var trace *tracer
	if c.cfg.EnableTimings {
		trace = newTracer()
		ctx = trace.attach(ctx)
	}

	httpReq, err := req.build(ctx, c.origin)
	if err != nil {
		return nil, err
	}
	c.setHeaders(httpReq)

	start := time.Now()
	httpResp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return nil, c.transportError(httpReq, err, start)
	}

	raw, err := io.ReadAll(httpResp.Body)
	httpResp.Body.Close()
	if err != nil {
		return nil, c.transportError(httpReq, fmt.Errorf("read response body: %w", err), start)
	}

	resp := newResponse(httpResp, raw)
	if trace != nil {
		resp.Timing = trace.finish(time.Now())
	}

	c.logger.Debug("dispatched",
		zap.String("method", httpReq.Method),
		zap.String("url", httpReq.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if expected, ok := req.Expected(); ok && resp.StatusCode != expected {
		return nil, newStatusError(resp, expected)
	}

	return resp, nil
}

// setHeaders applies the headers every call carries. They win over any
// header of the same name set on the request.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("content-type", "application/json")
	req.Header.Set(PrefixHeader, c.cfg.Prefix)
	if c.cfg.AuthToken != "" {
		req.Header.Set("authorization", c.cfg.AuthToken)
	}
}

func (c *Client) transportError(req *http.Request, err error, start time.Time) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	c.logger.Debug("dispatch failed",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))
	return &TransportError{
		Method: req.Method,
		URL:    req.URL.String(),
		Err:    err,
	}
}

// Close releases the connection pool. Later calls still work but each one
// dials its own connection. Close is idempotent and does not wait for
// in-flight calls.
func (c *Client) Close() error {
	if pool := c.pool.Swap(nil); pool != nil {
		pool.CloseIdleConnections()
		c.logger.Debug("connection pool released", zap.String("origin", c.origin))
	}
	return nil
}
