package yildiz

import (
	"context"
	"errors"
	"net/http"
)

// ServerVersion returns the version the server reports at its root.
func (c *Client) ServerVersion(ctx context.Context) (string, error) {
	doc, err := c.expect(ctx, http.MethodGet, "/", nil, http.StatusOK)
	if err != nil {
		return "", err
	}
	version := doc.Get("version")
	if !version.Exists() {
		return "", errors.New("yildiz: server did not report a version")
	}
	return version.String(), nil
}

// IsAlive returns nil when the server answers its liveness probe.
func (c *Client) IsAlive(ctx context.Context) error {
	_, err := c.expect(ctx, http.MethodGet, "/admin/healthcheck", nil, http.StatusOK)
	return err
}

// Health returns the server's health report.
func (c *Client) Health(ctx context.Context) (*Document, error) {
	return c.expect(ctx, http.MethodGet, "/admin/health", nil, http.StatusOK)
}

// Stats returns the server's statistics for the tenant.
func (c *Client) Stats(ctx context.Context) (*Document, error) {
	return c.expect(ctx, http.MethodGet, "/admin/stats", nil, http.StatusOK)
}

// Metrics returns the server's metrics.
func (c *Client) Metrics(ctx context.Context) (*Document, error) {
	return c.expect(ctx, http.MethodGet, "/admin/metrics", nil, http.StatusOK)
}

// CheckAuth verifies the configured token and returns the status code.
func (c *Client) CheckAuth(ctx context.Context) (int, error) {
	req := newGet("/admin/authcheck").ExpectStatus(http.StatusOK)
	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode, nil
}
