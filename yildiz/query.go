package yildiz

import (
	"context"
	"net/http"
)

// RawQuery runs a query on the server's database and returns its results.
// Nil replacements are left out of the request body.
func (c *Client) RawQuery(ctx context.Context, query string, replacements interface{}) (*Document, error) {
	return c.raw(ctx, "/raw/query", query, replacements)
}

// RawSpread runs a query and returns its metadata.
func (c *Client) RawSpread(ctx context.Context, query string, replacements interface{}) (*Document, error) {
	return c.raw(ctx, "/raw/spread", query, replacements)
}

func (c *Client) raw(ctx context.Context, path, query string, replacements interface{}) (*Document, error) {
	body := queryPayload{Query: query, Replacements: replacements}
	return c.expect(ctx, http.MethodPost, path, body, http.StatusOK)
}

// ShortestPath returns the shortest path between two nodes.
func (c *Client) ShortestPath(ctx context.Context, start, end interface{}) (*Document, error) {
	return c.expect(ctx, http.MethodPost, "/path/shortest-path", pathPayload{Start: start, End: end}, http.StatusOK)
}
