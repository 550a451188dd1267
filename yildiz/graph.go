package yildiz

import (
	"context"
	"net/http"

	"github.com/yildizdb/yildiz-go/transport"
)

func newGet(path string) *transport.Request {
	return transport.NewRequest(http.MethodGet, path)
}

// StoreTranslation translates and stores a value, returning the created
// translation.
func (c *Client) StoreTranslation(ctx context.Context, in TranslationInput) (*Document, error) {
	return c.expect(ctx, http.MethodPost, "/translator/translate-and-store", in.normalize(), http.StatusCreated)
}

// GetTranslation returns the translation for id, or nil if there is none.
func (c *Client) GetTranslation(ctx context.Context, id string) (*Document, error) {
	return c.byKey(ctx, http.MethodGet, "/translator", id)
}

// DeleteTranslation deletes the translation for id. It returns nil, nil when
// the translation did not exist.
func (c *Client) DeleteTranslation(ctx context.Context, id string) (*Document, error) {
	return c.byKey(ctx, http.MethodDelete, "/translator", id)
}

// CreateNode creates a graph node.
func (c *Client) CreateNode(ctx context.Context, in NodeInput) (*Document, error) {
	return c.expect(ctx, http.MethodPost, "/node", in.normalize(), http.StatusCreated)
}

// GetNode returns the node for identifier, or nil if there is none.
func (c *Client) GetNode(ctx context.Context, identifier string) (*Document, error) {
	return c.byKey(ctx, http.MethodGet, "/node", identifier)
}

// DeleteNode deletes the node for identifier. It returns nil, nil when the
// node did not exist.
func (c *Client) DeleteNode(ctx context.Context, identifier string) (*Document, error) {
	return c.byKey(ctx, http.MethodDelete, "/node", identifier)
}

// CreateEdge creates an edge between two nodes.
func (c *Client) CreateEdge(ctx context.Context, in EdgeInput) (*Document, error) {
	return c.expect(ctx, http.MethodPost, "/edge", in.normalize(), http.StatusCreated)
}

// GetEdge returns the edge between left and right under relation, or nil.
func (c *Client) GetEdge(ctx context.Context, leftID, rightID, relation string) (*Document, error) {
	return c.byKey(ctx, http.MethodGet, "/edge", leftID, rightID, relation)
}

// DeleteEdge deletes the edge between left and right under relation. It
// returns nil, nil when the edge did not exist.
func (c *Client) DeleteEdge(ctx context.Context, leftID, rightID, relation string) (*Document, error) {
	return c.byKey(ctx, http.MethodDelete, "/edge", leftID, rightID, relation)
}

// IncreaseEdgeDepth increments the depth counter of an edge. Any status
// other than 200, including 404 for a missing edge, is a *transport.StatusError.
func (c *Client) IncreaseEdgeDepth(ctx context.Context, key EdgeKey) (*Document, error) {
	return c.expect(ctx, http.MethodPut, "/edge/depth/increase", key.normalize(), http.StatusOK)
}

// DecreaseEdgeDepth decrements the depth counter of an edge. It fails like
// IncreaseEdgeDepth.
func (c *Client) DecreaseEdgeDepth(ctx context.Context, key EdgeKey) (*Document, error) {
	return c.expect(ctx, http.MethodPut, "/edge/depth/decrease", key.normalize(), http.StatusOK)
}

// EdgesFromLeft lists the edges whose left node is leftID.
func (c *Client) EdgesFromLeft(ctx context.Context, leftID, relation string) (*Document, error) {
	return c.edgesBySide(ctx, "left", leftID, relation)
}

// EdgesFromRight lists the edges whose right node is rightID.
func (c *Client) EdgesFromRight(ctx context.Context, rightID, relation string) (*Document, error) {
	return c.edgesBySide(ctx, "right", rightID, relation)
}

// EdgesForEither lists the edges touching id on either side.
func (c *Client) EdgesForEither(ctx context.Context, id, relation string) (*Document, error) {
	return c.edgesBySide(ctx, "both", id, relation)
}

func (c *Client) edgesBySide(ctx context.Context, side, id, relation string) (*Document, error) {
	path, err := resourcePath("/edge/"+side, id, relation)
	if err != nil {
		return nil, err
	}
	return c.expect(ctx, http.MethodGet, path, nil, http.StatusOK)
}

// byKey runs a tri-state call against base/keys...
func (c *Client) byKey(ctx context.Context, method, base string, keys ...string) (*Document, error) {
	path, err := resourcePath(base, keys...)
	if err != nil {
		return nil, err
	}
	return c.lookup(ctx, method, path, nil).Unwrap()
}
