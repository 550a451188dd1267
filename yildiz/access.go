package yildiz

import (
	"context"
	"net/http"
)

// TranslatedEdgeInfo resolves node values to their translations and the
// edges between them. Values may be strings or numbers, as for
// NodeInput.Identifier.
func (c *Client) TranslatedEdgeInfo(ctx context.Context, values []interface{}) (*Document, error) {
	if values == nil {
		values = []interface{}{}
	}
	return c.expect(ctx, http.MethodPost, "/access/translated-edge-info", edgeInfoPayload{Values: values}, http.StatusOK)
}

// UpsertRelation creates both nodes, their translations and the edge
// between them in one transaction, reusing whatever already exists. The
// result carries the created or selected ids and identifiers.
func (c *Client) UpsertRelation(ctx context.Context, in RelationInput) (*Document, error) {
	return c.upsert(ctx, "/access/upsert-singular-relation", in)
}

// UpsertRelationNoTransaction behaves like UpsertRelation without a
// database transaction.
func (c *Client) UpsertRelationNoTransaction(ctx context.Context, in RelationInput) (*Document, error) {
	return c.upsert(ctx, "/access/upsert-singular-relation-no-transaction", in)
}

func (c *Client) upsert(ctx context.Context, path string, in RelationInput) (*Document, error) {
	return c.expect(ctx, http.MethodPost, path, in.normalize(c.now().UnixMilli()), http.StatusOK)
}
