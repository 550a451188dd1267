package yildiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/yildizdb/yildiz-go/transport"
)

// Document is a JSON document returned by the server.
type Document struct {
	// Raw is the undecoded response body.
	Raw []byte

	// Value is the decoded body: a map, slice, scalar, or the raw text when
	// the server did not answer with JSON.
	Value interface{}
}

func documentFrom(resp *transport.Response) *Document {
	return &Document{Raw: resp.Raw(), Value: resp.Body}
}

// Decode unmarshals the document into v.
func (d *Document) Decode(v interface{}) error {
	if len(d.Raw) == 0 {
		return errors.New("yildiz: empty document")
	}
	return json.Unmarshal(d.Raw, v)
}

// Get looks up a gjson path such as "version" or "edges.0.relation".
func (d *Document) Get(path string) gjson.Result {
	return gjson.GetBytes(d.Raw, path)
}

func (d *Document) String() string {
	return string(d.Raw)
}

// Outcome classifies a lookup by key.
type Outcome int

const (
	// Found means the server answered 200 with the entity.
	Found Outcome = iota
	// Absent means the server confirmed the entity does not exist (404).
	Absent
	// Failed means the call errored or returned any other status.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Absent:
		return "absent"
	default:
		return "failed"
	}
}

// Result is the outcome of a fetch, mutate or delete by key.
type Result struct {
	Outcome Outcome
	Doc     *Document
	Err     error
}

// Unwrap collapses the result into the (document, error) pair the client
// methods return. Absent yields (nil, nil).
func (r Result) Unwrap() (*Document, error) {
	switch r.Outcome {
	case Found:
		return r.Doc, nil
	case Absent:
		return nil, nil
	default:
		return nil, r.Err
	}
}

// UnexpectedStatusError reports a keyed operation that answered with a
// status other than 200 or 404.
type UnexpectedStatusError struct {
	StatusCode int
	Response   *transport.Response
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
}

// interpret maps a keyed call onto Found, Absent or Failed.
func interpret(resp *transport.Response, err error) Result {
	if err != nil {
		return Result{Outcome: Failed, Err: err}
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return Result{Outcome: Found, Doc: documentFrom(resp)}
	case http.StatusNotFound:
		return Result{Outcome: Absent}
	default:
		return Result{
			Outcome: Failed,
			Err:     &UnexpectedStatusError{StatusCode: resp.StatusCode, Response: resp},
		}
	}
}
