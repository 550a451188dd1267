package yildiz

import (
	"errors"
	"net/http"
	"testing"

	"github.com/yildizdb/yildiz-go/transport"
)

func stubResponse(status int, body string) *transport.Response {
	return transport.NewResponse(status, http.Header{}, []byte(body))
}

func TestInterpret(t *testing.T) {
	resp200 := stubResponse(200, `{"id":1}`)
	resp404 := stubResponse(404, ``)
	resp409 := stubResponse(409, `{"error":"conflict"}`)
	callErr := errors.New("connection refused")

	tests := []struct {
		name    string
		resp    *transport.Response
		err     error
		outcome Outcome
	}{
		{name: "200 is found", resp: resp200, outcome: Found},
		{name: "404 is absent", resp: resp404, outcome: Absent},
		{name: "409 is failed", resp: resp409, outcome: Failed},
		{name: "call error is failed", err: callErr, outcome: Failed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result Result
			if tt.err != nil {
				result = interpret(nil, tt.err)
			} else {
				result = interpret(tt.resp, nil)
			}

			if result.Outcome != tt.outcome {
				t.Fatalf("Outcome = %v, want %v", result.Outcome, tt.outcome)
			}

			doc, err := result.Unwrap()
			switch tt.outcome {
			case Found:
				if err != nil || doc == nil {
					t.Fatalf("Unwrap() = %v, %v; want document", doc, err)
				}
				if doc.Get("id").Int() != 1 {
					t.Errorf("document id = %s", doc.Get("id").Raw)
				}
			case Absent:
				if err != nil || doc != nil {
					t.Fatalf("Unwrap() = %v, %v; want nil, nil", doc, err)
				}
			case Failed:
				if err == nil || doc != nil {
					t.Fatalf("Unwrap() = %v, %v; want error", doc, err)
				}
			}
		})
	}
}

func TestInterpret_UnexpectedStatus(t *testing.T) {
	result := interpret(stubResponse(503, ``), nil)

	var unexpected *UnexpectedStatusError
	if !errors.As(result.Err, &unexpected) {
		t.Fatalf("expected *UnexpectedStatusError, got %T", result.Err)
	}
	if unexpected.StatusCode != 503 {
		t.Errorf("StatusCode = %d, want 503", unexpected.StatusCode)
	}
	if result.Err.Error() != "unexpected status code: 503" {
		t.Errorf("Error() = %q", result.Err.Error())
	}
}

func TestOutcome_String(t *testing.T) {
	for outcome, want := range map[Outcome]string{Found: "found", Absent: "absent", Failed: "failed"} {
		if outcome.String() != want {
			t.Errorf("%d.String() = %q, want %q", outcome, outcome.String(), want)
		}
	}
}

func TestDocument(t *testing.T) {
	doc := &Document{Raw: []byte(`{"version":"1.0","nodes":[1,2]}`)}

	if doc.Get("version").String() != "1.0" {
		t.Errorf("Get(version) = %s", doc.Get("version").Raw)
	}
	if doc.Get("nodes.#").Int() != 2 {
		t.Errorf("Get(nodes.#) = %s", doc.Get("nodes.#").Raw)
	}

	var out struct {
		Nodes []int `json:"nodes"`
	}
	if err := doc.Decode(&out); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(out.Nodes) != 2 {
		t.Errorf("Decode() nodes = %v", out.Nodes)
	}

	empty := &Document{}
	if err := empty.Decode(&out); err == nil {
		t.Error("Decode() on an empty document must fail")
	}
}
