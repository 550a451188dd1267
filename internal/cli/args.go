package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// parseValue reads a command line argument as JSON when it is JSON and as a
// plain string otherwise, so that 42 is a number and abc a string. Numbers
// keep their literal form to avoid float rounding of large ids.
func parseValue(arg string) interface{} {
	dec := json.NewDecoder(bytes.NewReader([]byte(arg)))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil || dec.More() {
		return arg
	}
	return v
}

// parseObject reads a flag holding a JSON document. An empty flag yields nil.
func parseObject(flag, raw string) (interface{}, error) {
	if raw == "" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("--%s: invalid JSON: %w", flag, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("--%s: trailing data after JSON value", flag)
	}
	return v, nil
}
