// Package jsonpath resolves simple JSONPath expressions against response
// bodies using gjson.
package jsonpath

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Lookup resolves path against doc. Both JSONPath ("$.edges[0].relation")
// and plain gjson paths ("edges.0.relation") are accepted.
func Lookup(doc []byte, path string) (gjson.Result, error) {
	if len(bytes.TrimSpace(doc)) == 0 {
		return gjson.Result{}, fmt.Errorf("empty JSON document")
	}
	if path == "" {
		return gjson.Result{}, fmt.Errorf("empty JSONPath expression")
	}
	if !gjson.ValidBytes(doc) {
		return gjson.Result{}, fmt.Errorf("document is not valid JSON")
	}

	result := gjson.GetBytes(doc, toGjsonPath(path))
	if !result.Exists() {
		return gjson.Result{}, fmt.Errorf("path not found: %s", path)
	}
	return result, nil
}

// Extract returns the value at path as text. Strings are returned
// unquoted, null as "null", objects and arrays as raw JSON.
func Extract(doc []byte, path string) (string, error) {
	result, err := Lookup(doc, path)
	if err != nil {
		return "", err
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

var bracketReplacer = strings.NewReplacer("['", ".", "']", "", `["`, ".", `"]`, "", "[", ".", "]", "")

// toGjsonPath converts a JSONPath expression to gjson syntax.
//
//	$.users[0].name -> users.0.name
//	$['name']       -> name
//	$               -> @this
func toGjsonPath(path string) string {
	path = strings.TrimPrefix(path, "$")
	if path == "" {
		return "@this"
	}

	path = bracketReplacer.Replace(path)
	return strings.TrimPrefix(path, ".")
}
