// Package openapi provides a typed view over parsed OpenAPI description
// documents and deprecation analysis of their operations and parameters.
package openapi

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/depradar/depradar/internal/errors"
)

// Parameter locations as declared in an OpenAPI document.
const (
	InQuery  = "query"
	InPath   = "path"
	InHeader = "header"
	InCookie = "cookie"
)

// Document is an immutable view over a parsed OpenAPI description.
// It is created once per discovery attempt and discarded after the single
// verdict computation that uses it.
type Document struct {
	root map[string]interface{}
}

// ParseJSON parses a JSON document body.
func ParseJSON(body []byte) (*Document, error) {
	var root map[string]interface{}
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, errors.NewParseError("", "json", err)
	}
	return &Document{root: root}, nil
}

// ParseYAML parses a YAML document body into the same tree shape as ParseJSON.
func ParseYAML(body []byte) (*Document, error) {
	var raw interface{}
	if err := yaml.Unmarshal(body, &raw); err != nil {
		return nil, errors.NewParseError("", "yaml", err)
	}
	norm, err := normalize(raw)
	if err != nil {
		return nil, errors.NewParseError("", "yaml", err)
	}
	root, ok := norm.(map[string]interface{})
	if !ok {
		return nil, errors.NewParseError("", "yaml", fmt.Errorf("document root is not a mapping"))
	}
	return &Document{root: root}, nil
}

// normalize converts YAML trees into the map[string]interface{} shape that
// JSON parsing produces, so the analyzer works over one representation.
func normalize(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			n, err := normalize(val)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string mapping key %v", k)
			}
			n, err := normalize(val)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			n, err := normalize(val)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	default:
		return v, nil
	}
}

// IsOpenAPI reports whether the document passes the validity gate: presence
// of both top-level "openapi" and "info" fields. A document lacking either is
// not treated as an OpenAPI description even if it parsed.
func (d *Document) IsOpenAPI() bool {
	if d == nil || d.root == nil {
		return false
	}
	_, hasVersion := d.root["openapi"]
	_, hasInfo := d.root["info"]
	return hasVersion && hasInfo
}

// Version returns the declared OpenAPI version string, if any.
func (d *Document) Version() string {
	if d == nil {
		return ""
	}
	v, _ := d.root["openapi"].(string)
	return v
}

// Title returns the document's info.title, if any.
func (d *Document) Title() string {
	if d == nil {
		return ""
	}
	info, _ := d.root["info"].(map[string]interface{})
	t, _ := info["title"].(string)
	return t
}

// paths returns the top-level paths object, if present.
func (d *Document) paths() (map[string]interface{}, bool) {
	if d == nil || d.root == nil {
		return nil, false
	}
	p, ok := d.root["paths"].(map[string]interface{})
	return p, ok
}
