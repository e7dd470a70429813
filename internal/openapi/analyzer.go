package openapi

import (
	"fmt"
	"strings"

	"github.com/depradar/depradar/internal/errors"
)

// Parameter is a described input to an operation.
type Parameter struct {
	Name       string
	In         string
	Deprecated bool
}

// resolveOperation looks up the operation object for a path and method.
// Path lookup is an exact string match: a document path of /users/{id} never
// matches a request path of /users/123. Method lookup is case-insensitive.
func resolveOperation(doc *Document, path, method string) (map[string]interface{}, error) {
	paths, ok := doc.paths()
	if !ok {
		return nil, errors.NewStructureError(path, "document has no paths object")
	}

	item, ok := paths[path].(map[string]interface{})
	if !ok {
		return nil, errors.NewStructureError(path, fmt.Sprintf("path %q is not described", path))
	}

	op, ok := item[strings.ToLower(method)].(map[string]interface{})
	if !ok {
		return nil, errors.NewStructureError(path,
			fmt.Sprintf("method %s is not described for path %q", strings.ToUpper(method), path))
	}

	return op, nil
}

// OperationDeprecated reports whether the operation at path/method is marked
// deprecated. The flag defaults to false when absent. A missing paths object,
// path, or method yields a structure error.
func OperationDeprecated(doc *Document, path, method string) (bool, error) {
	op, err := resolveOperation(doc, path, method)
	if err != nil {
		return false, err
	}

	deprecated, _ := op["deprecated"].(bool)
	return deprecated, nil
}

// ParametersDeprecated reports which of the request's query parameters are
// declared deprecated by the operation at path/method. A parameter counts iff
// its deprecated flag is true, its location is exactly "query", and its name
// appears in queryNames. An operation with no parameters array at all yields
// a no-parameters error, distinct from "parameters present but none match".
//
// Callers lower-case queryNames; declared parameter names are compared as
// written in the document. The asymmetry matches the wire behavior this
// engine verifies and is deliberate.
func ParametersDeprecated(doc *Document, path, method string, queryNames map[string]bool) (bool, map[string]bool, error) {
	op, err := resolveOperation(doc, path, method)
	if err != nil {
		return false, nil, err
	}

	raw, ok := op["parameters"].([]interface{})
	if !ok {
		return false, nil, errors.NewNoParametersError(path, method)
	}

	deprecated := make(map[string]bool)
	for _, p := range Parameters(raw) {
		if p.Deprecated && p.In == InQuery && queryNames[p.Name] {
			deprecated[p.Name] = true
		}
	}

	return len(deprecated) > 0, deprecated, nil
}

// Parameters converts a raw parameters array into typed parameters,
// skipping entries that are not objects or lack a name.
func Parameters(raw []interface{}) []Parameter {
	params := make([]Parameter, 0, len(raw))
	for _, entry := range raw {
		pm, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		name, ok := pm["name"].(string)
		if !ok || name == "" {
			continue
		}
		in, _ := pm["in"].(string)
		deprecated, _ := pm["deprecated"].(bool)
		params = append(params, Parameter{
			Name:       name,
			In:         in,
			Deprecated: deprecated,
		})
	}
	return params
}
