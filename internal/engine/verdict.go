package engine

import "sort"

// Verdict is the engine's final deprecation determination for one
// request/response pair. Created fresh per evaluated call.
type Verdict struct {
	HeaderDeprecated    bool     `json:"header_deprecated" yaml:"header_deprecated"`
	OperationDeprecated bool     `json:"operation_deprecated" yaml:"operation_deprecated"`
	ParameterDeprecated bool     `json:"parameter_deprecated" yaml:"parameter_deprecated"`
	DeprecatedParams    []string `json:"deprecated_params,omitempty" yaml:"deprecated_params,omitempty"`
	Deprecated          bool     `json:"deprecated" yaml:"deprecated"`
}

// newVerdict assembles a Verdict, deriving the overall flag and sorting the
// parameter names for stable output.
func newVerdict(header, operation, parameter bool, params map[string]bool) Verdict {
	var names []string
	if len(params) > 0 {
		names = make([]string, 0, len(params))
		for name := range params {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	return Verdict{
		HeaderDeprecated:    header,
		OperationDeprecated: operation,
		ParameterDeprecated: parameter,
		DeprecatedParams:    names,
		Deprecated:          header || operation || parameter,
	}
}
