// Package headers detects deprecation signals in response header names.
package headers

import "strings"

// DefaultDeprecationHeaders is the fixed default set of header names that
// signal deprecation (RFC 8594 Sunset and the Deprecation header).
var DefaultDeprecationHeaders = []string{"sunset", "deprecation"}

// Detect reports whether any response header name matches the effective
// deprecation header set: the case-insensitive union of the default set and
// the caller-supplied custom names. Pure function, no failure modes.
func Detect(responseHeaderNames, customNames []string) bool {
	effective := make(map[string]bool, len(DefaultDeprecationHeaders)+len(customNames))
	for _, name := range DefaultDeprecationHeaders {
		effective[strings.ToLower(name)] = true
	}
	for _, name := range customNames {
		effective[strings.ToLower(name)] = true
	}

	for _, name := range responseHeaderNames {
		if effective[strings.ToLower(name)] {
			return true
		}
	}
	return false
}
