// Package errors provides error types and handling for the deprecation engine.
package errors

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Kind categorizes evaluation errors for handling decisions.
type Kind int

const (
	// Unknown is an uncategorized error.
	Unknown Kind = iota
	// Structure means a discovered document does not describe the request
	// being evaluated (missing paths object, path, or method).
	Structure
	// NoParameters means the resolved operation declares no parameters array.
	NoParameters
	// Transport represents network-level fetch failures.
	Transport
	// Parse represents document parse failures (JSON, YAML).
	Parse
	// Cancelled represents context cancellation.
	Cancelled
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case Structure:
		return "structure"
	case NoParameters:
		return "no_parameters"
	case Transport:
		return "transport"
	case Parse:
		return "parse"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// EvalError represents a categorized evaluation error.
type EvalError struct {
	Kind      Kind
	URL       string
	Operation string
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error during %s on %s: %s (caused by: %v)",
			e.Kind.String(), e.Operation, e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error during %s on %s: %s",
		e.Kind.String(), e.Operation, e.URL, e.Message)
}

// Unwrap returns the underlying error.
func (e *EvalError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches a target.
func (e *EvalError) Is(target error) bool {
	t, ok := target.(*EvalError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New creates a new EvalError.
func New(kind Kind, url, operation, message string, cause error) *EvalError {
	return &EvalError{
		Kind:      kind,
		URL:       url,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

// NewStructureError reports a document that was found but does not describe
// the requested path or method.
func NewStructureError(docURL, message string) *EvalError {
	return New(Structure, docURL, "operation_lookup", message, nil)
}

// NewNoParametersError reports an operation with no declared parameters array.
func NewNoParametersError(path, method string) *EvalError {
	return New(NoParameters, path, "parameter_lookup",
		fmt.Sprintf("operation %s %s declares no parameters", strings.ToUpper(method), path), nil)
}

// NewTransportError creates a network fetch error.
func NewTransportError(url string, cause error) *EvalError {
	return New(Transport, url, "fetch", "fetch failed", cause)
}

// NewParseError creates a document parse error.
func NewParseError(url, format string, cause error) *EvalError {
	return New(Parse, url, "parse", fmt.Sprintf("invalid %s document", format), cause)
}

// NewCancelledError creates a cancelled error.
func NewCancelledError(url, operation string) *EvalError {
	return New(Cancelled, url, operation, "operation cancelled", nil)
}

// IsStructure reports whether err is a structure mismatch.
func IsStructure(err error) bool {
	return kindOf(err) == Structure
}

// IsNoParameters reports whether err signals an operation without parameters.
func IsNoParameters(err error) bool {
	return kindOf(err) == NoParameters
}

// IsTransport reports whether err is a network fetch failure.
func IsTransport(err error) bool {
	return kindOf(err) == Transport
}

// IsParse reports whether err is a parse failure.
func IsParse(err error) bool {
	return kindOf(err) == Parse
}

func kindOf(err error) Kind {
	var evalErr *EvalError
	if errors.As(err, &evalErr) {
		return evalErr.Kind
	}
	return Unknown
}

// Categorize determines the error kind from a generic error.
func Categorize(err error, url string) *EvalError {
	if err == nil {
		return nil
	}

	var evalErr *EvalError
	if errors.As(err, &evalErr) {
		return evalErr
	}

	if strings.Contains(err.Error(), "context canceled") ||
		strings.Contains(err.Error(), "context deadline") {
		return NewCancelledError(url, "fetch")
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return NewTransportError(url, err)
	}

	return New(Unknown, url, "fetch", err.Error(), err)
}
