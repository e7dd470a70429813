// Package engine computes deprecation verdicts for intercepted HTTP calls.
//
// The engine combines three checks: response-header inspection, upward-walk
// discovery of an OpenAPI description document, and matching of the call's
// path, method, and query parameters against that document. Discovery is
// skipped entirely when headers already answer the question, since it issues
// real network round-trips.
package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/depradar/depradar/internal/errors"
	"github.com/depradar/depradar/internal/fetch"
	"github.com/depradar/depradar/internal/headers"
	"github.com/depradar/depradar/internal/locate"
	"github.com/depradar/depradar/internal/logger"
	"github.com/depradar/depradar/internal/openapi"
)

// RequestDescriptor identifies one outgoing call for evaluation.
type RequestDescriptor struct {
	Scheme string
	Host   string // host or host:port
	Path   string // exact string, case-sensitive, starts with "/"
	Method string // case-insensitive

	// QueryParams holds the names of query parameters present on the call.
	QueryParams []string
}

// FromRequest builds a descriptor from an http.Request.
func FromRequest(req *http.Request) RequestDescriptor {
	desc := RequestDescriptor{
		Scheme: req.URL.Scheme,
		Host:   req.URL.Host,
		Path:   req.URL.EscapedPath(),
		Method: req.Method,
	}
	for name := range req.URL.Query() {
		desc.QueryParams = append(desc.QueryParams, name)
	}
	return desc
}

// FromURL builds a descriptor from a raw URL and method.
func FromURL(rawURL, method string) (RequestDescriptor, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return RequestDescriptor{}, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return RequestDescriptor{}, fmt.Errorf("url %q must be absolute", rawURL)
	}

	desc := RequestDescriptor{
		Scheme: parsed.Scheme,
		Host:   parsed.Host,
		Path:   parsed.EscapedPath(),
		Method: method,
	}
	for name := range parsed.Query() {
		desc.QueryParams = append(desc.QueryParams, name)
	}
	return desc, nil
}

// baseURL derives the discovery starting point: scheme, host, port, and path
// only, query and fragment stripped.
func (r RequestDescriptor) baseURL() string {
	return r.Scheme + "://" + r.Host + r.Path
}

// Engine orchestrates header detection, document discovery, and document
// analysis into a single verdict. Evaluations are independent and safe to
// run concurrently; the engine holds no per-call state.
type Engine struct {
	locator       *locate.Locator
	customHeaders []string
	lenient       bool
	log           *logger.Logger
}

// Option is a functional option for configuring the Engine.
type Option func(*Engine)

// WithCustomHeaders adds header names to the deprecation header set.
func WithCustomHeaders(names ...string) Option {
	return func(e *Engine) {
		e.customHeaders = append(e.customHeaders, names...)
	}
}

// WithLenientStructure degrades a structure mismatch (document found but not
// describing the evaluated path/method) to an all-false verdict instead of
// failing the evaluation. The default is strict: the mismatch propagates,
// signalling a stale or mismatched document.
func WithLenientStructure() Option {
	return func(e *Engine) {
		e.lenient = true
	}
}

// WithLogger sets the engine's logger.
func WithLogger(log *logger.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// New creates an Engine. The fetcher is an explicit dependency so tests can
// inject stubs; the engine never constructs its own transport and applies no
// timeout policy of its own.
func New(fetcher fetch.Fetcher, opts ...Option) *Engine {
	e := &Engine{
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.WithComponent("engine")
	e.locator = locate.New(fetcher, e.log)
	return e
}

// Evaluate computes the deprecation verdict for one request/response pair.
// responseHeaderNames are the header names present on the response.
//
// Discovery failure is expected for most hosts and yields an all-false
// verdict, never an error. A structure mismatch on a discovered document
// fails the evaluation unless the engine is lenient.
func (e *Engine) Evaluate(ctx context.Context, req RequestDescriptor, responseHeaderNames []string) (Verdict, error) {
	if headers.Detect(responseHeaderNames, e.customHeaders) {
		return newVerdict(true, false, false, nil), nil
	}

	result := e.locator.Locate(ctx, req.baseURL())
	if result.Document == nil || !strings.HasPrefix(result.RelPath, "/") {
		return newVerdict(false, false, false, nil), nil
	}

	opDeprecated, err := openapi.OperationDeprecated(result.Document, result.RelPath, req.Method)
	if err != nil {
		if e.lenient {
			e.log.WithError(err).Debug("Document does not describe call, degrading to not deprecated")
			return newVerdict(false, false, false, nil), nil
		}
		return Verdict{}, err
	}

	paramDeprecated := false
	var deprecatedParams map[string]bool
	if len(req.QueryParams) > 0 {
		queryNames := make(map[string]bool, len(req.QueryParams))
		for _, name := range req.QueryParams {
			queryNames[strings.ToLower(name)] = true
		}

		paramDeprecated, deprecatedParams, err = openapi.ParametersDeprecated(
			result.Document, result.RelPath, req.Method, queryNames)
		if err != nil {
			if !errors.IsNoParameters(err) {
				if e.lenient {
					return newVerdict(false, opDeprecated, false, nil), nil
				}
				return Verdict{}, err
			}
			// An operation with no declared parameters deprecates none.
			paramDeprecated = false
			deprecatedParams = nil
		}
	}

	return newVerdict(false, opDeprecated, paramDeprecated, deprecatedParams), nil
}
