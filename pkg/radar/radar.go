// Package radar wires the deprecation engine into an HTTP client pipeline.
//
// Radar is an http.RoundTripper that evaluates every response it sees: it
// inspects response headers for deprecation signals and, when those are
// absent, discovers and consults the API's OpenAPI description. Verdicts are
// attached to the response as X-Depradar-* headers; the wrapped call itself
// is never failed by an evaluation.
package radar

import (
	"context"
	"net/http"
	"strings"

	"github.com/depradar/depradar/internal/engine"
	"github.com/depradar/depradar/internal/fetch"
	"github.com/depradar/depradar/internal/logger"
)

// Version is the depradar release version.
const Version = "1.0.0"

// Response annotation headers set by the interceptor.
const (
	HeaderDeprecated       = "X-Depradar-Deprecated"
	HeaderDeprecatedParams = "X-Depradar-Deprecated-Params"
)

// Radar intercepts a client pipeline and augments responses with
// deprecation verdicts.
type Radar struct {
	config  *Config
	engine  *engine.Engine
	fetcher fetch.Fetcher
	client  *fetch.Client // owned, nil when a fetcher was injected
	next    http.RoundTripper
	logger  *logger.Logger
}

// New creates a Radar with the given options.
func New(opts ...Option) (*Radar, error) {
	r := &Radar{
		config: DefaultConfig(),
		next:   http.DefaultTransport,
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	if r.logger == nil {
		level := logger.InfoLevel
		if r.config.Debug {
			level = logger.DebugLevel
		}
		r.logger = logger.New(logger.Config{
			Level:     level,
			Pretty:    true,
			Component: "radar",
		})
	}

	if r.fetcher == nil {
		r.client = fetch.NewClient(fetch.Config{
			Timeout:           r.config.Timeout,
			MaxBodySize:       r.config.MaxBodySize,
			UserAgent:         r.config.UserAgent,
			SkipTLSVerify:     r.config.SkipTLSVerify,
			RequestsPerSecond: r.config.RequestsPerSecond,
			Burst:             r.config.Burst,
		}, r.logger)
		r.fetcher = r.client
	}

	engineOpts := []engine.Option{
		engine.WithLogger(r.logger),
		engine.WithCustomHeaders(r.config.CustomHeaders...),
	}
	if r.config.LenientStructure {
		engineOpts = append(engineOpts, engine.WithLenientStructure())
	}
	r.engine = engine.New(r.fetcher, engineOpts...)

	return r, nil
}

// RoundTrip implements http.RoundTripper. The wrapped request always
// completes first; evaluation runs on its response. Evaluation errors are
// logged, never returned, so a stale API description cannot fail live
// traffic passing through the interceptor.
func (r *Radar) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := r.next.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	verdict, evalErr := r.engine.Evaluate(req.Context(), engine.FromRequest(req), headerNames(resp.Header))
	if evalErr != nil {
		r.logger.WithError(evalErr).WithURL(req.URL.String()).Warn("Deprecation evaluation failed")
		return resp, nil
	}

	r.logger.VerdictEvent(req.URL.String(), req.Method, verdict.Deprecated, verdict.DeprecatedParams)

	if r.config.Annotate {
		annotate(resp, verdict)
	}

	return resp, nil
}

// Evaluate computes a verdict directly, outside any pipeline.
func (r *Radar) Evaluate(ctx context.Context, desc engine.RequestDescriptor, responseHeaderNames []string) (engine.Verdict, error) {
	return r.engine.Evaluate(ctx, desc, responseHeaderNames)
}

// Client returns an http.Client whose transport is this Radar.
func (r *Radar) Client() *http.Client {
	return &http.Client{Transport: r}
}

// Close releases the owned fetch client, if any.
func (r *Radar) Close() {
	if r.client != nil {
		r.client.Close()
	}
}

// headerNames extracts the header names present on a response.
func headerNames(h http.Header) []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	return names
}

// annotate attaches the verdict to the response headers.
func annotate(resp *http.Response, v engine.Verdict) {
	if v.Deprecated {
		resp.Header.Set(HeaderDeprecated, "true")
	} else {
		resp.Header.Set(HeaderDeprecated, "false")
	}
	if len(v.DeprecatedParams) > 0 {
		resp.Header.Set(HeaderDeprecatedParams, strings.Join(v.DeprecatedParams, ", "))
	}
}
