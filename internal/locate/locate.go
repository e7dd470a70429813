// Package locate discovers OpenAPI description documents by walking a
// request URL upward toward the host root, probing well-known document
// names at each directory level.
package locate

import (
	"context"
	"net/url"
	"strings"

	"github.com/depradar/depradar/internal/fetch"
	"github.com/depradar/depradar/internal/logger"
	"github.com/depradar/depradar/internal/openapi"
)

// Well-known document names probed at every directory level, in order.
const (
	jsonDocName = "openapi.json"
	yamlDocName = "openapi.yaml"
)

// Outcome classifies one probe attempt during the walk.
type Outcome int

const (
	// Found means the probe returned a valid OpenAPI document.
	Found Outcome = iota
	// NotFound means the fetch failed or returned a non-success status.
	NotFound
	// Malformed means a body was fetched but failed parsing or the
	// openapi+info validity gate.
	Malformed
)

// String returns the string representation of Outcome.
func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Probe records the result of one fetch attempt.
type Probe struct {
	URL     string
	Outcome Outcome
}

// Result is the immutable outcome of one discovery walk. A nil Document
// means every ancestor directory was exhausted without success. RelPath is
// the path below the discovery point, built by prepending segments as the
// walk ascends; it is the path callers use for operation lookup.
type Result struct {
	Document *openapi.Document
	RelPath  string
	Probes   []Probe
}

// Locator performs upward directory-walk discovery.
type Locator struct {
	fetcher fetch.Fetcher
	log     *logger.Logger
}

// New creates a new Locator. The fetcher is the only way the walk touches
// the network; inject a stub for deterministic tests.
func New(fetcher fetch.Fetcher, log *logger.Logger) *Locator {
	if log == nil {
		log = logger.Nop()
	}
	return &Locator{
		fetcher: fetcher,
		log:     log.WithComponent("locator"),
	}
}

// Locate walks from baseURL up to the host root, probing openapi.json then
// openapi.yaml at each level. It never fails for well-formed input: every
// transport, parse, or validation failure only rules out one probe and the
// walk continues.
func (l *Locator) Locate(ctx context.Context, baseURL string) Result {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return Result{}
	}

	root := parsed.Scheme + "://" + parsed.Host
	path := strings.TrimSuffix(parsed.EscapedPath(), "/")

	var probes []Probe
	rel := ""

	for {
		level := root + path

		for _, name := range []string{jsonDocName, yamlDocName} {
			probeURL := level + "/" + name
			doc, outcome := l.probe(ctx, probeURL, name)
			probes = append(probes, Probe{URL: probeURL, Outcome: outcome})
			l.log.ProbeEvent(probeURL, outcome.String())

			if outcome == Found {
				return Result{Document: doc, RelPath: rel, Probes: probes}
			}
		}

		if path == "" {
			return Result{Probes: probes}
		}

		// Pop the last segment and prepend it onto the relative path,
		// reconstructing the path below the eventual discovery point.
		idx := strings.LastIndex(path, "/")
		rel = path[idx:] + rel
		path = path[:idx]
	}
}

// probe fetches and validates a single candidate document URL.
func (l *Locator) probe(ctx context.Context, probeURL, name string) (*openapi.Document, Outcome) {
	status, body, err := l.fetcher.Fetch(ctx, probeURL)
	if err != nil || status < 200 || status >= 300 {
		return nil, NotFound
	}

	var doc *openapi.Document
	var parseErr error
	if name == yamlDocName {
		doc, parseErr = openapi.ParseYAML(body)
	} else {
		doc, parseErr = openapi.ParseJSON(body)
	}
	if parseErr != nil {
		return nil, Malformed
	}

	if !doc.IsOpenAPI() {
		return nil, Malformed
	}

	return doc, Found
}
