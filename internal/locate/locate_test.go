package locate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

const validDoc = `{"openapi": "3.0.0", "info": {"title": "T"}, "paths": {}}`

const validYAMLDoc = `
openapi: "3.0.0"
info:
  title: T
paths: {}
`

// stubFetcher serves canned responses keyed by URL and records every call.
type stubFetcher struct {
	mu        sync.Mutex
	responses map[string]stubResponse
	calls     []string
}

type stubResponse struct {
	status int
	body   string
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{responses: make(map[string]stubResponse)}
}

func (s *stubFetcher) set(url string, status int, body string) {
	s.responses[url] = stubResponse{status: status, body: body}
}

func (s *stubFetcher) Fetch(_ context.Context, url string) (int, []byte, error) {
	s.mu.Lock()
	s.calls = append(s.calls, url)
	s.mu.Unlock()

	resp, ok := s.responses[url]
	if !ok {
		return http.StatusNotFound, nil, nil
	}
	return resp.status, []byte(resp.body), nil
}

func (s *stubFetcher) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func TestLocate_FoundAtBase(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("https://example.com/a/b/c/openapi.json", 200, validDoc)

	result := New(fetcher, nil).Locate(context.Background(), "https://example.com/a/b/c")

	if result.Document == nil {
		t.Fatal("expected a document")
	}
	if result.RelPath != "" {
		t.Errorf("RelPath = %q, want empty", result.RelPath)
	}
	if fetcher.callCount() != 1 {
		t.Errorf("callCount = %d, want 1 (no further ascent)", fetcher.callCount())
	}
}

func TestLocate_FoundMidWalk(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("https://example.com/a/openapi.json", 200, validDoc)

	result := New(fetcher, nil).Locate(context.Background(), "https://example.com/a/b/c")

	if result.Document == nil {
		t.Fatal("expected a document")
	}
	if result.RelPath != "/b/c" {
		t.Errorf("RelPath = %q, want /b/c", result.RelPath)
	}

	// Levels /a/b/c and /a/b miss both formats, /a hits on JSON.
	// No probe beyond the discovery level.
	if fetcher.callCount() != 5 {
		t.Errorf("callCount = %d, want 5", fetcher.callCount())
	}
}

func TestLocate_YAMLFallback(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("https://example.com/api/openapi.yaml", 200, validYAMLDoc)

	result := New(fetcher, nil).Locate(context.Background(), "https://example.com/api")

	if result.Document == nil {
		t.Fatal("expected a document from the YAML probe")
	}
	if result.RelPath != "" {
		t.Errorf("RelPath = %q, want empty", result.RelPath)
	}
}

func TestLocate_ExhaustsWalk(t *testing.T) {
	fetcher := newStubFetcher()

	result := New(fetcher, nil).Locate(context.Background(), "https://example.com/a/b/c")

	if result.Document != nil {
		t.Error("expected no document")
	}
	if result.RelPath != "" {
		t.Errorf("RelPath = %q, want empty", result.RelPath)
	}

	// 2 formats x (3 segments + host root) = 8 fetches.
	if fetcher.callCount() != 8 {
		t.Errorf("callCount = %d, want 8", fetcher.callCount())
	}
}

func TestLocate_MalformedTreatedAsMiss(t *testing.T) {
	fetcher := newStubFetcher()
	// Parses but fails the openapi+info validity gate.
	fetcher.set("https://example.com/a/openapi.json", 200, `{"paths": {}}`)
	fetcher.set("https://example.com/openapi.json", 200, validDoc)

	result := New(fetcher, nil).Locate(context.Background(), "https://example.com/a")

	if result.Document == nil {
		t.Fatal("expected walk to continue past the malformed document")
	}
	if result.RelPath != "/a" {
		t.Errorf("RelPath = %q, want /a", result.RelPath)
	}

	var sawMalformed bool
	for _, p := range result.Probes {
		if p.URL == "https://example.com/a/openapi.json" && p.Outcome == Malformed {
			sawMalformed = true
		}
	}
	if !sawMalformed {
		t.Error("expected a malformed probe outcome for the gated document")
	}
}

func TestLocate_UnparseableTreatedAsMiss(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("https://example.com/a/openapi.json", 200, "<html>not json</html>")

	result := New(fetcher, nil).Locate(context.Background(), "https://example.com/a")

	if result.Document != nil {
		t.Error("expected no document")
	}
	if result.Probes[0].Outcome != Malformed {
		t.Errorf("Outcome = %v, want Malformed", result.Probes[0].Outcome)
	}
}

func TestLocate_NonSuccessStatusIsNotFound(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.set("https://example.com/openapi.json", 500, validDoc)

	result := New(fetcher, nil).Locate(context.Background(), "https://example.com/")

	if result.Document != nil {
		t.Error("expected no document for 500 response")
	}
	if result.Probes[0].Outcome != NotFound {
		t.Errorf("Outcome = %v, want NotFound", result.Probes[0].Outcome)
	}
}

func TestLocate_HostRootOnly(t *testing.T) {
	fetcher := newStubFetcher()

	result := New(fetcher, nil).Locate(context.Background(), "https://example.com")

	if result.Document != nil {
		t.Error("expected no document")
	}
	// 2 formats x 1 level.
	if fetcher.callCount() != 2 {
		t.Errorf("callCount = %d, want 2", fetcher.callCount())
	}
}

func TestLocate_InvalidURL(t *testing.T) {
	fetcher := newStubFetcher()

	result := New(fetcher, nil).Locate(context.Background(), "://invalid")

	if result.Document != nil {
		t.Error("expected no document for unparseable URL")
	}
	if fetcher.callCount() != 0 {
		t.Errorf("callCount = %d, want 0", fetcher.callCount())
	}
}

func TestLocate_AgainstHTTPServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/openapi.json" {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"openapi": "3.0.0",
				"info":    map[string]string{"title": "Server API"},
				"paths":   map[string]interface{}{},
			})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := &httpStub{}
	result := New(fetcher, nil).Locate(context.Background(), server.URL+"/api/v1/users")

	if result.Document == nil {
		t.Fatal("expected a document")
	}
	if result.RelPath != "/v1/users" {
		t.Errorf("RelPath = %q, want /v1/users", result.RelPath)
	}
	if result.Document.Title() != "Server API" {
		t.Errorf("Title = %q", result.Document.Title())
	}
}

// httpStub is a minimal real-network fetcher for the httptest case.
type httpStub struct{}

func (h *httpStub) Fetch(ctx context.Context, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}
