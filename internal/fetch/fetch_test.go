package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/depradar/depradar/internal/errors"
)

func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("User-Agent = %q", ua)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"openapi": "3.0.0"}`))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.UserAgent = "test-agent"
	client := NewClient(cfg, nil)
	defer client.Close()

	status, body, err := client.Fetch(context.Background(), server.URL+"/openapi.json")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if status != http.StatusOK {
		t.Errorf("status = %d, want 200", status)
	}
	if string(body) != `{"openapi": "3.0.0"}` {
		t.Errorf("body = %q", body)
	}
}

func TestClient_Fetch_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("nope"))
	}))
	defer server.Close()

	client := NewClient(DefaultConfig(), nil)
	defer client.Close()

	// Non-success status is not an error at this layer; the caller
	// decides what a 404 means.
	status, body, err := client.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
	if string(body) != "nope" {
		t.Errorf("body = %q", body)
	}
}

func TestClient_Fetch_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 1024)))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.MaxBodySize = 100
	client := NewClient(cfg, nil)
	defer client.Close()

	_, body, err := client.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(body) != 100 {
		t.Errorf("len(body) = %d, want 100", len(body))
	}
}

func TestClient_Fetch_TransportError(t *testing.T) {
	client := NewClient(DefaultConfig(), nil)
	defer client.Close()

	// Closed server: connection refused.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, _, err := client.Fetch(context.Background(), url)
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}
	if !errors.IsTransport(err) {
		t.Errorf("expected transport error, got %v", err)
	}
}

func TestClient_Fetch_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(DefaultConfig(), nil)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := client.Fetch(ctx, server.URL)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestClient_Fetch_RateLimited(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.RequestsPerSecond = 50
	cfg.Burst = 1
	client := NewClient(cfg, nil)
	defer client.Close()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, _, err := client.Fetch(context.Background(), server.URL); err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
	}

	// Burst 1 at 50 rps means the 2nd and 3rd fetch each wait ~20ms.
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("elapsed = %v, want rate limiting delay", elapsed)
	}
	if hits != 3 {
		t.Errorf("hits = %d, want 3", hits)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Timeout <= 0 {
		t.Error("Timeout should be positive")
	}
	if cfg.MaxBodySize <= 0 {
		t.Error("MaxBodySize should be positive")
	}
	if cfg.UserAgent == "" {
		t.Error("UserAgent should be set")
	}
}
