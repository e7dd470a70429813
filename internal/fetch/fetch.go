// Package fetch provides the HTTP transport the deprecation engine uses for
// document discovery.
package fetch

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/depradar/depradar/internal/errors"
	"github.com/depradar/depradar/internal/logger"
)

// Fetcher performs a single blocking GET and returns status code and body.
// The engine needs nothing more from its transport; implementations own all
// timeout and retry policy.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (int, []byte, error)
}

// Config holds configuration for the HTTP client.
type Config struct {
	Timeout             time.Duration
	MaxBodySize         int64
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	UserAgent           string
	SkipTLSVerify       bool

	// RequestsPerSecond throttles discovery probes. Zero disables throttling.
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:             10 * time.Second,
		MaxBodySize:         5 * 1024 * 1024,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		UserAgent:           "depradar/1.0",
	}
}

// Client is a tuned HTTP client implementing Fetcher.
type Client struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	limiter     *rate.Limiter
	log         *logger.Logger
}

// NewClient creates a new HTTP client.
func NewClient(cfg Config, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultConfig().MaxBodySize
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.SkipTLSVerify,
		},
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent:   cfg.UserAgent,
		maxBodySize: cfg.MaxBodySize,
		limiter:     limiter,
		log:         log.WithComponent("fetch"),
	}
}

// Fetch performs a GET request and returns the status code and body.
func (c *Client) Fetch(ctx context.Context, url string) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, errors.NewCancelledError(url, "fetch")
		}
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, errors.New(errors.Parse, url, "request_creation", "failed to create request", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, application/yaml, */*")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, errors.Categorize(err, url)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, errors.NewTransportError(url, err)
	}

	c.log.FetchEvent(url, resp.StatusCode, time.Since(start))

	return resp.StatusCode, body, nil
}

// Close closes idle connections.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}
