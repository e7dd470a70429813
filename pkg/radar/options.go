package radar

import (
	"net/http"

	"github.com/depradar/depradar/internal/fetch"
	"github.com/depradar/depradar/internal/logger"
)

// Option is a functional option for configuring the Radar.
type Option func(*Radar) error

// WithConfig sets the entire configuration.
func WithConfig(config *Config) Option {
	return func(r *Radar) error {
		if err := config.Validate(); err != nil {
			return err
		}
		r.config = config
		return nil
	}
}

// WithTransport sets the underlying transport the interceptor wraps.
func WithTransport(rt http.RoundTripper) Option {
	return func(r *Radar) error {
		r.next = rt
		return nil
	}
}

// WithFetcher sets the fetcher used for document discovery. Inject a stub
// for deterministic testing; by default a tuned HTTP client is built from
// the configuration.
func WithFetcher(f fetch.Fetcher) Option {
	return func(r *Radar) error {
		r.fetcher = f
		return nil
	}
}

// WithCustomHeaders adds header names treated as deprecation signals.
func WithCustomHeaders(names ...string) Option {
	return func(r *Radar) error {
		r.config.CustomHeaders = append(r.config.CustomHeaders, names...)
		return nil
	}
}

// WithLenientStructure degrades structure mismatches to "not deprecated".
func WithLenientStructure() Option {
	return func(r *Radar) error {
		r.config.LenientStructure = true
		return nil
	}
}

// WithAnnotation enables/disables X-Depradar-* response annotations.
func WithAnnotation(enabled bool) Option {
	return func(r *Radar) error {
		r.config.Annotate = enabled
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *logger.Logger) Option {
	return func(r *Radar) error {
		r.logger = l
		return nil
	}
}

// WithLogLevel sets the log level.
func WithLogLevel(level logger.Level) Option {
	return func(r *Radar) error {
		if r.logger != nil {
			r.logger.SetLevel(level)
		}
		return nil
	}
}
