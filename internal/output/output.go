// Package output provides output formatting for deprecation verdicts.
package output

import (
	"io"
	"time"

	"github.com/depradar/depradar/internal/engine"
)

// Report is one verdict ready for display.
type Report struct {
	URL       string         `json:"url"`
	Method    string         `json:"method"`
	Verdict   engine.Verdict `json:"verdict"`
	CheckedAt time.Time      `json:"checked_at"`
}

// Writer defines the interface for report writers.
type Writer interface {
	// WriteReport writes a single report
	WriteReport(report *Report) error

	// Close flushes and closes the writer
	Close() error
}

// Config holds output configuration.
type Config struct {
	Format string
	Pretty bool
}

// NewWriter creates a new report writer.
func NewWriter(w io.Writer, config Config) Writer {
	switch config.Format {
	case "text":
		return NewTextWriter(w)
	case "json":
		return NewJSONWriter(w, config.Pretty)
	default:
		return NewJSONWriter(w, config.Pretty)
	}
}
