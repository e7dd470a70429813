package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// TextWriter writes human-readable reports.
type TextWriter struct {
	mu     sync.Mutex
	writer io.Writer
	closed bool
}

// NewTextWriter creates a new text writer.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{writer: w}
}

// WriteReport writes a single report.
func (t *TextWriter) WriteReport(report *Report) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}

	v := report.Verdict

	status := "not deprecated"
	if v.Deprecated {
		status = "DEPRECATED"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s\n", strings.ToUpper(report.Method), report.URL, status)

	if v.HeaderDeprecated {
		fmt.Fprintf(&b, "  - response carries a deprecation header\n")
	}
	if v.OperationDeprecated {
		fmt.Fprintf(&b, "  - operation is marked deprecated in the API description\n")
	}
	if v.ParameterDeprecated {
		fmt.Fprintf(&b, "  - deprecated query parameters: %s\n", strings.Join(v.DeprecatedParams, ", "))
	}

	_, err := io.WriteString(t.writer, b.String())
	return err
}

// Close closes the writer.
func (t *TextWriter) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}
