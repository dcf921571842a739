package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"mercator-hq/callisto/pkg/event"
)

// ExportError wraps a failure while writing events to an output format.
type ExportError struct {
	Format string
	Count  int
	Cause  error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [format=%s, count=%d]: %v", e.Format, e.Count, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ExportError) Unwrap() error {
	return e.Cause
}

// JSONExporter exports events as a JSON array.
type JSONExporter struct {
	// Pretty enables pretty-printing with indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes the events to w as one JSON array. An empty input writes
// "[]".
func (e *JSONExporter) Export(ctx context.Context, events []*event.Event, w io.Writer) error {
	if events == nil {
		events = []*event.Event{}
	}

	var data []byte
	var err error
	if e.Pretty {
		data, err = json.MarshalIndent(events, "", "  ")
	} else {
		data, err = json.Marshal(events)
	}
	if err != nil {
		return &ExportError{Format: "json", Count: len(events), Cause: err}
	}

	if _, err := w.Write(data); err != nil {
		return &ExportError{Format: "json", Count: len(events), Cause: err}
	}
	return nil
}
