package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"mercator-hq/callisto/pkg/event"
)

// CSVExporter exports events as CSV rows. Nested payloads are serialized as
// a single JSON column.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// Export writes one row per event to w.
func (e *CSVExporter) Export(ctx context.Context, events []*event.Event, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(headerRow()); err != nil {
			return &ExportError{Format: "csv", Count: len(events), Cause: err}
		}
	}

	for _, ev := range events {
		row, err := eventToRow(ev)
		if err != nil {
			return &ExportError{Format: "csv", Count: len(events), Cause: err}
		}
		if err := writer.Write(row); err != nil {
			return &ExportError{Format: "csv", Count: len(events), Cause: err}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return &ExportError{Format: "csv", Count: len(events), Cause: err}
	}
	return nil
}

func headerRow() []string {
	return []string{
		"id", "event_type", "request_id", "session_id", "transaction_id",
		"time", "created_at",
		"duration_ms", "cost", "cpu_time_ms", "allocations",
		"provider", "model", "payload",
	}
}

// eventToRow flattens one event. Optional metrics render as empty cells
// when absent so spreadsheets can tell missing from zero.
func eventToRow(e *event.Event) ([]string, error) {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, err
	}

	return []string{
		e.ID,
		string(e.Type),
		e.RequestID,
		e.SessionID,
		e.TransactionID,
		e.Time.UTC().Format(time.RFC3339Nano),
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
		floatCell(e.Duration),
		floatCell(e.Cost),
		floatCell(e.CPUTime),
		intCell(e.Allocations),
		e.Provider,
		e.Model,
		string(payload),
	}, nil
}

func floatCell(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func intCell(i *int64) string {
	if i == nil {
		return ""
	}
	return strconv.FormatInt(*i, 10)
}
