package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"mercator-hq/callisto/pkg/event"
)

func ptrFloat(f float64) *float64 { return &f }

func sampleEvents() []*event.Event {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []*event.Event{
		{
			ID:        "evt_1",
			Type:      event.RequestEnd,
			RequestID: "req_1",
			SessionID: "sess_1",
			Time:      base,
			CreatedAt: base,
			Duration:  ptrFloat(150.5),
			Cost:      ptrFloat(0.02),
			Provider:  "openai",
			Model:     "gpt-4o",
			Payload:   event.Payload{"usage": map[string]any{"promptTokens": 10}},
		},
		{
			ID:        "evt_2",
			Type:      event.RequestStart,
			RequestID: "req_1",
			Time:      base,
			CreatedAt: base,
			Provider:  "openai",
			Model:     "gpt-4o",
			Payload:   event.Payload{},
		},
	}
}

// TestJSONExporter tests the array output round trip.
func TestJSONExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONExporter(false).Export(context.Background(), sampleEvents(), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	var decoded []*event.Event
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Output is not a JSON array: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("Decoded %d events, want 2", len(decoded))
	}
	if decoded[0].ID != "evt_1" || decoded[0].Duration == nil || *decoded[0].Duration != 150.5 {
		t.Errorf("Round trip lost fields: %+v", decoded[0])
	}
	if decoded[1].Duration != nil {
		t.Errorf("Absent duration should stay nil: %+v", decoded[1])
	}
}

// TestJSONExporter_Empty tests that no events still yields a valid array.
func TestJSONExporter_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONExporter(false).Export(context.Background(), nil, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("Empty export = %q, want []", got)
	}
}

// TestJSONExporter_Pretty tests indented output.
func TestJSONExporter_Pretty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONExporter(true).Export(context.Background(), sampleEvents(), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Errorf("Pretty output has no indentation")
	}
}

// TestCSVExporter tests header, row count and empty cells for absent
// metrics.
func TestCSVExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVExporter(true).Export(context.Background(), sampleEvents(), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Output is not CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "id" || len(rows[0]) != 14 {
		t.Errorf("Header = %v", rows[0])
	}

	end := rows[1]
	if end[0] != "evt_1" || end[7] != "150.5" || end[8] != "0.02" {
		t.Errorf("End row = %v", end)
	}
	if !strings.Contains(end[13], "promptTokens") {
		t.Errorf("Payload column missing JSON: %q", end[13])
	}

	start := rows[2]
	if start[7] != "" || start[8] != "" || start[10] != "" {
		t.Errorf("Absent metrics should be empty cells: %v", start)
	}
}

// TestCSVExporter_NoHeader tests header suppression.
func TestCSVExporter_NoHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVExporter(false).Export(context.Background(), sampleEvents(), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("Rows = %d, want 2 without header", len(rows))
	}
	if rows[0][0] == "id" {
		t.Errorf("Header present despite suppression")
	}
}
