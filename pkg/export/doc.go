// Package export writes stored events to portable formats.
//
// Two exporters are provided: JSON (single array, optionally
// pretty-printed) and CSV (one flattened row per event, payload serialized
// as a JSON column). Both write to an io.Writer so callers choose the
// destination.
package export
