// Package jsonl provides an append-only file event store: one JSON-encoded
// event per line.
//
// On open, the store replays the existing file into memory, so queries run
// against the in-process aggregation and trace-filtering engines while
// writes are a single appended line plus an fsync. Corrupt lines found
// during replay are skipped and logged rather than failing the open, so a
// torn final write cannot brick the log.
//
// The file can be inspected with standard line tools and ingested by
// anything that reads JSON lines.
package jsonl
