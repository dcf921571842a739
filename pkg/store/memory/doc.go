// Package memory provides an in-memory event store. Events live in an
// append-ordered slice guarded by a read-write mutex; queries delegate to
// the in-process aggregation and trace-filtering engines.
//
// The store implements every optional capability (metrics, traces, raw
// events, pruning), which makes it the reference backend for tests and
// demos. Everything is lost on process exit.
package memory
