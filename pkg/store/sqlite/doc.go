// Package sqlite provides a SQLite-backed event store.
//
// Events land in a single table with the payload serialized as JSON. Trace
// listings are answered in SQL (filtering, sorting, and pagination pushed
// into the query); stats and metrics load the terminal events for the range
// and delegate to the in-process aggregation engine, keeping one reference
// implementation of the numbers.
//
// Two drivers are supported: "sqlite3" (github.com/mattn/go-sqlite3, cgo)
// and "sqlite" (modernc.org/sqlite, pure Go). WAL mode is enabled by
// default for concurrent reads during writes.
package sqlite
