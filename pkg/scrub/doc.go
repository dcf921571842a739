// Package scrub redacts sensitive content from telemetry before it reaches a
// storage backend. It is a pure function library: a Scrubber is built once
// from a Config and applied to strings, nested objects, or chat message
// lists.
//
// # Rules
//
// On construction the scrubber compiles an ordered rule list: built-in PII
// patterns (email, phone, national id, card numbers, IPv4, dates of birth),
// then built-in secret patterns (API key prefixes, bearer tokens, key=value
// assignments, cloud access keys, source-control tokens, PEM blocks), then
// caller-supplied custom patterns. Rules apply in that order with global
// replacement, so scrubbing is idempotent.
//
// # Failure model
//
// The scrubber never returns an error. Unexpected shapes pass through
// unchanged and cyclic structures are cut with a "[CIRCULAR]" sentinel;
// availability of telemetry wins over strict validation.
package scrub
