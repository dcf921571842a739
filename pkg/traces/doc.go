// Package traces implements the trace-listing query path: filtering an event
// sequence down to terminal events, sorting, paginating, and projecting each
// survivor into a TraceSummary.
//
// Filters are independent predicates AND-combined, so they compose in any
// order. The canonical pipeline is:
//
//	Filter → SortByTimeDesc → Paginate → ToSummary
//
// with the unpaginated filtered length as the page total. List wires the
// pipeline together for in-process stores; SQL-backed stores reproduce the
// same semantics inside their queries.
package traces
