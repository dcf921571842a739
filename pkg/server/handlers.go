package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"mercator-hq/callisto/pkg/event"
)

// handleStats serves GET /api/stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	tr, err := parseTimeRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := s.store.GetStats(r.Context(), tr)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleMetrics serves GET /api/metrics. Backends without the metrics
// capability answer 501.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	ms, ok := s.store.(event.MetricsStore)
	if !ok {
		writeError(w, http.StatusNotImplemented, "store does not support metrics queries")
		return
	}

	tr, err := parseTimeRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	metrics, err := ms.GetMetrics(r.Context(), tr)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

// handleTraces serves GET /api/traces. Backends without the trace capability
// answer 501.
func (s *Server) handleTraces(w http.ResponseWriter, r *http.Request) {
	ts, ok := s.store.(event.TraceStore)
	if !ok {
		writeError(w, http.StatusNotImplemented, "store does not support trace listings")
		return
	}

	q, err := parseTraceQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := ts.ListTraces(r.Context(), q)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleEvents serves GET /api/events?request_id=. The request id is
// required; omitting it is a client error, not an empty result.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	es, ok := s.store.(event.EventStore)
	if !ok {
		writeError(w, http.StatusNotImplemented, "store does not support event lookups")
		return
	}

	requestID := r.URL.Query().Get("request_id")
	if requestID == "" {
		writeError(w, http.StatusBadRequest, "request_id is required")
		return
	}

	events, err := es.GetEvents(r.Context(), requestID)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if events == nil {
		events = []*event.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// handleHealth serves GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeStoreError maps store failures onto response codes: malformed
// queries are the client's fault, everything else is a 500.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	var qe *event.QueryError
	if errors.As(err, &qe) {
		writeError(w, http.StatusBadRequest, qe.Error())
		return
	}
	s.logger.Error("store query failed", "error", err)
	writeError(w, http.StatusInternalServerError, "query failed")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// parseTimeRange reads optional from/to bounds. Timestamps are RFC 3339 or
// Unix milliseconds.
func parseTimeRange(r *http.Request) (*event.TimeRange, error) {
	values := r.URL.Query()

	from, err := parseTimestamp(values.Get("from"))
	if err != nil {
		return nil, err
	}
	to, err := parseTimestamp(values.Get("to"))
	if err != nil {
		return nil, err
	}
	if from == nil && to == nil {
		return nil, nil
	}
	return &event.TimeRange{From: from, To: to}, nil
}

func parseTimestamp(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		t := time.UnixMilli(ms).UTC()
		return &t, nil
	}
	return nil, event.NewQueryError("invalid timestamp "+strconv.Quote(v), nil)
}

// parseTraceQuery reads the trace listing filters.
func parseTraceQuery(r *http.Request) (*event.TraceQuery, error) {
	values := r.URL.Query()

	q := &event.TraceQuery{
		RequestID: values.Get("request_id"),
		Query:     values.Get("query"),
		Model:     values.Get("model"),
		Provider:  values.Get("provider"),
		Status:    values.Get("status"),
	}

	if v := values.Get("min_cost"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, event.NewQueryError("invalid min_cost", err)
		}
		q.MinCost = &f
	}
	if v := values.Get("min_latency"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, event.NewQueryError("invalid min_latency", err)
		}
		q.MinDuration = &f
	}

	var err error
	if q.From, err = parseTimestamp(values.Get("from")); err != nil {
		return nil, err
	}
	if q.To, err = parseTimestamp(values.Get("to")); err != nil {
		return nil, err
	}

	if v := values.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, event.NewQueryError("invalid limit", err)
		}
		q.Limit = n
	}
	if v := values.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, event.NewQueryError("invalid offset", err)
		}
		q.Offset = n
	}

	return q, nil
}
