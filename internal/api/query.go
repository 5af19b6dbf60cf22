package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/nerrad567/roquery/internal/dispatch"
	"github.com/nerrad567/roquery/internal/rodb"
)

// QueryRequest is the body of POST /api/v1/query.
type QueryRequest struct {
	SQL    string   `json:"sql"`
	Params []string `json:"params"`
}

// QueryResponse carries a successful query result.
// Columns and Values are always present, possibly empty, never null.
type QueryResponse struct {
	Columns []string   `json:"columns"`
	Values  [][]string `json:"values"`
}

// HealthResponse is the body of GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// handleQuery runs one statement through the dispatcher and waits for its
// completion, bounded by the request context.
//
// Every request takes the asynchronous path: submission errors (validation,
// backpressure, shutdown) map to immediate HTTP errors, engine errors
// surface through the callback's error slot and map to 400 with the engine
// message passed through verbatim.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.SQL) == "" {
		writeBadRequest(w, "sql is required")
		return
	}

	type outcome struct {
		result *rodb.Result
		err    error
	}
	done := make(chan outcome, 1)

	err := s.dispatcher.Submit(dispatch.Request{
		SQL:    req.SQL,
		Params: req.Params,
		Done: func(err error, result *rodb.Result) {
			done <- outcome{result: result, err: err}
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, dispatch.ErrQueueFull):
			writeUnavailable(w, "query queue full")
		case errors.Is(err, dispatch.ErrClosed):
			writeUnavailable(w, "service shutting down")
		default:
			writeBadRequest(w, err.Error())
		}
		return
	}

	select {
	case out := <-done:
		if out.err != nil {
			if errors.Is(out.err, rodb.ErrNotOpen) {
				writeUnavailable(w, out.err.Error())
				return
			}
			writeQueryFailed(w, out.err.Error())
			return
		}
		resp := QueryResponse{
			Columns: out.result.Columns,
			Values:  out.result.Values,
		}
		if resp.Columns == nil {
			resp.Columns = []string{}
		}
		if resp.Values == nil {
			resp.Values = [][]string{}
		}
		writeJSON(w, http.StatusOK, resp)
	case <-r.Context().Done():
		// Client went away; the query still runs to completion on the
		// worker, its outcome is discarded here.
		s.logger.Debug("query request abandoned by client", "error", r.Context().Err())
	}
}

// handleHealth reports executor liveness by running a trivial statement
// against the handle.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.HealthCheck(r.Context()); err != nil {
		writeUnavailable(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: s.version,
	})
}
