package handler

import (
	"encoding/json"
	"net/http"

	"github.com/relaydesk/support-inbox/internal/middleware"
)

// envelope is the standard response wrapper: {data, meta, traceId}.
type envelope struct {
	Data    interface{} `json:"data"`
	Meta    interface{} `json:"meta,omitempty"`
	TraceID string      `json:"traceId,omitempty"`
}

type errorBody struct {
	Error   string `json:"error"`
	TraceID string `json:"traceId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeData writes a JSON success envelope.
func writeData(w http.ResponseWriter, r *http.Request, status int, data, meta interface{}) {
	writeJSON(w, status, envelope{
		Data:    data,
		Meta:    meta,
		TraceID: middleware.GetCorrelationID(r.Context()),
	})
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, errorBody{
		Error:   message,
		TraceID: middleware.GetCorrelationID(r.Context()),
	})
}
