package models

import (
	"encoding/json"
	"net/http"

	"wayfarer/internal/apperr"
	"wayfarer/internal/logs"
)

// Problem is an RFC 7807-style error response.
type Problem struct {
	Type     string      `json:"type,omitempty"`
	Title    string      `json:"title"`
	Status   int         `json:"status"`
	Detail   string      `json:"detail,omitempty"`
	Instance string      `json:"instance,omitempty"`
	Extra    interface{} `json:"extra,omitempty"`
}

func WriteProblem(w http.ResponseWriter, status int, title, detail string, extra any) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Problem{
		Title:  title,
		Status: status,
		Detail: detail,
		Extra:  extra,
	})
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteNoContent answers a successful delete. A 204 must not carry a body,
// net/http drops one and complains in the server log.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteData wraps a payload in the {status, data} envelope used across the API.
func WriteData(w http.ResponseWriter, status int, v any) {
	WriteJSON(w, status, map[string]any{"status": "success", "data": v})
}

// WriteErr maps a taxonomy error onto a problem response. Non-operational
// errors are logged and surfaced generically so internals do not leak.
func WriteErr(w http.ResponseWriter, err error) {
	status := apperr.Status(err)
	if !apperr.Operational(err) {
		if logs.Logger != nil {
			logs.Logger.Errorf("internal error: %v", err)
		}
		WriteProblem(w, status, http.StatusText(status), apperr.ErrDownstream.Error(), nil)
		return
	}
	WriteProblem(w, status, http.StatusText(status), err.Error(), nil)
}
