// internal/app/system/webjson/webjson.go

// Package webjson holds the JSON response helpers shared by all route
// handlers: one envelope for payloads, one for errors, so clients never
// see two shapes for the same kind of outcome.
package webjson

import (
	"encoding/json"
	"net/http"
)

// errorBody is the error envelope: {"message": "..."}.
type errorBody struct {
	Message string `json:"message"`
}

// Write serialized v with the given status code.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encode errors after WriteHeader are unrecoverable; the handler has
	// already committed the status.
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes the error envelope with the given status code.
func Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, errorBody{Message: message})
}

// List writes the collection envelope used by list endpoints:
// {"count": n, "data": [...]}.
func List[T any](w http.ResponseWriter, status int, items []T) {
	if items == nil {
		items = []T{}
	}
	Write(w, status, struct {
		Count int `json:"count"`
		Data  []T `json:"data"`
	}{Count: len(items), Data: items})
}

// Decode reads a JSON request body into dst, limiting the body size.
// Returns false after writing a 400 if the body is malformed.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
