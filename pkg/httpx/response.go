package httpx

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// ErrorBody is the error payload shape shared by the identity backend and the
// gateway API: a human-readable message plus optional per-field messages for
// form binding.
type ErrorBody struct {
	Message     string            `json:"message"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	Errors      []string          `json:"errors,omitempty"`
}

// WriteError writes an ErrorBody with the given status and no-store caching.
func WriteError(w http.ResponseWriter, code int, body ErrorBody) {
	NoCache(w)
	WriteJSON(w, code, body)
}

// WriteMessage is shorthand for WriteError with just a message.
func WriteMessage(w http.ResponseWriter, code int, msg string) {
	WriteError(w, code, ErrorBody{Message: msg})
}
