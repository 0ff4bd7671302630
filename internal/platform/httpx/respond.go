// Package httpx centralises response writing for the API. The CRUD surface
// answers with plain-text French sentences kept compatible with existing
// consumers, while forbidden responses use a fixed JSON body.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ForbiddenMessage is the exact body returned when the API key check fails.
const ForbiddenMessage = "Forbidden: Invalid API Key"

// WriteText writes a plain-text response with the given status code.
func WriteText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

// WriteJSON serialises the payload as JSON with the given status code.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteForbidden writes the fixed 403 body expected by existing consumers.
func WriteForbidden(w http.ResponseWriter) {
	WriteJSON(w, http.StatusForbidden, map[string]string{"message": ForbiddenMessage})
}
