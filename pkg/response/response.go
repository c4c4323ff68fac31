// Package response writes the service's JSON response shapes.
//
// Success bodies are returned flat (no envelope); errors are always
// {"error": "<message>"}.
package response

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Error string `json:"error"`
}

func write(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// JSON sends a 200 with the given payload.
func JSON(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, data)
}

// Error sends an error response with a flat {"error": message} body.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, errorBody{Error: message})
}

// BadRequest sends a 400.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

// Internal sends a 500 echoing the error's message, matching the upstream
// API contract callers already depend on.
func Internal(w http.ResponseWriter, err error) {
	Error(w, http.StatusInternalServerError, err.Error())
}
