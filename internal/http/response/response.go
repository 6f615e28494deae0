package response

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the envelope of every error response
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes v with the given status code
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes a {"error": message} body
func Error(w http.ResponseWriter, message string, status int) {
	JSON(w, status, ErrorBody{Error: message})
}
