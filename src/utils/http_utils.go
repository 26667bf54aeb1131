// backend/src/utils/http_utils.go
package utils

import (
	"encoding/json"
	"net/http"

	"github.com/username/jomkira/backend/src/logger"
)

// SendJSONError sends a JSON formatted error response.
func SendJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	logger.L.Warn("Sending JSON error to client", "message", message, "statusCode", statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// SendJSON writes a JSON response with the given status code.
func SendJSON(w http.ResponseWriter, payload any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.L.Error("Error encoding JSON response", "error", err)
	}
}
