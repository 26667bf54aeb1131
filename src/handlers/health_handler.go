package handlers

import (
	"net/http"

	"github.com/username/jomkira/backend/src/config"
	"github.com/username/jomkira/backend/src/utils"
)

// HandleHealth reports liveness: GET /health.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, map[string]string{
		"status": "healthy",
		"app":    config.Cfg.AppName,
	}, http.StatusOK)
}
