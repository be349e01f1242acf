package http

import (
	"encoding/json"
	"net/http"

	"github.com/fjod/go_storefront/pkg/logger"
)

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	writeJSON(w, r, "application/json", status, data)
}

func writeJSON(w http.ResponseWriter, r *http.Request, contentType string, status int, data interface{}) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContext(r.Context()).Warn("failed to encode response", "error", err)
	}
}
