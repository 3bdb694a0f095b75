package api

import (
	"encoding/json"
	"net/http"
)

// ModelInfo describes the model a service tags with.
type ModelInfo struct {
	Strategy string             `json:"strategy"`
	Params   map[string]float64 `json:"params"`
	Trained  bool               `json:"trained"`
}

type Health struct {
	Model ModelInfo
}

func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}
	status := http.StatusOK
	if !h.Model.Trained {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(h.Model); err != nil {
		logger := makeRequestLogger(r)
		logger.Err(err).Msg("Could not write health response")
	}
}
