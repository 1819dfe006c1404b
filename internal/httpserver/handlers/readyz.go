package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/maintmon/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool `json:"ready"`
}

// Readyz reports ready once the monitor has completed at least one check
// cycle, successful or not. Until then consumers would only see the override.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := d.Monitor.State()
		ready := state.LastReport != nil || state.LastError != ""

		w.Header().Set("Content-Type", "application/json")
		if !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_ = json.NewEncoder(w).Encode(readyzResponse{
			Ready: ready,
		})
	}
}
