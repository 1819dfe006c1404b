package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/maintmon/internal/domain"
	"github.com/MrSnakeDoc/maintmon/internal/httpserver/deps"
)

type reportPayload struct {
	Maintenance bool      `json:"maintenance"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
}

type maintenanceResponse struct {
	MaintenanceActive bool           `json:"maintenance_active"`
	IsFetching        bool           `json:"is_fetching"`
	LastError         string         `json:"last_error,omitempty"`
	LastReport        *reportPayload `json:"last_report,omitempty"`
}

// Maintenance returns the current observable monitor state.
// maintenance_active is the single field consumers must react to; the rest is
// diagnostic only.
func Maintenance(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeState(w, d.Monitor.State())
	}
}

func writeState(w http.ResponseWriter, state domain.MonitorState) {
	resp := maintenanceResponse{
		MaintenanceActive: state.IsMaintenanceActive,
		IsFetching:        state.IsFetching,
		LastError:         state.LastError,
	}
	if state.LastReport != nil {
		resp.LastReport = &reportPayload{
			Maintenance: state.LastReport.MaintenanceActive,
			Message:     state.LastReport.Message,
			Timestamp:   state.LastReport.ObservedAt,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(resp)
}
