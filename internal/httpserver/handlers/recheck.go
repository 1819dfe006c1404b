package handlers

import (
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/maintmon/internal/httpserver/deps"
	"github.com/MrSnakeDoc/maintmon/internal/logger"
	"github.com/MrSnakeDoc/maintmon/internal/monitor"
)

// Recheck triggers one manual fetch+reconcile cycle and answers with the
// resulting state. The monitor rejects concurrent checks, so a recheck racing
// the poll timer gets a 429 instead of piling up.
func Recheck(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := d.Monitor.Recheck(r.Context())

		switch {
		case errors.Is(err, monitor.ErrBusy):
			d.Logger.Warn("manual recheck rejected, check already in flight",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusTooManyRequests)
			if _, err := w.Write([]byte("⏳ Check already in progress, please wait\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
			return

		case errors.Is(err, monitor.ErrNotActive):
			w.WriteHeader(http.StatusConflict)
			if _, err := w.Write([]byte("monitor is not active\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
			return

		case err != nil:
			// The fetch failed but the failure is already reconciled into the
			// state (lastError populated, last known value retained), so the
			// response below carries everything the caller needs.
			d.Logger.Info("manual recheck completed with fetch failure",
				logger.String("remote_ip", r.RemoteAddr),
				logger.Error(err))

		default:
			d.Logger.Info("manual recheck completed",
				logger.String("remote_ip", r.RemoteAddr))
		}

		writeState(w, d.Monitor.State())
	}
}
