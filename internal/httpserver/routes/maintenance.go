package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/maintmon/internal/httpserver/deps"
	"github.com/MrSnakeDoc/maintmon/internal/httpserver/handlers"
)

func init() { Register(registerMaintenance) }

func registerMaintenance(r chi.Router, d deps.Deps) {
	r.Get("/maintenance", handlers.Maintenance(d))
}
