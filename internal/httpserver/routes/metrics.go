package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrSnakeDoc/maintmon/internal/httpserver/deps"
)

func init() { Register(registerMetrics) }

func registerMetrics(r chi.Router, d deps.Deps) {
	r.Get("/metrics", promhttp.HandlerFor(d.PromRegistry, promhttp.HandlerOpts{}).ServeHTTP)
}
