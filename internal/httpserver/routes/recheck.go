package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/maintmon/internal/httpserver/deps"
	"github.com/MrSnakeDoc/maintmon/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/maintmon/internal/httpserver/mw"
)

func init() { Register(registerRecheck) }

func registerRecheck(r chi.Router, d deps.Deps) {
	r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RecheckBurst,
		RefillPerIPPerMin: d.RecheckPerMinute,
		TrustProxy:        d.TrustProxy,
	})).Post("/maintenance/recheck", handlers.Recheck(d))
}
