package deps

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MrSnakeDoc/maintmon/internal/logger"
	"github.com/MrSnakeDoc/maintmon/internal/monitor"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string

	Monitor      *monitor.Monitor     // the status monitor behind every route
	PromRegistry *prometheus.Registry // metrics exposed on /metrics

	TrustProxy       bool // true if running behind a trusted reverse proxy
	RecheckBurst     int  // rate limit burst for POST /maintenance/recheck
	RecheckPerMinute int  // rate limit refill for POST /maintenance/recheck
}
