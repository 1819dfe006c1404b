package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// Result labels for status checks.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Recorder exposes monitor instrumentation through Prometheus.
// All methods are nil-safe so the monitor can run without metrics in tests.
type Recorder struct {
	maintenanceActive prom.Gauge
	fetchInFlight     prom.Gauge
	checks            *prom.CounterVec
	checkDuration     prom.Histogram
	recheckRejected   prom.Counter
}

// NewRecorder constructs and registers the monitor metrics on reg.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}

	r := &Recorder{
		maintenanceActive: prom.NewGauge(prom.GaugeOpts{
			Namespace: "maintmon",
			Name:      "maintenance_active",
			Help:      "1 when maintenance mode is active (override or backend), 0 otherwise",
		}),
		fetchInFlight: prom.NewGauge(prom.GaugeOpts{
			Namespace: "maintmon",
			Name:      "fetch_in_flight",
			Help:      "1 while a status fetch is in flight",
		}),
		checks: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "maintmon",
			Name:      "status_checks_total",
			Help:      "Status check outcomes",
		}, []string{"result"}),
		checkDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "maintmon",
			Name:      "status_check_duration_seconds",
			Help:      "Duration of status checks",
			Buckets:   prom.DefBuckets,
		}),
		recheckRejected: prom.NewCounter(prom.CounterOpts{
			Namespace: "maintmon",
			Name:      "recheck_rejected_total",
			Help:      "Manual rechecks rejected because a fetch was already in flight",
		}),
	}

	reg.MustRegister(r.maintenanceActive, r.fetchInFlight, r.checks, r.checkDuration, r.recheckRejected)
	return r
}

func (r *Recorder) SetMaintenanceActive(active bool) {
	if r == nil {
		return
	}
	if active {
		r.maintenanceActive.Set(1)
	} else {
		r.maintenanceActive.Set(0)
	}
}

func (r *Recorder) SetFetchInFlight(inFlight bool) {
	if r == nil {
		return
	}
	if inFlight {
		r.fetchInFlight.Set(1)
	} else {
		r.fetchInFlight.Set(0)
	}
}

func (r *Recorder) ObserveCheck(d time.Duration, err error) {
	if r == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	r.checks.WithLabelValues(result).Inc()
	r.checkDuration.Observe(d.Seconds())
}

func (r *Recorder) IncRecheckRejected() {
	if r == nil {
		return
	}
	r.recheckRejected.Inc()
}
