package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/maintmon/internal/domain"
	"github.com/MrSnakeDoc/maintmon/internal/logger"
	"github.com/MrSnakeDoc/maintmon/internal/metrics"
)

const (
	// DefaultInterval is the fixed re-check cadence.
	DefaultInterval = 30 * time.Second
)

var (
	// ErrBusy is returned by Recheck when a status check is already in flight.
	// The monitor rejects concurrent checks instead of coalescing them; callers
	// retry once the in-flight check has landed.
	ErrBusy = errors.New("status check already in flight")

	// ErrNotActive is returned when a check is requested on an inactive monitor.
	ErrNotActive = errors.New("monitor is not active")
)

// Fetcher performs one status query against the backend.
type Fetcher interface {
	FetchStatus(ctx context.Context) (*domain.StatusReport, error)
}

// Flag is the read-only projection for consumers that need nothing but the
// maintenance boolean.
type Flag interface {
	IsMaintenanceActive() bool
}

// Options configures a Monitor.
type Options struct {
	// Override is the static maintenance override, captured once at
	// construction and immutable for the monitor's lifetime.
	Override bool

	// Interval is the re-check cadence. Zero means DefaultInterval.
	Interval time.Duration

	Logger  logger.Logger
	Metrics *metrics.Recorder // optional
}

// Monitor owns the observable maintenance state. It polls the backend on a
// fixed cadence while active and reconciles every result with the override.
//
// Activation epochs: every Activate starts a new epoch, and a fetch result is
// applied only if the epoch it was started under is still current. That is
// what makes Deactivate a hard barrier — a late-resolving fetch from a prior
// epoch can never mutate the state.
type Monitor struct {
	fetcher  Fetcher
	override bool
	interval time.Duration
	logger   logger.Logger
	metrics  *metrics.Recorder

	mu       sync.Mutex
	state    domain.MonitorState
	active   bool
	epoch    uint64
	fetching bool
	stopCh   chan struct{}
	watchers map[chan domain.MonitorState]struct{}
}

// New creates an inactive monitor. The override is applied to the initial
// state immediately, so consumers see configured maintenance even before
// Activate is ever called.
func New(fetcher Fetcher, opts Options) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = logger.New("error", false)
	}

	m := &Monitor{
		fetcher:  fetcher,
		override: opts.Override,
		interval: opts.Interval,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		watchers: make(map[chan domain.MonitorState]struct{}),
	}
	m.state.IsMaintenanceActive = domain.Resolve(m.override, nil)
	m.metrics.SetMaintenanceActive(m.state.IsMaintenanceActive)
	return m
}

// Activate transitions Inactive -> Active: applies the override check
// synchronously, performs one immediate fetch+reconcile cycle, then re-checks
// on the fixed interval. Calling Activate on an active monitor is a no-op.
func (m *Monitor) Activate(ctx context.Context) {
	m.mu.Lock()
	if m.active {
		m.mu.Unlock()
		return
	}
	m.active = true
	m.epoch++
	epoch := m.epoch
	m.stopCh = make(chan struct{})
	stopCh := m.stopCh

	// Maintenance set by configuration must be visible before the first
	// fetch resolves.
	m.recomputeLocked()
	m.mu.Unlock()

	m.logger.Info("maintenance monitor activated",
		logger.Duration("interval", m.interval),
		logger.Bool("override", m.override))

	go m.run(ctx, epoch, stopCh)
}

// Deactivate transitions Active -> Inactive and disarms the timer. After it
// returns, no fetch issued before deactivation can mutate the state; late
// results from the stale epoch are discarded.
func (m *Monitor) Deactivate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.active {
		return
	}
	m.active = false
	close(m.stopCh)
	m.stopCh = nil
	m.fetching = false
	m.state.IsFetching = false
	m.metrics.SetFetchInFlight(false)
	m.publishLocked()

	m.logger.Info("maintenance monitor deactivated")
}

// Recheck performs one fetch+reconcile cycle outside the timer, for manual
// refresh. Returns ErrBusy while a check is in flight and ErrNotActive when
// the monitor is inactive; otherwise it returns the fetch outcome (which has
// already been reconciled into the state).
func (m *Monitor) Recheck(ctx context.Context) error {
	m.mu.Lock()
	epoch := m.epoch
	active := m.active
	m.mu.Unlock()

	if !active {
		return ErrNotActive
	}

	err := m.check(ctx, epoch)
	if errors.Is(err, ErrBusy) {
		m.metrics.IncRecheckRejected()
	}
	return err
}

// State returns a snapshot of the observable state.
func (m *Monitor) State() domain.MonitorState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsMaintenanceActive implements Flag.
func (m *Monitor) IsMaintenanceActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.IsMaintenanceActive
}

// Subscribe returns a channel receiving state snapshots on every transition,
// plus a cancel func that unregisters and closes it. Sends are non-blocking:
// a slow consumer misses intermediate snapshots, never blocks the monitor.
func (m *Monitor) Subscribe() (<-chan domain.MonitorState, func()) {
	ch := make(chan domain.MonitorState, 8)

	m.mu.Lock()
	m.watchers[ch] = struct{}{}
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.watchers[ch]; ok {
			delete(m.watchers, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// run is the polling loop for one activation epoch.
func (m *Monitor) run(ctx context.Context, epoch uint64, stopCh chan struct{}) {
	if err := m.check(ctx, epoch); err != nil && !errors.Is(err, ErrNotActive) {
		m.logger.Warn("initial maintenance check failed", logger.Error(err))
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			switch err := m.check(ctx, epoch); {
			case err == nil:
			case errors.Is(err, ErrBusy):
				m.logger.Debug("tick skipped, check still in flight")
			case errors.Is(err, ErrNotActive):
				return
			default:
				m.logger.Warn("maintenance check failed", logger.Error(err))
			}
			// A tick that fired while the check ran must not queue a
			// back-to-back check: drain it.
			select {
			case <-ticker.C:
			default:
			}
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// check runs one fetch+reconcile cycle under the given activation epoch.
func (m *Monitor) check(ctx context.Context, epoch uint64) error {
	m.mu.Lock()
	if !m.active || epoch != m.epoch {
		m.mu.Unlock()
		return ErrNotActive
	}
	if m.fetching {
		m.mu.Unlock()
		return ErrBusy
	}
	m.fetching = true
	m.state.IsFetching = true
	m.state.LastError = "" // cleared at the start of each attempt
	m.metrics.SetFetchInFlight(true)
	m.publishLocked()
	m.mu.Unlock()

	start := time.Now()
	report, err := m.fetcher.FetchStatus(ctx)
	m.metrics.ObserveCheck(time.Since(start), err)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.active || epoch != m.epoch {
		// Stale epoch: the monitor was deactivated (or recycled) while this
		// fetch was in flight. Discard the result untouched.
		return nil
	}

	m.fetching = false
	m.state.IsFetching = false
	m.metrics.SetFetchInFlight(false)

	if err != nil {
		// Keep the prior report: a failed check never means "not in
		// maintenance", it means "no fresh information".
		m.state.LastError = err.Error()
	} else if report != nil {
		m.state.LastReport = report
	}
	m.recomputeLocked()

	if err == nil && report != nil {
		m.logger.Debug("maintenance status updated",
			logger.Bool("maintenance", report.MaintenanceActive),
			logger.String("message", report.Message),
			logger.Time("observed_at", report.ObservedAt))
	}
	return err
}

// recomputeLocked re-applies the reconciliation invariant and publishes the
// resulting snapshot. Callers must hold m.mu.
func (m *Monitor) recomputeLocked() {
	m.state.IsMaintenanceActive = domain.Resolve(m.override, m.state.LastReport)
	m.metrics.SetMaintenanceActive(m.state.IsMaintenanceActive)
	m.publishLocked()
}

// publishLocked fans the current snapshot out to watchers. Callers must hold m.mu.
func (m *Monitor) publishLocked() {
	snapshot := m.state
	for ch := range m.watchers {
		select {
		case ch <- snapshot:
		default:
		}
	}
}
