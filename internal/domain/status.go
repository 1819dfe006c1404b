package domain

import "time"

// StatusReport is the parsed result of one successful maintenance status query.
//
// Reports are immutable: each successful fetch produces a fresh report that
// supersedes the previous one. Nothing mutates a report after construction.
type StatusReport struct {
	// MaintenanceActive is the server-declared maintenance state.
	MaintenanceActive bool

	// Message is a human-readable note from the server
	// ("upgrading database", "back at 14:00", ...).
	Message string

	// ObservedAt is when the server produced the report.
	ObservedAt time.Time
}

// MonitorState is the externally observable snapshot of a monitor.
//
// IsMaintenanceActive is the single source of truth for consumers; the other
// fields are diagnostic only and must never be required for correctness.
type MonitorState struct {
	// IsMaintenanceActive is always Resolve(override, LastReport).
	// It is recomputed synchronously on every fetch result and override check.
	IsMaintenanceActive bool

	// LastReport is the most recent successful report, nil if none ever succeeded.
	// A failed fetch never discards it.
	LastReport *StatusReport

	// IsFetching is true only while a fetch is in flight.
	IsFetching bool

	// LastError holds the message of the most recent failed fetch.
	// Empty when the last fetch succeeded; cleared at the start of each attempt.
	LastError string
}

// Resolve is the reconciliation rule: the override wins, otherwise the last
// known good report decides. A missing report never means maintenance.
func Resolve(override bool, last *StatusReport) bool {
	return override || (last != nil && last.MaintenanceActive)
}
