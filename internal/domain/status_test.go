package domain

import (
	"testing"
	"time"
)

func TestResolve(t *testing.T) {
	report := func(active bool) *StatusReport {
		return &StatusReport{
			MaintenanceActive: active,
			Message:           "scheduled work",
			ObservedAt:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	tests := []struct {
		name     string
		override bool
		last     *StatusReport
		want     bool
	}{
		{
			name:     "no override, no report",
			override: false,
			last:     nil,
			want:     false,
		},
		{
			name:     "no override, report inactive",
			override: false,
			last:     report(false),
			want:     false,
		},
		{
			name:     "no override, report active",
			override: false,
			last:     report(true),
			want:     true,
		},
		{
			name:     "override wins over missing report",
			override: true,
			last:     nil,
			want:     true,
		},
		{
			name:     "override wins over server saying no maintenance",
			override: true,
			last:     report(false),
			want:     true,
		},
		{
			name:     "override and report both active",
			override: true,
			last:     report(true),
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.override, tt.last); got != tt.want {
				t.Errorf("Resolve(%v, %v) = %v, want %v", tt.override, tt.last, got, tt.want)
			}
		})
	}
}
