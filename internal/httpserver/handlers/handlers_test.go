package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/maintmon/internal/domain"
	"github.com/MrSnakeDoc/maintmon/internal/httpserver/deps"
	"github.com/MrSnakeDoc/maintmon/internal/logger"
	"github.com/MrSnakeDoc/maintmon/internal/monitor"
)

var testLogger = logger.New("error", false)

type stubFetcher struct {
	report  *domain.StatusReport
	err     error
	release chan struct{} // when non-nil, FetchStatus blocks until closed
	started chan struct{}
}

func (f *stubFetcher) FetchStatus(ctx context.Context) (*domain.StatusReport, error) {
	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.report, f.err
}

func testDeps(m *monitor.Monitor) deps.Deps {
	return deps.Deps{
		Logger:    testLogger,
		StartTime: time.Now(),
		Monitor:   m,
	}
}

func activeMonitor(t *testing.T, f monitor.Fetcher) *monitor.Monitor {
	t.Helper()
	m := monitor.New(f, monitor.Options{Interval: time.Hour, Logger: testLogger})
	m.Activate(context.Background())
	t.Cleanup(m.Deactivate)
	return m
}

func TestMaintenance_ReturnsSnapshot(t *testing.T) {
	fetcher := &stubFetcher{report: &domain.StatusReport{
		MaintenanceActive: true,
		Message:           "upgrading",
		ObservedAt:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}}
	m := activeMonitor(t, fetcher)

	require.Eventually(t, func() bool {
		return m.State().LastReport != nil
	}, time.Second, 5*time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/maintenance", nil)
	rec := httptest.NewRecorder()
	Maintenance(testDeps(m))(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var resp maintenanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.MaintenanceActive)
	assert.False(t, resp.IsFetching)
	assert.Empty(t, resp.LastError)
	require.NotNil(t, resp.LastReport)
	assert.Equal(t, "upgrading", resp.LastReport.Message)
}

func TestMaintenance_NoReportYet(t *testing.T) {
	m := monitor.New(&stubFetcher{}, monitor.Options{Interval: time.Hour, Logger: testLogger})

	req := httptest.NewRequest(http.MethodGet, "/maintenance", nil)
	rec := httptest.NewRecorder()
	Maintenance(testDeps(m))(rec, req)

	var resp maintenanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.MaintenanceActive)
	assert.Nil(t, resp.LastReport)
}

func TestRecheck_Success(t *testing.T) {
	fetcher := &stubFetcher{report: &domain.StatusReport{
		MaintenanceActive: true,
		Message:           "upgrading",
		ObservedAt:        time.Now().UTC(),
	}}
	m := activeMonitor(t, fetcher)

	require.Eventually(t, func() bool {
		return m.State().LastReport != nil
	}, time.Second, 5*time.Millisecond)

	req := httptest.NewRequest(http.MethodPost, "/maintenance/recheck", nil)
	rec := httptest.NewRecorder()
	Recheck(testDeps(m))(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp maintenanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.MaintenanceActive)
}

func TestRecheck_BusyReturns429(t *testing.T) {
	fetcher := &stubFetcher{
		report:  &domain.StatusReport{ObservedAt: time.Now().UTC()},
		release: make(chan struct{}),
		started: make(chan struct{}, 8),
	}
	m := activeMonitor(t, fetcher)
	<-fetcher.started

	req := httptest.NewRequest(http.MethodPost, "/maintenance/recheck", nil)
	rec := httptest.NewRecorder()
	Recheck(testDeps(m))(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	close(fetcher.release)
}

func TestRecheck_InactiveReturns409(t *testing.T) {
	m := monitor.New(&stubFetcher{}, monitor.Options{Interval: time.Hour, Logger: testLogger})

	req := httptest.NewRequest(http.MethodPost, "/maintenance/recheck", nil)
	rec := httptest.NewRecorder()
	Recheck(testDeps(m))(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestReadyz(t *testing.T) {
	t.Run("not ready before first cycle", func(t *testing.T) {
		m := monitor.New(&stubFetcher{}, monitor.Options{Interval: time.Hour, Logger: testLogger})

		rec := httptest.NewRecorder()
		Readyz(testDeps(m))(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("ready after first cycle", func(t *testing.T) {
		fetcher := &stubFetcher{report: &domain.StatusReport{ObservedAt: time.Now().UTC()}}
		m := activeMonitor(t, fetcher)

		require.Eventually(t, func() bool {
			return m.State().LastReport != nil
		}, time.Second, 5*time.Millisecond)

		rec := httptest.NewRecorder()
		Readyz(testDeps(m))(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHealthz(t *testing.T) {
	d := testDeps(nil)
	d.Version = "v1.2.3"

	rec := httptest.NewRecorder()
	Healthz(d)(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp healthzResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "v1.2.3", resp.Version)
}
