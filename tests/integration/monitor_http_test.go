package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/maintmon/internal/httpserver/deps"
	"github.com/MrSnakeDoc/maintmon/internal/httpserver/routes"
	"github.com/MrSnakeDoc/maintmon/internal/logger"
	"github.com/MrSnakeDoc/maintmon/internal/metrics"
	"github.com/MrSnakeDoc/maintmon/internal/monitor"
	"github.com/MrSnakeDoc/maintmon/internal/source/statusapi"
)

// fakeBackend is a mutable stand-in for the maintenance status endpoint.
type fakeBackend struct {
	mu          sync.Mutex
	maintenance bool
	message     string
	failWith    int // when non-zero, answer with this HTTP status
}

func (b *fakeBackend) set(maintenance bool, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maintenance = maintenance
	b.message = message
	b.failWith = 0
}

func (b *fakeBackend) fail(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failWith = status
}

func (b *fakeBackend) handler(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if r.URL.Path != "/api/maintenance/status" {
		http.NotFound(w, r)
		return
	}
	if b.failWith != 0 {
		w.WriteHeader(b.failWith)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"success":true,"data":{"maintenance":%t,"message":%q,"timestamp":%q}}`,
		b.maintenance, b.message, time.Now().UTC().Format(time.RFC3339))
}

type maintenanceResponse struct {
	MaintenanceActive bool   `json:"maintenance_active"`
	IsFetching        bool   `json:"is_fetching"`
	LastError         string `json:"last_error"`
	LastReport        *struct {
		Maintenance bool   `json:"maintenance"`
		Message     string `json:"message"`
	} `json:"last_report"`
}

func setup(t *testing.T, override bool) (*fakeBackend, *monitor.Monitor, *httptest.Server) {
	t.Helper()

	backend := &fakeBackend{}
	backendSrv := httptest.NewServer(http.HandlerFunc(backend.handler))
	t.Cleanup(backendSrv.Close)

	log := logger.New("error", false)
	registry := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(registry)

	client := statusapi.NewClient(backendSrv.URL, 2*time.Second)
	mon := monitor.New(client, monitor.Options{
		Override: override,
		Interval: time.Hour, // stepped manually through rechecks
		Logger:   log,
		Metrics:  recorder,
	})
	t.Cleanup(mon.Deactivate)

	r := chi.NewRouter()
	routes.RegisterAll(r, deps.Deps{
		Logger:           log,
		StartTime:        time.Now(),
		Monitor:          mon,
		PromRegistry:     registry,
		RecheckBurst:     100,
		RecheckPerMinute: 6000,
	})
	apiSrv := httptest.NewServer(r)
	t.Cleanup(apiSrv.Close)

	return backend, mon, apiSrv
}

func getState(t *testing.T, apiURL string) maintenanceResponse {
	t.Helper()
	resp, err := http.Get(apiURL + "/maintenance")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state maintenanceResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	return state
}

func recheck(t *testing.T, apiURL string) (*http.Response, maintenanceResponse) {
	t.Helper()
	resp, err := http.Post(apiURL+"/maintenance/recheck", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	var state maintenanceResponse
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	}
	return resp, state
}

func TestMonitorOverHTTP_FullCycle(t *testing.T) {
	backend, mon, apiSrv := setup(t, false)
	backend.set(false, "nominal")

	mon.Activate(context.Background())
	require.Eventually(t, func() bool {
		return mon.State().LastReport != nil
	}, 2*time.Second, 10*time.Millisecond)

	// Initial state: backend says no maintenance.
	state := getState(t, apiSrv.URL)
	assert.False(t, state.MaintenanceActive)
	assert.Empty(t, state.LastError)
	require.NotNil(t, state.LastReport)
	assert.Equal(t, "nominal", state.LastReport.Message)

	// Backend flips to maintenance; a manual recheck picks it up.
	backend.set(true, "upgrading")
	resp, state := recheck(t, apiSrv.URL)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, state.MaintenanceActive)
	assert.Equal(t, "upgrading", state.LastReport.Message)

	// Backend starts failing: the last known state holds and the error surfaces.
	backend.fail(http.StatusInternalServerError)
	resp, state = recheck(t, apiSrv.URL)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, state.MaintenanceActive, "failure must not drop the last known state")
	assert.Contains(t, state.LastError, "failed to check maintenance status")

	// Backend recovers and reports the maintenance is over.
	backend.set(false, "done")
	_, state = recheck(t, apiSrv.URL)
	assert.False(t, state.MaintenanceActive)
	assert.Empty(t, state.LastError)
}

func TestMonitorOverHTTP_OverrideWins(t *testing.T) {
	backend, mon, apiSrv := setup(t, true)
	backend.set(false, "nominal")

	mon.Activate(context.Background())
	require.Eventually(t, func() bool {
		return mon.State().LastReport != nil
	}, 2*time.Second, 10*time.Millisecond)

	state := getState(t, apiSrv.URL)
	assert.True(t, state.MaintenanceActive, "override must win over the backend saying false")
	require.NotNil(t, state.LastReport)
	assert.False(t, state.LastReport.Maintenance)
}

func TestMonitorOverHTTP_RecheckInactive(t *testing.T) {
	backend, _, apiSrv := setup(t, false)
	backend.set(false, "")

	resp, _ := recheck(t, apiSrv.URL)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestMonitorOverHTTP_ReadyzAndMetrics(t *testing.T) {
	backend, mon, apiSrv := setup(t, false)
	backend.set(true, "upgrading")

	// Before the first cycle: not ready.
	resp, err := http.Get(apiSrv.URL + "/readyz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	mon.Activate(context.Background())
	require.Eventually(t, func() bool {
		return mon.State().LastReport != nil
	}, 2*time.Second, 10*time.Millisecond)

	resp, err = http.Get(apiSrv.URL + "/readyz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(apiSrv.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "maintmon_maintenance_active 1")
	assert.Contains(t, string(body), "maintmon_status_checks_total")
}
