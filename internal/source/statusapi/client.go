package statusapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MrSnakeDoc/maintmon/internal/domain"
	"github.com/MrSnakeDoc/maintmon/internal/utils"
)

// Error taxonomy for fetch failures. Both recover the same way (fall back to
// the override or the last known report); the split exists for diagnostics.
var (
	// ErrTransport means the request could not be sent or no response arrived.
	ErrTransport = errors.New("transport failure")
	// ErrSchema means a response arrived but was not in the expected shape
	// (non-2xx status, success=false, or an unparseable body).
	ErrSchema = errors.New("unexpected response shape")
)

const statusPath = "/api/maintenance/status"

// failMsg prefixes every fetch error so callers surface a stable message.
const failMsg = "failed to check maintenance status"

// Client fetches the maintenance status from the backend.
//
// It performs exactly one non-cached GET per call and never retries; retry
// timing belongs to the monitor's scheduler.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a status client for the given backend base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DisableKeepAlives: true,
			},
		},
	}
}

// FetchStatus issues one GET against the status endpoint and parses the result.
// It never panics past this boundary: every outcome is a report or an error.
func (c *Client) FetchStatus(ctx context.Context) (*domain.StatusReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+statusPath, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", failMsg, ErrTransport, err)
	}

	req.Header.Set("Content-Type", "application/json")
	// The answer must reflect the backend right now, never an intermediary cache.
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", failMsg, ErrTransport, err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: %w: unexpected HTTP status %d", failMsg, ErrSchema, resp.StatusCode)
	}

	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", failMsg, ErrSchema, err)
	}

	if !body.Success {
		return nil, fmt.Errorf("%s: %w: backend reported success=false", failMsg, ErrSchema)
	}

	observedAt, err := time.Parse(time.RFC3339, body.Data.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: invalid timestamp %q", failMsg, ErrSchema, body.Data.Timestamp)
	}

	return &domain.StatusReport{
		MaintenanceActive: body.Data.Maintenance,
		Message:           body.Data.Message,
		ObservedAt:        observedAt,
	}, nil
}
