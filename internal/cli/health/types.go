// Package health reads the /health endpoint of a running fingered daemon.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Response is the /health body served next to /metrics.
type Response struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Data      struct {
		Service           string `json:"service"`
		StartedAt         string `json:"started_at"`
		Uptime            string `json:"uptime"`
		Users             int    `json:"users"`
		Generation        uint64 `json:"generation"`
		ActiveConnections int    `json:"active_connections"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// Healthy reports whether the daemon answered "healthy".
func (r *Response) Healthy() bool {
	return r.Status == "healthy"
}

// Fetch queries baseURL + "/health" with a 5 second timeout.
func Fetch(ctx context.Context, baseURL string) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	url := strings.TrimSuffix(baseURL, "/") + "/health"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var health Response
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("failed to parse health response (HTTP %d): %w", resp.StatusCode, err)
	}
	return &health, nil
}
