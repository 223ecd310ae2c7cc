package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sentinelsec/sentinel/internal/config"
	"github.com/sentinelsec/sentinel/internal/db"
)

const clientTimeout = 30 * time.Second

// apiClient talks to a running sentinel daemon.
type apiClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// apiErrorBody is the error envelope the API writes.
type apiErrorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// newAPIClient builds a client for the configured API address. Returns
// nil when no API key is available; callers fall back to direct mode.
func newAPIClient(cfg *config.Config) *apiClient {
	apiKey := apiKeyFromEnv()
	if apiKey == "" {
		return nil
	}

	scheme := "http"
	if cfg.API.TLS.Enabled {
		scheme = "https"
	}

	return &apiClient{
		baseURL:    fmt.Sprintf("%s://%s/api/v1", scheme, cfg.GetAPIAddress()),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: clientTimeout},
	}
}

// apiKeyFromEnv reads the API key from the environment, preferring the
// variable over a key file.
func apiKeyFromEnv() string {
	if key := os.Getenv("SENTINEL_API_KEY"); key != "" {
		return key
	}
	if keyFile := os.Getenv("SENTINEL_API_KEY_FILE"); keyFile != "" && !strings.Contains(keyFile, "..") {
		if data, err := os.ReadFile(keyFile); err == nil {
			return strings.TrimSpace(string(data))
		}
	}
	return ""
}

// submitScan posts a scan job and returns the accepted pending record.
func (c *apiClient) submitScan(kind, target string, osDetection *bool) (*db.ScanJob, error) {
	payload := map[string]interface{}{
		"kind":       kind,
		"target":     target,
		"created_by": "cli",
	}
	if osDetection != nil {
		payload["os_detection"] = *osDetection
	}

	var job db.ScanJob
	if err := c.request(http.MethodPost, "/scans", payload, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// getScan fetches one scan job by ID.
func (c *apiClient) getScan(id string) (*db.ScanJob, error) {
	var job db.ScanJob
	if err := c.request(http.MethodGet, "/scans/"+id, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ping checks that the daemon is reachable and the key is accepted.
func (c *apiClient) ping() error {
	return c.request(http.MethodGet, "/liveness", nil, nil)
}

func (c *apiClient) request(method, endpoint string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiErrorBody
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("API error (status %d): %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("API error (status %d)", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
