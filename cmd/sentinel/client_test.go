package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/sentinelsec/sentinel/internal/config"
	"github.com/sentinelsec/sentinel/internal/db"
)

func TestAPIKeyFromEnv(t *testing.T) {
	t.Run("direct key", func(t *testing.T) {
		t.Setenv("SENTINEL_API_KEY", "sk_live_abc123")
		t.Setenv("SENTINEL_API_KEY_FILE", "")

		if got := apiKeyFromEnv(); got != "sk_live_abc123" {
			t.Errorf("apiKeyFromEnv() = %q, want sk_live_abc123", got)
		}
	})

	t.Run("key file", func(t *testing.T) {
		keyFile := filepath.Join(t.TempDir(), "api-key")
		if err := os.WriteFile(keyFile, []byte("sk_live_fromfile\n"), 0o600); err != nil {
			t.Fatalf("writing key file: %v", err)
		}
		t.Setenv("SENTINEL_API_KEY", "")
		t.Setenv("SENTINEL_API_KEY_FILE", keyFile)

		if got := apiKeyFromEnv(); got != "sk_live_fromfile" {
			t.Errorf("apiKeyFromEnv() = %q, want sk_live_fromfile", got)
		}
	})

	t.Run("direct key wins over file", func(t *testing.T) {
		t.Setenv("SENTINEL_API_KEY", "sk_direct")
		t.Setenv("SENTINEL_API_KEY_FILE", "/nonexistent")

		if got := apiKeyFromEnv(); got != "sk_direct" {
			t.Errorf("apiKeyFromEnv() = %q, want sk_direct", got)
		}
	})

	t.Run("traversal path rejected", func(t *testing.T) {
		t.Setenv("SENTINEL_API_KEY", "")
		t.Setenv("SENTINEL_API_KEY_FILE", "../../../etc/passwd")

		if got := apiKeyFromEnv(); got != "" {
			t.Errorf("apiKeyFromEnv() = %q, want empty for traversal path", got)
		}
	})

	t.Run("nothing set", func(t *testing.T) {
		t.Setenv("SENTINEL_API_KEY", "")
		t.Setenv("SENTINEL_API_KEY_FILE", "")

		if got := apiKeyFromEnv(); got != "" {
			t.Errorf("apiKeyFromEnv() = %q, want empty", got)
		}
	})
}

func TestNewAPIClient(t *testing.T) {
	t.Run("no key configured", func(t *testing.T) {
		t.Setenv("SENTINEL_API_KEY", "")
		t.Setenv("SENTINEL_API_KEY_FILE", "")

		if client := newAPIClient(config.Default()); client != nil {
			t.Error("expected nil client without an API key")
		}
	})

	t.Run("http base URL", func(t *testing.T) {
		t.Setenv("SENTINEL_API_KEY", "sk_test")

		client := newAPIClient(config.Default())
		if client == nil {
			t.Fatal("expected a client with an API key set")
		}
		if client.baseURL != "http://127.0.0.1:8080/api/v1" {
			t.Errorf("baseURL = %q, want http://127.0.0.1:8080/api/v1", client.baseURL)
		}
		if client.apiKey != "sk_test" {
			t.Errorf("apiKey = %q, want sk_test", client.apiKey)
		}
	})

	t.Run("https when TLS enabled", func(t *testing.T) {
		t.Setenv("SENTINEL_API_KEY", "sk_test")

		cfg := config.Default()
		cfg.API.TLS.Enabled = true
		client := newAPIClient(cfg)
		if client == nil {
			t.Fatal("expected a client with an API key set")
		}
		if !strings.HasPrefix(client.baseURL, "https://") {
			t.Errorf("baseURL = %q, want https scheme", client.baseURL)
		}
	})
}

func testClient(server *httptest.Server) *apiClient {
	return &apiClient{
		baseURL:    server.URL + "/api/v1",
		apiKey:     "sk_test",
		httpClient: server.Client(),
	}
}

func TestSubmitScan(t *testing.T) {
	jobID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/scans" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-API-Key"); got != "sk_test" {
			t.Errorf("X-API-Key = %q, want sk_test", got)
		}

		var payload map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decoding request body: %v", err)
		}
		if payload["kind"] != db.ScanKindDiscovery {
			t.Errorf("kind = %v, want %s", payload["kind"], db.ScanKindDiscovery)
		}
		if payload["target"] != "192.168.1.0/24" {
			t.Errorf("target = %v, want 192.168.1.0/24", payload["target"])
		}
		if payload["os_detection"] != true {
			t.Errorf("os_detection = %v, want true", payload["os_detection"])
		}
		if payload["created_by"] != "cli" {
			t.Errorf("created_by = %v, want cli", payload["created_by"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(db.ScanJob{
			ID:     jobID,
			Kind:   db.ScanKindDiscovery,
			Target: "192.168.1.0/24",
			Status: db.ScanJobStatusPending,
		})
	}))
	defer server.Close()

	osDetection := true
	job, err := testClient(server).submitScan(db.ScanKindDiscovery, "192.168.1.0/24", &osDetection)
	if err != nil {
		t.Fatalf("submitScan() error = %v", err)
	}
	if job.ID != jobID {
		t.Errorf("job ID = %s, want %s", job.ID, jobID)
	}
	if job.Status != db.ScanJobStatusPending {
		t.Errorf("job status = %q, want %q", job.Status, db.ScanJobStatusPending)
	}
}

func TestGetScan(t *testing.T) {
	jobID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wantPath := "/api/v1/scans/" + jobID.String()
		if r.Method != http.MethodGet || r.URL.Path != wantPath {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(db.ScanJob{
			ID:                jobID,
			Kind:              db.ScanKindDiscovery,
			Status:            db.ScanJobStatusCompleted,
			DevicesDiscovered: 7,
		})
	}))
	defer server.Close()

	job, err := testClient(server).getScan(jobID.String())
	if err != nil {
		t.Fatalf("getScan() error = %v", err)
	}
	if job.Status != db.ScanJobStatusCompleted {
		t.Errorf("job status = %q, want %q", job.Status, db.ScanJobStatusCompleted)
	}
	if job.DevicesDiscovered != 7 {
		t.Errorf("devices discovered = %d, want 7", job.DevicesDiscovered)
	}
}

func TestRequestErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(apiErrorBody{
			Error:   "Not Found",
			Message: "scan job not found",
		})
	}))
	defer server.Close()

	_, err := testClient(server).getScan(uuid.New().String())
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error %q should include the status code", err)
	}
	if !strings.Contains(err.Error(), "scan job not found") {
		t.Errorf("error %q should include the server message", err)
	}
}

func TestPing(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/liveness" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	if err := testClient(healthy).ping(); err != nil {
		t.Errorf("ping() against healthy server: %v", err)
	}

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	if err := testClient(broken).ping(); err == nil {
		t.Error("ping() against broken server should fail")
	}
}
