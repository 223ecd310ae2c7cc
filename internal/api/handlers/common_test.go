package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sentinelsec/sentinel/internal/db"
	apierrors "github.com/sentinelsec/sentinel/internal/errors"
	"github.com/sentinelsec/sentinel/internal/metrics"
	"github.com/sentinelsec/sentinel/internal/metrics/mocks"
	"github.com/sentinelsec/sentinel/internal/orchestrator"
)

func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// notFound builds the error shape the repositories produce for missing rows.
func notFound(entity string) error {
	return apierrors.NewDatabaseError(apierrors.CodeNotFound, entity+" not found")
}

// Test fixtures shared across the handler tests.

func testJob(status string) *db.ScanJob {
	return &db.ScanJob{
		ID:        uuid.New(),
		Kind:      db.ScanKindDiscovery,
		Target:    "192.168.1.0/24",
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
}

func testDevice(ip string, ports ...int64) *db.Device {
	now := time.Now().UTC()
	return &db.Device{
		ID:              uuid.New(),
		IPAddress:       db.IPAddr{IP: net.ParseIP(ip)},
		DeviceType:      db.DeviceTypeServer,
		OpenPorts:       pq.Int64Array(ports),
		DiscoveredBy:    pq.StringArray{db.DiscoveryMethodPing},
		LastSeen:        now,
		FirstDiscovered: now,
		IsActive:        true,
	}
}

func testVulnerability(deviceID uuid.UUID) *db.Vulnerability {
	return &db.Vulnerability{
		ID:           uuid.New(),
		DeviceID:     deviceID,
		Title:        "Outdated OpenSSH service",
		Description:  "OpenSSH 7.4 has multiple published CVEs",
		Severity:     db.SeverityHigh,
		DiscoveredAt: time.Now().UTC(),
	}
}

func testAlert() *db.ThreatAlert {
	return &db.ThreatAlert{
		ID:          uuid.New(),
		Title:       "Exposed RDP endpoint",
		Description: "RDP is reachable from the scan network",
		ThreatLevel: db.SeverityHigh,
		DetectedAt:  time.Now().UTC(),
	}
}

func testSegment(name, cidr string) *db.NetworkSegment {
	_, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(err)
	}
	return &db.NetworkSegment{
		ID:          uuid.New(),
		Name:        name,
		CIDR:        db.NetworkAddr{IPNet: *ipnet},
		IsMonitored: true,
		CreatedAt:   time.Now().UTC(),
	}
}

// In-memory store fakes. Each implements the narrow interface its
// handler consumes; error fields inject failures.

type fakeScanController struct {
	job       *db.ScanJob
	submitErr error
	cancelErr error
	submitted []orchestrator.SubmitRequest
	cancelled []uuid.UUID
	active    int
}

func (f *fakeScanController) Submit(_ context.Context, req orchestrator.SubmitRequest) (*db.ScanJob, error) {
	f.submitted = append(f.submitted, req)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.job, nil
}

func (f *fakeScanController) Cancel(_ context.Context, jobID uuid.UUID) error {
	f.cancelled = append(f.cancelled, jobID)
	return f.cancelErr
}

func (f *fakeScanController) ActiveJobs() int { return f.active }

// fakeJobStore is safe for concurrent use; the stream handler polls it
// from a goroutine while tests update job state.
type fakeJobStore struct {
	mu          sync.Mutex
	jobs        map[uuid.UUID]*db.ScanJob
	getErr      error
	listErr     error
	lastFilters db.ScanJobFilters
}

func newFakeJobStore(jobs ...*db.ScanJob) *fakeJobStore {
	store := &fakeJobStore{jobs: make(map[uuid.UUID]*db.ScanJob)}
	for _, job := range jobs {
		store.jobs[job.ID] = job
	}
	return store
}

func (f *fakeJobStore) put(job *db.ScanJob) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[job.ID] = job
}

func (f *fakeJobStore) GetByID(_ context.Context, id uuid.UUID) (*db.ScanJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	job, ok := f.jobs[id]
	if !ok {
		return nil, notFound("Scan job")
	}
	return job, nil
}

func (f *fakeJobStore) List(
	_ context.Context, filters db.ScanJobFilters, _, _ int,
) ([]*db.ScanJob, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilters = filters
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	jobs := make([]*db.ScanJob, 0, len(f.jobs))
	for _, job := range f.jobs {
		jobs = append(jobs, job)
	}
	return jobs, int64(len(jobs)), nil
}

type fakeDeviceStore struct {
	devices     []*db.Device
	saveErr     error
	getErr      error
	listErr     error
	activeErr   error
	deleted     []uuid.UUID
	lastFilters db.DeviceFilters
}

func (f *fakeDeviceStore) CreateOrUpdate(_ context.Context, device *db.Device) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.devices = append(f.devices, device)
	return nil
}

func (f *fakeDeviceStore) GetByID(_ context.Context, id uuid.UUID) (*db.Device, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, device := range f.devices {
		if device.ID == id {
			return device, nil
		}
	}
	return nil, notFound("Device")
}

func (f *fakeDeviceStore) List(
	_ context.Context, filters db.DeviceFilters, _, _ int,
) ([]*db.Device, int64, error) {
	f.lastFilters = filters
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.devices, int64(len(f.devices)), nil
}

func (f *fakeDeviceStore) Delete(_ context.Context, id uuid.UUID) error {
	for i, device := range f.devices {
		if device.ID == id {
			f.devices = append(f.devices[:i], f.devices[i+1:]...)
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return notFound("Device")
}

func (f *fakeDeviceStore) GetActive(_ context.Context) ([]*db.Device, error) {
	if f.activeErr != nil {
		return nil, f.activeErr
	}
	var active []*db.Device
	for _, device := range f.devices {
		if device.IsActive {
			active = append(active, device)
		}
	}
	return active, nil
}

type fakeVulnerabilityStore struct {
	vulns       []*db.Vulnerability
	listErr     error
	resolveErr  error
	analysisErr error
	analyses    map[uuid.UUID]string
	lastFilters db.VulnerabilityFilters
}

func (f *fakeVulnerabilityStore) GetByID(_ context.Context, id uuid.UUID) (*db.Vulnerability, error) {
	for _, vuln := range f.vulns {
		if vuln.ID == id {
			return vuln, nil
		}
	}
	return nil, notFound("Vulnerability")
}

func (f *fakeVulnerabilityStore) List(
	_ context.Context, filters db.VulnerabilityFilters, _, _ int,
) ([]*db.Vulnerability, int64, error) {
	f.lastFilters = filters
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.vulns, int64(len(f.vulns)), nil
}

func (f *fakeVulnerabilityStore) Resolve(_ context.Context, id uuid.UUID) error {
	if f.resolveErr != nil {
		return f.resolveErr
	}
	for _, vuln := range f.vulns {
		if vuln.ID == id {
			vuln.IsResolved = true
			return nil
		}
	}
	return notFound("Vulnerability")
}

func (f *fakeVulnerabilityStore) SetAnalysis(_ context.Context, id uuid.UUID, analysis string) error {
	if f.analysisErr != nil {
		return f.analysisErr
	}
	for _, vuln := range f.vulns {
		if vuln.ID == id {
			if f.analyses == nil {
				f.analyses = make(map[uuid.UUID]string)
			}
			f.analyses[id] = analysis
			return nil
		}
	}
	return notFound("Vulnerability")
}

func (f *fakeVulnerabilityStore) GetByDevice(_ context.Context, deviceID uuid.UUID) ([]*db.Vulnerability, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var matched []*db.Vulnerability
	for _, vuln := range f.vulns {
		if vuln.DeviceID == deviceID {
			matched = append(matched, vuln)
		}
	}
	return matched, nil
}

type fakeAlertStore struct {
	alerts          []*db.ThreatAlert
	createErr       error
	transitionErr   error
	recommendErr    error
	recommendations map[uuid.UUID]string
	lastFilters     db.ThreatAlertFilters
}

func (f *fakeAlertStore) Create(_ context.Context, alert *db.ThreatAlert) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.alerts = append(f.alerts, alert)
	return nil
}

func (f *fakeAlertStore) GetByID(_ context.Context, id uuid.UUID) (*db.ThreatAlert, error) {
	for _, alert := range f.alerts {
		if alert.ID == id {
			return alert, nil
		}
	}
	return nil, notFound("Threat alert")
}

func (f *fakeAlertStore) List(
	_ context.Context, filters db.ThreatAlertFilters, _, _ int,
) ([]*db.ThreatAlert, int64, error) {
	f.lastFilters = filters
	return f.alerts, int64(len(f.alerts)), nil
}

func (f *fakeAlertStore) Acknowledge(_ context.Context, id uuid.UUID) error {
	if f.transitionErr != nil {
		return f.transitionErr
	}
	for _, alert := range f.alerts {
		if alert.ID == id {
			alert.IsAcknowledged = true
			return nil
		}
	}
	return notFound("Threat alert")
}

func (f *fakeAlertStore) Resolve(_ context.Context, id uuid.UUID) error {
	if f.transitionErr != nil {
		return f.transitionErr
	}
	for _, alert := range f.alerts {
		if alert.ID == id {
			alert.IsResolved = true
			return nil
		}
	}
	return notFound("Threat alert")
}

func (f *fakeAlertStore) SetRecommendation(_ context.Context, id uuid.UUID, recommendation string) error {
	if f.recommendErr != nil {
		return f.recommendErr
	}
	for _, alert := range f.alerts {
		if alert.ID == id {
			if f.recommendations == nil {
				f.recommendations = make(map[uuid.UUID]string)
			}
			f.recommendations[id] = recommendation
			return nil
		}
	}
	return notFound("Threat alert")
}

type fakeSegmentStore struct {
	segments  []*db.NetworkSegment
	createErr error
	listErr   error
	updateErr error
}

func (f *fakeSegmentStore) Create(_ context.Context, segment *db.NetworkSegment) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.segments = append(f.segments, segment)
	return nil
}

func (f *fakeSegmentStore) GetByID(_ context.Context, id uuid.UUID) (*db.NetworkSegment, error) {
	for _, segment := range f.segments {
		if segment.ID == id {
			return segment, nil
		}
	}
	return nil, notFound("Network segment")
}

func (f *fakeSegmentStore) GetAll(_ context.Context) ([]*db.NetworkSegment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.segments, nil
}

func (f *fakeSegmentStore) Update(_ context.Context, segment *db.NetworkSegment) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for i, existing := range f.segments {
		if existing.ID == segment.ID {
			f.segments[i] = segment
			return nil
		}
	}
	return notFound("Network segment")
}

func (f *fakeSegmentStore) Delete(_ context.Context, id uuid.UUID) error {
	for i, segment := range f.segments {
		if segment.ID == id {
			f.segments = append(f.segments[:i], f.segments[i+1:]...)
			return nil
		}
	}
	return notFound("Network segment")
}

type fakeStatsStore struct {
	stats    *db.DashboardStats
	network  []*db.NetworkStatistics
	statsErr error
	netErr   error
}

func (f *fakeStatsStore) GetDashboardStats(_ context.Context) (*db.DashboardStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return f.stats, nil
}

func (f *fakeStatsStore) GetNetworkStatistics(_ context.Context) ([]*db.NetworkStatistics, error) {
	if f.netErr != nil {
		return nil, f.netErr
	}
	return f.network, nil
}

type fakeAnalyst struct {
	enabled        bool
	analysis       string
	recommendation string
	analyzeCalls   int
	recommendCalls int
	lastDevices    []*db.Device
	lastVulns      []*db.Vulnerability
}

func (f *fakeAnalyst) Enabled() bool { return f.enabled }

func (f *fakeAnalyst) AnalyzeVulnerability(_ context.Context, _ *db.Vulnerability, _ *db.Device) string {
	f.analyzeCalls++
	return f.analysis
}

func (f *fakeAnalyst) RecommendForNetwork(
	_ context.Context, devices []*db.Device, vulns []*db.Vulnerability,
) string {
	f.recommendCalls++
	f.lastDevices = devices
	f.lastVulns = vulns
	return f.recommendation
}

type fakePinger struct {
	err error
}

func (f *fakePinger) PingContext(_ context.Context) error { return f.err }

// Common utility tests.

func TestGetRequestIDFromContext(t *testing.T) {
	tests := []struct {
		name       string
		setupCtx   func() context.Context
		expectedID string
	}{
		{
			name: "with request ID in context",
			setupCtx: func() context.Context {
				return context.WithValue(context.Background(), ContextKey("request_id"), "test-req-123")
			},
			expectedID: "test-req-123",
		},
		{
			name:       "without request ID in context",
			setupCtx:   context.Background,
			expectedID: "unknown",
		},
		{
			name: "with wrong type in context",
			setupCtx: func() context.Context {
				return context.WithValue(context.Background(), ContextKey("request_id"), 12345)
			},
			expectedID: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedID, getRequestIDFromContext(tt.setupCtx()))
		})
	}
}

func TestGetQueryParamInt(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		key          string
		defaultValue int
		expectedVal  int
		expectedErr  bool
	}{
		{
			name:         "valid integer parameter",
			url:          "/test?page=5",
			key:          "page",
			defaultValue: 1,
			expectedVal:  5,
		},
		{
			name:         "missing parameter uses default",
			url:          "/test",
			key:          "page",
			defaultValue: 1,
			expectedVal:  1,
		},
		{
			name:         "invalid integer parameter",
			url:          "/test?page=invalid",
			key:          "page",
			defaultValue: 1,
			expectedErr:  true,
		},
		{
			name:         "negative number",
			url:          "/test?limit=-5",
			key:          "limit",
			defaultValue: 50,
			expectedVal:  -5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, http.NoBody)

			val, err := getQueryParamInt(req, tt.key, tt.defaultValue)

			if tt.expectedErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedVal, val)
			}
		})
	}
}

func TestGetQueryParamBool(t *testing.T) {
	boolPtr := func(v bool) *bool { return &v }

	tests := []struct {
		name        string
		url         string
		key         string
		expected    *bool
		expectedErr bool
	}{
		{
			name:     "absent parameter returns nil",
			url:      "/test",
			key:      "active",
			expected: nil,
		},
		{
			name:     "true value",
			url:      "/test?active=true",
			key:      "active",
			expected: boolPtr(true),
		},
		{
			name:     "numeric false",
			url:      "/test?active=0",
			key:      "active",
			expected: boolPtr(false),
		},
		{
			name:        "unparseable value",
			url:         "/test?active=banana",
			key:         "active",
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, http.NoBody)

			val, err := getQueryParamBool(req, tt.key)

			if tt.expectedErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "invalid active parameter")
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, val)
		})
	}
}

func TestExtractUUIDFromPath(t *testing.T) {
	tests := []struct {
		name        string
		pathVars    map[string]string
		expectedID  uuid.UUID
		expectedErr bool
	}{
		{
			name:       "valid UUID",
			pathVars:   map[string]string{"id": "123e4567-e89b-12d3-a456-426614174000"},
			expectedID: uuid.MustParse("123e4567-e89b-12d3-a456-426614174000"),
		},
		{
			name:        "invalid UUID format",
			pathVars:    map[string]string{"id": "invalid-uuid"},
			expectedErr: true,
		},
		{
			name:        "missing ID parameter",
			pathVars:    map[string]string{},
			expectedErr: true,
		},
		{
			name:        "empty ID parameter",
			pathVars:    map[string]string{"id": ""},
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", http.NoBody)
			req = mux.SetURLVars(req, tt.pathVars)

			id, err := extractUUIDFromPath(req)

			if tt.expectedErr {
				assert.Error(t, err)
				assert.Equal(t, uuid.Nil, id)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedID, id)
			}
		})
	}
}

func TestExtractStringFromPath(t *testing.T) {
	tests := []struct {
		name        string
		pathVars    map[string]string
		expected    string
		expectedErr string
	}{
		{
			name:     "valid identifier",
			pathVars: map[string]string{"id": "sk_a1b2c3"},
			expected: "sk_a1b2c3",
		},
		{
			name:        "missing identifier",
			pathVars:    map[string]string{},
			expectedErr: "id not provided",
		},
		{
			name:        "whitespace identifier",
			pathVars:    map[string]string{"id": "   "},
			expectedErr: "id cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", http.NoBody)
			req = mux.SetURLVars(req, tt.pathVars)

			id, err := extractStringFromPath(req)

			if tt.expectedErr != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, id)
			}
		})
	}
}

func TestGetPaginationParams(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		expectedParams PaginationParams
		expectedErr    bool
	}{
		{
			name:           "default parameters",
			url:            "/test",
			expectedParams: PaginationParams{Page: 1, PageSize: 50, Offset: 0},
		},
		{
			name:           "custom valid parameters",
			url:            "/test?page=3&page_size=25",
			expectedParams: PaginationParams{Page: 3, PageSize: 25, Offset: 50},
		},
		{
			name:        "invalid page parameter",
			url:         "/test?page=invalid",
			expectedErr: true,
		},
		{
			name:        "invalid page_size parameter",
			url:         "/test?page_size=invalid",
			expectedErr: true,
		},
		{
			name:           "negative page number falls back",
			url:            "/test?page=-1",
			expectedParams: PaginationParams{Page: 1, PageSize: 50, Offset: 0},
		},
		{
			name:           "zero page size falls back",
			url:            "/test?page_size=0",
			expectedParams: PaginationParams{Page: 1, PageSize: 50, Offset: 0},
		},
		{
			name:           "page size capped at maximum",
			url:            "/test?page_size=2000",
			expectedParams: PaginationParams{Page: 1, PageSize: 1000, Offset: 0},
		},
		{
			name:           "large page number",
			url:            "/test?page=100&page_size=10",
			expectedParams: PaginationParams{Page: 100, PageSize: 10, Offset: 990},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, http.NoBody)

			params, err := getPaginationParams(req)

			if tt.expectedErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedParams, params)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name           string
		statusCode     int
		data           interface{}
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "successful response",
			statusCode:     http.StatusOK,
			data:           map[string]string{"message": "success"},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message":"success"}`,
		},
		{
			name:           "created response",
			statusCode:     http.StatusCreated,
			data:           map[string]interface{}{"id": 123, "name": "test"},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"id":123,"name":"test"}`,
		},
		{
			name:           "nil data",
			statusCode:     http.StatusOK,
			data:           nil,
			expectedStatus: http.StatusOK,
			expectedBody:   "null",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", http.NoBody)
			w := httptest.NewRecorder()

			writeJSON(w, req, tt.statusCode, tt.data)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name           string
		statusCode     int
		err            error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "bad request error",
			statusCode:     http.StatusBadRequest,
			err:            errors.New("invalid input"),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Bad Request",
		},
		{
			name:           "not found error",
			statusCode:     http.StatusNotFound,
			err:            errors.New("resource not found"),
			expectedStatus: http.StatusNotFound,
			expectedError:  "Not Found",
		},
		{
			name:           "internal server error",
			statusCode:     http.StatusInternalServerError,
			err:            errors.New("database connection failed"),
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", http.NoBody)
			ctx := context.WithValue(req.Context(), ContextKey("request_id"), "test-req-456")
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			writeError(w, req, tt.statusCode, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response ErrorResponse
			err := json.Unmarshal(w.Body.Bytes(), &response)
			require.NoError(t, err)

			assert.Equal(t, tt.expectedError, response.Error)
			assert.Equal(t, tt.err.Error(), response.Message)
			assert.Equal(t, "test-req-456", response.RequestID)
			assert.NotZero(t, response.Timestamp)
		})
	}
}

func TestWritePaginatedResponse(t *testing.T) {
	tests := []struct {
		name       string
		data       interface{}
		params     PaginationParams
		totalItems int64
		totalPages int
	}{
		{
			name:       "first page",
			data:       []string{"item1", "item2", "item3"},
			params:     PaginationParams{Page: 1, PageSize: 10, Offset: 0},
			totalItems: 25,
			totalPages: 3,
		},
		{
			name:       "middle page",
			data:       []string{"item11", "item12"},
			params:     PaginationParams{Page: 3, PageSize: 5, Offset: 10},
			totalItems: 17,
			totalPages: 4,
		},
		{
			name:       "empty results",
			data:       []string{},
			params:     PaginationParams{Page: 1, PageSize: 10, Offset: 0},
			totalItems: 0,
			totalPages: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", http.NoBody)
			w := httptest.NewRecorder()

			writePaginatedResponse(w, req, tt.data, tt.params, tt.totalItems)

			assert.Equal(t, http.StatusOK, w.Code)

			var response PaginatedResponse
			err := json.Unmarshal(w.Body.Bytes(), &response)
			require.NoError(t, err)

			assert.Equal(t, tt.params.Page, response.Pagination.Page)
			assert.Equal(t, tt.params.PageSize, response.Pagination.PageSize)
			assert.Equal(t, tt.totalItems, response.Pagination.TotalItems)
			assert.Equal(t, tt.totalPages, response.Pagination.TotalPages)
		})
	}
}

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		expectedErr bool
	}{
		{
			name: "valid JSON object",
			body: `{"kind": "port_scan", "target": "10.0.0.1"}`,
		},
		{
			name:        "invalid JSON",
			body:        `{"kind": "port_scan", "target":}`,
			expectedErr: true,
		},
		{
			name:        "empty body",
			body:        "",
			expectedErr: true,
		},
		{
			name:        "unknown fields rejected",
			body:        `{"kind": "port_scan", "target": "10.0.0.1", "extra": true}`,
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest("POST", "/test", strings.NewReader(tt.body))
			} else {
				req = httptest.NewRequest("POST", "/test", http.NoBody)
			}

			var dest CreateScanRequest
			err := parseJSON(req, &dest)

			if tt.expectedErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "port_scan", dest.Kind)
			}
		})
	}
}

func TestParseAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		expectedErr string
	}{
		{
			name: "valid request",
			body: `{"kind": "network_discovery", "target": "192.168.1.0/24"}`,
		},
		{
			name:        "missing required field",
			body:        `{"kind": "network_discovery"}`,
			expectedErr: "validation failed",
		},
		{
			name:        "malformed JSON",
			body:        `{"kind": `,
			expectedErr: "invalid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/test", strings.NewReader(tt.body))

			var dest CreateScanRequest
			err := parseAndValidate(req, &dest)

			if tt.expectedErr != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "invalid target",
			err:  apierrors.ErrInvalidTarget("999.999.0.0/24"),
			want: http.StatusBadRequest,
		},
		{
			name: "validation failure",
			err:  apierrors.NewScanError(apierrors.CodeValidation, "unsupported scan kind"),
			want: http.StatusBadRequest,
		},
		{
			name: "missing resource",
			err:  notFound("Device"),
			want: http.StatusNotFound,
		},
		{
			name: "missing job",
			err:  apierrors.NewJobError(apierrors.CodeJobNotFound, "no such job", ""),
			want: http.StatusNotFound,
		},
		{
			name: "resource conflict",
			err:  apierrors.NewDatabaseError(apierrors.CodeConflict, "Resource already exists"),
			want: http.StatusConflict,
		},
		{
			name: "job state conflict",
			err:  apierrors.NewJobError(apierrors.CodeJobState, "job already finished", ""),
			want: http.StatusConflict,
		},
		{
			name: "service unavailable",
			err:  apierrors.NewScanError(apierrors.CodeServiceUnavailable, "worker pool saturated"),
			want: http.StatusServiceUnavailable,
		},
		{
			name: "unclassified error",
			err:  errors.New("boom"),
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}

func TestHandleDatabaseError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		operation      string
		entityType     string
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "not found error",
			err:            notFound("Device"),
			operation:      "get",
			entityType:     "device",
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "device not found",
		},
		{
			name:           "conflict error",
			err:            apierrors.NewDatabaseError(apierrors.CodeConflict, "Resource already exists"),
			operation:      "create",
			entityType:     "network segment",
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "generic database error",
			err:            errors.New("connection timeout"),
			operation:      "update",
			entityType:     "scan job",
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "failed to update scan job",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := createTestLogger()
			req := httptest.NewRequest("GET", "/test", http.NoBody)
			ctx := context.WithValue(req.Context(), ContextKey("request_id"), "test-req-789")
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handleDatabaseError(w, req, tt.err, tt.operation, tt.entityType, logger)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response ErrorResponse
			err := json.Unmarshal(w.Body.Bytes(), &response)
			require.NoError(t, err)

			assert.NotEmpty(t, response.Error)
			assert.NotEmpty(t, response.Message)
			assert.Equal(t, "test-req-789", response.RequestID)

			if tt.expectedMsg != "" {
				assert.Contains(t, response.Message, tt.expectedMsg)
			}
		})
	}
}

func TestRecordHandlerMetric(t *testing.T) {
	t.Run("with metrics registry", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockRegistry := mocks.NewMockMetricsRegistry(ctrl)
		mockRegistry.EXPECT().
			Counter("api_scans_submitted_total", gomock.Any()).
			Times(1)

		recordHandlerMetric(mockRegistry, "api_scans_submitted_total", map[string]string{
			"kind": db.ScanKindDiscovery,
		})
	})

	t.Run("without metrics registry", func(t *testing.T) {
		assert.NotPanics(t, func() {
			recordHandlerMetric(nil, "api_scans_submitted_total", nil)
		})
	})
}

func TestListOperation(t *testing.T) {
	type entity struct {
		ID   uuid.UUID `json:"id"`
		Name string    `json:"name"`
	}
	type filter struct {
		Name string
	}

	newOperation := func(list func(context.Context, filter, int, int) ([]entity, int64, error)) *ListOperation[entity, filter] {
		return &ListOperation[entity, filter]{
			EntityType: "test entities",
			MetricName: "test_entities_listed_total",
			Logger:     createTestLogger(),
			Metrics:    metrics.NewRegistry(),
			GetFilters: func(r *http.Request) filter {
				return filter{Name: r.URL.Query().Get("name")}
			},
			ListFromDB: list,
			ToResponse: func(e entity) interface{} { return e },
		}
	}

	t.Run("successful listing", func(t *testing.T) {
		entities := []entity{
			{ID: uuid.New(), Name: "first"},
			{ID: uuid.New(), Name: "second"},
		}
		op := newOperation(func(_ context.Context, _ filter, _, _ int) ([]entity, int64, error) {
			return entities, int64(len(entities)), nil
		})

		req := httptest.NewRequest("GET", "/test?page=1&page_size=10", http.NoBody)
		w := httptest.NewRecorder()

		op.Execute(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response PaginatedResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		require.NoError(t, err)

		assert.Len(t, response.Data, 2)
		assert.Equal(t, int64(2), response.Pagination.TotalItems)
	})

	t.Run("database failure", func(t *testing.T) {
		op := newOperation(func(_ context.Context, _ filter, _, _ int) ([]entity, int64, error) {
			return nil, 0, errors.New("connection reset")
		})

		req := httptest.NewRequest("GET", "/test", http.NoBody)
		w := httptest.NewRecorder()

		op.Execute(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("invalid pagination", func(t *testing.T) {
		op := newOperation(func(_ context.Context, _ filter, _, _ int) ([]entity, int64, error) {
			t.Fatal("list should not be reached")
			return nil, 0, nil
		})

		req := httptest.NewRequest("GET", "/test?page=banana", http.NoBody)
		w := httptest.NewRecorder()

		op.Execute(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBoolLabel(t *testing.T) {
	assert.Equal(t, "true", boolLabel(true))
	assert.Equal(t, "false", boolLabel(false))
}

// Benchmark tests for performance.
func BenchmarkGetPaginationParams(b *testing.B) {
	req := httptest.NewRequest("GET", "/test?page=5&page_size=25", http.NoBody)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = getPaginationParams(req)
	}
}

func BenchmarkWriteJSON(b *testing.B) {
	data := map[string]interface{}{
		"id":     uuid.New().String(),
		"status": db.ScanJobStatusRunning,
		"ports":  []int{22, 80, 443},
	}

	req := httptest.NewRequest("GET", "/test", http.NoBody)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		writeJSON(w, req, http.StatusOK, data)
	}
}
