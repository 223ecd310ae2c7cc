// Package metrics provides Prometheus-based metrics collection for sentinel.
// This complements the in-process registry with industry-standard Prometheus
// collectors for observability and monitoring integration.
package metrics

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	// Namespace for all sentinel metrics
	namespace = "sentinel"

	// Subsystems
	subsystemJob       = "job"
	subsystemDiscovery = "discovery"
	subsystemDatabase  = "database"
	subsystemSystem    = "system"
	subsystemAPI       = "api"
)

// PrometheusMetrics holds all Prometheus metric collectors
type PrometheusMetrics struct {
	// Scan job metrics
	jobsTotal            *prometheus.CounterVec
	jobDuration          *prometheus.HistogramVec
	jobErrors            *prometheus.CounterVec
	devicesDiscovered    *prometheus.CounterVec
	vulnerabilitiesFound *prometheus.CounterVec
	portsScanned         *prometheus.CounterVec
	activeJobs           prometheus.Gauge

	// Discovery metrics
	discoveryTotal    *prometheus.CounterVec
	discoveryDuration *prometheus.HistogramVec
	discoveryErrors   *prometheus.CounterVec
	hostsDiscovered   *prometheus.CounterVec

	// Database metrics
	dbQueries       *prometheus.CounterVec
	dbQueryDuration *prometheus.HistogramVec
	dbConnections   prometheus.Gauge
	dbErrors        *prometheus.CounterVec

	// API metrics
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec

	// System metrics
	memoryUsage prometheus.Gauge
	goroutines  prometheus.Gauge
	uptime      prometheus.Gauge

	// Performance tracking
	startTime  time.Time
	lastUpdate time.Time
	mu         sync.RWMutex
	registry   *prometheus.Registry
}

// NewPrometheusMetrics creates a new Prometheus metrics instance with all collectors
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()

	pm := &PrometheusMetrics{
		startTime: time.Now(),
		registry:  registry,
	}

	// Initialize all metrics
	pm.initJobMetrics()
	pm.initDiscoveryMetrics()
	pm.initDatabaseMetrics()
	pm.initAPIMetrics()
	pm.initSystemMetrics()

	// Register all metrics with the registry
	pm.registerMetrics()

	// Register standard Go and process collectors for runtime visibility
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return pm
}

// initJobMetrics initializes scan job metrics
func (pm *PrometheusMetrics) initJobMetrics() {
	pm.jobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemJob,
			Name:      "total",
			Help:      "Total number of scan jobs by kind and terminal status",
		},
		[]string{"kind", "status"},
	)

	pm.jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemJob,
			Name:      "duration_seconds",
			Help:      "Duration of scan jobs in seconds",
			Buckets:   []float64{0.1, 0.5, 1.0, 5.0, 10.0, 30.0, 60.0, 300.0, 600.0},
		},
		[]string{"kind"},
	)

	pm.jobErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemJob,
			Name:      "errors_total",
			Help:      "Total number of scan job failures by kind and error code",
		},
		[]string{"kind", "error_code"},
	)

	pm.devicesDiscovered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemJob,
			Name:      "devices_total",
			Help:      "Total number of devices produced by scan jobs",
		},
		[]string{"kind"},
	)

	pm.vulnerabilitiesFound = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemJob,
			Name:      "vulnerabilities_total",
			Help:      "Total number of vulnerability findings by severity",
		},
		[]string{"severity"},
	)

	pm.portsScanned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemJob,
			Name:      "ports_total",
			Help:      "Total number of ports scanned by port status",
		},
		[]string{"kind", "port_status"},
	)

	pm.activeJobs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemJob,
			Name:      "active",
			Help:      "Number of currently running scan jobs",
		},
	)
}

// initDiscoveryMetrics initializes discovery-related metrics
func (pm *PrometheusMetrics) initDiscoveryMetrics() {
	pm.discoveryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemDiscovery,
			Name:      "total",
			Help:      "Total number of discovery operations by method and status",
		},
		[]string{"method", "status"},
	)

	pm.discoveryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemDiscovery,
			Name:      "duration_seconds",
			Help:      "Duration of discovery operations in seconds",
			Buckets:   []float64{1.0, 5.0, 10.0, 30.0, 60.0, 300.0, 600.0, 1800.0},
		},
		[]string{"method"},
	)

	pm.discoveryErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemDiscovery,
			Name:      "errors_total",
			Help:      "Total number of discovery errors by method and error type",
		},
		[]string{"method", "error_type"},
	)

	pm.hostsDiscovered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemDiscovery,
			Name:      "hosts_total",
			Help:      "Total number of responsive hosts discovered",
		},
		[]string{"method", "network"},
	)
}

// initDatabaseMetrics initializes database-related metrics
func (pm *PrometheusMetrics) initDatabaseMetrics() {
	pm.dbQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemDatabase,
			Name:      "queries_total",
			Help:      "Total number of database queries by operation and status",
		},
		[]string{"operation", "status"},
	)

	pm.dbQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemDatabase,
			Name:      "query_duration_seconds",
			Help:      "Duration of database queries in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
		},
		[]string{"operation"},
	)

	pm.dbConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemDatabase,
			Name:      "connections_active",
			Help:      "Number of active database connections",
		},
	)

	pm.dbErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemDatabase,
			Name:      "errors_total",
			Help:      "Total number of database errors by operation and error type",
		},
		[]string{"operation", "error_type"},
	)
}

// initAPIMetrics initializes API-related metrics
func (pm *PrometheusMetrics) initAPIMetrics() {
	pm.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemAPI,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	pm.httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemAPI,
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"method", "path"},
	)

	pm.httpErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemAPI,
			Name:      "errors_total",
			Help:      "Total number of HTTP errors by method, path and error type",
		},
		[]string{"method", "path", "error_type"},
	)
}

// initSystemMetrics initializes system-related metrics
func (pm *PrometheusMetrics) initSystemMetrics() {
	pm.memoryUsage = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemSystem,
			Name:      "memory_bytes",
			Help:      "Current memory usage in bytes",
		},
	)

	pm.goroutines = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemSystem,
			Name:      "goroutines",
			Help:      "Current number of goroutines",
		},
	)

	pm.uptime = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemSystem,
			Name:      "uptime_seconds",
			Help:      "Application uptime in seconds",
		},
	)
}

// registerMetrics registers all metrics with the Prometheus registry
func (pm *PrometheusMetrics) registerMetrics() {
	// Scan job metrics
	pm.registry.MustRegister(pm.jobsTotal)
	pm.registry.MustRegister(pm.jobDuration)
	pm.registry.MustRegister(pm.jobErrors)
	pm.registry.MustRegister(pm.devicesDiscovered)
	pm.registry.MustRegister(pm.vulnerabilitiesFound)
	pm.registry.MustRegister(pm.portsScanned)
	pm.registry.MustRegister(pm.activeJobs)

	// Discovery metrics
	pm.registry.MustRegister(pm.discoveryTotal)
	pm.registry.MustRegister(pm.discoveryDuration)
	pm.registry.MustRegister(pm.discoveryErrors)
	pm.registry.MustRegister(pm.hostsDiscovered)

	// Database metrics
	pm.registry.MustRegister(pm.dbQueries)
	pm.registry.MustRegister(pm.dbQueryDuration)
	pm.registry.MustRegister(pm.dbConnections)
	pm.registry.MustRegister(pm.dbErrors)

	// API metrics
	pm.registry.MustRegister(pm.httpRequests)
	pm.registry.MustRegister(pm.httpDuration)
	pm.registry.MustRegister(pm.httpErrors)

	// System metrics
	pm.registry.MustRegister(pm.memoryUsage)
	pm.registry.MustRegister(pm.goroutines)
	pm.registry.MustRegister(pm.uptime)
}

// GetRegistry returns the Prometheus registry for HTTP handler
func (pm *PrometheusMetrics) GetRegistry() *prometheus.Registry {
	return pm.registry
}

// Scan Job Metrics Methods

// IncrementJobsTotal increments the total job counter
func (pm *PrometheusMetrics) IncrementJobsTotal(kind, status string) {
	pm.jobsTotal.WithLabelValues(kind, status).Inc()
}

// RecordJobDuration records a scan job duration
func (pm *PrometheusMetrics) RecordJobDuration(kind string, duration time.Duration) {
	pm.jobDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// IncrementJobErrors increments the job failure counter
func (pm *PrometheusMetrics) IncrementJobErrors(kind, errorCode string) {
	pm.jobErrors.WithLabelValues(kind, errorCode).Inc()
}

// AddDevicesDiscovered adds to the devices produced counter
func (pm *PrometheusMetrics) AddDevicesDiscovered(kind string, count int) {
	pm.devicesDiscovered.WithLabelValues(kind).Add(float64(count))
}

// AddVulnerabilitiesFound adds to the vulnerability finding counter
func (pm *PrometheusMetrics) AddVulnerabilitiesFound(severity string, count int) {
	pm.vulnerabilitiesFound.WithLabelValues(severity).Add(float64(count))
}

// AddPortsScanned adds to the ports scanned counter
func (pm *PrometheusMetrics) AddPortsScanned(kind, portStatus string, count int) {
	pm.portsScanned.WithLabelValues(kind, portStatus).Add(float64(count))
}

// SetActiveJobs sets the number of running jobs
func (pm *PrometheusMetrics) SetActiveJobs(count int) {
	pm.activeJobs.Set(float64(count))
}

// Discovery Metrics Methods

// IncrementDiscoveryTotal increments discovery counter
func (pm *PrometheusMetrics) IncrementDiscoveryTotal(method, status string) {
	pm.discoveryTotal.WithLabelValues(method, status).Inc()
}

// RecordDiscoveryDuration records discovery duration
func (pm *PrometheusMetrics) RecordDiscoveryDuration(method string, duration time.Duration) {
	pm.discoveryDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// IncrementDiscoveryErrors increments discovery error counter
func (pm *PrometheusMetrics) IncrementDiscoveryErrors(method, errorType string) {
	pm.discoveryErrors.WithLabelValues(method, errorType).Inc()
}

// AddHostsDiscovered adds to the hosts discovered counter
func (pm *PrometheusMetrics) AddHostsDiscovered(method, network string, count int) {
	pm.hostsDiscovered.WithLabelValues(method, network).Add(float64(count))
}

// Database Metrics Methods

// IncrementDatabaseQueries increments database query counter
func (pm *PrometheusMetrics) IncrementDatabaseQueries(operation, status string) {
	pm.dbQueries.WithLabelValues(operation, status).Inc()
}

// RecordDatabaseQueryDuration records database query duration
func (pm *PrometheusMetrics) RecordDatabaseQueryDuration(operation string, duration time.Duration) {
	pm.dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetActiveConnections sets the number of active database connections
func (pm *PrometheusMetrics) SetActiveConnections(count int) {
	pm.dbConnections.Set(float64(count))
}

// IncrementDatabaseErrors increments database error counter
func (pm *PrometheusMetrics) IncrementDatabaseErrors(operation, errorType string) {
	pm.dbErrors.WithLabelValues(operation, errorType).Inc()
}

// API Metrics Methods

// IncrementHTTPRequests increments HTTP request counter
func (pm *PrometheusMetrics) IncrementHTTPRequests(method, path, status string) {
	pm.httpRequests.WithLabelValues(method, path, status).Inc()
}

// RecordHTTPDuration records HTTP request duration
func (pm *PrometheusMetrics) RecordHTTPDuration(method, path string, duration time.Duration) {
	pm.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// IncrementHTTPErrors increments HTTP error counter
func (pm *PrometheusMetrics) IncrementHTTPErrors(method, path, errorType string) {
	pm.httpErrors.WithLabelValues(method, path, errorType).Inc()
}

// System Metrics Methods

// UpdateSystemMetrics updates all system metrics with current values
func (pm *PrometheusMetrics) UpdateSystemMetrics() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	pm.memoryUsage.Set(float64(memStats.Alloc))
	pm.goroutines.Set(float64(runtime.NumGoroutine()))
	pm.uptime.Set(time.Since(pm.startTime).Seconds())

	pm.lastUpdate = time.Now()
}

// Utility Methods

// GetUptime returns the application uptime
func (pm *PrometheusMetrics) GetUptime() time.Duration {
	return time.Since(pm.startTime)
}

// GetLastUpdate returns the last metrics update time
func (pm *PrometheusMetrics) GetLastUpdate() time.Time {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.lastUpdate
}

// StartPeriodicUpdates starts a goroutine that periodically updates system metrics
func (pm *PrometheusMetrics) StartPeriodicUpdates(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Update immediately
	pm.UpdateSystemMetrics()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pm.UpdateSystemMetrics()
		}
	}
}

// Global instance for easy access
var globalMetrics *PrometheusMetrics
var metricsOnce sync.Once

// GetGlobalMetrics returns the global Prometheus metrics instance
func GetGlobalMetrics() *PrometheusMetrics {
	metricsOnce.Do(func() {
		globalMetrics = NewPrometheusMetrics()
	})
	return globalMetrics
}
