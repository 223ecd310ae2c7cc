// Package metrics provides basic monitoring and metrics collection for sentinel.
// It supports counters, gauges, and histograms with label support for tracking
// application performance and operational metrics.
package metrics

import (
	"sync"
	"time"
)

// MetricType represents the type of metric.
type MetricType string

const (
	TypeCounter   MetricType = "counter"
	TypeGauge     MetricType = "gauge"
	TypeHistogram MetricType = "histogram"
)

// Labels represents key-value pairs for metric labels.
type Labels map[string]string

// Metric represents a single metric with its metadata.
type Metric struct {
	Name      string
	Type      MetricType
	Value     float64
	Labels    Labels
	Timestamp time.Time
}

// Registry holds all metrics and provides collection functionality.
type Registry struct {
	mu      sync.RWMutex
	metrics map[string]*Metric
	enabled bool
}

// NewRegistry creates a new metrics registry.
func NewRegistry() *Registry {
	return &Registry{
		metrics: make(map[string]*Metric),
		enabled: true,
	}
}

// SetEnabled enables or disables metrics collection.
func (r *Registry) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}

// IsEnabled returns whether metrics collection is enabled.
func (r *Registry) IsEnabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled
}

// Counter increments a counter metric.
func (r *Registry) Counter(name string, labels Labels) {
	r.Add(name, 1, labels)
}

// Add increases a counter metric by the given delta.
func (r *Registry) Add(name string, delta float64, labels Labels) {
	if !r.IsEnabled() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.makeKey(name, labels)
	if metric, exists := r.metrics[key]; exists {
		metric.Value += delta
		metric.Timestamp = time.Now()
	} else {
		r.metrics[key] = &Metric{
			Name:      name,
			Type:      TypeCounter,
			Value:     delta,
			Labels:    labels,
			Timestamp: time.Now(),
		}
	}
}

// Gauge sets a gauge metric value.
func (r *Registry) Gauge(name string, value float64, labels Labels) {
	if !r.IsEnabled() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.makeKey(name, labels)
	r.metrics[key] = &Metric{
		Name:      name,
		Type:      TypeGauge,
		Value:     value,
		Labels:    labels,
		Timestamp: time.Now(),
	}
}

// Histogram records a value in a histogram metric.
func (r *Registry) Histogram(name string, value float64, labels Labels) {
	if !r.IsEnabled() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.makeKey(name, labels)
	if metric, exists := r.metrics[key]; exists {
		// Simple histogram implementation - just track last value
		// Can be extended to proper buckets later
		metric.Value = value
		metric.Timestamp = time.Now()
	} else {
		r.metrics[key] = &Metric{
			Name:      name,
			Type:      TypeHistogram,
			Value:     value,
			Labels:    labels,
			Timestamp: time.Now(),
		}
	}
}

// GetMetrics returns a snapshot of all current metrics.
func (r *Registry) GetMetrics() map[string]*Metric {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*Metric)
	for key, metric := range r.metrics {
		// Create a copy to avoid race conditions
		result[key] = &Metric{
			Name:      metric.Name,
			Type:      metric.Type,
			Value:     metric.Value,
			Labels:    copyLabels(metric.Labels),
			Timestamp: metric.Timestamp,
		}
	}
	return result
}

// Reset clears all metrics.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics = make(map[string]*Metric)
}

// makeKey creates a unique key for a metric based on name and labels.
func (r *Registry) makeKey(name string, labels Labels) string {
	if len(labels) == 0 {
		return name
	}

	key := name
	for k, v := range labels {
		key += ":" + k + "=" + v
	}
	return key
}

// copyLabels creates a copy of labels map.
func copyLabels(labels Labels) Labels {
	if labels == nil {
		return nil
	}
	result := make(Labels)
	for k, v := range labels {
		result[k] = v
	}
	return result
}

// Global registry instance.
var defaultRegistry = NewRegistry()

// SetDefault sets the default metrics registry.
func SetDefault(registry *Registry) {
	defaultRegistry = registry
}

// Default returns the default metrics registry.
func Default() *Registry {
	return defaultRegistry
}

// SetEnabled enables or disables metrics collection on the default registry.
func SetEnabled(enabled bool) {
	defaultRegistry.SetEnabled(enabled)
}

// Counter increments a counter metric on the default registry.
func Counter(name string, labels Labels) {
	defaultRegistry.Counter(name, labels)
}

// Add increases a counter metric on the default registry.
func Add(name string, delta float64, labels Labels) {
	defaultRegistry.Add(name, delta, labels)
}

// Gauge sets a gauge metric on the default registry.
func Gauge(name string, value float64, labels Labels) {
	defaultRegistry.Gauge(name, value, labels)
}

// Histogram records a histogram value on the default registry.
func Histogram(name string, value float64, labels Labels) {
	defaultRegistry.Histogram(name, value, labels)
}

// GetMetrics returns all metrics from the default registry.
func GetMetrics() map[string]*Metric {
	return defaultRegistry.GetMetrics()
}

// Reset clears all metrics from the default registry.
func Reset() {
	defaultRegistry.Reset()
}

// Timer provides a simple way to measure execution time.
type Timer struct {
	start  time.Time
	name   string
	labels Labels
}

// NewTimer creates a new timer for measuring execution time.
func NewTimer(name string, labels Labels) *Timer {
	return &Timer{
		start:  time.Now(),
		name:   name,
		labels: labels,
	}
}

// Stop stops the timer and records the duration as a histogram.
func (t *Timer) Stop() {
	duration := time.Since(t.start)
	Histogram(t.name, duration.Seconds(), t.labels)
}

// Predefined metric names for common operations.
const (
	// Scan job metrics.
	MetricJobDuration          = "scan_job_duration_seconds"
	MetricJobsTotal            = "scan_jobs_total"
	MetricJobErrors            = "scan_job_errors_total"
	MetricJobsActive           = "scan_jobs_active"
	MetricDevicesDiscovered    = "devices_discovered_total"
	MetricVulnerabilitiesFound = "vulnerabilities_found_total"
	MetricPortsScanned         = "ports_scanned_total"

	// Discovery metrics.
	MetricDiscoveryDuration = "discovery_duration_seconds"
	MetricDiscoveryErrors   = "discovery_errors_total"
	MetricHostsDiscovered   = "hosts_discovered_total"

	// Profiling metrics.
	MetricProfileDuration = "profile_duration_seconds"
	MetricProfileErrors   = "profile_errors_total"

	// Scheduler metrics.
	MetricSegmentRescans = "segment_rescans_total"

	// Database metrics.
	MetricDatabaseQueries     = "database_queries_total"
	MetricDatabaseErrors      = "database_errors_total"
	MetricDatabaseDuration    = "database_query_duration_seconds"
	MetricDatabaseConnections = "database_connections_active"

	// System metrics.
	MetricMemoryUsage = "memory_usage_bytes"
	MetricGoroutines  = "goroutines_active"
	MetricUptime      = "uptime_seconds"
)

// Common label keys.
const (
	LabelJobKind    = "job_kind"
	LabelTarget     = "target"
	LabelNetwork    = "network"
	LabelMethod     = "method"
	LabelStatus     = "status"
	LabelOperation  = "operation"
	LabelError      = "error"
	LabelComponent  = "component"
	LabelDeviceType = "device_type"
	LabelSeverity   = "severity"
)

// Helper functions for common metrics

// RecordJobDuration records the duration of a scan job.
func RecordJobDuration(kind, target string, duration time.Duration) {
	Histogram(MetricJobDuration, duration.Seconds(), Labels{
		LabelJobKind: kind,
		LabelTarget:  target,
	})
}

// IncrementJobsTotal increments the total job counter.
func IncrementJobsTotal(kind, status string) {
	Counter(MetricJobsTotal, Labels{
		LabelJobKind: kind,
		LabelStatus:  status,
	})
}

// IncrementJobErrors increments the job error counter.
func IncrementJobErrors(kind, target, errorType string) {
	Counter(MetricJobErrors, Labels{
		LabelJobKind: kind,
		LabelTarget:  target,
		LabelError:   errorType,
	})
}

// AddDevicesDiscovered adds to the discovered device counter.
func AddDevicesDiscovered(kind string, count int) {
	Add(MetricDevicesDiscovered, float64(count), Labels{
		LabelJobKind: kind,
	})
}

// AddVulnerabilitiesFound adds to the vulnerability finding counter.
func AddVulnerabilitiesFound(severity string, count int) {
	Add(MetricVulnerabilitiesFound, float64(count), Labels{
		LabelSeverity: severity,
	})
}

// RecordDiscoveryDuration records the duration of a discovery operation.
func RecordDiscoveryDuration(network, method string, duration time.Duration) {
	Histogram(MetricDiscoveryDuration, duration.Seconds(), Labels{
		LabelNetwork: network,
		LabelMethod:  method,
	})
}

// IncrementHostsDiscovered adds to the hosts discovered counter.
func IncrementHostsDiscovered(network, method string, count int) {
	Add(MetricHostsDiscovered, float64(count), Labels{
		LabelNetwork: network,
		LabelMethod:  method,
	})
}

// RecordProfileDuration records the duration of a device profiling pass.
func RecordProfileDuration(address string, duration time.Duration) {
	Histogram(MetricProfileDuration, duration.Seconds(), Labels{
		LabelTarget: address,
	})
}

// IncrementSegmentRescans counts scheduled segment rescans by outcome.
func IncrementSegmentRescans(status string) {
	Counter(MetricSegmentRescans, Labels{
		LabelStatus: status,
	})
}

// RecordDatabaseQuery records database query metrics.
func RecordDatabaseQuery(operation string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}

	Counter(MetricDatabaseQueries, Labels{
		LabelOperation: operation,
		LabelStatus:    status,
	})

	Histogram(MetricDatabaseDuration, duration.Seconds(), Labels{
		LabelOperation: operation,
	})
}

// SetActiveConnections sets the number of active database connections.
func SetActiveConnections(count int) {
	Gauge(MetricDatabaseConnections, float64(count), nil)
}

// SetActiveJobs sets the number of jobs currently running.
func SetActiveJobs(count int) {
	Gauge(MetricJobsActive, float64(count), nil)
}
