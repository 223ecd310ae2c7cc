// Package db provides database connectivity and data models for sentinel.
// It handles database migrations, device and vulnerability storage, scan
// job state, and provides the core data access layer for the application.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sentinelsec/sentinel/internal/errors"
)

// sanitizeDBError converts raw database errors into safe, sanitized errors
// that don't expose internal SQL details or credentials to API clients.
// The original error is preserved in the Cause field for internal debugging.
func sanitizeDBError(operation string, err error) error {
	if err == nil {
		return nil
	}

	// Handle specific known database errors
	if err == sql.ErrNoRows {
		return errors.NewDatabaseError(errors.CodeNotFound, "Resource not found")
	}

	// Check for PostgreSQL-specific errors
	if pqErr, ok := err.(*pq.Error); ok {
		var dbErr *errors.DatabaseError
		switch pqErr.Code {
		case "23505": // unique_violation
			dbErr = errors.NewDatabaseError(errors.CodeConflict, "Resource already exists")
		case "23503": // foreign_key_violation
			dbErr = errors.NewDatabaseError(errors.CodeValidation, "Referenced resource does not exist")
		case "23502": // not_null_violation
			dbErr = errors.NewDatabaseError(errors.CodeValidation, "Required field is missing")
		case "23514": // check_violation
			dbErr = errors.NewDatabaseError(errors.CodeValidation, "Data validation failed")
		case "57014": // query_canceled
			dbErr = errors.NewDatabaseError(errors.CodeCanceled, "Database operation was canceled")
		case "57P01": // admin_shutdown
			dbErr = errors.NewDatabaseError(errors.CodeDatabaseConnection, "Database connection lost")
		case "08000", "08003", "08006": // connection errors
			dbErr = errors.NewDatabaseError(errors.CodeDatabaseConnection, "Database connection error")
		default:
			// Unknown PostgreSQL error - use generic sanitized error
			msg := fmt.Sprintf("Database operation failed: %s", operation)
			dbErr = errors.NewDatabaseError(errors.CodeDatabaseQuery, msg)
		}
		// Preserve original error for internal logging
		dbErr.Operation = operation
		dbErr.Cause = err
		return dbErr
	}

	// For all other errors, return a generic sanitized error without details
	dbErr := errors.NewDatabaseError(errors.CodeDatabaseQuery, fmt.Sprintf("Database operation failed: %s", operation))
	dbErr.Operation = operation
	// Store the original error as Cause for internal logging, but it won't be exposed to API
	dbErr.Cause = err
	return dbErr
}

const (
	// Default database configuration values.
	defaultPostgresPort    = 5432
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5
	defaultConnMaxIdleTime = 5
)

// DB wraps sqlx.DB with additional functionality.
type DB struct {
	*sqlx.DB
}

// Config holds database configuration.
type Config struct {
	Host            string        `yaml:"host" json:"host"`
	Port            int           `yaml:"port" json:"port"`
	Database        string        `yaml:"database" json:"database"`
	Username        string        `yaml:"username" json:"username"`
	Password        string        `yaml:"password" json:"password"`
	SSLMode         string        `yaml:"ssl_mode" json:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" json:"conn_max_idle_time"`
}

// DefaultConfig returns the default database configuration.
// Database name, username, and password must be explicitly configured.
func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            defaultPostgresPort,
		Database:        "", // Must be configured
		Username:        "", // Must be configured
		Password:        "", // Must be configured
		SSLMode:         "disable",
		MaxOpenConns:    defaultMaxOpenConns,
		MaxIdleConns:    defaultMaxIdleConns,
		ConnMaxLifetime: defaultConnMaxLifetime * time.Minute,
		ConnMaxIdleTime: defaultConnMaxIdleTime * time.Minute,
	}
}

// Connect establishes a connection to PostgreSQL.
// Returns sanitized errors that don't leak credentials or DSN details.
func Connect(ctx context.Context, config *Config) (*DB, error) {
	// Build DSN - PostgreSQL lib/pq handles special characters in values correctly
	// when using key=value format (values with spaces/special chars are auto-escaped)
	dsn := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		config.Host, config.Port, config.Database,
		config.Username, config.Password, config.SSLMode,
	)

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		// Return sanitized error without DSN to prevent credential leakage in logs
		return nil, errors.ErrDatabaseConnection(err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		// Close the connection before returning error
		if closeErr := db.Close(); closeErr != nil {
			// Don't log raw error - it might contain connection details
			log.Printf("Failed to close database connection after ping failure")
		}
		return nil, errors.WrapDatabaseError(errors.CodeDatabaseConnection, "Failed to verify database connection", err)
	}

	// Log success without credentials - only safe connection details
	log.Printf("Successfully connected to database at %s:%d/%s", config.Host, config.Port, config.Database)
	return &DB{DB: db}, nil
}

// Store bundles all repositories over one connection.
type Store struct {
	Devices         *DeviceRepository
	Vulnerabilities *VulnerabilityRepository
	Jobs            *ScanJobRepository
	Alerts          *ThreatAlertRepository
	Segments        *NetworkSegmentRepository
	Stats           *StatsRepository
}

// NewStore creates the repository bundle.
func NewStore(db *DB) *Store {
	return &Store{
		Devices:         NewDeviceRepository(db),
		Vulnerabilities: NewVulnerabilityRepository(db),
		Jobs:            NewScanJobRepository(db),
		Alerts:          NewThreatAlertRepository(db),
		Segments:        NewNetworkSegmentRepository(db),
		Stats:           NewStatsRepository(db),
	}
}

// filterCondition represents a single filter condition.
type filterCondition struct {
	column string
	value  interface{}
}

// buildWhereClause creates WHERE clause and args from conditions.
func buildWhereClause(conditions []filterCondition) (whereClause string, args []interface{}) {
	if len(conditions) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(conditions))
	for i, condition := range conditions {
		clauses = append(clauses, fmt.Sprintf("%s = $%d", condition.column, i+1))
		args = append(args, condition.value)
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// closeRows closes a row set, logging failures.
func closeRows(rows *sqlx.Rows) {
	if err := rows.Close(); err != nil {
		log.Printf("Failed to close rows: %v", err)
	}
}

// DeviceRepository handles device operations.
type DeviceRepository struct {
	db *DB
}

// NewDeviceRepository creates a new device repository.
func NewDeviceRepository(db *DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// CreateOrUpdate upserts a device keyed by IP address. A rediscovered
// device keeps its identity and first_discovered timestamp; the open
// port list, service map, and classification are replaced, optional
// identity fields only overwrite when the new profile supplied them.
// The device's ID and timestamps are rewritten from the stored row.
func (r *DeviceRepository) CreateOrUpdate(ctx context.Context, device *Device) error {
	query := `
		INSERT INTO devices (
			id, ip_address, mac_address, hostname, device_type,
			os_name, os_version, vendor, open_ports, services,
			discovered_by, metadata, is_active
		)
		VALUES (
			:id, :ip_address, :mac_address, :hostname, :device_type,
			:os_name, :os_version, :vendor, :open_ports, :services,
			:discovered_by, :metadata, :is_active
		)
		ON CONFLICT (ip_address)
		DO UPDATE SET
			mac_address = COALESCE(EXCLUDED.mac_address, devices.mac_address),
			hostname = COALESCE(EXCLUDED.hostname, devices.hostname),
			device_type = EXCLUDED.device_type,
			os_name = COALESCE(EXCLUDED.os_name, devices.os_name),
			os_version = COALESCE(EXCLUDED.os_version, devices.os_version),
			vendor = COALESCE(EXCLUDED.vendor, devices.vendor),
			open_ports = EXCLUDED.open_ports,
			services = EXCLUDED.services,
			discovered_by = EXCLUDED.discovered_by,
			metadata = COALESCE(EXCLUDED.metadata, devices.metadata),
			is_active = EXCLUDED.is_active,
			last_seen = NOW(),
			updated_at = NOW()
		RETURNING id, first_discovered, last_seen, created_at, updated_at`

	if device.ID == uuid.Nil {
		device.ID = uuid.New()
	}

	rows, err := r.db.NamedQueryContext(ctx, query, device)
	if err != nil {
		return sanitizeDBError("create or update device", err)
	}
	defer closeRows(rows)

	if rows.Next() {
		if err := rows.Scan(
			&device.ID, &device.FirstDiscovered, &device.LastSeen,
			&device.CreatedAt, &device.UpdatedAt,
		); err != nil {
			return sanitizeDBError("scan created/updated device", err)
		}
	}

	return nil
}

// GetByID retrieves a device by ID.
func (r *DeviceRepository) GetByID(ctx context.Context, id uuid.UUID) (*Device, error) {
	var device Device
	query := `SELECT * FROM devices WHERE id = $1`

	if err := r.db.GetContext(ctx, &device, query, id); err != nil {
		return nil, sanitizeDBError("get device", err)
	}

	return &device, nil
}

// GetByIP retrieves a device by IP address.
func (r *DeviceRepository) GetByIP(ctx context.Context, ip IPAddr) (*Device, error) {
	var device Device
	query := `SELECT * FROM devices WHERE ip_address = $1`

	if err := r.db.GetContext(ctx, &device, query, ip); err != nil {
		return nil, sanitizeDBError("get device by ip", err)
	}

	return &device, nil
}

// GetActive retrieves every active device ordered by IP address.
func (r *DeviceRepository) GetActive(ctx context.Context) ([]*Device, error) {
	var devices []*Device
	query := `SELECT * FROM devices WHERE is_active = true ORDER BY ip_address`

	if err := r.db.SelectContext(ctx, &devices, query); err != nil {
		return nil, sanitizeDBError("get active devices", err)
	}

	return devices, nil
}

// DeviceFilters represents filters for listing devices.
type DeviceFilters struct {
	DeviceType string
	IsActive   *bool
}

// List retrieves devices with filtering and pagination.
func (r *DeviceRepository) List(ctx context.Context, filters DeviceFilters, offset, limit int) ([]*Device, int64, error) {
	var conditions []filterCondition
	if filters.DeviceType != "" {
		conditions = append(conditions, filterCondition{"device_type", filters.DeviceType})
	}
	if filters.IsActive != nil {
		conditions = append(conditions, filterCondition{"is_active", *filters.IsActive})
	}

	whereClause, args := buildWhereClause(conditions)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM devices %s`, whereClause)
	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, sanitizeDBError("count devices", err)
	}

	argIndex := len(args)
	listQuery := fmt.Sprintf(`SELECT * FROM devices %s ORDER BY ip_address LIMIT $%d OFFSET $%d`,
		whereClause, argIndex+1, argIndex+2)
	args = append(args, limit, offset)

	var devices []*Device
	if err := r.db.SelectContext(ctx, &devices, listQuery, args...); err != nil {
		return nil, 0, sanitizeDBError("list devices", err)
	}

	return devices, total, nil
}

// MarkInactiveSince deactivates devices not seen since the cutoff and
// returns how many rows changed.
func (r *DeviceRepository) MarkInactiveSince(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `UPDATE devices SET is_active = false, updated_at = NOW()
		WHERE is_active = true AND last_seen < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, sanitizeDBError("mark devices inactive", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, sanitizeDBError("get rows affected", err)
	}

	return affected, nil
}

// CountByType returns the number of devices per classification.
func (r *DeviceRepository) CountByType(ctx context.Context) (map[string]int, error) {
	query := `SELECT device_type, COUNT(*) AS count FROM devices GROUP BY device_type`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, sanitizeDBError("count devices by type", err)
	}
	defer closeRows(rows)

	counts := make(map[string]int)
	for rows.Next() {
		var deviceType string
		var count int
		if err := rows.Scan(&deviceType, &count); err != nil {
			return nil, sanitizeDBError("scan device type count", err)
		}
		counts[deviceType] = count
	}
	if err := rows.Err(); err != nil {
		return nil, sanitizeDBError("iterate device type counts", err)
	}

	return counts, nil
}

// CountInNetwork returns the number of devices whose address falls
// inside the given network.
func (r *DeviceRepository) CountInNetwork(ctx context.Context, network NetworkAddr) (int, error) {
	query := `SELECT COUNT(*) FROM devices WHERE ip_address << $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, network).Scan(&count); err != nil {
		return 0, sanitizeDBError("count devices in network", err)
	}

	return count, nil
}

// Delete deletes a device and its findings.
func (r *DeviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM devices WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return sanitizeDBError("delete device", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return sanitizeDBError("get rows affected", err)
	}

	if rowsAffected == 0 {
		return errors.NewDatabaseError(errors.CodeNotFound, "Device not found")
	}

	return nil
}

// VulnerabilityRepository handles vulnerability operations.
type VulnerabilityRepository struct {
	db *DB
}

// NewVulnerabilityRepository creates a new vulnerability repository.
func NewVulnerabilityRepository(db *DB) *VulnerabilityRepository {
	return &VulnerabilityRepository{db: db}
}

// CreateIfAbsent inserts a finding unless a row with the same device,
// title, and port already exists. Returns whether a row was inserted.
func (r *VulnerabilityRepository) CreateIfAbsent(ctx context.Context, vuln *Vulnerability) (bool, error) {
	query := `
		INSERT INTO vulnerabilities (
			id, device_id, cve_id, title, description, severity,
			cvss_score, affected_service, port, solution, refs,
			is_resolved, ai_analysis
		)
		VALUES (
			:id, :device_id, :cve_id, :title, :description, :severity,
			:cvss_score, :affected_service, :port, :solution, :refs,
			:is_resolved, :ai_analysis
		)
		ON CONFLICT (device_id, title, COALESCE(port, -1)) DO NOTHING
		RETURNING id, discovered_at`

	if vuln.ID == uuid.Nil {
		vuln.ID = uuid.New()
	}
	if vuln.References == nil {
		vuln.References = pq.StringArray{}
	}

	rows, err := r.db.NamedQueryContext(ctx, query, vuln)
	if err != nil {
		return false, sanitizeDBError("create vulnerability", err)
	}
	defer closeRows(rows)

	if rows.Next() {
		if err := rows.Scan(&vuln.ID, &vuln.DiscoveredAt); err != nil {
			return false, sanitizeDBError("scan created vulnerability", err)
		}
		return true, nil
	}

	// Conflict: the finding already exists for this device/title/port
	return false, nil
}

// GetByID retrieves a vulnerability by ID.
func (r *VulnerabilityRepository) GetByID(ctx context.Context, id uuid.UUID) (*Vulnerability, error) {
	var vuln Vulnerability
	query := `SELECT * FROM vulnerabilities WHERE id = $1`

	if err := r.db.GetContext(ctx, &vuln, query, id); err != nil {
		return nil, sanitizeDBError("get vulnerability", err)
	}

	return &vuln, nil
}

// GetByDevice retrieves all findings for a device, most severe first.
func (r *VulnerabilityRepository) GetByDevice(ctx context.Context, deviceID uuid.UUID) ([]*Vulnerability, error) {
	var vulns []*Vulnerability
	query := `SELECT * FROM vulnerabilities WHERE device_id = $1
		ORDER BY CASE severity
			WHEN 'critical' THEN 5
			WHEN 'high' THEN 4
			WHEN 'medium' THEN 3
			WHEN 'low' THEN 2
			ELSE 1
		END DESC, discovered_at DESC`

	if err := r.db.SelectContext(ctx, &vulns, query, deviceID); err != nil {
		return nil, sanitizeDBError("get device vulnerabilities", err)
	}

	return vulns, nil
}

// VulnerabilityFilters represents filters for listing vulnerabilities.
type VulnerabilityFilters struct {
	Severity string
	DeviceID *uuid.UUID
	Resolved *bool
}

// List retrieves vulnerabilities with filtering and pagination.
func (r *VulnerabilityRepository) List(
	ctx context.Context, filters VulnerabilityFilters, offset, limit int,
) ([]*Vulnerability, int64, error) {
	var conditions []filterCondition
	if filters.Severity != "" {
		conditions = append(conditions, filterCondition{"severity", filters.Severity})
	}
	if filters.DeviceID != nil {
		conditions = append(conditions, filterCondition{"device_id", *filters.DeviceID})
	}
	if filters.Resolved != nil {
		conditions = append(conditions, filterCondition{"is_resolved", *filters.Resolved})
	}

	whereClause, args := buildWhereClause(conditions)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM vulnerabilities %s`, whereClause)
	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, sanitizeDBError("count vulnerabilities", err)
	}

	argIndex := len(args)
	listQuery := fmt.Sprintf(`SELECT * FROM vulnerabilities %s
		ORDER BY discovered_at DESC LIMIT $%d OFFSET $%d`,
		whereClause, argIndex+1, argIndex+2)
	args = append(args, limit, offset)

	var vulns []*Vulnerability
	if err := r.db.SelectContext(ctx, &vulns, listQuery, args...); err != nil {
		return nil, 0, sanitizeDBError("list vulnerabilities", err)
	}

	return vulns, total, nil
}

// Resolve marks a vulnerability as resolved.
func (r *VulnerabilityRepository) Resolve(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE vulnerabilities SET is_resolved = true WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return sanitizeDBError("resolve vulnerability", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return sanitizeDBError("get rows affected", err)
	}

	if rowsAffected == 0 {
		return errors.NewDatabaseError(errors.CodeNotFound, "Vulnerability not found")
	}

	return nil
}

// SetAnalysis stores the AI analysis text for a finding.
func (r *VulnerabilityRepository) SetAnalysis(ctx context.Context, id uuid.UUID, analysis string) error {
	query := `UPDATE vulnerabilities SET ai_analysis = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, analysis, id)
	if err != nil {
		return sanitizeDBError("set vulnerability analysis", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return sanitizeDBError("get rows affected", err)
	}

	if rowsAffected == 0 {
		return errors.NewDatabaseError(errors.CodeNotFound, "Vulnerability not found")
	}

	return nil
}

// CountBySeverity returns open finding counts per severity.
func (r *VulnerabilityRepository) CountBySeverity(ctx context.Context) (map[string]int, error) {
	query := `SELECT severity, COUNT(*) AS count FROM vulnerabilities GROUP BY severity`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, sanitizeDBError("count vulnerabilities by severity", err)
	}
	defer closeRows(rows)

	counts := make(map[string]int)
	for rows.Next() {
		var severity string
		var count int
		if err := rows.Scan(&severity, &count); err != nil {
			return nil, sanitizeDBError("scan severity count", err)
		}
		counts[severity] = count
	}
	if err := rows.Err(); err != nil {
		return nil, sanitizeDBError("iterate severity counts", err)
	}

	return counts, nil
}

// ScanJobRepository handles scan job operations.
type ScanJobRepository struct {
	db *DB
}

// NewScanJobRepository creates a new scan job repository.
func NewScanJobRepository(db *DB) *ScanJobRepository {
	return &ScanJobRepository{db: db}
}

// Create creates a new scan job in pending state.
func (r *ScanJobRepository) Create(ctx context.Context, job *ScanJob) error {
	query := `
		INSERT INTO scan_jobs (id, kind, target, status, created_by)
		VALUES (:id, :kind, :target, :status, :created_by)
		RETURNING created_at`

	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = ScanJobStatusPending
	}

	rows, err := r.db.NamedQueryContext(ctx, query, job)
	if err != nil {
		return sanitizeDBError("create scan job", err)
	}
	defer closeRows(rows)

	if rows.Next() {
		if err := rows.Scan(&job.CreatedAt); err != nil {
			return sanitizeDBError("scan created scan job", err)
		}
	}

	return nil
}

// GetByID retrieves a scan job by ID.
func (r *ScanJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*ScanJob, error) {
	var job ScanJob
	query := `SELECT * FROM scan_jobs WHERE id = $1`

	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, sanitizeDBError("get scan job", err)
	}

	return &job, nil
}

// ScanJobFilters represents filters for listing scan jobs.
type ScanJobFilters struct {
	Status string
	Kind   string
}

// List retrieves scan jobs with filtering and pagination, newest first.
func (r *ScanJobRepository) List(ctx context.Context, filters ScanJobFilters, offset, limit int) ([]*ScanJob, int64, error) {
	var conditions []filterCondition
	if filters.Status != "" {
		conditions = append(conditions, filterCondition{"status", filters.Status})
	}
	if filters.Kind != "" {
		conditions = append(conditions, filterCondition{"kind", filters.Kind})
	}

	whereClause, args := buildWhereClause(conditions)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM scan_jobs %s`, whereClause)
	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, sanitizeDBError("count scan jobs", err)
	}

	argIndex := len(args)
	listQuery := fmt.Sprintf(`SELECT * FROM scan_jobs %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		whereClause, argIndex+1, argIndex+2)
	args = append(args, limit, offset)

	var jobs []*ScanJob
	if err := r.db.SelectContext(ctx, &jobs, listQuery, args...); err != nil {
		return nil, 0, sanitizeDBError("list scan jobs", err)
	}

	return jobs, total, nil
}

// UpdateStatus transitions a scan job. Moving to running stamps
// started_at; reaching a terminal state stamps completed_at and the
// wall-clock duration. The error message is persisted for failures.
func (r *ScanJobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, errorMsg *string) error {
	var query string
	var args []interface{}

	switch status {
	case ScanJobStatusRunning:
		query = `UPDATE scan_jobs SET status = $1, started_at = NOW() WHERE id = $2`
		args = []interface{}{status, id}
	case ScanJobStatusCompleted, ScanJobStatusFailed, ScanJobStatusCancelled:
		if errorMsg != nil {
			query = `UPDATE scan_jobs SET status = $1, completed_at = NOW(),
				duration_seconds = EXTRACT(EPOCH FROM (NOW() - started_at)),
				error_message = $2 WHERE id = $3`
			args = []interface{}{status, *errorMsg, id}
		} else {
			query = `UPDATE scan_jobs SET status = $1, completed_at = NOW(),
				duration_seconds = EXTRACT(EPOCH FROM (NOW() - started_at))
				WHERE id = $2`
			args = []interface{}{status, id}
		}
	default:
		query = `UPDATE scan_jobs SET status = $1 WHERE id = $2`
		args = []interface{}{status, id}
	}

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return sanitizeDBError("update scan job status", err)
	}

	return nil
}

// SaveResults persists job counters, result metadata, and the optional
// AI summary without touching lifecycle fields.
func (r *ScanJobRepository) SaveResults(ctx context.Context, job *ScanJob) error {
	query := `UPDATE scan_jobs SET
		devices_discovered = :devices_discovered,
		vulnerabilities_found = :vulnerabilities_found,
		ports_scanned = :ports_scanned,
		results = :results,
		ai_summary = :ai_summary
		WHERE id = :id`

	_, err := r.db.NamedExecContext(ctx, query, job)
	if err != nil {
		return sanitizeDBError("save scan job results", err)
	}

	return nil
}

// CountCreatedSince returns how many jobs were created at or after t.
func (r *ScanJobRepository) CountCreatedSince(ctx context.Context, t time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM scan_jobs WHERE created_at >= $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, t).Scan(&count); err != nil {
		return 0, sanitizeDBError("count scan jobs", err)
	}

	return count, nil
}

// LastCompleted returns the completion time of the most recent
// completed job, or nil when no job has completed.
func (r *ScanJobRepository) LastCompleted(ctx context.Context) (*time.Time, error) {
	query := `SELECT MAX(completed_at) FROM scan_jobs WHERE status = $1`

	var last sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, ScanJobStatusCompleted).Scan(&last); err != nil {
		return nil, sanitizeDBError("get last completed scan", err)
	}
	if !last.Valid {
		return nil, nil
	}

	return &last.Time, nil
}

// ThreatAlertRepository handles threat alert operations.
type ThreatAlertRepository struct {
	db *DB
}

// NewThreatAlertRepository creates a new threat alert repository.
func NewThreatAlertRepository(db *DB) *ThreatAlertRepository {
	return &ThreatAlertRepository{db: db}
}

// Create creates a new threat alert.
func (r *ThreatAlertRepository) Create(ctx context.Context, alert *ThreatAlert) error {
	query := `
		INSERT INTO threat_alerts (
			id, title, description, threat_level, device_id,
			vulnerability_id, source_ip, target_ip, attack_type,
			is_acknowledged, is_resolved, ai_recommendation
		)
		VALUES (
			:id, :title, :description, :threat_level, :device_id,
			:vulnerability_id, :source_ip, :target_ip, :attack_type,
			:is_acknowledged, :is_resolved, :ai_recommendation
		)
		RETURNING detected_at`

	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}

	rows, err := r.db.NamedQueryContext(ctx, query, alert)
	if err != nil {
		return sanitizeDBError("create threat alert", err)
	}
	defer closeRows(rows)

	if rows.Next() {
		if err := rows.Scan(&alert.DetectedAt); err != nil {
			return sanitizeDBError("scan created threat alert", err)
		}
	}

	return nil
}

// GetByID retrieves a threat alert by ID.
func (r *ThreatAlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*ThreatAlert, error) {
	var alert ThreatAlert
	query := `SELECT * FROM threat_alerts WHERE id = $1`

	if err := r.db.GetContext(ctx, &alert, query, id); err != nil {
		return nil, sanitizeDBError("get threat alert", err)
	}

	return &alert, nil
}

// ThreatAlertFilters represents filters for listing alerts.
type ThreatAlertFilters struct {
	ThreatLevel string
	Resolved    *bool
}

// List retrieves threat alerts with filtering and pagination.
func (r *ThreatAlertRepository) List(
	ctx context.Context, filters ThreatAlertFilters, offset, limit int,
) ([]*ThreatAlert, int64, error) {
	var conditions []filterCondition
	if filters.ThreatLevel != "" {
		conditions = append(conditions, filterCondition{"threat_level", filters.ThreatLevel})
	}
	if filters.Resolved != nil {
		conditions = append(conditions, filterCondition{"is_resolved", *filters.Resolved})
	}

	whereClause, args := buildWhereClause(conditions)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM threat_alerts %s`, whereClause)
	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, sanitizeDBError("count threat alerts", err)
	}

	argIndex := len(args)
	listQuery := fmt.Sprintf(`SELECT * FROM threat_alerts %s ORDER BY detected_at DESC LIMIT $%d OFFSET $%d`,
		whereClause, argIndex+1, argIndex+2)
	args = append(args, limit, offset)

	var alerts []*ThreatAlert
	if err := r.db.SelectContext(ctx, &alerts, listQuery, args...); err != nil {
		return nil, 0, sanitizeDBError("list threat alerts", err)
	}

	return alerts, total, nil
}

// Acknowledge marks an alert as acknowledged.
func (r *ThreatAlertRepository) Acknowledge(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE threat_alerts SET is_acknowledged = true WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return sanitizeDBError("acknowledge threat alert", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return sanitizeDBError("get rows affected", err)
	}

	if rowsAffected == 0 {
		return errors.NewDatabaseError(errors.CodeNotFound, "Threat alert not found")
	}

	return nil
}

// Resolve marks an alert as resolved and stamps the resolution time.
func (r *ThreatAlertRepository) Resolve(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE threat_alerts SET is_resolved = true, resolved_at = NOW() WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return sanitizeDBError("resolve threat alert", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return sanitizeDBError("get rows affected", err)
	}

	if rowsAffected == 0 {
		return errors.NewDatabaseError(errors.CodeNotFound, "Threat alert not found")
	}

	return nil
}

// SetRecommendation stores the AI recommendation text for an alert.
func (r *ThreatAlertRepository) SetRecommendation(ctx context.Context, id uuid.UUID, recommendation string) error {
	query := `UPDATE threat_alerts SET ai_recommendation = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, recommendation, id)
	if err != nil {
		return sanitizeDBError("set alert recommendation", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return sanitizeDBError("get rows affected", err)
	}

	if rowsAffected == 0 {
		return errors.NewDatabaseError(errors.CodeNotFound, "Threat alert not found")
	}

	return nil
}

// NetworkSegmentRepository handles network segment operations.
type NetworkSegmentRepository struct {
	db *DB
}

// NewNetworkSegmentRepository creates a new network segment repository.
func NewNetworkSegmentRepository(db *DB) *NetworkSegmentRepository {
	return &NetworkSegmentRepository{db: db}
}

// Create creates a new network segment.
func (r *NetworkSegmentRepository) Create(ctx context.Context, segment *NetworkSegment) error {
	query := `
		INSERT INTO network_segments (
			id, name, cidr, description, device_count,
			scan_frequency_hours, is_monitored
		)
		VALUES (
			:id, :name, :cidr, :description, :device_count,
			:scan_frequency_hours, :is_monitored
		)
		RETURNING created_at`

	if segment.ID == uuid.Nil {
		segment.ID = uuid.New()
	}

	rows, err := r.db.NamedQueryContext(ctx, query, segment)
	if err != nil {
		return sanitizeDBError("create network segment", err)
	}
	defer closeRows(rows)

	if rows.Next() {
		if err := rows.Scan(&segment.CreatedAt); err != nil {
			return sanitizeDBError("scan created network segment", err)
		}
	}

	return nil
}

// GetByID retrieves a network segment by ID.
func (r *NetworkSegmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*NetworkSegment, error) {
	var segment NetworkSegment
	query := `SELECT * FROM network_segments WHERE id = $1`

	if err := r.db.GetContext(ctx, &segment, query, id); err != nil {
		return nil, sanitizeDBError("get network segment", err)
	}

	return &segment, nil
}

// GetAll retrieves all network segments.
func (r *NetworkSegmentRepository) GetAll(ctx context.Context) ([]*NetworkSegment, error) {
	var segments []*NetworkSegment
	query := `SELECT * FROM network_segments ORDER BY name`

	if err := r.db.SelectContext(ctx, &segments, query); err != nil {
		return nil, sanitizeDBError("get network segments", err)
	}

	return segments, nil
}

// GetMonitored retrieves segments eligible for scheduled rescans.
func (r *NetworkSegmentRepository) GetMonitored(ctx context.Context) ([]*NetworkSegment, error) {
	var segments []*NetworkSegment
	query := `SELECT * FROM network_segments WHERE is_monitored = true ORDER BY name`

	if err := r.db.SelectContext(ctx, &segments, query); err != nil {
		return nil, sanitizeDBError("get monitored segments", err)
	}

	return segments, nil
}

// Update updates a network segment.
func (r *NetworkSegmentRepository) Update(ctx context.Context, segment *NetworkSegment) error {
	query := `
		UPDATE network_segments
		SET name = :name, cidr = :cidr, description = :description,
		    scan_frequency_hours = :scan_frequency_hours, is_monitored = :is_monitored
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, segment)
	if err != nil {
		return sanitizeDBError("update network segment", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return sanitizeDBError("get rows affected", err)
	}

	if rowsAffected == 0 {
		return errors.NewDatabaseError(errors.CodeNotFound, "Network segment not found")
	}

	return nil
}

// RecordScan stamps the segment's last scan time and device count.
func (r *NetworkSegmentRepository) RecordScan(ctx context.Context, id uuid.UUID, deviceCount int) error {
	query := `UPDATE network_segments SET last_scanned = NOW(), device_count = $1 WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, deviceCount, id)
	if err != nil {
		return sanitizeDBError("record segment scan", err)
	}

	return nil
}

// Delete deletes a network segment.
func (r *NetworkSegmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM network_segments WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return sanitizeDBError("delete network segment", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return sanitizeDBError("get rows affected", err)
	}

	if rowsAffected == 0 {
		return errors.NewDatabaseError(errors.CodeNotFound, "Network segment not found")
	}

	return nil
}

// StatsRepository aggregates dashboard and reporting queries.
type StatsRepository struct {
	db *DB
}

// NewStatsRepository creates a new stats repository.
func NewStatsRepository(db *DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetDashboardStats collects the dashboard counters in one pass.
func (r *StatsRepository) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{
		ThreatLevelDistribution: make(map[string]int),
		DeviceTypeDistribution:  make(map[string]int),
	}

	query := `
		SELECT
			(SELECT COUNT(*) FROM devices) AS total_devices,
			(SELECT COUNT(*) FROM devices WHERE is_active = true) AS active_devices,
			(SELECT COUNT(*) FROM vulnerabilities) AS total_vulnerabilities,
			(SELECT COUNT(*) FROM vulnerabilities WHERE severity = 'critical' AND is_resolved = false)
				AS critical_vulnerabilities,
			(SELECT COUNT(*) FROM threat_alerts) AS total_alerts,
			(SELECT COUNT(*) FROM threat_alerts WHERE is_resolved = false) AS unresolved_alerts,
			(SELECT COUNT(*) FROM scan_jobs WHERE created_at >= date_trunc('day', NOW())) AS scans_today,
			(SELECT COUNT(*) FROM network_segments) AS network_segments,
			(SELECT MAX(completed_at) FROM scan_jobs WHERE status = 'completed') AS last_scan`

	var lastScan sql.NullTime
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalDevices,
		&stats.ActiveDevices,
		&stats.TotalVulnerabilities,
		&stats.CriticalVulnerabilities,
		&stats.TotalAlerts,
		&stats.UnresolvedAlerts,
		&stats.ScansToday,
		&stats.NetworkSegments,
		&lastScan,
	)
	if err != nil {
		return nil, sanitizeDBError("get dashboard stats", err)
	}
	if lastScan.Valid {
		stats.LastScan = &lastScan.Time
	}

	vulnCounts, err := NewVulnerabilityRepository(r.db).CountBySeverity(ctx)
	if err != nil {
		return nil, err
	}
	stats.ThreatLevelDistribution = vulnCounts

	typeCounts, err := NewDeviceRepository(r.db).CountByType(ctx)
	if err != nil {
		return nil, err
	}
	stats.DeviceTypeDistribution = typeCounts

	return stats, nil
}

// NetworkStatistics summarizes one monitored segment for reporting.
type NetworkStatistics struct {
	SegmentID     uuid.UUID  `json:"segment_id"`
	SegmentName   string     `json:"segment_name"`
	CIDR          string     `json:"cidr"`
	DeviceCount   int        `json:"device_count"`
	ActiveDevices int        `json:"active_devices"`
	LastScanned   *time.Time `json:"last_scanned,omitempty"`
}

// GetNetworkStatistics computes per-segment device counts.
func (r *StatsRepository) GetNetworkStatistics(ctx context.Context) ([]*NetworkStatistics, error) {
	query := `
		SELECT
			ns.id AS segment_id,
			ns.name AS segment_name,
			ns.cidr::text AS cidr,
			COUNT(d.id) AS device_count,
			COUNT(d.id) FILTER (WHERE d.is_active) AS active_devices,
			ns.last_scanned
		FROM network_segments ns
		LEFT JOIN devices d ON d.ip_address << ns.cidr
		GROUP BY ns.id, ns.name, ns.cidr, ns.last_scanned
		ORDER BY ns.name`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, sanitizeDBError("get network statistics", err)
	}
	defer closeRows(rows)

	var result []*NetworkStatistics
	for rows.Next() {
		var ns NetworkStatistics
		var lastScanned sql.NullTime
		if err := rows.Scan(
			&ns.SegmentID, &ns.SegmentName, &ns.CIDR,
			&ns.DeviceCount, &ns.ActiveDevices, &lastScanned,
		); err != nil {
			return nil, sanitizeDBError("scan network statistics", err)
		}
		if lastScanned.Valid {
			ns.LastScanned = &lastScanned.Time
		}
		result = append(result, &ns)
	}
	if err := rows.Err(); err != nil {
		return nil, sanitizeDBError("iterate network statistics", err)
	}

	return result, nil
}
