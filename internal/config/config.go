package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/sentinelsec/sentinel/internal/db"
)

// Config represents the complete daemon configuration
type Config struct {
	// Daemon configuration
	Daemon DaemonConfig `yaml:"daemon" json:"daemon"`

	// Database configuration
	Database db.Config `yaml:"database" json:"database"`

	// Scanning configuration
	Scanning ScanningConfig `yaml:"scanning" json:"scanning"`

	// Discovery configuration
	Discovery DiscoveryConfig `yaml:"discovery" json:"discovery"`

	// API configuration
	API APIConfig `yaml:"api" json:"api"`

	// AI analysis configuration
	AI AIConfig `yaml:"ai" json:"ai"`

	// Scheduler configuration
	Scheduler SchedulerConfig `yaml:"scheduler" json:"scheduler"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// DaemonConfig holds daemon-specific settings
type DaemonConfig struct {
	// PID file location
	PIDFile string `yaml:"pid_file" json:"pid_file"`

	// Working directory
	WorkDir string `yaml:"work_dir" json:"work_dir"`

	// User to run as (for privilege dropping)
	User string `yaml:"user" json:"user"`

	// Group to run as
	Group string `yaml:"group" json:"group"`

	// Enable daemon mode (fork to background)
	Daemonize bool `yaml:"daemonize" json:"daemonize"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// ScanningConfig holds scan job settings
type ScanningConfig struct {
	// Number of concurrent profiling workers per job
	WorkerPoolSize int `yaml:"worker_pool_size" json:"worker_pool_size"`

	// Wall-clock budget for a single scan job
	JobTimeout time.Duration `yaml:"job_timeout" json:"job_timeout"`

	// Port range profiled on each discovered host
	ProfilePorts string `yaml:"profile_ports" json:"profile_ports"`

	// Enable OS fingerprinting during profiling
	EnableOSDetection bool `yaml:"enable_os_detection" json:"enable_os_detection"`

	// SNMP enrichment for devices exposing UDP 161
	SNMPCommunity string        `yaml:"snmp_community" json:"snmp_community"`
	SNMPTimeout   time.Duration `yaml:"snmp_timeout" json:"snmp_timeout"`

	// Capture TLS certificates from devices exposing HTTPS ports
	EnableTLSCapture bool `yaml:"enable_tls_capture" json:"enable_tls_capture"`

	// Devices not seen for this long are considered stale
	DeviceStaleness time.Duration `yaml:"device_staleness" json:"device_staleness"`
}

// DiscoveryConfig holds host discovery settings
type DiscoveryConfig struct {
	// Timeout for a single ping sweep
	PingTimeout time.Duration `yaml:"ping_timeout" json:"ping_timeout"`

	// Consult the local ARP cache for private networks
	EnableARP bool `yaml:"enable_arp" json:"enable_arp"`

	// ARP cache location (Linux proc table)
	ARPCachePath string `yaml:"arp_cache_path" json:"arp_cache_path"`
}

// APIConfig holds API server settings
type APIConfig struct {
	// Enable API server
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Listen address
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`

	// Listen port
	Port int `yaml:"port" json:"port"`

	// Enable TLS
	TLS TLSConfig `yaml:"tls" json:"tls"`

	// API key for authentication
	APIKey string `yaml:"api_key" json:"api_key"`

	// CORS settings
	CORS CORSConfig `yaml:"cors" json:"cors"`

	// Request timeout
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`

	// Maximum request size
	MaxRequestSize int64 `yaml:"max_request_size" json:"max_request_size"`
}

// TLSConfig holds TLS settings
type TLSConfig struct {
	// Enable TLS
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Certificate file path
	CertFile string `yaml:"cert_file" json:"cert_file"`

	// Private key file path
	KeyFile string `yaml:"key_file" json:"key_file"`

	// CA certificate file (for client authentication)
	CAFile string `yaml:"ca_file" json:"ca_file"`
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	// Enable CORS
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Allowed origins
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`

	// Allowed methods
	AllowedMethods []string `yaml:"allowed_methods" json:"allowed_methods"`

	// Allowed headers
	AllowedHeaders []string `yaml:"allowed_headers" json:"allowed_headers"`
}

// AIConfig holds settings for the external analysis service
type AIConfig struct {
	// Enable AI-assisted summaries and recommendations
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Service endpoint URL
	Endpoint string `yaml:"endpoint" json:"endpoint"`

	// API key passed as a bearer token
	APIKey string `yaml:"api_key" json:"api_key"`

	// Model identifier requested from the service
	Model string `yaml:"model" json:"model"`

	// Per-request timeout
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// SchedulerConfig holds periodic rescan settings
type SchedulerConfig struct {
	// Enable scheduled segment rescans
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Cron expression for segment rescans (standard 5-field format)
	RescanSchedule string `yaml:"rescan_schedule" json:"rescan_schedule"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level" json:"level"`

	// Log format (text, json)
	Format string `yaml:"format" json:"format"`

	// Log output (stdout, stderr, file path)
	Output string `yaml:"output" json:"output"`

	// Log file rotation
	Rotation RotationConfig `yaml:"rotation" json:"rotation"`

	// Enable structured logging
	Structured bool `yaml:"structured" json:"structured"`

	// Enable request logging for API
	RequestLogging bool `yaml:"request_logging" json:"request_logging"`
}

// RotationConfig holds log rotation settings
type RotationConfig struct {
	// Enable log rotation
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Maximum file size in MB
	MaxSizeMB int `yaml:"max_size_mb" json:"max_size_mb"`

	// Maximum number of backup files
	MaxBackups int `yaml:"max_backups" json:"max_backups"`

	// Maximum age in days
	MaxAgeDays int `yaml:"max_age_days" json:"max_age_days"`

	// Compress rotated files
	Compress bool `yaml:"compress" json:"compress"`
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Daemon: DaemonConfig{
			PIDFile:         "/var/run/sentinel.pid",
			WorkDir:         "/var/lib/sentinel",
			User:            "",
			Group:           "",
			Daemonize:       false,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: db.DefaultConfig(),
		Scanning: ScanningConfig{
			WorkerPoolSize:    8,
			JobTimeout:        5 * time.Minute,
			ProfilePorts:      "1-1000",
			EnableOSDetection: true,
			SNMPCommunity:     "public",
			SNMPTimeout:       2 * time.Second,
			EnableTLSCapture:  true,
			DeviceStaleness:   24 * time.Hour,
		},
		Discovery: DiscoveryConfig{
			PingTimeout:  2 * time.Minute,
			EnableARP:    true,
			ARPCachePath: "/proc/net/arp",
		},
		API: APIConfig{
			Enabled:    true,
			ListenAddr: "127.0.0.1",
			Port:       8080,
			TLS: TLSConfig{
				Enabled:  false,
				CertFile: "",
				KeyFile:  "",
				CAFile:   "",
			},
			APIKey: "",
			CORS: CORSConfig{
				Enabled:        true,
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type", "Authorization"},
			},
			RequestTimeout: 30 * time.Second,
			MaxRequestSize: 1024 * 1024, // 1MB
		},
		AI: AIConfig{
			Enabled:        false,
			Endpoint:       "",
			APIKey:         "",
			Model:          "gpt-4o-mini",
			RequestTimeout: 20 * time.Second,
		},
		Scheduler: SchedulerConfig{
			Enabled:        false,
			RescanSchedule: "0 2 * * *",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
			Rotation: RotationConfig{
				Enabled:    false,
				MaxSizeMB:  100,
				MaxBackups: 5,
				MaxAgeDays: 30,
				Compress:   true,
			},
			Structured:     false,
			RequestLogging: true,
		},
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	// Start with defaults
	config := Default()

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil // Return defaults if no config file
	}

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse based on file extension
	ext := filepath.Ext(path)
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		// Default to YAML
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config (assumed YAML): %w", err)
		}
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal to YAML
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate database configuration
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if c.Database.Username == "" {
		return fmt.Errorf("database username is required")
	}

	// Validate scanning configuration
	if c.Scanning.WorkerPoolSize <= 0 {
		return fmt.Errorf("worker pool size must be positive")
	}
	if c.Scanning.JobTimeout <= 0 {
		return fmt.Errorf("job timeout must be positive")
	}
	if c.Scanning.ProfilePorts == "" {
		return fmt.Errorf("profile port range is required")
	}
	if c.Scanning.SNMPCommunity == "" {
		return fmt.Errorf("SNMP community string is required")
	}

	// Validate discovery configuration
	if c.Discovery.PingTimeout <= 0 {
		return fmt.Errorf("ping timeout must be positive")
	}
	if c.Discovery.EnableARP && c.Discovery.ARPCachePath == "" {
		return fmt.Errorf("ARP cache path is required when ARP lookup is enabled")
	}

	// Validate API configuration
	if c.API.Enabled {
		if c.API.Port <= 0 || c.API.Port > 65535 {
			return fmt.Errorf("API port must be between 1 and 65535")
		}
		if c.API.ListenAddr == "" {
			return fmt.Errorf("API listen address is required when API is enabled")
		}
	}

	// Validate TLS configuration
	if c.API.TLS.Enabled {
		if c.API.TLS.CertFile == "" {
			return fmt.Errorf("TLS certificate file is required when TLS is enabled")
		}
		if c.API.TLS.KeyFile == "" {
			return fmt.Errorf("TLS key file is required when TLS is enabled")
		}
	}

	// Validate AI configuration
	if c.AI.Enabled {
		if c.AI.Endpoint == "" {
			return fmt.Errorf("AI endpoint is required when AI analysis is enabled")
		}
		if c.AI.RequestTimeout <= 0 {
			return fmt.Errorf("AI request timeout must be positive")
		}
	}

	// Validate scheduler configuration
	if c.Scheduler.Enabled {
		if _, err := cron.ParseStandard(c.Scheduler.RescanSchedule); err != nil {
			return fmt.Errorf("invalid rescan schedule: %w", err)
		}
	}

	// Validate logging configuration
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

// GetDatabaseConfig returns the database configuration
func (c *Config) GetDatabaseConfig() db.Config {
	return c.Database
}

// IsDaemonMode returns true if running in daemon mode
func (c *Config) IsDaemonMode() bool {
	return c.Daemon.Daemonize
}

// GetAPIAddress returns the full API address
func (c *Config) GetAPIAddress() string {
	return fmt.Sprintf("%s:%d", c.API.ListenAddr, c.API.Port)
}

// IsAPIEnabled returns true if API server is enabled
func (c *Config) IsAPIEnabled() bool {
	return c.API.Enabled
}

// GetLogOutput returns the log output destination
func (c *Config) GetLogOutput() string {
	return c.Logging.Output
}
