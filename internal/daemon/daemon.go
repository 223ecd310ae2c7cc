// Package daemon runs sentinel as a long-lived service. It owns the
// database connection, the scan orchestrator, the API server, and the
// segment rescan scheduler, and ties their lifecycles to process
// signals.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/sentinelsec/sentinel/internal/ai"
	"github.com/sentinelsec/sentinel/internal/api"
	"github.com/sentinelsec/sentinel/internal/auth"
	"github.com/sentinelsec/sentinel/internal/config"
	"github.com/sentinelsec/sentinel/internal/db"
	"github.com/sentinelsec/sentinel/internal/discovery"
	"github.com/sentinelsec/sentinel/internal/logging"
	"github.com/sentinelsec/sentinel/internal/metrics"
	"github.com/sentinelsec/sentinel/internal/orchestrator"
	"github.com/sentinelsec/sentinel/internal/profiling"
	"github.com/sentinelsec/sentinel/internal/scheduler"
	"github.com/sentinelsec/sentinel/internal/vulnscan"
)

const (
	// healthCheckInterval is the cadence of the database liveness probe
	// in the main loop.
	healthCheckInterval = 10 * time.Second

	// defaultShutdownTimeout applies when the config leaves the daemon
	// shutdown timeout unset.
	defaultShutdownTimeout = 30 * time.Second
)

// File permission constants.
const (
	DefaultDirPermissions  = 0o750
	DefaultFilePermissions = 0o600
)

// Daemon represents the main daemon process.
type Daemon struct {
	config    *config.Config
	database  *db.DB
	store     *db.Store
	keys      *auth.Store
	analyst   *ai.Analyst
	orch      *orchestrator.Orchestrator
	apiServer *api.Server
	sched     *scheduler.Scheduler
	pidFile   string
	logger    *logging.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	mu        sync.Mutex
}

// New creates a new daemon instance.
func New(cfg *config.Config) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		config:  cfg,
		pidFile: cfg.Daemon.PIDFile,
		logger:  logging.Default().WithComponent("daemon"),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// Start brings the daemon up and blocks in the main loop until a
// shutdown signal arrives.
func (d *Daemon) Start() error {
	if err := d.config.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if err := d.setupLogging(); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	d.logger.Info("Starting sentinel daemon")

	if d.config.Daemon.WorkDir != "" {
		if err := os.MkdirAll(d.config.Daemon.WorkDir, DefaultDirPermissions); err != nil {
			return fmt.Errorf("failed to create working directory: %w", err)
		}
		if err := os.Chdir(d.config.Daemon.WorkDir); err != nil {
			return fmt.Errorf("failed to change to working directory: %w", err)
		}
	}

	if d.config.Daemon.Daemonize {
		if err := d.fork(); err != nil {
			return fmt.Errorf("failed to fork daemon: %w", err)
		}
	}

	if err := d.dropPrivileges(); err != nil {
		return fmt.Errorf("failed to drop privileges: %w", err)
	}

	if err := d.createPIDFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}

	d.setupSignalHandlers()

	if err := d.initDatabase(); err != nil {
		d.cleanup()
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	d.initOrchestrator()

	if err := d.initAPIServer(); err != nil {
		d.cleanup()
		return fmt.Errorf("failed to initialize API server: %w", err)
	}

	if err := d.initScheduler(); err != nil {
		d.cleanup()
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	d.logger.Info("Daemon started successfully", "pid", os.Getpid())
	return d.run()
}

// Stop stops the daemon gracefully.
func (d *Daemon) Stop() error {
	d.logger.Info("Stopping daemon")

	d.cancel()

	select {
	case <-d.done:
		d.logger.Info("Daemon stopped gracefully")
	case <-time.After(d.shutdownTimeout()):
		d.logger.Warn("Shutdown timeout reached, forcing exit")
	}

	d.cleanup()
	return nil
}

func (d *Daemon) shutdownTimeout() time.Duration {
	if d.config.Daemon.ShutdownTimeout > 0 {
		return d.config.Daemon.ShutdownTimeout
	}
	return defaultShutdownTimeout
}

// setupLogging replaces the process-wide logger with one built from
// the configured level, format, and output.
func (d *Daemon) setupLogging() error {
	logger, err := logging.New(logging.Config{
		Level:  logging.LogLevel(d.config.Logging.Level),
		Format: logging.LogFormat(d.config.Logging.Format),
		Output: d.config.Logging.Output,
	})
	if err != nil {
		return err
	}

	logging.SetDefault(logger)
	d.logger = logger.WithComponent("daemon")
	return nil
}

// fork re-executes the process detached from the terminal and exits
// the parent.
func (d *Daemon) fork() error {
	if os.Getppid() == 1 {
		return nil // Already a daemon
	}

	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	// Strip the daemonize flag to prevent infinite forking.
	args := []string{executable}
	for _, arg := range os.Args[1:] {
		if arg != "--daemonize" && arg != "-d" {
			args = append(args, arg)
		}
	}

	procAttr := &os.ProcAttr{
		Dir:   d.config.Daemon.WorkDir,
		Env:   os.Environ(),
		Files: []*os.File{nil, nil, nil},
	}

	process, err := os.StartProcess(executable, args, procAttr)
	if err != nil {
		return fmt.Errorf("failed to start daemon process: %w", err)
	}

	d.logger.Info("Daemon forked", "pid", process.Pid)

	os.Exit(0)
	return nil
}

// dropPrivileges switches to the configured user and group when
// running as root.
func (d *Daemon) dropPrivileges() error {
	if d.config.Daemon.User == "" && d.config.Daemon.Group == "" {
		return nil
	}

	if os.Getuid() != 0 {
		d.logger.Info("Not running as root, skipping privilege drop")
		return nil
	}

	// Group first: setgid fails once the uid is unprivileged.
	if d.config.Daemon.Group != "" {
		grp, err := user.LookupGroup(d.config.Daemon.Group)
		if err != nil {
			return fmt.Errorf("failed to lookup group %s: %w", d.config.Daemon.Group, err)
		}
		gid, err := strconv.Atoi(grp.Gid)
		if err != nil {
			return fmt.Errorf("invalid group ID: %w", err)
		}
		if err := syscall.Setgid(gid); err != nil {
			return fmt.Errorf("failed to set GID to %d: %w", gid, err)
		}
		d.logger.Info("Changed group", "group", d.config.Daemon.Group, "gid", gid)
	}

	if d.config.Daemon.User != "" {
		usr, err := user.Lookup(d.config.Daemon.User)
		if err != nil {
			return fmt.Errorf("failed to lookup user %s: %w", d.config.Daemon.User, err)
		}
		uid, err := strconv.Atoi(usr.Uid)
		if err != nil {
			return fmt.Errorf("invalid user ID: %w", err)
		}
		if err := syscall.Setuid(uid); err != nil {
			return fmt.Errorf("failed to setuid to %d: %w", uid, err)
		}
		d.logger.Info("Changed user", "user", d.config.Daemon.User, "uid", uid)
	}

	return nil
}

// createPIDFile writes the current PID, refusing to start when another
// live process already holds the file.
func (d *Daemon) createPIDFile() error {
	if d.pidFile == "" {
		return nil
	}

	dir := filepath.Dir(d.pidFile)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		return fmt.Errorf("failed to create PID file directory: %w", err)
	}

	if err := d.checkExistingPID(); err != nil {
		return err
	}

	pid := os.Getpid()
	if err := os.WriteFile(d.pidFile, []byte(strconv.Itoa(pid)), DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	d.logger.Info("Created PID file", "path", d.pidFile, "pid", pid)
	return nil
}

// checkExistingPID removes a stale PID file or reports a live daemon.
func (d *Daemon) checkExistingPID() error {
	if _, err := os.Stat(d.pidFile); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(d.pidFile)
	if err != nil {
		return fmt.Errorf("failed to read existing PID file: %w", err)
	}

	pid, err := strconv.Atoi(string(data))
	if err != nil {
		// Garbage in the file, treat it as stale.
		_ = os.Remove(d.pidFile)
		return nil
	}

	if d.isProcessRunning(pid) {
		return fmt.Errorf("daemon already running with PID %d", pid)
	}

	_ = os.Remove(d.pidFile)
	return nil
}

// isProcessRunning checks if a process with the given PID is running.
func (d *Daemon) isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))
	return err == nil
}

// setupSignalHandlers installs the shutdown, reload, and status-dump
// signal handlers.
func (d *Daemon) setupSignalHandlers() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan,
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGHUP,
		syscall.SIGUSR1,
	)

	go func() {
		for sig := range sigChan {
			d.logger.Info("Received signal", "signal", sig.String())

			switch sig {
			case syscall.SIGTERM, syscall.SIGINT:
				d.logger.Info("Initiating graceful shutdown")
				d.cancel()
				return
			case syscall.SIGHUP:
				if err := d.reloadConfiguration(); err != nil {
					d.logger.Error("Configuration reload failed", "error", err)
				} else {
					d.logger.Info("Configuration reloaded")
				}
			case syscall.SIGUSR1:
				d.dumpStatus()
			}
		}
	}()
}

// initDatabase connects, runs migrations, and builds the repository
// and API key stores.
func (d *Daemon) initDatabase() error {
	d.logger.Info("Connecting to database",
		"host", d.config.Database.Host,
		"database", d.config.Database.Database)

	dbConfig := d.config.GetDatabaseConfig()
	database, err := db.ConnectAndMigrate(d.ctx, &dbConfig)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	d.database = database
	d.store = db.NewStore(database)
	d.keys = auth.NewStore(database)
	d.logger.Info("Database connection established")
	return nil
}

// initOrchestrator assembles the scan pipeline and the orchestrator
// on top of it.
func (d *Daemon) initOrchestrator() {
	discoverer := discovery.NewEngine(discovery.Config{
		PingTimeout:  d.config.Discovery.PingTimeout,
		EnableARP:    d.config.Discovery.EnableARP,
		ARPCachePath: d.config.Discovery.ARPCachePath,
	})

	profiler := profiling.New(profiling.Config{
		PortRange:     d.config.Scanning.ProfilePorts,
		SNMPCommunity: d.config.Scanning.SNMPCommunity,
		SNMPTimeout:   d.config.Scanning.SNMPTimeout,
		TLSCapture:    d.config.Scanning.EnableTLSCapture,
	})

	d.analyst = ai.New(ai.Config{
		Enabled:        d.config.AI.Enabled,
		Endpoint:       d.config.AI.Endpoint,
		APIKey:         d.config.AI.APIKey,
		Model:          d.config.AI.Model,
		RequestTimeout: d.config.AI.RequestTimeout,
	})

	d.orch = orchestrator.New(
		orchestrator.Config{
			WorkerPoolSize:    d.config.Scanning.WorkerPoolSize,
			JobTimeout:        d.config.Scanning.JobTimeout,
			ProfilePorts:      d.config.Scanning.ProfilePorts,
			EnableOSDetection: d.config.Scanning.EnableOSDetection,
			DeviceStaleness:   d.config.Scanning.DeviceStaleness,
		},
		orchestrator.Stores{
			Devices:         d.store.Devices,
			Vulnerabilities: d.store.Vulnerabilities,
			Jobs:            d.store.Jobs,
			Alerts:          d.store.Alerts,
		},
		orchestrator.Pipeline{
			Discoverer: discoverer,
			Profiler:   profiler,
			Prober:     vulnscan.New(),
			Analyst:    d.analyst,
		},
	)

	d.logger.Info("Scan orchestrator initialized",
		"workers", d.config.Scanning.WorkerPoolSize,
		"job_timeout", d.config.Scanning.JobTimeout)
}

// apiDependencies bundles the daemon-owned components the API server
// consumes.
func (d *Daemon) apiDependencies() api.Dependencies {
	return api.Dependencies{
		Store:      d.store,
		Database:   d.database,
		Controller: d.orch,
		Analyst:    d.analyst,
		Keys:       d.keys,
		Logger:     logging.Default().Logger,
		Metrics:    metrics.Default(),
	}
}

// initAPIServer builds the API server when enabled.
func (d *Daemon) initAPIServer() error {
	if !d.config.IsAPIEnabled() {
		d.logger.Info("API server disabled, skipping initialization")
		return nil
	}

	apiServer, err := api.New(d.config, d.apiDependencies())
	if err != nil {
		return fmt.Errorf("API server creation failed: %w", err)
	}

	d.apiServer = apiServer
	d.logger.Info("API server initialized", "address", d.config.GetAPIAddress())
	return nil
}

// initScheduler starts the segment rescan scheduler when enabled.
func (d *Daemon) initScheduler() error {
	if !d.config.Scheduler.Enabled {
		d.logger.Info("Scheduler disabled, skipping initialization")
		return nil
	}

	d.sched = scheduler.New(
		scheduler.Config{RescanSchedule: d.config.Scheduler.RescanSchedule},
		scheduler.Stores{
			Segments: d.store.Segments,
			Devices:  d.store.Devices,
			Jobs:     d.store.Jobs,
		},
		d.orch,
		d.keys,
	)

	if err := d.sched.Start(); err != nil {
		d.sched = nil
		return err
	}

	d.logger.Info("Scheduler started", "rescan_schedule", d.config.Scheduler.RescanSchedule)
	return nil
}

// run executes the main daemon loop.
func (d *Daemon) run() error {
	if d.apiServer != nil {
		go func() {
			if err := d.apiServer.Start(d.ctx); err != nil {
				d.logger.Error("API server error", "error", err)
				d.cancel()
			}
		}()
	}

	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			d.logger.Info("Shutdown signal received")
			close(d.done)
			return nil

		case <-ticker.C:
			d.performHealthCheck()
		}
	}
}

// performHealthCheck probes the database. The sql pool re-dials dead
// connections on its own, so a failure here is logged and left to
// heal.
func (d *Daemon) performHealthCheck() {
	if d.database == nil {
		return
	}
	if err := d.database.PingContext(d.ctx); err != nil {
		d.logger.Warn("Database health check failed", "error", err)
	}
}

// cleanup tears components down in dependency order: stop producing
// jobs, stop accepting requests, drain running jobs, then release the
// database and the PID file.
func (d *Daemon) cleanup() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.sched != nil {
		d.sched.Stop()
		d.sched = nil
		d.logger.Info("Scheduler stopped")
	}

	if d.apiServer != nil {
		if err := d.apiServer.Stop(); err != nil {
			d.logger.Error("Error stopping API server", "error", err)
		}
		d.apiServer = nil
	}

	if d.orch != nil {
		drainCtx, cancel := context.WithTimeout(context.Background(), d.shutdownTimeout())
		if err := d.orch.Shutdown(drainCtx); err != nil {
			d.logger.Warn("Orchestrator shutdown incomplete", "error", err)
		}
		cancel()
		d.orch = nil
	}

	if d.database != nil {
		if err := d.database.Close(); err != nil {
			d.logger.Error("Error closing database", "error", err)
		}
		d.database = nil
	}

	if d.pidFile != "" {
		if err := os.Remove(d.pidFile); err != nil && !os.IsNotExist(err) {
			d.logger.Error("Error removing PID file", "error", err)
		}
	}
}

// GetPID returns the daemon's PID.
func (d *Daemon) GetPID() int {
	return os.Getpid()
}

// IsRunning reports whether the daemon has not been signalled to stop.
func (d *Daemon) IsRunning() bool {
	select {
	case <-d.ctx.Done():
		return false
	default:
		return true
	}
}

// reloadConfiguration reloads the config file and restarts the API
// server when its listen settings changed. Pipeline settings stay as
// constructed; a full restart applies everything.
func (d *Daemon) reloadConfiguration() error {
	newConfig, err := config.Load("")
	if err != nil {
		return fmt.Errorf("failed to load new configuration: %w", err)
	}

	if err := newConfig.Validate(); err != nil {
		return fmt.Errorf("new configuration is invalid: %w", err)
	}

	if d.hasAPIConfigChanged(d.config, newConfig) {
		d.restartAPIServer(newConfig)
	}

	d.config = newConfig
	return nil
}

// dumpStatus logs a snapshot of the daemon state.
func (d *Daemon) dumpStatus() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	dbStatus := "not configured"
	if d.database != nil {
		dbStatus = "connected"
		if err := d.database.PingContext(d.ctx); err != nil {
			dbStatus = fmt.Sprintf("disconnected: %v", err)
		}
	}

	apiStatus := "disabled"
	if d.apiServer != nil {
		apiStatus = d.config.GetAPIAddress()
	}

	activeJobs := 0
	if d.orch != nil {
		activeJobs = d.orch.ActiveJobs()
	}

	d.logger.Info("Daemon status",
		"pid", os.Getpid(),
		"goroutines", runtime.NumGoroutine(),
		"alloc_kb", m.Alloc/1024,
		"sys_kb", m.Sys/1024,
		"num_gc", m.NumGC,
		"database", dbStatus,
		"api", apiStatus,
		"active_jobs", activeJobs,
		"scheduler_enabled", d.sched != nil)
}

// hasAPIConfigChanged checks if API listen configuration has changed.
func (d *Daemon) hasAPIConfigChanged(oldConfig, newConfig *config.Config) bool {
	return oldConfig.API.Enabled != newConfig.API.Enabled ||
		oldConfig.API.ListenAddr != newConfig.API.ListenAddr ||
		oldConfig.API.Port != newConfig.API.Port
}

// restartAPIServer swaps the API server for one built from the new
// configuration.
func (d *Daemon) restartAPIServer(newConfig *config.Config) {
	d.logger.Info("API configuration changed, restarting API server")

	if d.apiServer != nil {
		if err := d.apiServer.Stop(); err != nil {
			d.logger.Error("Failed to stop API server", "error", err)
		}
		d.apiServer = nil
	}

	if !newConfig.API.Enabled {
		return
	}

	apiServer, err := api.New(newConfig, d.apiDependencies())
	if err != nil {
		d.logger.Error("Failed to create API server with new config", "error", err)
		return
	}

	d.apiServer = apiServer
	go func() {
		if err := apiServer.Start(d.ctx); err != nil {
			d.logger.Error("API server error", "error", err)
		}
	}()
}
