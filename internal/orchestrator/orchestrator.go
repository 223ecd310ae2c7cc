// Package orchestrator drives scan jobs end to end. It owns the job
// state machine (pending → running → completed/failed, cancelled only
// by external request), fans per-host work out over a bounded worker
// pool, and merges results into the device and vulnerability stores.
// It is the only writer of scan job rows.
package orchestrator

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sentinelsec/sentinel/internal/db"
	"github.com/sentinelsec/sentinel/internal/discovery"
	"github.com/sentinelsec/sentinel/internal/errors"
	"github.com/sentinelsec/sentinel/internal/logging"
	"github.com/sentinelsec/sentinel/internal/metrics"
	"github.com/sentinelsec/sentinel/internal/profiling"
	"github.com/sentinelsec/sentinel/internal/target"
	"github.com/sentinelsec/sentinel/internal/vulnscan"
)

const (
	// terminalGrace bounds the summary request and final row updates
	// once a job's own context is spent.
	terminalGrace = 30 * time.Second

	// completionSummary is stored when no AI summary is produced.
	completionSummary = "Scan completed successfully"
)

// Config holds orchestrator configuration.
type Config struct {
	// WorkerPoolSize is the number of concurrent per-host workers
	// inside one job.
	WorkerPoolSize int

	// JobTimeout is the wall-clock budget for a single job.
	JobTimeout time.Duration

	// ProfilePorts is the port range profiled on each host.
	ProfilePorts string

	// EnableOSDetection turns on OS fingerprinting unless the
	// submission overrides it.
	EnableOSDetection bool

	// DeviceStaleness is the profile age beyond which a vulnerability
	// scan re-profiles a device before probing it. Zero disables
	// re-profiling.
	DeviceStaleness time.Duration
}

// DefaultConfig returns the default orchestrator configuration.
func DefaultConfig() Config {
	return Config{
		WorkerPoolSize:  8,
		JobTimeout:      5 * time.Minute,
		ProfilePorts:    "1-1000",
		DeviceStaleness: 24 * time.Hour,
	}
}

// Options carries per-submission knobs.
type Options struct {
	// OSDetection overrides the configured default when set.
	OSDetection *bool
}

// SubmitRequest describes one scan job submission.
type SubmitRequest struct {
	Kind      string
	Target    string
	Options   Options
	CreatedBy string
}

// DeviceStore is the device persistence surface the orchestrator needs.
type DeviceStore interface {
	CreateOrUpdate(ctx context.Context, device *db.Device) error
	GetByIP(ctx context.Context, ip db.IPAddr) (*db.Device, error)
	GetActive(ctx context.Context) ([]*db.Device, error)
}

// VulnerabilityStore persists findings with dedup on insert.
type VulnerabilityStore interface {
	CreateIfAbsent(ctx context.Context, vuln *db.Vulnerability) (bool, error)
}

// JobStore persists scan job rows.
type JobStore interface {
	Create(ctx context.Context, job *db.ScanJob) error
	GetByID(ctx context.Context, id uuid.UUID) (*db.ScanJob, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, errorMsg *string) error
	SaveResults(ctx context.Context, job *db.ScanJob) error
}

// AlertStore records threat alerts raised from scan findings.
type AlertStore interface {
	Create(ctx context.Context, alert *db.ThreatAlert) error
}

// Stores bundles the persistence interfaces consumed by the
// orchestrator. The db repositories satisfy them directly.
type Stores struct {
	Devices         DeviceStore
	Vulnerabilities VulnerabilityStore
	Jobs            JobStore
	Alerts          AlertStore
}

// HostDiscoverer finds responsive hosts for a resolved target.
type HostDiscoverer interface {
	Discover(ctx context.Context, spec *target.Spec) ([]discovery.Host, error)
}

// DeviceProfiler builds a device profile for one address.
type DeviceProfiler interface {
	Profile(ctx context.Context, address string, opts profiling.Options) (*db.Device, error)
}

// VulnerabilityProber evaluates the signature catalog against a device.
type VulnerabilityProber interface {
	Probe(ctx context.Context, device *db.Device) ([]vulnscan.Finding, error)
}

// Analyst produces the scan summary. Implementations never fail; they
// degrade to placeholder text when the backing service is unavailable.
type Analyst interface {
	SummarizeScan(ctx context.Context, job *db.ScanJob, devices []*db.Device) string
}

// Pipeline bundles the scan stages injected at construction.
type Pipeline struct {
	Discoverer HostDiscoverer
	Profiler   DeviceProfiler
	Prober     VulnerabilityProber
	Analyst    Analyst
}

// jobHandle tracks one in-flight job.
type jobHandle struct {
	cancel    context.CancelFunc
	cancelled atomic.Bool
}

// Orchestrator runs scan jobs. Jobs run concurrently and independently;
// the in-flight index is the only shared state.
type Orchestrator struct {
	config     Config
	stores     Stores
	discoverer HostDiscoverer
	profiler   DeviceProfiler
	prober     VulnerabilityProber
	analyst    Analyst
	logger     *logging.Logger

	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu       sync.Mutex
	inflight map[uuid.UUID]*jobHandle
	closed   bool
	wg       sync.WaitGroup
}

// New creates an orchestrator with the given stores and pipeline.
func New(config Config, stores Stores, pipeline Pipeline) *Orchestrator {
	defaults := DefaultConfig()
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = defaults.WorkerPoolSize
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = defaults.JobTimeout
	}
	if config.ProfilePorts == "" {
		config.ProfilePorts = defaults.ProfilePorts
	}

	baseCtx, baseCancel := context.WithCancel(context.Background())

	return &Orchestrator{
		config:     config,
		stores:     stores,
		discoverer: pipeline.Discoverer,
		profiler:   pipeline.Profiler,
		prober:     pipeline.Prober,
		analyst:    pipeline.Analyst,
		logger:     logging.Default().WithComponent("orchestrator"),
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
		inflight:   make(map[uuid.UUID]*jobHandle),
	}
}

// Submit validates the request, persists a pending job, and schedules
// its run. The returned job is the created pending record; progress is
// observed through the job store.
func (o *Orchestrator) Submit(ctx context.Context, req SubmitRequest) (*db.ScanJob, error) {
	kind := strings.TrimSpace(req.Kind)
	switch {
	case !db.KnownScanKinds[kind]:
		return nil, errors.NewJobError(errors.CodeValidation,
			fmt.Sprintf("unknown scan kind %q", kind), "")
	case !db.SupportedScanKinds[kind]:
		return nil, errors.NewJobError(errors.CodeValidation,
			fmt.Sprintf("scan kind %q is not supported by this scanner", kind), "")
	}

	spec, err := target.Resolve(req.Target)
	if err != nil {
		return nil, err
	}
	if err := validateTarget(kind, spec); err != nil {
		return nil, err
	}

	job := &db.ScanJob{
		ID:     uuid.New(),
		Kind:   kind,
		Target: spec.Expression(),
		Status: db.ScanJobStatusPending,
	}
	if req.CreatedBy != "" {
		createdBy := req.CreatedBy
		job.CreatedBy = &createdBy
	}

	runCtx, cancel := context.WithCancel(o.baseCtx)
	handle := &jobHandle{cancel: cancel}

	// Register before the insert so a cancel arriving between Create
	// and the goroutine start still reaches the handle.
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		cancel()
		return nil, errors.NewJobError(errors.CodeServiceUnavailable, "orchestrator is shut down", "")
	}
	o.inflight[job.ID] = handle
	o.wg.Add(1)
	o.mu.Unlock()
	metrics.SetActiveJobs(o.ActiveJobs())

	if err := o.stores.Jobs.Create(ctx, job); err != nil {
		cancel()
		o.mu.Lock()
		delete(o.inflight, job.ID)
		o.mu.Unlock()
		o.wg.Done()
		metrics.SetActiveJobs(o.ActiveJobs())
		return nil, err
	}

	o.logger.InfoJob("Scan job submitted", job.ID.String(),
		"kind", job.Kind, "target", job.Target)

	// The run goroutine owns job from here; hand the caller a snapshot.
	created := *job
	go o.run(runCtx, handle, job, o.profilingOptions(req.Options))

	return &created, nil
}

// Cancel requests cancellation of a job. In-flight jobs are flagged and
// their context cancelled; a pending job left over from a previous
// process is transitioned directly. Terminal jobs cannot be cancelled.
func (o *Orchestrator) Cancel(ctx context.Context, jobID uuid.UUID) error {
	o.mu.Lock()
	handle, ok := o.inflight[jobID]
	o.mu.Unlock()

	if ok {
		handle.cancelled.Store(true)
		handle.cancel()
		o.logger.InfoJob("Scan job cancellation requested", jobID.String())
		return nil
	}

	job, err := o.stores.Jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.IsCode(err, errors.CodeNotFound) {
			return errors.NewJobError(errors.CodeJobNotFound, "scan job not found", jobID.String())
		}
		return err
	}
	if job.IsTerminal() {
		return errors.NewJobError(errors.CodeJobState,
			fmt.Sprintf("scan job is already %s", job.Status), jobID.String())
	}

	return o.stores.Jobs.UpdateStatus(ctx, jobID, db.ScanJobStatusCancelled, nil)
}

// ActiveJobs returns the number of in-flight jobs.
func (o *Orchestrator) ActiveJobs() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.inflight)
}

// forget deregisters a finished job's handle.
func (o *Orchestrator) forget(jobID uuid.UUID) {
	o.mu.Lock()
	delete(o.inflight, jobID)
	o.mu.Unlock()
	metrics.SetActiveJobs(o.ActiveJobs())
}

// Shutdown stops accepting submissions, cancels in-flight jobs, and
// waits for their terminal writes or the given context to expire.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	active := len(o.inflight)
	o.mu.Unlock()

	o.logger.Info("Orchestrator shutting down", "active_jobs", active)
	o.baseCancel()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run executes one job inside its wall-clock budget and persists the
// terminal state. Terminal writes use a fresh context because the job
// context is typically already spent when they happen.
func (o *Orchestrator) run(ctx context.Context, handle *jobHandle, job *db.ScanJob, profOpts profiling.Options) {
	defer o.wg.Done()
	defer o.forget(job.ID)

	start := time.Now()

	if handle.cancelled.Load() {
		o.finish(job, db.ScanJobStatusCancelled, nil)
		return
	}

	jobCtx, cancelJob := context.WithTimeout(ctx, o.config.JobTimeout)
	defer cancelJob()

	if err := o.stores.Jobs.UpdateStatus(jobCtx, job.ID, db.ScanJobStatusRunning, nil); err != nil {
		msg := err.Error()
		o.finish(job, db.ScanJobStatusFailed, &msg)
		metrics.IncrementJobErrors(job.Kind, job.Target, string(errors.GetCode(err)))
		return
	}
	job.Status = db.ScanJobStatusRunning
	o.logger.InfoJob("Scan job started", job.ID.String(), "kind", job.Kind, "target", job.Target)

	outcome, runErr := o.execute(jobCtx, job, profOpts)

	duration := time.Since(start)
	metrics.RecordJobDuration(job.Kind, job.Target, duration)

	switch {
	case handle.cancelled.Load():
		o.finish(job, db.ScanJobStatusCancelled, nil)
		o.logger.InfoJob("Scan job cancelled", job.ID.String(), "duration", duration)

	case runErr != nil:
		if stderrors.Is(runErr, context.DeadlineExceeded) {
			runErr = errors.ErrJobTimeout(job.ID.String())
		} else if stderrors.Is(runErr, context.Canceled) {
			runErr = errors.NewJobError(errors.CodeCanceled,
				"scan interrupted before completion", job.ID.String())
		}
		code := errors.GetCode(runErr)
		if code == errors.CodeUnknown {
			code = errors.CodeJobUnhandled
		}
		msg := runErr.Error()
		o.finish(job, db.ScanJobStatusFailed, &msg)
		metrics.IncrementJobErrors(job.Kind, job.Target, string(code))
		o.logger.ErrorJob("Scan job failed", job.ID.String(), runErr, "duration", duration)

	default:
		o.complete(job, outcome)
		o.logger.InfoJob("Scan job completed", job.ID.String(),
			"duration", duration,
			"devices", outcome.devicesDiscovered,
			"vulnerabilities", outcome.vulnerabilitiesFound)
	}
}

// finish persists a terminal status. Cancelled and failed transitions
// carry no results.
func (o *Orchestrator) finish(job *db.ScanJob, status string, errorMsg *string) {
	ctx, cancel := context.WithTimeout(context.Background(), terminalGrace)
	defer cancel()

	if err := o.stores.Jobs.UpdateStatus(ctx, job.ID, status, errorMsg); err != nil {
		o.logger.ErrorJob("Failed to persist terminal job status", job.ID.String(), err,
			"status", status)
	}
	job.Status = status
	job.ErrorMessage = errorMsg
	metrics.IncrementJobsTotal(job.Kind, status)
}

// complete stores results and flips the job to completed. Results land
// before the status flip so a completed job is never observed without
// them.
func (o *Orchestrator) complete(job *db.ScanJob, outcome *jobOutcome) {
	ctx, cancel := context.WithTimeout(context.Background(), terminalGrace)
	defer cancel()

	// A scan that touched devices gets a summary from the analyst,
	// which degrades to its own placeholder when the service is off.
	summary := completionSummary
	if len(outcome.devices) > 0 && o.analyst != nil {
		summary = o.analyst.SummarizeScan(ctx, job, outcome.devices)
	}

	job.AISummary = &summary
	job.DevicesDiscovered = outcome.devicesDiscovered
	job.VulnerabilitiesFound = outcome.vulnerabilitiesFound
	job.PortsScanned = outcome.portsScanned
	if err := job.SetResults(outcome.metadata); err != nil {
		o.logger.ErrorJob("Failed to serialize job results", job.ID.String(), err)
	}

	if err := o.stores.Jobs.SaveResults(ctx, job); err != nil {
		o.logger.ErrorJob("Failed to persist job results", job.ID.String(), err)
	}
	if err := o.stores.Jobs.UpdateStatus(ctx, job.ID, db.ScanJobStatusCompleted, nil); err != nil {
		o.logger.ErrorJob("Failed to persist terminal job status", job.ID.String(), err,
			"status", db.ScanJobStatusCompleted)
	}
	job.Status = db.ScanJobStatusCompleted

	metrics.IncrementJobsTotal(job.Kind, db.ScanJobStatusCompleted)
	metrics.AddDevicesDiscovered(job.Kind, outcome.devicesDiscovered)
	for severity, count := range outcome.severityCounts {
		metrics.AddVulnerabilitiesFound(severity, count)
	}
}

// jobOutcome accumulates what one per-kind procedure produced.
type jobOutcome struct {
	devices              []*db.Device
	devicesDiscovered    int
	vulnerabilitiesFound int
	portsScanned         int
	severityCounts       map[string]int
	metadata             map[string]interface{}
}

// execute dispatches to the per-kind procedure.
func (o *Orchestrator) execute(ctx context.Context, job *db.ScanJob, profOpts profiling.Options) (*jobOutcome, error) {
	spec, err := target.Resolve(job.Target)
	if err != nil {
		return nil, err
	}

	switch job.Kind {
	case db.ScanKindDiscovery:
		return o.runDiscovery(ctx, job, spec, profOpts)
	case db.ScanKindVulnerability:
		return o.runVulnerability(ctx, job, spec, profOpts)
	case db.ScanKindPortScan:
		return o.runPortScan(ctx, job, spec, profOpts)
	}

	return nil, errors.NewJobError(errors.CodeJobUnhandled,
		fmt.Sprintf("no procedure for scan kind %q", job.Kind), job.ID.String())
}

// profilingOptions merges configured defaults with submission options.
func (o *Orchestrator) profilingOptions(opts Options) profiling.Options {
	osDetection := o.config.EnableOSDetection
	if opts.OSDetection != nil {
		osDetection = *opts.OSDetection
	}
	return profiling.Options{
		PortRange:   o.config.ProfilePorts,
		OSDetection: osDetection,
	}
}

// validateTarget enforces the target forms each kind accepts. The "all"
// sentinel belongs to vulnerability scans alone; port scans take
// exactly one address.
func validateTarget(kind string, spec *target.Spec) error {
	switch kind {
	case db.ScanKindDiscovery:
		if spec.IsAll() {
			return errors.NewTargetError(
				`discovery requires an explicit network target, not "all"`, spec.Expression())
		}
	case db.ScanKindVulnerability:
		switch spec.Kind() {
		case target.KindSingle, target.KindAll:
		default:
			return errors.NewTargetError(
				`vulnerability scans accept a single address or "all"`, spec.Expression())
		}
	case db.ScanKindPortScan:
		if spec.Kind() != target.KindSingle {
			return errors.NewTargetError("port scans require a single address", spec.Expression())
		}
	}
	return nil
}

// raiseAlert records a threat alert for a newly stored critical
// finding. Alert failures are logged, never job-fatal.
func (o *Orchestrator) raiseAlert(ctx context.Context, device *db.Device, vuln *db.Vulnerability) {
	alert := &db.ThreatAlert{
		Title:           fmt.Sprintf("Critical vulnerability on %s", device.IPAddress.String()),
		Description:     vuln.Title,
		ThreatLevel:     db.SeverityCritical,
		DeviceID:        &device.ID,
		VulnerabilityID: &vuln.ID,
		TargetIP:        &device.IPAddress,
	}

	if err := o.stores.Alerts.Create(ctx, alert); err != nil {
		o.logger.Error("Failed to raise threat alert",
			"device", device.IPAddress.String(),
			"vulnerability", vuln.Title,
			"error", err)
	}
}

