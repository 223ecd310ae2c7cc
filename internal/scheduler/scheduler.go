// Package scheduler runs the periodic maintenance loops: rescans of
// monitored network segments on a cron cadence and a nightly sweep
// that deactivates expired API keys. Rescans are ordinary discovery
// jobs submitted through the orchestrator; the scheduler decides when
// a segment is due and records the outcome on the segment row.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/sentinelsec/sentinel/internal/db"
	"github.com/sentinelsec/sentinel/internal/logging"
	"github.com/sentinelsec/sentinel/internal/metrics"
	"github.com/sentinelsec/sentinel/internal/orchestrator"
)

const (
	// defaultRescanFrequency applies to monitored segments without an
	// explicit scan frequency.
	defaultRescanFrequency = 24 * time.Hour

	// keyExpirySchedule runs shortly after the default rescan window
	// so both sweeps land in the same quiet period.
	keyExpirySchedule = "30 2 * * *"

	// recordGrace bounds the post-completion bookkeeping once the
	// scheduler's own context is spent.
	recordGrace = 30 * time.Second

	defaultJobWait      = 10 * time.Minute
	defaultPollInterval = 2 * time.Second

	// scheduledBy marks jobs submitted by the scheduler.
	scheduledBy = "scheduler"
)

// Config holds scheduler configuration.
type Config struct {
	// RescanSchedule is the cron expression (standard 5-field format)
	// for the segment sweep.
	RescanSchedule string

	// JobWait bounds how long a submitted rescan is tracked before the
	// scheduler gives up on recording its outcome.
	JobWait time.Duration

	// PollInterval is how often a tracked job's state is re-read.
	PollInterval time.Duration
}

// Submitter accepts scan job submissions.
type Submitter interface {
	Submit(ctx context.Context, req orchestrator.SubmitRequest) (*db.ScanJob, error)
}

// SegmentStore lists monitored segments and records rescan outcomes.
type SegmentStore interface {
	GetMonitored(ctx context.Context) ([]*db.NetworkSegment, error)
	RecordScan(ctx context.Context, id uuid.UUID, deviceCount int) error
}

// DeviceCounter counts inventory rows inside a segment's network.
type DeviceCounter interface {
	CountInNetwork(ctx context.Context, network db.NetworkAddr) (int, error)
}

// JobStore reads job state while a rescan is tracked.
type JobStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*db.ScanJob, error)
}

// KeyExpirer deactivates API keys whose expiry has passed.
type KeyExpirer interface {
	DeactivateExpired(ctx context.Context) (int64, error)
}

// Stores bundles the persistence surfaces the scheduler reads and
// writes. The db repositories satisfy them directly.
type Stores struct {
	Segments SegmentStore
	Devices  DeviceCounter
	Jobs     JobStore
}

// Scheduler triggers segment rescans and key expiry on cron schedules.
type Scheduler struct {
	config    Config
	stores    Stores
	submitter Submitter
	keys      KeyExpirer
	logger    *logging.Logger
	cron      *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	running  bool
	stopped  bool
	inflight map[uuid.UUID]bool
}

// New creates a scheduler. keys may be nil when the deployment does
// not manage API keys.
func New(config Config, stores Stores, submitter Submitter, keys KeyExpirer) *Scheduler {
	if config.JobWait <= 0 {
		config.JobWait = defaultJobWait
	}
	if config.PollInterval <= 0 {
		config.PollInterval = defaultPollInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		config:    config,
		stores:    stores,
		submitter: submitter,
		keys:      keys,
		logger:    logging.Default().WithComponent("scheduler"),
		cron:      cron.New(),
		ctx:       ctx,
		cancel:    cancel,
		inflight:  make(map[uuid.UUID]bool),
	}
}

// Start registers the cron entries and begins triggering. A stopped
// scheduler cannot be restarted.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}
	if s.stopped {
		return fmt.Errorf("scheduler has been stopped")
	}

	if _, err := s.cron.AddFunc(s.config.RescanSchedule, s.runSweep); err != nil {
		return fmt.Errorf("invalid rescan schedule %q: %w", s.config.RescanSchedule, err)
	}
	if s.keys != nil {
		if _, err := s.cron.AddFunc(keyExpirySchedule, s.runKeyExpiry); err != nil {
			return fmt.Errorf("failed to schedule key expiry sweep: %w", err)
		}
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("Scheduler started",
		"rescan_schedule", s.config.RescanSchedule,
		"key_expiry", s.keys != nil)
	return nil
}

// Stop halts triggering and waits for tracked rescans to wind down.
// The rescan jobs themselves keep running in the orchestrator.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	wasRunning := s.running
	s.running = false
	s.stopped = true
	s.mu.Unlock()

	if !wasRunning {
		s.cancel()
		return
	}

	s.cron.Stop()
	s.cancel()
	s.wg.Wait()

	s.logger.Info("Scheduler stopped")
}

// runSweep is the cron entry point for the segment sweep.
func (s *Scheduler) runSweep() {
	started, err := s.SweepSegments(s.ctx)
	if err != nil {
		s.logger.Error("Segment sweep failed", "error", err)
		return
	}
	if started > 0 {
		s.logger.Info("Segment sweep submitted rescans", "count", started)
	}
}

// runKeyExpiry is the cron entry point for the key expiry sweep.
func (s *Scheduler) runKeyExpiry() {
	if _, err := s.ExpireKeys(s.ctx); err != nil {
		s.logger.Error("API key expiry sweep failed", "error", err)
	}
}

// SweepSegments submits a discovery job for every monitored segment
// whose scan frequency has elapsed and returns how many rescans
// started. Segments with a rescan already in flight are skipped.
func (s *Scheduler) SweepSegments(ctx context.Context) (int, error) {
	segments, err := s.stores.Segments.GetMonitored(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list monitored segments: %w", err)
	}

	now := time.Now().UTC()
	started := 0
	for _, segment := range segments {
		if !segmentDue(segment, now) {
			continue
		}
		if !s.claim(segment.ID) {
			s.logger.Debug("Segment rescan already in flight",
				"segment", segment.Name)
			continue
		}

		job, err := s.submitter.Submit(ctx, orchestrator.SubmitRequest{
			Kind:      db.ScanKindDiscovery,
			Target:    segment.CIDR.String(),
			CreatedBy: scheduledBy,
		})
		if err != nil {
			s.release(segment.ID)
			metrics.IncrementSegmentRescans("rejected")
			s.logger.Error("Segment rescan submission failed",
				"segment", segment.Name,
				"cidr", segment.CIDR.String(),
				"error", err)
			continue
		}

		started++
		metrics.IncrementSegmentRescans("started")
		s.logger.Info("Segment rescan submitted",
			"segment", segment.Name,
			"cidr", segment.CIDR.String(),
			"job_id", job.ID)

		s.wg.Add(1)
		go s.track(segment, job.ID)
	}

	return started, nil
}

// ExpireKeys deactivates API keys whose expiry has passed. A nil key
// store makes this a no-op.
func (s *Scheduler) ExpireKeys(ctx context.Context) (int64, error) {
	if s.keys == nil {
		return 0, nil
	}

	deactivated, err := s.keys.DeactivateExpired(ctx)
	if err != nil {
		return 0, err
	}
	if deactivated > 0 {
		s.logger.Info("Expired API keys deactivated", "count", deactivated)
	}
	return deactivated, nil
}

// segmentDue reports whether a segment's scan frequency has elapsed.
// Never-scanned segments are always due.
func segmentDue(segment *db.NetworkSegment, now time.Time) bool {
	if segment.LastScanned == nil {
		return true
	}

	frequency := defaultRescanFrequency
	if segment.ScanFrequencyHours != nil && *segment.ScanFrequencyHours > 0 {
		frequency = time.Duration(*segment.ScanFrequencyHours) * time.Hour
	}
	return now.Sub(*segment.LastScanned) >= frequency
}

// claim marks a segment as having a rescan in flight.
func (s *Scheduler) claim(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[id] {
		return false
	}
	s.inflight[id] = true
	return true
}

func (s *Scheduler) release(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
}

// track follows one rescan to its terminal state and stamps the
// segment row when the job completes.
func (s *Scheduler) track(segment *db.NetworkSegment, jobID uuid.UUID) {
	defer s.wg.Done()
	defer s.release(segment.ID)

	job, err := s.awaitJob(jobID)
	if err != nil {
		metrics.IncrementSegmentRescans("lost")
		s.logger.Warn("Segment rescan not tracked to completion",
			"segment", segment.Name,
			"job_id", jobID,
			"error", err)
		return
	}

	if job.Status != db.ScanJobStatusCompleted {
		metrics.IncrementSegmentRescans(job.Status)
		s.logger.Warn("Segment rescan did not complete",
			"segment", segment.Name,
			"job_id", jobID,
			"status", job.Status)
		return
	}

	// Recording still happens during shutdown; the result is already
	// in the inventory.
	ctx, cancel := context.WithTimeout(context.Background(), recordGrace)
	defer cancel()

	count, err := s.stores.Devices.CountInNetwork(ctx, segment.CIDR)
	if err != nil {
		s.logger.Error("Failed to count devices after rescan",
			"segment", segment.Name,
			"error", err)
		return
	}

	if err := s.stores.Segments.RecordScan(ctx, segment.ID, count); err != nil {
		s.logger.Error("Failed to record segment rescan",
			"segment", segment.Name,
			"error", err)
		return
	}

	metrics.IncrementSegmentRescans("completed")
	s.logger.Info("Segment rescan recorded",
		"segment", segment.Name,
		"job_id", jobID,
		"devices", count)
}

// awaitJob polls the job store until the job is terminal, the wait
// budget is spent, or the scheduler shuts down.
func (s *Scheduler) awaitJob(jobID uuid.UUID) (*db.ScanJob, error) {
	deadline := time.NewTimer(s.config.JobWait)
	defer deadline.Stop()
	poll := time.NewTicker(s.config.PollInterval)
	defer poll.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return nil, s.ctx.Err()

		case <-deadline.C:
			return nil, fmt.Errorf("job %s not terminal after %s", jobID, s.config.JobWait)

		case <-poll.C:
			job, err := s.stores.Jobs.GetByID(s.ctx, jobID)
			if err != nil {
				continue
			}
			if job.IsTerminal() {
				return job, nil
			}
		}
	}
}
