package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/sentinelsec/sentinel/internal/db"
	"github.com/sentinelsec/sentinel/internal/metrics"
	"github.com/sentinelsec/sentinel/internal/orchestrator"
)

// ScanController submits and cancels scan jobs.
type ScanController interface {
	Submit(ctx context.Context, req orchestrator.SubmitRequest) (*db.ScanJob, error)
	Cancel(ctx context.Context, jobID uuid.UUID) error
	ActiveJobs() int
}

// ScanJobStore reads scan jobs from storage.
type ScanJobStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*db.ScanJob, error)
	List(ctx context.Context, filters db.ScanJobFilters, offset, limit int) ([]*db.ScanJob, int64, error)
}

// ScanHandler handles scan job API endpoints.
type ScanHandler struct {
	controller ScanController
	jobs       ScanJobStore
	logger     *slog.Logger
	metrics    metrics.MetricsRegistry
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(
	controller ScanController,
	jobs ScanJobStore,
	logger *slog.Logger,
	metricsRegistry metrics.MetricsRegistry,
) *ScanHandler {
	return &ScanHandler{
		controller: controller,
		jobs:       jobs,
		logger:     logger.With("handler", "scans"),
		metrics:    metricsRegistry,
	}
}

// CreateScanRequest represents a scan job submission.
type CreateScanRequest struct {
	Kind        string `json:"kind" validate:"required"`
	Target      string `json:"target" validate:"required"`
	OSDetection *bool  `json:"os_detection,omitempty"`
	CreatedBy   string `json:"created_by,omitempty" validate:"omitempty,max=255"`
}

// CreateScan handles POST /api/v1/scans.
func (h *ScanHandler) CreateScan(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestIDFromContext(r.Context())

	var req CreateScanRequest
	if err := parseAndValidate(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	job, err := h.controller.Submit(r.Context(), orchestrator.SubmitRequest{
		Kind:      req.Kind,
		Target:    req.Target,
		Options:   orchestrator.Options{OSDetection: req.OSDetection},
		CreatedBy: req.CreatedBy,
	})
	if err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Failed to submit scan job",
				"request_id", requestID,
				"kind", req.Kind,
				"target", req.Target,
				"error", err)
		}
		writeError(w, r, status, err)
		return
	}

	h.logger.Info("Scan job submitted",
		"request_id", requestID,
		"job_id", job.ID,
		"kind", job.Kind,
		"target", job.Target)

	recordHandlerMetric(h.metrics, "api_scans_submitted_total", map[string]string{
		"kind": job.Kind,
	})

	writeJSON(w, r, http.StatusAccepted, job)
}

// ListScans handles GET /api/v1/scans.
func (h *ScanHandler) ListScans(w http.ResponseWriter, r *http.Request) {
	op := &ListOperation[*db.ScanJob, db.ScanJobFilters]{
		EntityType: "scan jobs",
		MetricName: "api_scans_listed_total",
		Logger:     h.logger,
		Metrics:    h.metrics,
		GetFilters: func(r *http.Request) db.ScanJobFilters {
			return db.ScanJobFilters{
				Status: r.URL.Query().Get("status"),
				Kind:   r.URL.Query().Get("kind"),
			}
		},
		ListFromDB: h.jobs.List,
		ToResponse: func(job *db.ScanJob) interface{} { return job },
	}
	op.Execute(w, r)
}

// GetScan handles GET /api/v1/scans/{id}.
func (h *ScanHandler) GetScan(w http.ResponseWriter, r *http.Request) {
	id, err := extractUUIDFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	job, err := h.jobs.GetByID(r.Context(), id)
	if err != nil {
		handleDatabaseError(w, r, err, "get", "scan job", h.logger)
		return
	}

	writeJSON(w, r, http.StatusOK, job)
}

// CancelScan handles POST /api/v1/scans/{id}/cancel.
func (h *ScanHandler) CancelScan(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestIDFromContext(r.Context())

	id, err := extractUUIDFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	if err := h.controller.Cancel(r.Context(), id); err != nil {
		status := statusForError(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Failed to cancel scan job",
				"request_id", requestID,
				"job_id", id,
				"error", err)
		}
		writeError(w, r, status, err)
		return
	}

	h.logger.Info("Scan job cancellation requested",
		"request_id", requestID,
		"job_id", id)

	recordHandlerMetric(h.metrics, "api_scans_cancelled_total", nil)

	writeJSON(w, r, http.StatusAccepted, map[string]interface{}{
		"id":      id,
		"status":  "cancelling",
		"message": fmt.Sprintf("cancellation requested for scan job %s", id),
	})
}
