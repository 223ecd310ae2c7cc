package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/google/uuid"

	"github.com/sentinelsec/sentinel/internal/db"
	"github.com/sentinelsec/sentinel/internal/metrics"
)

// SegmentStore reads and writes monitored network segments.
type SegmentStore interface {
	Create(ctx context.Context, segment *db.NetworkSegment) error
	GetByID(ctx context.Context, id uuid.UUID) (*db.NetworkSegment, error)
	GetAll(ctx context.Context) ([]*db.NetworkSegment, error)
	Update(ctx context.Context, segment *db.NetworkSegment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// SegmentHandler handles network segment API endpoints.
type SegmentHandler struct {
	segments SegmentStore
	logger   *slog.Logger
	metrics  metrics.MetricsRegistry
}

// NewSegmentHandler creates a new segment handler.
func NewSegmentHandler(
	segments SegmentStore,
	logger *slog.Logger,
	metricsRegistry metrics.MetricsRegistry,
) *SegmentHandler {
	return &SegmentHandler{
		segments: segments,
		logger:   logger.With("handler", "segments"),
		metrics:  metricsRegistry,
	}
}

// SegmentRequest represents a network segment definition. The same
// shape serves create and full update.
type SegmentRequest struct {
	Name               string `json:"name" validate:"required,max=255"`
	CIDR               string `json:"cidr" validate:"required,cidr"`
	Description        string `json:"description,omitempty" validate:"omitempty,max=1000"`
	ScanFrequencyHours *int   `json:"scan_frequency_hours,omitempty" validate:"omitempty,min=1,max=8760"`
	IsMonitored        bool   `json:"is_monitored"`
}

// ListSegments handles GET /api/v1/segments. Segment counts stay small,
// so the list is not paginated.
func (h *SegmentHandler) ListSegments(w http.ResponseWriter, r *http.Request) {
	segments, err := h.segments.GetAll(r.Context())
	if err != nil {
		handleDatabaseError(w, r, err, "list", "network segments", h.logger)
		return
	}

	recordHandlerMetric(h.metrics, "api_segments_listed_total", nil)

	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"count":    len(segments),
		"segments": segments,
	})
}

// GetSegment handles GET /api/v1/segments/{id}.
func (h *SegmentHandler) GetSegment(w http.ResponseWriter, r *http.Request) {
	id, err := extractUUIDFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	segment, err := h.segments.GetByID(r.Context(), id)
	if err != nil {
		handleDatabaseError(w, r, err, "get", "network segment", h.logger)
		return
	}

	writeJSON(w, r, http.StatusOK, segment)
}

// CreateSegment handles POST /api/v1/segments.
func (h *SegmentHandler) CreateSegment(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestIDFromContext(r.Context())

	var req SegmentRequest
	if err := parseAndValidate(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	segment, err := segmentFromRequest(&req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	if err := h.segments.Create(r.Context(), segment); err != nil {
		handleDatabaseError(w, r, err, "create", "network segment", h.logger)
		return
	}

	h.logger.Info("Network segment created",
		"request_id", requestID,
		"segment_id", segment.ID,
		"name", segment.Name,
		"cidr", segment.CIDR.String())

	recordHandlerMetric(h.metrics, "api_segments_created_total", nil)

	writeJSON(w, r, http.StatusCreated, segment)
}

// UpdateSegment handles PUT /api/v1/segments/{id}.
func (h *SegmentHandler) UpdateSegment(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestIDFromContext(r.Context())

	id, err := extractUUIDFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	var req SegmentRequest
	if err := parseAndValidate(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	segment, err := segmentFromRequest(&req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	segment.ID = id

	if err := h.segments.Update(r.Context(), segment); err != nil {
		handleDatabaseError(w, r, err, "update", "network segment", h.logger)
		return
	}

	h.logger.Info("Network segment updated",
		"request_id", requestID,
		"segment_id", id)

	recordHandlerMetric(h.metrics, "api_segments_updated_total", nil)

	updated, err := h.segments.GetByID(r.Context(), id)
	if err != nil {
		handleDatabaseError(w, r, err, "get", "network segment", h.logger)
		return
	}

	writeJSON(w, r, http.StatusOK, updated)
}

// DeleteSegment handles DELETE /api/v1/segments/{id}.
func (h *SegmentHandler) DeleteSegment(w http.ResponseWriter, r *http.Request) {
	requestID := getRequestIDFromContext(r.Context())

	id, err := extractUUIDFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	if err := h.segments.Delete(r.Context(), id); err != nil {
		handleDatabaseError(w, r, err, "delete", "network segment", h.logger)
		return
	}

	h.logger.Info("Network segment deleted",
		"request_id", requestID,
		"segment_id", id)

	recordHandlerMetric(h.metrics, "api_segments_deleted_total", nil)

	w.WriteHeader(http.StatusNoContent)
}

// segmentFromRequest builds a segment record from a definition request.
func segmentFromRequest(req *SegmentRequest) (*db.NetworkSegment, error) {
	_, ipnet, err := net.ParseCIDR(req.CIDR)
	if err != nil {
		return nil, fmt.Errorf("invalid cidr: %s", req.CIDR)
	}

	segment := &db.NetworkSegment{
		ID:                 uuid.New(),
		Name:               req.Name,
		CIDR:               db.NetworkAddr{IPNet: *ipnet},
		ScanFrequencyHours: req.ScanFrequencyHours,
		IsMonitored:        req.IsMonitored,
	}
	if req.Description != "" {
		description := req.Description
		segment.Description = &description
	}

	return segment, nil
}
