// Package handlers provides HTTP request handlers for the Sentinel API.
// This file implements the WebSocket endpoint for real-time scan job
// progress.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sentinelsec/sentinel/internal/db"
	"github.com/sentinelsec/sentinel/internal/metrics"
)

const (
	// WebSocket configuration constants.
	writeWait       = 10 * time.Second                                   // Time allowed to write a message to the peer
	pongWait        = 60 * time.Second                                   // Time to read next pong message from peer
	pingPeriodRatio = 0.9                                                // Ratio of pongWait for pingPeriod
	pingPeriod      = time.Duration(float64(pongWait) * pingPeriodRatio) // Send pings to peer (must be < pongWait)
	maxMessageSize  = 512                                                // Maximum message size allowed from peer
	jobPollInterval = time.Second                                        // How often job state is re-read
)

// StreamHandler pushes scan job progress over WebSocket connections.
// Each connection follows one job; updates are polled from the job
// store so progress written by worker goroutines is observed.
type StreamHandler struct {
	jobs     ScanJobStore
	logger   *slog.Logger
	metrics  metrics.MetricsRegistry
	upgrader websocket.Upgrader
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(
	jobs ScanJobStore,
	logger *slog.Logger,
	metricsRegistry metrics.MetricsRegistry,
) *StreamHandler {
	return &StreamHandler{
		jobs:    jobs,
		logger:  logger.With("handler", "stream"),
		metrics: metricsRegistry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Auth happens before the upgrade; origins are not restricted
				return true
			},
		},
	}
}

// WebSocketMessage represents a WebSocket message structure.
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// JobUpdateMessage represents a scan job progress update.
type JobUpdateMessage struct {
	JobID                string     `json:"job_id"`
	Status               string     `json:"status"`
	DevicesDiscovered    int        `json:"devices_discovered"`
	VulnerabilitiesFound int        `json:"vulnerabilities_found"`
	PortsScanned         int        `json:"ports_scanned"`
	StartedAt            *time.Time `json:"started_at,omitempty"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	DurationSeconds      *float64   `json:"duration_seconds,omitempty"`
	Error                string     `json:"error,omitempty"`
}

// StreamScan handles GET /api/v1/scans/{id}/ws. The connection stays
// open until the job reaches a terminal state or the client leaves.
func (h *StreamHandler) StreamScan(w http.ResponseWriter, r *http.Request) {
	id, err := extractUUIDFromPath(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	// Resolve the job before the upgrade so a missing job is a plain 404.
	job, err := h.jobs.GetByID(r.Context(), id)
	if err != nil {
		handleDatabaseError(w, r, err, "get", "scan job", h.logger)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed",
			"job_id", id,
			"error", err)
		return
	}

	h.logger.Debug("WebSocket client connected",
		"job_id", id,
		"remote_addr", r.RemoteAddr)

	recordHandlerMetric(h.metrics, "api_scan_streams_total", nil)

	h.follow(conn, job)
}

// follow runs the poll/push loop for one connection.
func (h *StreamHandler) follow(conn *websocket.Conn, job *db.ScanJob) {
	defer func() {
		if err := conn.Close(); err != nil {
			h.logger.Debug("WebSocket close failed", "error", err)
		}
	}()

	// Reader drains control frames and notices the client leaving.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(maxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// The initial state goes out immediately.
	if err := h.push(conn, job); err != nil {
		return
	}
	if job.IsTerminal() {
		h.sendClose(conn)
		return
	}

	last := snapshotJob(job)
	poll := time.NewTicker(jobPollInterval)
	defer poll.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return

		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-poll.C:
			pollCtx, cancel := context.WithTimeout(context.Background(), jobPollInterval)
			current, err := h.jobs.GetByID(pollCtx, job.ID)
			cancel()
			if err != nil {
				h.logger.Warn("Job poll failed during stream",
					"job_id", job.ID,
					"error", err)
				continue
			}

			state := snapshotJob(current)
			if state != last {
				last = state
				if err := h.push(conn, current); err != nil {
					return
				}
			}

			if current.IsTerminal() {
				h.sendClose(conn)
				return
			}
		}
	}
}

// push writes one job update message.
func (h *StreamHandler) push(conn *websocket.Conn, job *db.ScanJob) error {
	update := JobUpdateMessage{
		JobID:                job.ID.String(),
		Status:               job.Status,
		DevicesDiscovered:    job.DevicesDiscovered,
		VulnerabilitiesFound: job.VulnerabilitiesFound,
		PortsScanned:         job.PortsScanned,
		StartedAt:            job.StartedAt,
		CompletedAt:          job.CompletedAt,
		DurationSeconds:      job.DurationSeconds,
	}
	if job.ErrorMessage != nil {
		update.Error = *job.ErrorMessage
	}

	message := WebSocketMessage{
		Type:      "job_update",
		Timestamp: time.Now().UTC(),
		Data:      update,
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(message); err != nil {
		h.logger.Debug("WebSocket write failed",
			"job_id", job.ID,
			"error", err)
		return err
	}
	return nil
}

// sendClose tells the client the stream is complete.
func (h *StreamHandler) sendClose(conn *websocket.Conn) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "job finished"))
}

// jobState is the comparable progress snapshot used for change detection.
type jobState struct {
	status               string
	devicesDiscovered    int
	vulnerabilitiesFound int
	portsScanned         int
	hasError             bool
}

// snapshotJob captures the fields a client observes.
func snapshotJob(job *db.ScanJob) jobState {
	return jobState{
		status:               job.Status,
		devicesDiscovered:    job.DevicesDiscovered,
		vulnerabilitiesFound: job.VulnerabilitiesFound,
		portsScanned:         job.PortsScanned,
		hasError:             job.ErrorMessage != nil,
	}
}
