// Package api provides the HTTP REST API for the Sentinel network scanner.
// It implements endpoints for scan jobs, device inventory, vulnerabilities,
// threat alerts, network segments, and system status.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/sentinelsec/sentinel/docs/swagger" // Import generated swagger docs
	"github.com/sentinelsec/sentinel/internal/api/handlers"
	"github.com/sentinelsec/sentinel/internal/api/middleware"
	"github.com/sentinelsec/sentinel/internal/auth"
	"github.com/sentinelsec/sentinel/internal/config"
	"github.com/sentinelsec/sentinel/internal/db"
	"github.com/sentinelsec/sentinel/internal/logging"
	"github.com/sentinelsec/sentinel/internal/metrics"
)

// Server timeout constants.
const (
	serverShutdownTimeout = 30 * time.Second
)

// Dependencies carries the components the API serves. Database and Keys
// may be nil; the affected endpoints then degrade or reject.
type Dependencies struct {
	Store      *db.Store
	Database   *db.DB
	Controller handlers.ScanController
	Analyst    handlers.Analyst
	Keys       *auth.Store
	Logger     *slog.Logger
	Metrics    metrics.MetricsRegistry
}

// Server represents the API server.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	config     *config.Config
	apiConfig  Config
	deps       Dependencies
	manager    *handlers.Manager
	logger     *slog.Logger
	metrics    metrics.MetricsRegistry
}

// Config holds API server configuration.
type Config struct {
	Host              string        `yaml:"host" json:"host"`
	Port              int           `yaml:"port" json:"port"`
	ReadTimeout       time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	MaxHeaderBytes    int           `yaml:"max_header_bytes" json:"max_header_bytes"`
	RequestTimeout    time.Duration `yaml:"request_timeout" json:"request_timeout"`
	EnableCORS        bool          `yaml:"enable_cors" json:"enable_cors"`
	CORSOrigins       []string      `yaml:"cors_origins" json:"cors_origins"`
	CORSHeaders       []string      `yaml:"cors_headers" json:"cors_headers"`
	CORSMethods       []string      `yaml:"cors_methods" json:"cors_methods"`
	RateLimitEnabled  bool          `yaml:"rate_limit_enabled" json:"rate_limit_enabled"`
	RateLimitRequests int           `yaml:"rate_limit_requests" json:"rate_limit_requests"`
	RateLimitWindow   time.Duration `yaml:"rate_limit_window" json:"rate_limit_window"`
	AuthEnabled       bool          `yaml:"auth_enabled" json:"auth_enabled"`
}

// DefaultConfig returns default API server configuration.
func DefaultConfig() Config {
	return Config{
		Host:              "127.0.0.1",
		Port:              8080,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
		RequestTimeout:    30 * time.Second,
		EnableCORS:        true,
		CORSOrigins:       []string{"*"},
		CORSHeaders:       []string{"Content-Type", "Authorization", "X-API-Key"},
		CORSMethods:       []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		RateLimitEnabled:  true,
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		AuthEnabled:       false,
	}
}

// New creates a new API server instance.
func New(cfg *config.Config, deps Dependencies) (*Server, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("api server requires a store")
	}

	logger := deps.Logger
	if logger == nil {
		logger = logging.Default().Logger
	}
	logger = logger.With("component", "api")

	metricsRegistry := deps.Metrics
	if metricsRegistry == nil {
		metricsRegistry = metrics.NewRegistry()
	}

	apiConfig := getAPIConfigFromConfig(cfg)
	// Auth turns on when any credential source is configured.
	apiConfig.AuthEnabled = cfg.API.APIKey != "" || deps.Keys != nil

	handlerDeps := handlers.Dependencies{
		Store:      deps.Store,
		Controller: deps.Controller,
		Analyst:    deps.Analyst,
		Logger:     logger,
		Metrics:    metricsRegistry,
	}
	if deps.Database != nil {
		handlerDeps.Database = deps.Database
	}
	if deps.Keys != nil {
		handlerDeps.Keys = deps.Keys
	}

	server := &Server{
		router:    mux.NewRouter(),
		config:    cfg,
		apiConfig: apiConfig,
		deps:      deps,
		manager:   handlers.New(handlerDeps),
		logger:    logger,
		metrics:   metricsRegistry,
	}

	server.setupRoutes()
	server.setupMiddleware()

	server.httpServer = &http.Server{
		Addr:           net.JoinHostPort(apiConfig.Host, strconv.Itoa(apiConfig.Port)),
		Handler:        server.router,
		ReadTimeout:    apiConfig.ReadTimeout,
		WriteTimeout:   apiConfig.WriteTimeout,
		IdleTimeout:    apiConfig.IdleTimeout,
		MaxHeaderBytes: apiConfig.MaxHeaderBytes,
	}

	return server, nil
}

// Start starts the API server and blocks until the context is cancelled
// or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting API server",
		"address", s.httpServer.Addr,
		"auth_enabled", s.apiConfig.AuthEnabled,
		"tls", s.config.API.TLS.Enabled)

	errChan := make(chan error, 1)
	go func() {
		var err error
		if s.config.API.TLS.Enabled {
			err = s.httpServer.ListenAndServeTLS(s.config.API.TLS.CertFile, s.config.API.TLS.KeyFile)
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("API server failed: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return s.Stop()
	case err := <-errChan:
		return err
	}
}

// Stop gracefully stops the API server.
func (s *Server) Stop() error {
	s.logger.Info("Stopping API server")

	ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("API server shutdown error", "error", err)
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("API server stopped successfully")
	return nil
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// API version prefix
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/liveness", s.manager.Liveness).Methods("GET")
	api.HandleFunc("/readiness", s.manager.Readiness).Methods("GET")
	api.HandleFunc("/health", s.manager.Health).Methods("GET")
	api.HandleFunc("/version", s.manager.Version).Methods("GET")

	// Dashboard and network reporting
	api.HandleFunc("/dashboard", s.manager.GetDashboard).Methods("GET")
	api.HandleFunc("/network/statistics", s.manager.GetNetworkStatistics).Methods("GET")
	api.HandleFunc("/network/summary", s.manager.GetNetworkSummary).Methods("GET")
	api.HandleFunc("/network/analysis", s.manager.GetNetworkAnalysis).Methods("GET")

	// Scan jobs
	api.HandleFunc("/scans", s.manager.ListScans).Methods("GET")
	api.HandleFunc("/scans", s.manager.CreateScan).Methods("POST")
	api.HandleFunc("/scans/{id}", s.manager.GetScan).Methods("GET")
	api.HandleFunc("/scans/{id}/cancel", s.manager.CancelScan).Methods("POST")
	api.HandleFunc("/scans/{id}/ws", s.manager.StreamScan).Methods("GET")

	// Devices
	api.HandleFunc("/devices", s.manager.ListDevices).Methods("GET")
	api.HandleFunc("/devices", s.manager.CreateDevice).Methods("POST")
	api.HandleFunc("/devices/{id}", s.manager.GetDevice).Methods("GET")
	api.HandleFunc("/devices/{id}", s.manager.DeleteDevice).Methods("DELETE")
	api.HandleFunc("/devices/{id}/vulnerabilities", s.manager.GetDeviceVulnerabilities).Methods("GET")

	// Vulnerabilities
	api.HandleFunc("/vulnerabilities", s.manager.ListVulnerabilities).Methods("GET")
	api.HandleFunc("/vulnerabilities/{id}", s.manager.GetVulnerability).Methods("GET")
	api.HandleFunc("/vulnerabilities/{id}/resolve", s.manager.ResolveVulnerability).Methods("PATCH")
	api.HandleFunc("/vulnerabilities/{id}/analyze", s.manager.AnalyzeVulnerability).Methods("POST")

	// Threat alerts
	api.HandleFunc("/alerts", s.manager.ListAlerts).Methods("GET")
	api.HandleFunc("/alerts", s.manager.CreateAlert).Methods("POST")
	api.HandleFunc("/alerts/{id}", s.manager.GetAlert).Methods("GET")
	api.HandleFunc("/alerts/{id}/acknowledge", s.manager.AcknowledgeAlert).Methods("PATCH")
	api.HandleFunc("/alerts/{id}/resolve", s.manager.ResolveAlert).Methods("PATCH")
	api.HandleFunc("/alerts/{id}/recommend", s.manager.RecommendAlert).Methods("POST")

	// Network segments
	api.HandleFunc("/segments", s.manager.ListSegments).Methods("GET")
	api.HandleFunc("/segments", s.manager.CreateSegment).Methods("POST")
	api.HandleFunc("/segments/{id}", s.manager.GetSegment).Methods("GET")
	api.HandleFunc("/segments/{id}", s.manager.UpdateSegment).Methods("PUT")
	api.HandleFunc("/segments/{id}", s.manager.DeleteSegment).Methods("DELETE")

	// Admin endpoints
	api.HandleFunc("/admin/status", s.manager.GetStatus).Methods("GET")
	api.HandleFunc("/admin/keys", s.manager.ListKeys).Methods("GET")
	api.HandleFunc("/admin/keys", s.manager.CreateKey).Methods("POST")
	api.HandleFunc("/admin/keys/{id}", s.manager.RevokeKey).Methods("DELETE")

	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.HandlerFor(
		metrics.GetGlobalMetrics().GetRegistry(),
		promhttp.HandlerOpts{},
	)).Methods("GET")

	// Swagger documentation endpoints
	s.router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
	))

	// Documentation aliases
	s.router.HandleFunc("/docs", s.redirectToSwagger).Methods("GET")
	s.router.HandleFunc("/docs/", s.redirectToSwagger).Methods("GET")
	s.router.HandleFunc("/api-docs", s.redirectToSwagger).Methods("GET")

	// Root redirect - send browsers to docs, API clients to health
	s.router.HandleFunc("/", s.redirectToAPI).Methods("GET")
}

// setupMiddleware configures middleware for the API server. Order
// matters: recovery wraps everything, authentication runs last so
// rejected requests are still logged and counted.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery(s.logger))
	s.router.Use(middleware.Logging(s.logger))
	s.router.Use(middleware.Metrics(s.metrics))

	if s.apiConfig.EnableCORS {
		corsOptions := gorillahandlers.AllowedOrigins(s.apiConfig.CORSOrigins)
		corsHeaders := gorillahandlers.AllowedHeaders(s.apiConfig.CORSHeaders)
		corsMethods := gorillahandlers.AllowedMethods(s.apiConfig.CORSMethods)
		s.router.Use(gorillahandlers.CORS(corsOptions, corsHeaders, corsMethods))
	}

	s.router.Use(middleware.SecurityHeaders())

	if s.apiConfig.RateLimitEnabled {
		s.router.Use(middleware.RateLimit(s.apiConfig.RateLimitRequests, s.apiConfig.RateLimitWindow, s.logger))
	}

	s.router.Use(middleware.ContentType())

	if s.apiConfig.RequestTimeout > 0 {
		s.router.Use(middleware.RequestTimeout(s.apiConfig.RequestTimeout))
	}

	if s.apiConfig.AuthEnabled {
		s.router.Use(middleware.Authentication(s.verifyAPIKey(), s.logger))
	}
}

// verifyAPIKey builds the key check used by the authentication
// middleware. A static key from the config file is accepted alongside
// database-issued keys.
func (s *Server) verifyAPIKey() middleware.VerifyFunc {
	staticKey := []byte(s.config.API.APIKey)
	keys := s.deps.Keys

	return func(ctx context.Context, presented string) error {
		if len(staticKey) > 0 && subtle.ConstantTimeCompare(staticKey, []byte(presented)) == 1 {
			return nil
		}
		if keys != nil {
			_, err := keys.Verify(ctx, presented)
			return err
		}
		return auth.ErrInvalidKey
	}
}

// redirectToAPI returns API information for root requests.
func (s *Server) redirectToAPI(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"service": "Sentinel API",
		"version": "v1",
		"endpoints": map[string]string{
			"liveness":  "/api/v1/liveness",
			"health":    "/api/v1/health",
			"dashboard": "/api/v1/dashboard",
			"docs":      "/swagger/",
		},
		"timestamp": time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("Failed to encode API index response", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
}

// redirectToSwagger redirects to the Swagger UI.
func (s *Server) redirectToSwagger(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
}

// GetRouter returns the configured router.
func (s *Server) GetRouter() *mux.Router {
	return s.router
}

// GetAddress returns the server address.
func (s *Server) GetAddress() string {
	return s.httpServer.Addr
}

// IsRunning checks if the server is running.
func (s *Server) IsRunning() bool {
	if s.httpServer == nil {
		return false
	}

	conn, err := net.DialTimeout("tcp", s.httpServer.Addr, time.Second)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// getAPIConfigFromConfig extracts API configuration from main config.
func getAPIConfigFromConfig(cfg *config.Config) Config {
	apiConfig := DefaultConfig()

	if cfg.API.ListenAddr != "" {
		apiConfig.Host = cfg.API.ListenAddr
	}
	if cfg.API.Port != 0 {
		apiConfig.Port = cfg.API.Port
	}
	if cfg.API.RequestTimeout > 0 {
		apiConfig.RequestTimeout = cfg.API.RequestTimeout
	}

	apiConfig.EnableCORS = cfg.API.CORS.Enabled
	if len(cfg.API.CORS.AllowedOrigins) > 0 {
		apiConfig.CORSOrigins = cfg.API.CORS.AllowedOrigins
	}
	if len(cfg.API.CORS.AllowedHeaders) > 0 {
		apiConfig.CORSHeaders = cfg.API.CORS.AllowedHeaders
	}
	if len(cfg.API.CORS.AllowedMethods) > 0 {
		apiConfig.CORSMethods = cfg.API.CORS.AllowedMethods
	}

	return apiConfig
}
