package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"festivalpulse/internal/session"
	ws "festivalpulse/internal/websocket"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	store     *session.Store
	hub       *ws.Hub
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// VersionInfo represents build information
type VersionInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// NewHealthService creates a new health service
func NewHealthService(version, buildTime string, store *session.Store, hub *ws.Hub, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthService{
		version:   version,
		buildTime: buildTime,
		store:     store,
		hub:       hub,
		startTime: time.Now(),
		logger:    logger,
	}
}

// Health returns the current health status
func (s *HealthService) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   s.version,
		Runtime: map[string]interface{}{
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
			"uptime_seconds": time.Since(s.startTime).Seconds(),
		},
		Services: map[string]interface{}{},
	}

	if s.store != nil {
		status.Services["sessions"] = map[string]interface{}{
			"status": "healthy",
			"active": s.store.Len(),
		}
	}

	if s.hub != nil {
		status.Services["websocket"] = map[string]interface{}{
			"status":  "healthy",
			"clients": s.hub.ClientCount(),
		}
	}

	return status
}

// Version returns build information
func (s *HealthService) Version() *VersionInfo {
	return &VersionInfo{
		Version:   s.version,
		BuildTime: s.buildTime,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}
