package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/mstgnz/gopaysafe/infra/config"
	"github.com/mstgnz/gopaysafe/infra/response"
)

// HealthSettings is the part of the settings store the health check reads
type HealthSettings interface {
	LoadSettings(storeID int) (config.PaySafeSettings, error)
	GetStats() map[string]any
}

// SearchPinger reports whether the log cluster is enabled and reachable
type SearchPinger interface {
	IsEnabled() bool
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	settings   HealthSettings
	openSearch SearchPinger
	startTime  time.Time
}

// HealthStatus represents overall system health
type HealthStatus struct {
	Status      string                    `json:"status"`
	Version     string                    `json:"version"`
	Timestamp   time.Time                 `json:"timestamp"`
	Uptime      string                    `json:"uptime"`
	Environment string                    `json:"environment"`
	Gateway     *GatewayHealth            `json:"gateway"`
	System      *SystemHealth             `json:"system"`
	Services    map[string]*ServiceHealth `json:"services"`
}

// GatewayHealth reports whether the global scope can reach the gateway
type GatewayHealth struct {
	Status     string `json:"status"`
	Configured bool   `json:"configured"`
	Sandbox    bool   `json:"sandbox"`
	Mode       string `json:"mode,omitempty"`
	Error      string `json:"error,omitempty"`
}

// SystemHealth represents system resource health
type SystemHealth struct {
	Memory     *MemoryHealth `json:"memory"`
	Disk       *DiskHealth   `json:"disk"`
	GoRoutines int           `json:"goroutines"`
	CGoCalls   int64         `json:"cgo_calls"`
}

// MemoryHealth represents memory usage
type MemoryHealth struct {
	Alloc        string  `json:"alloc"`
	TotalAlloc   string  `json:"total_alloc"`
	Sys          string  `json:"sys"`
	GCRuns       uint32  `json:"gc_runs"`
	UsagePercent float64 `json:"usage_percent"`
}

// DiskHealth represents disk usage
type DiskHealth struct {
	Available    string  `json:"available"`
	Used         string  `json:"used"`
	Total        string  `json:"total"`
	UsagePercent float64 `json:"usage_percent"`
	Status       string  `json:"status"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status      string         `json:"status"`
	Healthy     bool           `json:"healthy"`
	LastCheck   string         `json:"last_check"`
	Description string         `json:"description,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// NewHealthHandler creates a new health handler. A nil openSearch reports logging as not configured.
func NewHealthHandler(settings HealthSettings, openSearch SearchPinger) *HealthHandler {
	return &HealthHandler{
		settings:   settings,
		openSearch: openSearch,
		startTime:  time.Now(),
	}
}

// CheckHealth performs the health checks
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := &HealthStatus{
		Version:     "1.0.0",
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(h.startTime).String(),
		Environment: config.GetAppConfig().Environment,
		Gateway:     h.checkGatewayHealth(),
		System:      h.checkSystemHealth(),
		Services:    h.checkServicesHealth(ctx),
	}

	health.Status = h.determineOverallStatus(health)

	statusCode := http.StatusOK
	if health.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	_ = response.WriteJSON(w, statusCode, response.Response{
		Success: health.Status != "unhealthy",
		Message: fmt.Sprintf("Service is %s", health.Status),
		Data:    health,
	})
}

// checkGatewayHealth validates the global credentials without calling the gateway
func (h *HealthHandler) checkGatewayHealth() *GatewayHealth {
	gateway := &GatewayHealth{Status: "unknown"}
	if h.settings == nil {
		gateway.Status = "unhealthy"
		gateway.Error = "settings store not initialized"
		return gateway
	}

	settings, err := h.settings.LoadSettings(config.GlobalStoreID)
	if err != nil {
		gateway.Status = "unhealthy"
		gateway.Error = err.Error()
		return gateway
	}

	gateway.Sandbox = settings.UseSandbox
	gateway.Mode = settings.TransactMode.String()

	if err := settings.Validate(); err != nil {
		// stores may still carry their own credentials
		gateway.Status = "degraded"
		gateway.Error = err.Error()
		return gateway
	}

	gateway.Status = "healthy"
	gateway.Configured = true
	return gateway
}

// checkSystemHealth checks system resource health
func (h *HealthHandler) checkSystemHealth() *SystemHealth {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return &SystemHealth{
		Memory: &MemoryHealth{
			Alloc:        formatBytes(memStats.Alloc),
			TotalAlloc:   formatBytes(memStats.TotalAlloc),
			Sys:          formatBytes(memStats.Sys),
			GCRuns:       memStats.NumGC,
			UsagePercent: calculateMemoryUsagePercent(memStats),
		},
		Disk:       h.getDiskUsage(),
		GoRoutines: runtime.NumGoroutine(),
		CGoCalls:   runtime.NumCgoCall(),
	}
}

// checkServicesHealth checks the settings store and the log cluster
func (h *HealthHandler) checkServicesHealth(ctx context.Context) map[string]*ServiceHealth {
	now := time.Now().UTC().Format(time.RFC3339)
	services := make(map[string]*ServiceHealth)

	settings := &ServiceHealth{LastCheck: now}
	if h.settings != nil {
		settings.Status = "healthy"
		settings.Healthy = true
		settings.Description = "PaySafe settings store"
		settings.Details = h.settings.GetStats()
	} else {
		settings.Status = "unhealthy"
		settings.Error = "Settings store not initialized"
	}
	services["settings_store"] = settings

	search := &ServiceHealth{LastCheck: now}
	switch {
	case h.openSearch == nil || !h.openSearch.IsEnabled():
		search.Status = "not_configured"
		search.Description = "OpenSearch logging disabled"
	default:
		if err := h.openSearch.Ping(ctx); err != nil {
			search.Status = "unhealthy"
			search.Error = err.Error()
		} else {
			search.Status = "healthy"
			search.Healthy = true
			search.Description = "Payment logging to OpenSearch"
		}
	}
	services["opensearch"] = search

	return services
}

// determineOverallStatus determines overall system status. Logging problems only degrade the service.
func (h *HealthHandler) determineOverallStatus(health *HealthStatus) string {
	if service, exists := health.Services["settings_store"]; exists && !service.Healthy {
		return "unhealthy"
	}
	if health.Gateway != nil && health.Gateway.Status == "unhealthy" {
		return "unhealthy"
	}

	if health.Gateway != nil && health.Gateway.Status == "degraded" {
		return "degraded"
	}
	if service, exists := health.Services["opensearch"]; exists && service.Status == "unhealthy" {
		return "degraded"
	}

	if health.System != nil {
		if health.System.Memory.UsagePercent > 90 {
			return "degraded"
		}
		if health.System.Disk != nil && health.System.Disk.UsagePercent > 90 {
			return "degraded"
		}
	}

	return "healthy"
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func calculateMemoryUsagePercent(memStats runtime.MemStats) float64 {
	return (float64(memStats.Alloc) / float64(memStats.Sys)) * 100
}

// getDiskUsage reports the filesystem holding the settings database
func (h *HealthHandler) getDiskUsage() *DiskHealth {
	disk := &DiskHealth{Status: "unknown"}

	dir := filepath.Dir(config.GetAppConfig().SQLitePath)
	if _, err := os.Stat(dir); err != nil {
		dir = "/"
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(dir, &stat); err != nil {
		disk.Status = "error"
		return disk
	}

	blockSize := uint64(stat.Bsize)
	total := stat.Blocks * blockSize
	used := total - stat.Bfree*blockSize

	disk.Available = formatBytes(stat.Bavail * blockSize)
	disk.Total = formatBytes(total)
	disk.Used = formatBytes(used)
	if total > 0 {
		disk.UsagePercent = float64(used) / float64(total) * 100
	}

	switch {
	case disk.UsagePercent > 90:
		disk.Status = "critical"
	case disk.UsagePercent > 80:
		disk.Status = "warning"
	default:
		disk.Status = "healthy"
	}

	return disk
}
