// Package ai provides health check integration for AI services
package ai

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Health states reported by CheckHealth
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
	StatusCritical = "critical"
)

// Pinger is an AI provider that can verify its own reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker reports whether blend search and extraction can be served
type HealthChecker struct {
	provider   string
	pinger     Pinger
	hasCatalog bool
	timeout    time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewHealthChecker creates a new AI health checker. pinger may be nil when no
// provider is configured.
func NewHealthChecker(provider string, pinger Pinger, hasCatalog bool, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		provider:   provider,
		pinger:     pinger,
		hasCatalog: hasCatalog,
		timeout:    5 * time.Second,
		logger:     logger.Named("ai-health"),
		now:        time.Now,
	}
}

// AIHealthStatus represents the health status of AI services
type AIHealthStatus struct {
	Overall   string            `json:"overall"`
	Providers map[string]bool   `json:"providers"`
	Details   map[string]string `json:"details"`
	LastCheck time.Time         `json:"last_check"`
}

// CheckHealth probes the provider. Search stays available through the
// catalog, so a failing provider with a catalog is degraded, not critical.
func (h *HealthChecker) CheckHealth(ctx context.Context) *AIHealthStatus {
	status := &AIHealthStatus{
		Providers: make(map[string]bool),
		Details:   make(map[string]string),
		LastCheck: h.now(),
	}

	providerUp := false
	if h.pinger != nil {
		healthCtx, cancel := context.WithTimeout(ctx, h.timeout)
		defer cancel()

		if err := h.pinger.Ping(healthCtx); err != nil {
			status.Details[h.provider] = "Unavailable: " + err.Error()
			h.logger.Warn("AI provider health check failed", zap.String("provider", h.provider), zap.Error(err))
		} else {
			providerUp = true
			status.Details[h.provider] = "Healthy"
		}
		status.Providers[h.provider] = providerUp
	}

	if h.hasCatalog {
		status.Providers["catalog"] = true
		status.Details["catalog"] = "Embedded"
	}

	switch {
	case providerUp:
		status.Overall = StatusHealthy
	case h.hasCatalog:
		status.Overall = StatusDegraded
	default:
		status.Overall = StatusCritical
	}

	h.logger.Debug("AI health check completed", zap.String("overall_status", status.Overall))
	return status
}
