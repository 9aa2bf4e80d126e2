package usecase

import (
	"context"
	"log/slog"
	"sort"

	"expensetracker/src/core/ports"
	"expensetracker/src/infra/logger"
)

// HealthService reports the reachability of the application's dependencies.
type HealthService struct {
	log        *slog.Logger
	components map[string]ports.ExternalService
}

// NewHealthService creates a new HealthService. components maps a display
// name (e.g. "store") to the dependency to ping.
func NewHealthService(log *slog.Logger, components map[string]ports.ExternalService) *HealthService {
	return &HealthService{
		log:        log,
		components: components,
	}
}

// HealthStatus represents the health of the application.
type HealthStatus struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// ComponentHealth represents the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Check pings every registered component. The overall status is "degraded"
// when any component is unhealthy.
func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:     "ok",
		Components: make(map[string]ComponentHealth, len(s.components)),
	}

	names := make([]string, 0, len(s.components))
	for name := range s.components {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.components[name].Health(ctx); err != nil {
			logger.Warn(s.log, "health check failed", "component", name, "error", err)
			status.Status = "degraded"
			status.Components[name] = ComponentHealth{
				Status:  "unhealthy",
				Message: err.Error(),
			}
			continue
		}
		status.Components[name] = ComponentHealth{Status: "healthy"}
	}

	return status
}
