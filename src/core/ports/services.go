package ports

import (
	"context"
)

// ExternalService is the base interface for dependencies whose reachability
// is reported by the detailed health check.
type ExternalService interface {
	// Health checks if the external service is reachable.
	Health(ctx context.Context) error
}
