package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/circletel/payments/infra/response"
	"github.com/circletel/payments/provider"
)

// HealthHandler handles health and readiness probes
type HealthHandler struct {
	service *provider.PaymentService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service *provider.PaymentService) *HealthHandler {
	return &HealthHandler{service: service}
}

// Liveness reports that the process is up
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "OK", map[string]any{
		"status": "up",
		"time":   time.Now().UTC(),
	})
}

// ProviderHealth fans out health checks to every available provider and
// reports all results
func (h *HealthHandler) ProviderHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	results := h.service.HealthCheckAll(ctx)

	healthy := true
	for _, result := range results {
		if !result.Healthy {
			healthy = false
			break
		}
	}

	data := map[string]any{
		"healthy":   healthy,
		"providers": results,
	}

	if store := h.service.Store(); store != nil {
		if stats, err := store.GetStats(); err == nil {
			data["storage"] = stats
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	response.Success(w, status, "Provider health", data)
}
