package handlers

import (
	"net/http"

	"tierfs-backend/internal/health"
	"tierfs-backend/internal/monitoring"
	"tierfs-backend/internal/nas"
)

type HealthHandler struct {
	checker *health.HealthChecker
	probe   *nas.Probe
}

func NewHealthHandler(checker *health.HealthChecker, probe *nas.Probe) *HealthHandler {
	return &HealthHandler{checker: checker, probe: probe}
}

// GetHealth returns process and database health.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := h.checker.CheckBasic()

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// GetNASHealth runs one NAS probe and returns its result. The probe never
// errors; failures come back as an unhealthy result body.
func (h *HealthHandler) GetNASHealth(w http.ResponseWriter, r *http.Request) {
	result := h.probe.CheckHealth(r.Context())

	monitoring.NASProbesTotal.WithLabelValues(result.Status).Inc()
	monitoring.NASProbeDuration.Observe(float64(result.ResponseTimeMs) / 1000)
	if result.Capacity != nil {
		monitoring.NASFreeBytes.Set(float64(result.Capacity.FreeBytes))
	}

	code := http.StatusOK
	if result.Status == nas.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, result)
}
