package controller

import (
	"context"
	"net/http"
	"time"
)

// Check reports whether one dependency is usable.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type HealthController struct {
	checks  []Check
	timeout time.Duration
}

func NewHealthController(checks ...Check) *HealthController {
	return &HealthController{checks: checks, timeout: 2 * time.Second}
}

func (h *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthController) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness fails on the first dependency that does not answer.
func (h *HealthController) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	for _, c := range h.checks {
		if err := c.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"reason": c.Name + " unavailable",
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
