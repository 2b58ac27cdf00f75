package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

var startTime = time.Now()

// ReadinessProbe reports whether a named dependency is ready to serve.
type ReadinessProbe struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandlers answers liveness and readiness checks.
type HealthHandlers struct {
	probes []ReadinessProbe
}

// NewHealthHandlers constructs health handlers with optional readiness probes.
func NewHealthHandlers(probes ...ReadinessProbe) *HealthHandlers {
	return &HealthHandlers{probes: probes}
}

// Healthz responds with a simple status payload for liveness monitoring.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeHealthPayload(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(startTime).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readyz runs every probe and reports per-dependency status.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	checks := make(map[string]string, len(h.probes))
	for _, probe := range h.probes {
		if probe.Check == nil {
			continue
		}
		if err := probe.Check(r.Context()); err != nil {
			checks[probe.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[probe.Name] = "ok"
	}

	payload := map[string]any{
		"status": "ok",
		"checks": checks,
	}
	if status != http.StatusOK {
		payload["status"] = "degraded"
	}
	writeHealthPayload(w, status, payload)
}

func writeHealthPayload(w http.ResponseWriter, status int, payload map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
