package handlers

import (
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/rwilliamspbg-ops/Chefs-Canvas/internal/llm"
)

// HealthHandler serves liveness and readiness. Readiness covers the two
// things the service cannot work without: Redis for video job records and
// at least one configured model capability.
type HealthHandler struct {
	redis   *redis.Client
	gateway *llm.Gateway
}

func NewHealthHandler(rdb *redis.Client, gw *llm.Gateway) *HealthHandler {
	return &HealthHandler{redis: rdb, gateway: gw}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ready := true
	checks := map[string]string{}

	if h.redis != nil {
		if err := h.redis.Ping(r.Context()).Err(); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	}

	anyCapability := false
	for _, s := range h.gateway.Status() {
		if s.Ready {
			anyCapability = true
			checks["capability:"+string(s.Capability)] = s.Provider
		}
	}
	if !anyCapability {
		checks["capabilities"] = "no provider configured"
		ready = false
	}

	status := http.StatusOK
	statusText := "ok"
	if !ready {
		status = http.StatusServiceUnavailable
		statusText = "unhealthy"
	}

	writeJSON(w, status, map[string]interface{}{"status": statusText, "checks": checks})
}
