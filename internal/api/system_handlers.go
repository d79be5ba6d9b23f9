package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/technosupport/ts-alert-relay/internal/zones"
)

// DBPinger verifies database connectivity for readiness checks.
type DBPinger interface {
	PingContext(ctx context.Context) error
}

type SystemHandler struct {
	Registry *zones.Registry
	DB       DBPinger // nil skips the database probe
}

func NewSystemHandler(reg *zones.Registry, db DBPinger) *SystemHandler {
	return &SystemHandler{Registry: reg, DB: db}
}

// Liveness always answers ok while the process is up.
func (h *SystemHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Readiness reports whether the relay can actually take traffic: zones
// loaded and, when wired, the database reachable.
func (h *SystemHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":       "ok",
		"zones_loaded": h.Registry.Len(),
	}
	status := http.StatusOK

	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			resp["status"] = "degraded"
			resp["database"] = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp["database"] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
