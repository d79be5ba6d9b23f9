package api

import (
	"encoding/json"
	"net/http"

	"github.com/technosupport/ts-alert-relay/internal/zones"
)

type ZoneHandler struct {
	Registry *zones.Registry
}

func NewZoneHandler(reg *zones.Registry) *ZoneHandler {
	return &ZoneHandler{Registry: reg}
}

// zoneView is the read model exposed to dashboards.
type zoneView struct {
	ZoneID               string   `json:"zone_id"`
	SiteID               string   `json:"site_id"`
	CameraIDs            []string `json:"camera_ids"`
	Severity             string   `json:"severity"`
	Timezone             string   `json:"timezone,omitempty"`
	WindowCount          int      `json:"window_count"`
	AlertDestinations    []string `json:"alert_destinations"`
	SuppressionWindowSec int      `json:"suppression_window_sec"`
	DedupeWindowSec      int      `json:"dedupe_window_sec"`
}

// ListZones returns the loaded zone configuration in config order.
func (h *ZoneHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	all := h.Registry.Zones()
	views := make([]zoneView, 0, len(all))
	for _, z := range all {
		views = append(views, zoneView{
			ZoneID:               z.ZoneID,
			SiteID:               z.SiteID,
			CameraIDs:            z.CameraIDs,
			Severity:             string(z.Severity),
			Timezone:             z.ActiveSchedule.Timezone,
			WindowCount:          len(z.ActiveSchedule.Windows),
			AlertDestinations:    z.AlertDestinations,
			SuppressionWindowSec: z.SuppressionWindowSec,
			DedupeWindowSec:      z.DedupeWindowSec,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"zones": views})
}
