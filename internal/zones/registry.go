package zones

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Registry is the read-only zone lookup built once at startup. Thread-safe
// by immutability: nothing mutates it after NewRegistry returns.
type Registry struct {
	zones       map[string]*Zone
	cameraIndex map[string]string
	ordered     []*Zone
}

// NewRegistry validates the zone list and builds the camera index.
// A camera listed under more than one zone is a hard error: reverse lookup
// must be unambiguous for offline alerting.
func NewRegistry(list []Zone) (*Registry, error) {
	r := &Registry{
		zones:       make(map[string]*Zone, len(list)),
		cameraIndex: make(map[string]string),
	}
	for i := range list {
		z := list[i]
		z.applyDefaults()
		if err := z.validate(); err != nil {
			return nil, err
		}
		if _, dup := r.zones[z.ZoneID]; dup {
			return nil, fmt.Errorf("duplicate zone_id %q", z.ZoneID)
		}
		for _, cameraID := range z.CameraIDs {
			if owner, dup := r.cameraIndex[cameraID]; dup {
				return nil, fmt.Errorf("camera %q listed in zones %q and %q", cameraID, owner, z.ZoneID)
			}
			r.cameraIndex[cameraID] = z.ZoneID
		}
		r.zones[z.ZoneID] = &z
		r.ordered = append(r.ordered, &z)
	}
	return r, nil
}

type zoneFile struct {
	Zones []Zone `yaml:"zones"`
}

// LoadFile reads the declarative zone list. A missing or malformed file is
// fatal to startup, so errors here are returned as-is for main to die on.
func LoadFile(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read zone config: %w", err)
	}
	var file zoneFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse zone config %s: %w", path, err)
	}
	reg, err := NewRegistry(file.Zones)
	if err != nil {
		return nil, fmt.Errorf("zone config %s: %w", path, err)
	}
	return reg, nil
}

// GetZone is an exact lookup, no fallback.
func (r *Registry) GetZone(zoneID string) *Zone {
	return r.zones[zoneID]
}

// ZoneForCamera resolves the owning zone via the camera index.
func (r *Registry) ZoneForCamera(cameraID string) *Zone {
	zoneID, ok := r.cameraIndex[cameraID]
	if !ok {
		return nil
	}
	return r.zones[zoneID]
}

// Zones returns the zones in config order.
func (r *Registry) Zones() []*Zone {
	return r.ordered
}

func (r *Registry) Len() int {
	return len(r.ordered)
}
