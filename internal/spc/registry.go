package spc

import (
	"sort"
	"sync"

	"github.com/jschlyter/spc2mqtt/internal/log"
	"github.com/tidwall/gjson"
)

// registry holds the entity maps built by a load. The maps are only ever
// replaced wholesale; individual entities handle their own locking.
type registry struct {
	mu    sync.RWMutex
	info  *Panel
	areas map[string]*Area
	zones map[string]*Zone
}

func newRegistry() *registry {
	return &registry{
		areas: map[string]*Area{},
		zones: map[string]*Zone{},
	}
}

func (r *registry) replace(info *Panel, areas map[string]*Area, zones map[string]*Zone) {
	r.mu.Lock()
	r.info = info
	r.areas = areas
	r.zones = zones
	r.mu.Unlock()
}

func (r *registry) panelInfo() *Panel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.info
}

func (r *registry) area(id string) (*Area, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.areas[id]
	return a, ok
}

func (r *registry) zone(id string) (*Zone, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	z, ok := r.zones[id]
	return z, ok
}

func (r *registry) allAreas() []*Area {
	r.mu.RLock()
	defer r.mu.RUnlock()
	areas := make([]*Area, 0, len(r.areas))
	for _, a := range r.areas {
		areas = append(areas, a)
	}
	sort.Slice(areas, func(i, j int) bool { return areas[i].id < areas[j].id })
	return areas
}

func (r *registry) allZones() []*Zone {
	r.mu.RLock()
	defer r.mu.RUnlock()
	zones := make([]*Zone, 0, len(r.zones))
	for _, z := range r.zones {
		zones = append(zones, z)
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].id < zones[j].id })
	return zones
}

// buildEntities turns raw area and zone records into linked entities. Zones
// are attached to their owning area; records without an id and zones that
// reference an unknown area are skipped with a warning.
func buildEntities(areaRecs, zoneRecs []gjson.Result, logger *log.Logger) (map[string]*Area, map[string]*Zone) {
	areas := make(map[string]*Area, len(areaRecs))
	zones := make(map[string]*Zone, len(zoneRecs))
	claimed := make(map[int]bool, len(zoneRecs))

	for _, rec := range areaRecs {
		a := newArea(rec)
		if a == nil {
			logger.Warning("Skipping area record without an id: %s", rec.Raw)
			continue
		}
		for i, zrec := range zoneRecs {
			if zrec.Get("area").String() != a.id {
				continue
			}
			claimed[i] = true
			z := newZone(a, zrec)
			if z == nil {
				logger.Warning("Skipping zone record without an id: %s", zrec.Raw)
				continue
			}
			a.zones = append(a.zones, z)
			zones[z.id] = z
		}
		areas[a.id] = a
	}

	for i, zrec := range zoneRecs {
		if !claimed[i] {
			logger.Warning("Zone %s references unknown area %s",
				zrec.Get("id").String(), zrec.Get("area").String())
		}
	}
	return areas, zones
}
