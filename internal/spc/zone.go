package spc

import (
	"fmt"
	"sync"

	"github.com/jschlyter/spc2mqtt/internal/util"
	"github.com/tidwall/gjson"
)

// Zone is one detector input of the panel, always owned by exactly one Area.
type Zone struct {
	id   string
	name string
	area *Area

	mu     sync.RWMutex
	input  ZoneInput
	status ZoneStatus
	alarm  bool
}

func newZone(area *Area, rec gjson.Result) *Zone {
	id := rec.Get("id").String()
	if id == "" {
		return nil
	}
	z := &Zone{
		id:   id,
		name: util.Normalize(rec.Get("zone_name").String()),
		area: area,
	}
	z.update(rec, "")
	return z
}

func (z *Zone) update(rec gjson.Result, siaCode string) {
	if !rec.Exists() {
		return
	}
	input := parseZoneInput(rec.Get("input").String())
	status := parseZoneStatus(rec.Get("status").String())

	z.mu.Lock()
	z.input = input
	z.status = status
	switch siaCode {
	case "BA", "TA":
		z.alarm = true
	case "BR", "TR":
		z.alarm = false
	}
	z.mu.Unlock()
}

func (z *Zone) ID() string   { return z.id }
func (z *Zone) Name() string { return z.name }

// Area returns the area this zone belongs to.
func (z *Zone) Area() *Area { return z.area }

// Input returns the physical contact state.
func (z *Zone) Input() ZoneInput {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.input
}

// Status returns the processing state.
func (z *Zone) Status() ZoneStatus {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.status
}

// Alarm reports whether the zone has raised a burglary or tamper alarm that
// has not been restored yet.
func (z *Zone) Alarm() bool {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.alarm
}

// SupportedSIACodes lists the codes that target a single zone.
func (z *Zone) SupportedSIACodes() []string { return ZoneSIACodes }

// State returns a consistent copy of the mutable fields.
func (z *Zone) State() ZoneSnapshot {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return ZoneSnapshot{
		ID:     z.id,
		Name:   z.name,
		AreaID: z.area.ID(),
		Input:  z.input,
		Status: z.status,
		Alarm:  z.alarm,
	}
}

func (z *Zone) String() string {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return fmt.Sprintf("%s: %s (input %s, status %s)", z.id, z.name, z.input, z.status)
}
