package spc

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/jschlyter/spc2mqtt/internal/util"
	"github.com/tidwall/gjson"
)

// Area is one alarm area of the panel. All fields that change at runtime are
// replaced together under the lock, so readers never see a half-applied
// record.
type Area struct {
	id   string
	name string

	mu            sync.RWMutex
	mode          AreaMode
	lastChanged   time.Time
	lastChangedBy string
	verifiedAlarm bool

	zones []*Zone
}

func newArea(rec gjson.Result) *Area {
	id := rec.Get("id").String()
	if id == "" {
		return nil
	}
	a := &Area{
		id:   id,
		name: util.Normalize(rec.Get("name").String()),
	}
	a.update(rec, "")
	return a
}

func (a *Area) update(rec gjson.Result, siaCode string) {
	if !rec.Exists() {
		return
	}
	mode := parseAreaMode(rec.Get("mode").String())
	changed, changedBy := lastChange(rec, mode)

	a.mu.Lock()
	a.mode = mode
	a.lastChanged = changed
	a.lastChangedBy = changedBy
	a.verifiedAlarm = siaCode == "BV"
	a.mu.Unlock()
}

// lastChange picks the set or unset timestamp pair depending on the mode the
// record reports.
func lastChange(rec gjson.Result, mode AreaMode) (time.Time, string) {
	prefix := "last_set"
	if mode == ModeUnset {
		prefix = "last_unset"
	}
	var changed time.Time
	if epoch, err := strconv.ParseInt(rec.Get(prefix+"_time").String(), 10, 64); err == nil {
		changed = time.Unix(epoch, 0).UTC()
	}
	return changed, util.Normalize(rec.Get(prefix + "_user_name").String())
}

func (a *Area) ID() string   { return a.id }
func (a *Area) Name() string { return a.name }

// Mode returns the current arming state.
func (a *Area) Mode() AreaMode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

// LastChanged returns when the area was last set or unset. The zero time
// means the gateway did not report a timestamp.
func (a *Area) LastChanged() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastChanged
}

// LastChangedBy returns the user that last set or unset the area.
func (a *Area) LastChangedBy() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastChangedBy
}

// VerifiedAlarm reports whether the latest update was a verified burglary
// alarm. It is cleared again by the next update of any kind.
func (a *Area) VerifiedAlarm() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.verifiedAlarm
}

// Zones returns the zones belonging to this area.
func (a *Area) Zones() []*Zone {
	return append([]*Zone(nil), a.zones...)
}

// SupportedSIACodes lists the codes that target a single area.
func (a *Area) SupportedSIACodes() []string { return AreaSIACodes }

// State returns a consistent copy of the mutable fields.
func (a *Area) State() AreaSnapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return AreaSnapshot{
		ID:            a.id,
		Name:          a.name,
		Mode:          a.mode,
		LastChanged:   a.lastChanged,
		LastChangedBy: a.lastChangedBy,
		VerifiedAlarm: a.verifiedAlarm,
	}
}

func (a *Area) String() string {
	return fmt.Sprintf("%s: %s (%s)", a.id, a.name, a.Mode())
}

func (a *Area) areaID() string { return a.id }
