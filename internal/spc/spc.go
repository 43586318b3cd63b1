// Package spc mirrors the state of a Vanderbilt SPC panel reachable through
// an SPC Web Gateway. A full picture of the panel, its areas and its zones
// is fetched over REST once, then kept current by re-fetching whatever the
// websocket event stream reports as changed. Commands go the other way over
// the same REST API.
package spc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jschlyter/spc2mqtt/internal/log"
)

var (
	// ErrLoadFailed is returned when the gateway does not hand back a
	// usable set of zones and areas.
	ErrLoadFailed = errors.New("initial load failed")

	// ErrAlreadyStarted is returned by Start while the event stream is
	// already running.
	ErrAlreadyStarted = errors.New("event stream already started")
)

const defaultHTTPTimeout = 10 * time.Second

// Config configures a Gateway client.
type Config struct {
	// APIURL is the base URL of the SPC Web Gateway REST API, e.g.
	// http://192.168.1.10:8088.
	APIURL string
	// WSURL is the websocket URL events are streamed from, e.g.
	// ws://192.168.1.10:8088/ws/spc.
	WSURL string
	// Username and Password are attached to every request when set.
	Username string
	Password string
	// HTTPClient overrides the client used for REST calls.
	HTTPClient *http.Client
	// CallbackWorkers and CallbackQueue size the update dispatch pool.
	// Zero picks the defaults.
	CallbackWorkers int
	CallbackQueue   int
}

// UpdateFunc receives one entity per affected entity per event. It runs on a
// dispatch worker, never on the stream loop, so it may block briefly without
// holding up event processing.
type UpdateFunc func(Entity)

// Gateway is the client facade: registry access, the event stream and the
// command API behind one type. All methods are safe for concurrent use.
type Gateway struct {
	wsURL string
	log   *log.Logger

	reg   *registry
	fetch *fetcher
	cmd   *commands
	route *router
	disp  *dispatcher

	cbMu sync.RWMutex
	cb   UpdateFunc

	wsMu sync.Mutex
	ws   *wsClient
}

func New(cfg Config, logger *log.Logger) (*Gateway, error) {
	if cfg.WSURL == "" {
		return nil, fmt.Errorf("ws url is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	fetch, err := newFetcher(cfg.APIURL, client, cfg.Username, cfg.Password, logger)
	if err != nil {
		return nil, err
	}

	g := &Gateway{
		wsURL: cfg.WSURL,
		log:   logger,
		reg:   newRegistry(),
		fetch: fetch,
	}
	g.cmd = &commands{fetch: fetch, log: logger}
	g.disp = newDispatcher(cfg.CallbackWorkers, cfg.CallbackQueue, g.invokeCallback, logger)
	g.route = newRouter(g.reg, fetch, g.notifySubscriber, logger)
	return g, nil
}

// OnUpdate registers the callback invoked after an entity has been updated
// by a push event. Passing nil unsubscribes.
func (g *Gateway) OnUpdate(fn UpdateFunc) {
	g.cbMu.Lock()
	g.cb = fn
	g.cbMu.Unlock()
}

func (g *Gateway) invokeCallback(entity Entity) {
	g.cbMu.RLock()
	cb := g.cb
	g.cbMu.RUnlock()
	if cb != nil {
		cb(entity)
	}
}

func (g *Gateway) notifySubscriber(entity Entity) {
	g.cbMu.RLock()
	subscribed := g.cb != nil
	g.cbMu.RUnlock()
	if subscribed {
		g.disp.enqueue(entity)
	}
}

// Load fetches the panel info and the full zone and area lists and swaps
// them in as the new registry. Missing panel info is tolerated; missing
// zones or areas fail the load and leave the previous registry in place.
func (g *Gateway) Load(ctx context.Context) error {
	var info *Panel
	if recs, ok := g.fetch.all(ctx, ResourcePanel); ok && len(recs) > 0 {
		info = parsePanel(recs[0])
	}
	if info == nil {
		g.log.Warning("Could not fetch panel information, continuing without it")
	}

	zoneRecs, _ := g.fetch.all(ctx, ResourceZone)
	areaRecs, _ := g.fetch.all(ctx, ResourceArea)
	if len(zoneRecs) == 0 || len(areaRecs) == 0 {
		return fmt.Errorf("%w: gateway returned no zones or areas", ErrLoadFailed)
	}

	areas, zones := buildEntities(areaRecs, zoneRecs, g.log)
	g.reg.replace(info, areas, zones)
	g.log.Info("Loaded %d areas and %d zones", len(areas), len(zones))
	return nil
}

// Info returns the panel information block, or nil when it could not be
// fetched.
func (g *Gateway) Info() *Panel {
	return g.reg.panelInfo()
}

// Areas returns all registered areas ordered by id.
func (g *Gateway) Areas() []*Area {
	return g.reg.allAreas()
}

// Zones returns all registered zones ordered by id.
func (g *Gateway) Zones() []*Zone {
	return g.reg.allZones()
}

// Area looks up a registered area by id.
func (g *Gateway) Area(id string) (*Area, bool) {
	return g.reg.area(id)
}

// Zone looks up a registered zone by id.
func (g *Gateway) Zone(id string) (*Zone, bool) {
	return g.reg.zone(id)
}

// Snapshot returns a copy of the full mirrored state.
func (g *Gateway) Snapshot() Snapshot {
	snap := Snapshot{Panel: g.reg.panelInfo()}
	for _, a := range g.reg.allAreas() {
		snap.Areas = append(snap.Areas, a.State())
	}
	for _, z := range g.reg.allZones() {
		snap.Zones = append(snap.Zones, z.State())
	}
	return snap
}

// Restore rebuilds the registry from a snapshot, typically one saved by an
// earlier run when the gateway is unreachable at startup. Zones referencing
// an area missing from the snapshot are skipped.
func (g *Gateway) Restore(snap Snapshot) error {
	if len(snap.Areas) == 0 || len(snap.Zones) == 0 {
		return fmt.Errorf("%w: snapshot has no zones or areas", ErrLoadFailed)
	}

	areas := make(map[string]*Area, len(snap.Areas))
	for _, as := range snap.Areas {
		areas[as.ID] = &Area{
			id:            as.ID,
			name:          as.Name,
			mode:          as.Mode,
			lastChanged:   as.LastChanged,
			lastChangedBy: as.LastChangedBy,
			verifiedAlarm: as.VerifiedAlarm,
		}
	}
	zones := make(map[string]*Zone, len(snap.Zones))
	for _, zs := range snap.Zones {
		owner, ok := areas[zs.AreaID]
		if !ok {
			g.log.Warning("Zone %s references unknown area %s", zs.ID, zs.AreaID)
			continue
		}
		z := &Zone{
			id:     zs.ID,
			name:   zs.Name,
			area:   owner,
			input:  zs.Input,
			status: zs.Status,
			alarm:  zs.Alarm,
		}
		owner.zones = append(owner.zones, z)
		zones[z.id] = z
	}

	g.reg.replace(snap.Panel, areas, zones)
	g.log.Info("Restored %d areas and %d zones from snapshot", len(areas), len(zones))
	return nil
}

// Start connects the event stream and keeps it connected until Stop.
func (g *Gateway) Start() error {
	g.wsMu.Lock()
	defer g.wsMu.Unlock()
	if g.ws != nil {
		return ErrAlreadyStarted
	}
	g.log.Info("Starting event stream")
	g.ws = newWSClient(g.wsURL, g.route.handle, g.log)
	g.ws.start()
	return nil
}

// Stop disconnects the event stream. The registry stays usable and Start
// may be called again.
func (g *Gateway) Stop() {
	g.wsMu.Lock()
	ws := g.ws
	g.ws = nil
	g.wsMu.Unlock()
	if ws != nil {
		ws.stop()
		g.log.Info("Event stream stopped")
	}
}

// Close stops the event stream and the callback workers. The Gateway must
// not be used afterwards.
func (g *Gateway) Close() {
	g.Stop()
	g.disp.stop()
}

// ChangeMode asks the panel to put an area into the given mode. The mirror
// is not touched here: the resulting state change comes back through the
// event stream like any other.
func (g *Gateway) ChangeMode(ctx context.Context, area AreaRef, mode AreaMode) error {
	return g.cmd.setMode(ctx, area.areaID(), mode)
}
