package spc

import (
	"context"

	"github.com/jschlyter/spc2mqtt/internal/log"
	"github.com/tidwall/gjson"
)

// pushMessage is one decoded SIA event from the stream.
type pushMessage struct {
	code    string
	address string
}

func decodePushMessage(raw []byte) (pushMessage, bool) {
	sia := gjson.GetBytes(raw, "data.sia")
	if !sia.Exists() {
		return pushMessage{}, false
	}
	return pushMessage{
		code:    sia.Get("sia_code").String(),
		address: sia.Get("sia_address").String(),
	}, true
}

// classification binds one namespace of SIA codes to the lookup that
// resolves addresses in it.
type classification struct {
	resource Resource
	codes    map[string]struct{}
	resolve  func(id string) (Entity, bool)
}

// router turns push messages into targeted re-fetches and subscriber
// notifications. It keeps no state between messages.
type router struct {
	reg    *registry
	fetch  *fetcher
	notify func(Entity)
	log    *log.Logger
	table  []classification
}

func newRouter(reg *registry, fetch *fetcher, notify func(Entity), logger *log.Logger) *router {
	r := &router{
		reg:    reg,
		fetch:  fetch,
		notify: notify,
		log:    logger,
	}
	r.table = []classification{
		{
			resource: ResourceArea,
			codes:    areaCodes,
			resolve: func(id string) (Entity, bool) {
				a, ok := reg.area(id)
				return a, ok
			},
		},
		{
			resource: ResourceZone,
			codes:    zoneCodes,
			resolve: func(id string) (Entity, bool) {
				z, ok := reg.zone(id)
				return z, ok
			},
		},
	}
	return r
}

func (r *router) handle(ctx context.Context, raw []byte) {
	msg, ok := decodePushMessage(raw)
	if !ok {
		r.log.Event("Discarding message without a sia envelope: %s", raw)
		return
	}
	r.log.Event("SIA code %s (%s) for ID %s", msg.code, DescribeSIACode(msg.code), msg.address)

	resource, targets, supported := r.classify(msg)
	if !supported {
		r.log.Event("Not interested in SIA code %s", msg.code)
		return
	}
	if len(targets) == 0 {
		r.log.Error("Received %s message for unregistered ID %s", msg.code, msg.address)
		return
	}

	for _, entity := range targets {
		rec, ok := r.fetch.one(ctx, resource, entity.ID())
		if !ok {
			r.log.Warning("No %s data for ID %s this cycle", resource, entity.ID())
		}
		// an absent record leaves the entity untouched, but the
		// subscriber is still told something happened to it
		entity.update(rec, msg.code)
		r.notify(entity)
	}
}

// classify resolves a message to the entities it refers to. The bool is
// false for codes outside every supported namespace.
func (r *router) classify(msg pushMessage) (Resource, []Entity, bool) {
	for _, c := range r.table {
		if _, ok := c.codes[msg.code]; !ok {
			continue
		}
		var targets []Entity
		if entity, ok := c.resolve(msg.address); ok {
			targets = append(targets, entity)
		}
		return c.resource, targets, true
	}
	if _, ok := userModeCodes[msg.code]; ok {
		// the address is a user id here on some firmware versions, so
		// refresh every area instead of resolving it
		areas := r.reg.allAreas()
		targets := make([]Entity, 0, len(areas))
		for _, a := range areas {
			targets = append(targets, a)
		}
		return ResourceArea, targets, true
	}
	return "", nil, false
}
