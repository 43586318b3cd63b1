package spc

import "github.com/tidwall/gjson"

// Entity is what update callbacks receive: either an *Area or a *Zone. The
// interface is satisfied only within this package.
type Entity interface {
	// ID returns the id the gateway uses for this entity.
	ID() string
	// Name returns the configured name of the entity.
	Name() string

	update(rec gjson.Result, siaCode string)
}

// AreaRef identifies an area for a command, either as a registered *Area or
// as a raw AreaID.
type AreaRef interface {
	areaID() string
}

// AreaID is a raw area id usable as an AreaRef without a registry lookup.
type AreaID string

func (a AreaID) areaID() string { return string(a) }
