package mqtt

import (
	"fmt"

	"github.com/jschlyter/spc2mqtt/internal/spc"
	"github.com/jschlyter/spc2mqtt/internal/util"
)

type Topics struct {
	prefix string
}

func NewTopics(prefix string) *Topics {
	return &Topics{prefix: prefix}
}

func (t *Topics) Prefix() string {
	return t.prefix
}

func (t *Topics) Status() string {
	return fmt.Sprintf("%s/status", t.prefix)
}

func (t *Topics) Panel() string {
	return fmt.Sprintf("%s/panel", t.prefix)
}

func (t *Topics) Area(area *spc.Area) string {
	return fmt.Sprintf("%s/area/%s", t.prefix, entitySlug(area.Name(), area.ID()))
}

func (t *Topics) AreaCommand(area *spc.Area) string {
	return fmt.Sprintf("%s/area/%s/command", t.prefix, entitySlug(area.Name(), area.ID()))
}

func (t *Topics) Zone(zone *spc.Zone) string {
	return fmt.Sprintf("%s/zone/%s", t.prefix, entitySlug(zone.Name(), zone.ID()))
}

// entitySlug falls back to the vendor id for entities whose name slugs down
// to nothing.
func entitySlug(name, id string) string {
	if slug := util.Slugify(name); slug != "" {
		return slug
	}
	return id
}
