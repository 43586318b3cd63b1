package homeassistant

import (
	"strings"

	"github.com/jschlyter/spc2mqtt/internal/config"
	"github.com/jschlyter/spc2mqtt/internal/spc"
)

// deviceClass picks a Home Assistant binary sensor class for a zone, either
// from the config override or by guessing from the zone name.
func deviceClass(zone *spc.Zone, override *config.ZoneConfig) string {
	if override != nil && override.DeviceClass != "" {
		return override.DeviceClass
	}

	name := strings.ToLower(zone.Name())
	switch {
	case strings.Contains(name, "pir"):
		return "motion"
	case strings.Contains(name, "door"), strings.Contains(name, "dörr"):
		return "door"
	case strings.Contains(name, "window"), strings.Contains(name, "fönster"):
		return "window"
	case strings.Contains(name, "smoke"), strings.Contains(name, "fire"), strings.Contains(name, "rök"):
		return "smoke"
	case strings.Contains(name, "gas"):
		return "gas"
	case strings.Contains(name, "water"), strings.Contains(name, "vatten"):
		return "moisture"
	}

	return "motion"
}
