package homeassistant

import (
	"testing"

	"github.com/jschlyter/spc2mqtt/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceClassFromName(t *testing.T) {
	gw := newLoadedGateway(t)
	zone, ok := gw.Zone("3")
	require.True(t, ok)

	// "Entré Dörr" matches the door heuristic
	assert.Equal(t, "door", deviceClass(zone, nil))
	assert.Equal(t, "window", deviceClass(zone, &config.ZoneConfig{ID: "3", DeviceClass: "window"}))

	hallway, ok := gw.Zone("5")
	require.True(t, ok)
	assert.Equal(t, "motion", deviceClass(hallway, nil))
}
