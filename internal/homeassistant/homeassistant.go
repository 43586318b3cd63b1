package homeassistant

import (
	"fmt"

	"github.com/jschlyter/spc2mqtt/internal/config"
	"github.com/jschlyter/spc2mqtt/internal/log"
	"github.com/jschlyter/spc2mqtt/internal/mqtt"
	"github.com/jschlyter/spc2mqtt/internal/spc"
)

// HomeAssistant publishes MQTT discovery configs so areas show up as alarm
// control panels and zones as binary sensors without manual YAML on the
// Home Assistant side.
type HomeAssistant struct {
	config *config.Config
	mqtt   mqtt.Publisher
	gw     *spc.Gateway
	log    *log.Logger
}

func New(cfg *config.Config, publisher mqtt.Publisher, gw *spc.Gateway, logger *log.Logger) *HomeAssistant {
	return &HomeAssistant{
		config: cfg,
		mqtt:   publisher,
		gw:     gw,
		log:    logger,
	}
}

func (ha *HomeAssistant) Start() {
	ha.log.Info("Publishing Home Assistant discovery configuration")
	ha.publishConnectivityConfig()

	for _, area := range ha.gw.Areas() {
		ha.publishAreaConfig(area)
	}
	for _, zone := range ha.gw.Zones() {
		ha.publishZoneConfig(zone)
	}
}

// device describes the panel itself so all discovered entities group under
// one device in Home Assistant.
func (ha *HomeAssistant) device() map[string]interface{} {
	device := map[string]interface{}{
		"name":         "SPC Panel",
		"manufacturer": "Vanderbilt",
		"identifiers":  []string{ha.mqtt.Topics().Prefix()},
	}
	if info := ha.gw.Info(); info != nil {
		device["name"] = fmt.Sprintf("SPC %s", info.Type)
		device["model"] = info.Variant
		device["sw_version"] = info.Version
		device["identifiers"] = []string{info.SerialNumber}
	}
	return device
}

func (ha *HomeAssistant) publishConnectivityConfig() {
	topics := ha.mqtt.Topics()
	cfg := map[string]interface{}{
		"name":         "SPC Link",
		"unique_id":    fmt.Sprintf("%s_connectivity", topics.Prefix()),
		"state_topic":  topics.Status(),
		"device_class": "connectivity",
		"payload_on":   "online",
		"payload_off":  "offline",
		"device":       ha.device(),
	}
	ha.publishConfig("binary_sensor", "connectivity", cfg)
}

func (ha *HomeAssistant) publishAreaConfig(area *spc.Area) {
	topics := ha.mqtt.Topics()
	cfg := map[string]interface{}{
		"name":               area.Name(),
		"unique_id":          fmt.Sprintf("%s_area_%s", topics.Prefix(), area.ID()),
		"state_topic":        topics.Area(area),
		"command_topic":      topics.AreaCommand(area),
		"availability_topic": topics.Status(),
		"payload_disarm":     "DISARM",
		"payload_arm_home":   "ARM_HOME",
		"payload_arm_night":  "ARM_NIGHT",
		"payload_arm_away":   "ARM_AWAY",
		"value_template":     "{{ value_json.state }}",
		"device":             ha.device(),
	}
	if override := ha.config.AreaByID(area.ID()); override != nil {
		if override.Name != "" {
			cfg["name"] = override.Name
		}
		if override.Code != "" {
			cfg["code"] = override.Code
		}
		cfg["code_arm_required"] = override.CodeArmRequired
		cfg["code_disarm_required"] = override.CodeDisarmRequired
	}

	ha.publishConfig("alarm_control_panel", fmt.Sprintf("area_%s", area.ID()), cfg)
}

func (ha *HomeAssistant) publishZoneConfig(zone *spc.Zone) {
	topics := ha.mqtt.Topics()
	override := ha.config.ZoneByID(zone.ID())
	cfg := map[string]interface{}{
		"name":               zone.Name(),
		"unique_id":          fmt.Sprintf("%s_zone_%s", topics.Prefix(), zone.ID()),
		"state_topic":        topics.Zone(zone),
		"availability_topic": topics.Status(),
		"device_class":       deviceClass(zone, override),
		"value_template":     "{{ value_json.state }}",
		"payload_on":         "ON",
		"payload_off":        "OFF",
		"device":             ha.device(),
	}
	if override != nil && override.Name != "" {
		cfg["name"] = override.Name
	}

	ha.publishConfig("binary_sensor", fmt.Sprintf("zone_%s", zone.ID()), cfg)
}

func (ha *HomeAssistant) publishConfig(component, objectID string, cfg map[string]interface{}) {
	topic := fmt.Sprintf("%s/%s/%s/%s/config",
		ha.config.HomeAssistant.Prefix, component, ha.mqtt.Topics().Prefix(), objectID)
	ha.mqtt.Publish(topic, cfg, true)
}
