package homeassistant

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/jschlyter/spc2mqtt/internal/config"
	"github.com/jschlyter/spc2mqtt/internal/log"
	"github.com/jschlyter/spc2mqtt/internal/mqtt"
	"github.com/jschlyter/spc2mqtt/internal/spc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	topics *mqtt.Topics

	mu       sync.Mutex
	messages map[string]interface{}
}

func newFakePublisher(prefix string) *fakePublisher {
	return &fakePublisher{
		topics:   mqtt.NewTopics(prefix),
		messages: map[string]interface{}{},
	}
}

func (f *fakePublisher) Topics() *mqtt.Topics { return f.topics }

func (f *fakePublisher) Publish(topic string, payload interface{}, retain bool) {
	f.mu.Lock()
	f.messages[topic] = payload
	f.mu.Unlock()
}

func (f *fakePublisher) payload(t *testing.T, topic string) map[string]interface{} {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.messages[topic]
	require.True(t, ok, "nothing published to %s, got %v", topic, topicsOf(f.messages))
	payload, ok := raw.(map[string]interface{})
	require.True(t, ok)
	return payload
}

func topicsOf(messages map[string]interface{}) []string {
	var topics []string
	for topic := range messages {
		topics = append(topics, topic)
	}
	return topics
}

func newLoadedGateway(t *testing.T) *spc.Gateway {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/spc/panel":
			fmt.Fprint(w, `{"status":"success","data":{"panel":{"type":"SPC4300","variant":"SPC4000","version":"3.8.5","sn":"111111"}}}`)
		case "/spc/area":
			fmt.Fprint(w, `{"status":"success","data":{"area":[{"id":"1","name":"House","mode":"0"}]}}`)
		case "/spc/zone":
			fmt.Fprint(w, `{"status":"success","data":{"zone":[`+
				`{"id":"3","zone_name":"Entré Dörr","area":"1","input":"0","status":"0"},`+
				`{"id":"5","zone_name":"Hallway","area":"1","input":"0","status":"0"}]}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	gw, err := spc.New(spc.Config{
		APIURL: srv.URL,
		WSURL:  "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/spc",
	}, log.NewLogger("error"))
	require.NoError(t, err)
	t.Cleanup(gw.Close)
	require.NoError(t, gw.Load(context.Background()))
	return gw
}

func testConfig() *config.Config {
	return &config.Config{
		HomeAssistant: config.HomeAssistantConfig{Discovery: true, Prefix: "homeassistant"},
	}
}

func TestDiscoveryPublishesAllEntities(t *testing.T) {
	gw := newLoadedGateway(t)
	pub := newFakePublisher("spc2mqtt")
	ha := New(testConfig(), pub, gw, log.NewLogger("error"))

	ha.Start()

	connectivity := pub.payload(t, "homeassistant/binary_sensor/spc2mqtt/connectivity/config")
	assert.Equal(t, "connectivity", connectivity["device_class"])
	assert.Equal(t, "spc2mqtt/status", connectivity["state_topic"])

	area := pub.payload(t, "homeassistant/alarm_control_panel/spc2mqtt/area_1/config")
	assert.Equal(t, "House", area["name"])
	assert.Equal(t, "spc2mqtt_area_1", area["unique_id"])
	assert.Equal(t, "spc2mqtt/area/house", area["state_topic"])
	assert.Equal(t, "spc2mqtt/area/house/command", area["command_topic"])
	assert.Equal(t, "spc2mqtt/status", area["availability_topic"])
	assert.Equal(t, "DISARM", area["payload_disarm"])
	assert.Equal(t, "ARM_AWAY", area["payload_arm_away"])
	assert.Equal(t, "{{ value_json.state }}", area["value_template"])

	zone := pub.payload(t, "homeassistant/binary_sensor/spc2mqtt/zone_3/config")
	assert.Equal(t, "Entré Dörr", zone["name"])
	assert.Equal(t, "spc2mqtt/zone/entre-dorr", zone["state_topic"])
	assert.Equal(t, "door", zone["device_class"])
	assert.Equal(t, "ON", zone["payload_on"])
	assert.Equal(t, "OFF", zone["payload_off"])
}

func TestDiscoveryDeviceInfo(t *testing.T) {
	gw := newLoadedGateway(t)
	pub := newFakePublisher("spc2mqtt")
	New(testConfig(), pub, gw, log.NewLogger("error")).Start()

	area := pub.payload(t, "homeassistant/alarm_control_panel/spc2mqtt/area_1/config")
	device, ok := area["device"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "SPC SPC4300", device["name"])
	assert.Equal(t, "SPC4000", device["model"])
	assert.Equal(t, "3.8.5", device["sw_version"])
	assert.Equal(t, []string{"111111"}, device["identifiers"])
}

func TestDiscoveryAreaOverrides(t *testing.T) {
	gw := newLoadedGateway(t)
	pub := newFakePublisher("spc2mqtt")
	cfg := testConfig()
	cfg.Areas = []config.AreaConfig{{
		ID:                 "1",
		Name:               "Villa",
		Code:               "1234",
		CodeDisarmRequired: true,
	}}
	New(cfg, pub, gw, log.NewLogger("error")).Start()

	area := pub.payload(t, "homeassistant/alarm_control_panel/spc2mqtt/area_1/config")
	assert.Equal(t, "Villa", area["name"])
	assert.Equal(t, "1234", area["code"])
	assert.Equal(t, false, area["code_arm_required"])
	assert.Equal(t, true, area["code_disarm_required"])
	// the topic layout keeps following the panel name
	assert.Equal(t, "spc2mqtt/area/house", area["state_topic"])
}

func TestDiscoveryZoneOverrides(t *testing.T) {
	gw := newLoadedGateway(t)
	pub := newFakePublisher("spc2mqtt")
	cfg := testConfig()
	cfg.Zones = []config.ZoneConfig{{ID: "5", Name: "Hall Motion", DeviceClass: "motion"}}
	New(cfg, pub, gw, log.NewLogger("error")).Start()

	zone := pub.payload(t, "homeassistant/binary_sensor/spc2mqtt/zone_5/config")
	assert.Equal(t, "Hall Motion", zone["name"])
	assert.Equal(t, "motion", zone["device_class"])
}
