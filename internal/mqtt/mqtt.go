package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/jschlyter/spc2mqtt/internal/config"
	"github.com/jschlyter/spc2mqtt/internal/log"
	"github.com/jschlyter/spc2mqtt/internal/spc"
)

const (
	offlinePayload = "offline"
	onlinePayload  = "online"

	commandTimeout = 10 * time.Second
)

// MQTT bridges the mirrored panel state to an MQTT broker: retained state
// topics per entity, a status topic with a last-will, and command topics
// that feed back into the panel.
type MQTT struct {
	config *config.MQTTConfig
	gw     *spc.Gateway
	log    *log.Logger
	client mqtt.Client
	topics *Topics
}

func NewMQTT(cfg *config.MQTTConfig, gw *spc.Gateway, logger *log.Logger) *MQTT {
	return &MQTT{
		config: cfg,
		gw:     gw,
		log:    logger,
		topics: NewTopics(cfg.Prefix),
	}
}

func (m *MQTT) Topics() *Topics {
	return m.topics
}

func (m *MQTT) Connect() error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", m.config.Host, m.config.Port))
	opts.SetClientID(m.config.ClientID)
	opts.SetUsername(m.config.Username)
	opts.SetPassword(m.config.Password)
	opts.SetCleanSession(m.config.Clean)
	opts.SetKeepAlive(time.Duration(m.config.Keepalive) * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(m.onConnect)
	opts.SetConnectionLostHandler(m.onDisconnect)

	opts.SetWill(m.topics.Status(), offlinePayload, byte(m.config.QOS), m.config.Retain)

	m.client = mqtt.NewClient(opts)

	if token := m.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %v", token.Error())
	}

	m.log.Info("Connected to MQTT broker: %s:%d", m.config.Host, m.config.Port)
	return nil
}

// onConnect runs on every (re)connect: the full mirror is republished so
// retained state is correct even after a broker restart.
func (m *MQTT) onConnect(client mqtt.Client) {
	m.log.Info("MQTT connection established")
	m.Publish(m.topics.Status(), onlinePayload, true)
	m.publishPanelInfo()
	m.PublishAll()
	m.subscribeCommands()
}

func (m *MQTT) onDisconnect(client mqtt.Client, err error) {
	m.log.Error("MQTT connection lost: %v", err)
}

func (m *MQTT) subscribeCommands() {
	for _, area := range m.gw.Areas() {
		topic := m.topics.AreaCommand(area)
		token := m.client.Subscribe(topic, byte(m.config.QOS), m.handleMessage)
		if token.Wait() && token.Error() != nil {
			m.log.Error("Failed to subscribe to topic %s: %v", topic, token.Error())
		} else {
			m.log.Debug("Subscribed to topic: %s", topic)
		}
	}
}

func (m *MQTT) handleMessage(client mqtt.Client, msg mqtt.Message) {
	topic := msg.Topic()
	payload := string(msg.Payload())

	m.log.Debug("Received message on topic %s: %s", topic, payload)

	for _, area := range m.gw.Areas() {
		if topic == m.topics.AreaCommand(area) {
			m.handleAreaCommand(area, payload)
			return
		}
	}
	m.log.Warning("Received message on unknown topic: %s", topic)
}

func (m *MQTT) handleAreaCommand(area *spc.Area, command string) {
	mode, ok := ParseArmCommand(command)
	if !ok {
		m.log.Warning("Unknown area command: %s", command)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := m.gw.ChangeMode(ctx, area, mode); err != nil {
		m.log.Error("Could not change mode of area %s: %v", area.ID(), err)
		return
	}
	m.log.Info("Requested %s for area %s", mode, area.Name())
}

func (m *MQTT) publishPanelInfo() {
	info := m.gw.Info()
	if info == nil {
		return
	}
	status := map[string]interface{}{
		"type":          info.Type,
		"variant":       info.Variant,
		"version":       info.Version,
		"serial_number": info.SerialNumber,
	}
	m.Publish(m.topics.Panel(), status, true)
}

// PublishAll publishes the current state of every registered entity.
func (m *MQTT) PublishAll() {
	for _, area := range m.gw.Areas() {
		m.PublishArea(area)
	}
	for _, zone := range m.gw.Zones() {
		m.PublishZone(zone)
	}
}

// Resync republishes the mirror and renews the command subscriptions after
// the registry has been rebuilt. Without a broker connection it is a no-op.
func (m *MQTT) Resync() {
	if m.client == nil || !m.client.IsConnected() {
		return
	}
	m.publishPanelInfo()
	m.PublishAll()
	m.subscribeCommands()
}

// PublishUpdate is wired as the gateway update callback.
func (m *MQTT) PublishUpdate(entity spc.Entity) {
	switch e := entity.(type) {
	case *spc.Area:
		m.PublishArea(e)
	case *spc.Zone:
		m.PublishZone(e)
	default:
		m.log.Warning("Not publishing update for unknown entity %s", entity.ID())
	}
}

func (m *MQTT) PublishArea(area *spc.Area) {
	m.Publish(m.topics.Area(area), areaPayload(area.State()), true)
}

func (m *MQTT) PublishZone(zone *spc.Zone) {
	m.Publish(m.topics.Zone(zone), zonePayload(zone.State()), true)
}

func areaPayload(snap spc.AreaSnapshot) map[string]interface{} {
	status := map[string]interface{}{
		"id":             snap.ID,
		"name":           snap.Name,
		"mode":           snap.Mode.String(),
		"state":          AreaState(snap),
		"changed_by":     snap.LastChangedBy,
		"verified_alarm": snap.VerifiedAlarm,
	}
	if !snap.LastChanged.IsZero() {
		status["last_changed"] = snap.LastChanged.Format(time.RFC3339)
	}
	return status
}

func zonePayload(snap spc.ZoneSnapshot) map[string]interface{} {
	return map[string]interface{}{
		"id":     snap.ID,
		"name":   snap.Name,
		"area":   snap.AreaID,
		"input":  snap.Input.String(),
		"status": snap.Status.String(),
		"state":  ZoneState(snap),
		"alarm":  snap.Alarm,
	}
}

// Publish sends a payload to a topic. Strings go out as-is, everything else
// is JSON encoded. Publishes before Connect are dropped; the post-connect
// republish covers them.
func (m *MQTT) Publish(topic string, payload interface{}, retain bool) {
	if m.client == nil {
		return
	}

	var body []byte
	switch p := payload.(type) {
	case string:
		body = []byte(p)
	default:
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			m.log.Error("Failed to marshal message for topic %s: %v", topic, err)
			return
		}
	}

	token := m.client.Publish(topic, byte(m.config.QOS), retain, body)
	if token.Wait() && token.Error() != nil {
		m.log.Error("Failed to publish message to topic %s: %v", topic, token.Error())
	} else {
		m.log.Debug("Published message to topic: %s", topic)
	}
}

func (m *MQTT) Close() {
	if m.client != nil && m.client.IsConnected() {
		m.Publish(m.topics.Status(), offlinePayload, true)
		m.client.Disconnect(250)
	}
}
