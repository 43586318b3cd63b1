package mqtt

// Publisher is the slice of the MQTT bridge other packages need: topic
// layout and fire-and-forget publishing.
type Publisher interface {
	Topics() *Topics
	Publish(topic string, payload interface{}, retain bool)
}
