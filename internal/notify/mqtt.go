package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// publisher is the slice of mqtt.Client the notifier needs.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTT publishes alerts as JSON to a broker topic at QoS 1.
type MQTT struct {
	client publisher
	topic  string
	now    func() time.Time
}

type mqttAlert struct {
	Title  string    `json:"title"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sent_at"`
}

// NewMQTT returns nil when client or topic is missing.
func NewMQTT(client mqtt.Client, topic string) *MQTT {
	if client == nil || topic == "" {
		return nil
	}
	return &MQTT{client: client, topic: topic, now: time.Now}
}

func (m *MQTT) Name() string { return "mqtt" }

// Send returns once the broker acknowledged the publish or ctx is done.
func (m *MQTT) Send(ctx context.Context, title, text string) error {
	if m == nil {
		return errors.New("mqtt disabled")
	}
	payload, err := json.Marshal(mqttAlert{Title: title, Text: text, SentAt: m.now().UTC()})
	if err != nil {
		return err
	}
	token := m.client.Publish(m.topic, 1, false, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish to %s: %w", m.topic, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("publish to %s: %w", m.topic, ctx.Err())
	}
}
