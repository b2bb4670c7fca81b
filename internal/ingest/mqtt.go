// Package ingest feeds temperature readings published over MQTT into the
// alert engine.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/hamed0406/weatheralert/internal/alert"
	"github.com/hamed0406/weatheralert/internal/domain"
	"github.com/hamed0406/weatheralert/internal/metrics"
)

// Evaluator turns a reading into an alert outcome.
type Evaluator interface {
	Evaluate(ctx context.Context, temp float64) domain.Outcome
}

// subscriber is the slice of mqtt.Client the ingester needs.
type subscriber interface {
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Unsubscribe(topics ...string) mqtt.Token
}

// MQTTSubscriber evaluates every {"temp": n} payload on a topic.
type MQTTSubscriber struct {
	client  subscriber
	topic   string
	engine  Evaluator
	log     *zap.Logger
	timeout time.Duration
}

func NewMQTTSubscriber(client mqtt.Client, topic string, engine Evaluator, log *zap.Logger) *MQTTSubscriber {
	return newSubscriber(client, topic, engine, log)
}

func newSubscriber(client subscriber, topic string, engine Evaluator, log *zap.Logger) *MQTTSubscriber {
	if log == nil {
		log = zap.NewNop()
	}
	return &MQTTSubscriber{client: client, topic: topic, engine: engine, log: log, timeout: 10 * time.Second}
}

// Start subscribes at QoS 1. Messages are evaluated under ctx until Stop.
func (s *MQTTSubscriber) Start(ctx context.Context) error {
	if s.client == nil || s.topic == "" {
		return errors.New("ingest: mqtt client and topic are required")
	}
	token := s.client.Subscribe(s.topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		s.Handle(ctx, msg.Payload())
	})
	if !token.WaitTimeout(s.timeout) {
		return fmt.Errorf("subscribe to %s: timed out", s.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", s.topic, err)
	}
	s.log.Info("ingest_subscribed", zap.String("topic", s.topic))
	return nil
}

func (s *MQTTSubscriber) Stop() {
	if s.client == nil {
		return
	}
	s.client.Unsubscribe(s.topic).WaitTimeout(s.timeout)
}

// Handle evaluates one payload. Malformed payloads are logged and dropped.
func (s *MQTTSubscriber) Handle(ctx context.Context, payload []byte) (domain.Outcome, bool) {
	temp, err := alert.ParseReading(payload)
	if err != nil {
		metrics.IngestRejectedTotal.Inc()
		s.log.Warn("ingest_payload_rejected", zap.String("topic", s.topic), zap.Error(err))
		return domain.Outcome{}, false
	}
	out := s.engine.Evaluate(ctx, temp)
	s.log.Debug("ingest_evaluated",
		zap.String("topic", s.topic),
		zap.Float64("temperature", temp),
		zap.String("status", string(out.Status)),
	)
	return out, true
}
