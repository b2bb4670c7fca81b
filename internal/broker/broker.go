// Package broker connects to the MQTT broker shared by the alert
// publisher and the readings subscriber.
package broker

import (
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

type Options struct {
	Broker         string // tcp://host:1883
	ClientID       string
	Username       string
	Password       string
	ConnectTimeout time.Duration
}

// ClientOptions builds paho options. Handlers run unordered so a handler
// waiting on its own publish acknowledgement cannot stall the router.
func ClientOptions(o Options, log *zap.Logger) *mqtt.ClientOptions {
	if log == nil {
		log = zap.NewNop()
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(o.Broker)
	opts.SetClientID(o.ClientID)
	if o.Username != "" {
		opts.SetUsername(o.Username)
	}
	if o.Password != "" {
		opts.SetPassword(o.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetOrderMatters(false)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn("mqtt_connection_lost", zap.Error(err))
	})
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Info("mqtt_connected", zap.String("broker", o.Broker))
	})
	return opts
}

// Connect dials the broker and waits up to ConnectTimeout (default 10s).
func Connect(o Options, log *zap.Logger) (mqtt.Client, error) {
	if o.Broker == "" {
		return nil, errors.New("mqtt broker address is empty")
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 10 * time.Second
	}
	client := mqtt.NewClient(ClientOptions(o, log))
	token := client.Connect()
	if !token.WaitTimeout(o.ConnectTimeout) {
		return nil, fmt.Errorf("connect to %s: timed out after %v", o.Broker, o.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", o.Broker, err)
	}
	return client, nil
}
