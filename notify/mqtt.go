package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/realDragonium/mcwatch/logging"
)

const DefaultMQTTTopic = "mcwatch/notifications"

type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
}

// Publisher is the part of mqtt.Client the notifier needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTT publishes every message as JSON with QoS 1.
type MQTT struct {
	Topic     string
	Publisher Publisher

	client mqtt.Client
}

// DialMQTT connects to the broker. The paho client reconnects on its own
// after that.
func DialMQTT(ctx context.Context, cfg MQTTConfig) (*MQTT, error) {
	logger := logging.Component("notify")

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	if cfg.ClientID != "" {
		opts.SetClientID(cfg.ClientID)
	} else {
		opts.SetClientID(fmt.Sprintf("mcwatch-%d", time.Now().UnixNano()))
	}
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		logger.Info().Str("broker", cfg.Broker).Msg("MQTT connected")
	})
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		logger.Warn().Err(err).Msg("MQTT connection lost")
	})

	client := mqtt.NewClient(opts)
	if err := waitToken(ctx, client.Connect()); err != nil {
		return nil, fmt.Errorf("MQTT connect failed: %w", err)
	}

	topic := cfg.Topic
	if topic == "" {
		topic = DefaultMQTTTopic
	}
	return &MQTT{
		Topic:     topic,
		Publisher: client,
		client:    client,
	}, nil
}

func (m *MQTT) Notify(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal MQTT message: %w", err)
	}
	if err := waitToken(ctx, m.Publisher.Publish(m.Topic, 1, false, data)); err != nil {
		return fmt.Errorf("MQTT publish to %s failed: %w", m.Topic, err)
	}
	return nil
}

func (m *MQTT) Close() {
	if m.client != nil {
		m.client.Disconnect(250)
	}
}

func waitToken(ctx context.Context, token mqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
