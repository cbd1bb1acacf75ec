// Package alerts publishes a message whenever a detection run finds events.
package alerts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

type Alert struct {
	Username       string    `json:"username"`
	Filename       string    `json:"filename"`
	ViolenceCount  int       `json:"violence_count"`
	BestConfidence float64   `json:"best_confidence"`
	BestTimestamp  string    `json:"best_timestamp"`
	BestFrame      string    `json:"best_frame,omitempty"`
	At             time.Time `json:"at"`
}

type MQTTEmitter struct {
	client mqtt.Client
	topic  string
	logger *zap.Logger
}

type MQTTConfig struct {
	Broker   string
	Topic    string
	ClientID string
}

// Connect dials the broker. Brokers without a scheme are treated as tcp://.
func Connect(cfg MQTTConfig, logger *zap.Logger) (*MQTTEmitter, error) {
	broker := cfg.Broker
	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost, will auto-reconnect", zap.String("broker", broker), zap.Error(err))
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return nil, fmt.Errorf("mqtt connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connection failed: %w", err)
	}

	logger.Info("mqtt connection established", zap.String("broker", broker), zap.String("topic", cfg.Topic))
	return NewMQTTEmitter(client, cfg.Topic, logger), nil
}

func NewMQTTEmitter(client mqtt.Client, topic string, logger *zap.Logger) *MQTTEmitter {
	return &MQTTEmitter{client: client, topic: topic, logger: logger}
}

func (e *MQTTEmitter) Publish(alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	token := e.client.Publish(e.topic, 1, false, payload)
	if !token.WaitTimeout(2 * time.Second) {
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	e.logger.Debug("alert published", zap.String("topic", e.topic), zap.Int("size", len(payload)))
	return nil
}

func (e *MQTTEmitter) Close() {
	if e.client != nil && e.client.IsConnected() {
		e.client.Disconnect(250)
	}
}
