package playback

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/flipdot/flipdot-studio/internal/config"
)

const (
	mqttQoS            = 1
	mqttPublishTimeout = 5 * time.Second
)

// Publisher is the part of an MQTT client the sink needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTSink publishes packed bitmaps to a flip-dot display controller.
type MQTTSink struct {
	client Publisher
	topic  string
}

func NewMQTTSink(client Publisher, topic string) *MQTTSink {
	return &MQTTSink{client: client, topic: topic}
}

func (s *MQTTSink) Name() string {
	return "mqtt"
}

func (s *MQTTSink) Send(ctx context.Context, msg FrameMessage) error {
	token := s.client.Publish(s.topic, mqttQoS, false, PackBitmap(msg.Dots))

	deadline := mqttPublishTimeout
	if d, ok := ctx.Deadline(); ok && time.Until(d) < deadline {
		deadline = time.Until(d)
	}
	if !token.WaitTimeout(deadline) {
		return fmt.Errorf("publish frame %d to %s: timed out", msg.Index, s.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish frame %d to %s: %w", msg.Index, s.topic, err)
	}
	return nil
}

// ConnectMQTT opens a broker connection for the display.
func ConnectMQTT(cfg config.MQTT, logger *slog.Logger) (mqtt.Client, error) {
	options := mqtt.NewClientOptions().
		AddBroker(cfg.URL).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetOnConnectHandler(func(mqtt.Client) {
			if logger != nil {
				logger.Info("connected to display broker", "broker", cfg.URL, "topic", cfg.Topic)
			}
		})

	client := mqtt.NewClient(options)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.URL, token.Error())
	}
	return client, nil
}
