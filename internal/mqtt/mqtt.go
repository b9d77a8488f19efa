package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const (
	publishQoS     = 1
	publishTimeout = 5 * time.Second
	quiesceMillis  = 250
)

var connectHandler paho.OnConnectHandler = func(client paho.Client) {
	log.Info().Msg("connected to MQTT broker")
}

var connectLostHandler paho.ConnectionLostHandler = func(client paho.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// Topic is the per-device command topic screens subscribe to.
func Topic(deviceID string) string {
	return fmt.Sprintf("tv/%s/commands", deviceID)
}

// Publisher sends commands to screens over a single broker connection.
type Publisher struct {
	client paho.Client
}

func Connect(brokerURL, clientID string) (*Publisher, error) {
	opts := paho.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		return nil, fmt.Errorf("connect to MQTT broker %s: timed out", brokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to MQTT broker %s: %w", brokerURL, err)
	}
	return NewPublisher(client), nil
}

func NewPublisher(client paho.Client) *Publisher {
	return &Publisher{client: client}
}

// SendToScreen publishes message on the device's command topic.
func (p *Publisher) SendToScreen(deviceID string, message []byte) error {
	topic := Topic(deviceID)
	token := p.client.Publish(topic, publishQoS, false, message)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	log.Debug().Str("device_id", deviceID).Msg("command sent to screen")
	return nil
}

func (p *Publisher) Close() {
	p.client.Disconnect(quiesceMillis)
}
