// Package mqtt publishes telemetry frames to a broker so dashboards and
// ingest pipelines can follow the thermostat without polling the REST API.
package mqtt

import (
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"thermolab/internal/logger"
)

// Config holds broker connection settings.
type Config struct {
	Broker   string
	Port     int
	ClientID string
	Topic    string
	Username string
	Password string
}

const (
	connectTimeout    = 5 * time.Second
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 250 // ms, per paho convention
)

// Publisher wraps a paho client bound to a single topic.
type Publisher struct {
	client paho.Client
	cfg    Config
	log    *logger.Logger
}

// NewPublisher builds a client with auto-reconnect and optional TLS
// (ssl:// and wss:// broker URLs).
func NewPublisher(cfg Config, log *logger.Logger) *Publisher {
	opts := paho.NewClientOptions()
	brokerURL := cfg.brokerURL()
	opts.AddBroker(brokerURL)
	opts.SetClientID(cfg.ClientID)

	if strings.HasPrefix(brokerURL, "ssl://") || strings.HasPrefix(brokerURL, "wss://") {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Warnw("mqtt_connection_lost", "err", err)
	})
	opts.SetReconnectingHandler(func(_ paho.Client, _ *paho.ClientOptions) {
		log.Infow("mqtt_reconnecting", "broker", brokerURL)
	})

	return &Publisher{
		client: paho.NewClient(opts),
		cfg:    cfg,
		log:    log,
	}
}

// Connect dials the broker, failing after the connect timeout.
func (p *Publisher) Connect() error {
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("mqtt connect to %s: timeout", p.cfg.brokerURL())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect to %s: %w", p.cfg.brokerURL(), err)
	}
	p.log.Infow("mqtt_connected", "broker", p.cfg.brokerURL(), "topic", p.cfg.Topic)
	return nil
}

// Publish sends payload to the configured topic at QoS 0.
func (p *Publisher) Publish(payload []byte) error {
	token := p.client.Publish(p.cfg.Topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt publish to %s: timeout", p.cfg.Topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish to %s: %w", p.cfg.Topic, err)
	}
	return nil
}

// Disconnect flushes and closes the connection.
func (p *Publisher) Disconnect() {
	p.client.Disconnect(disconnectQuiesce)
}

// brokerURL normalizes the broker address into a paho URL, defaulting to tcp://.
func (c Config) brokerURL() string {
	for _, prefix := range []string{"tcp://", "ssl://", "ws://", "wss://"} {
		if strings.HasPrefix(c.Broker, prefix) {
			return c.Broker
		}
	}
	return fmt.Sprintf("tcp://%s:%d", c.Broker, c.Port)
}
