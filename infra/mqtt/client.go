package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/hydrolox-0/ff-sih-backup/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Enabled     bool        `json:"enabled"`
	Broker      string      `json:"broker"`
	ClientID    string      `json:"client_id"`
	Username    string      `json:"username"`
	Password    string      `json:"password"`
	TopicPrefix string      `json:"topic_prefix"`
	QoS         byte        `json:"qos"`
	UseTLS      bool        `json:"use_tls"`
	ClientCert  string      `json:"client_cert"`
	ClientKey   string      `json:"client_key"`
	CABundle    string      `json:"ca_bundle"`
	TLSConfig   *tls.Config `json:"-"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "induction-engine"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "depot"
	}
}

// Validate checks the connection settings when MQTT is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt.broker is required")
	}
	if c.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2")
	}
	return nil
}

// pahoClient is the subset of paho.Client used here.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
	Unsubscribe(topics ...string) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Client is a connected MQTT session that re-establishes its subscriptions
// after every reconnect.
type Client struct {
	cli pahoClient
	qos byte
	log logger.Logger

	mu   sync.Mutex
	subs map[string]paho.MessageHandler
}

// Connect dials the broker described by cfg.
func Connect(cfg Config) (*Client, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	c := &Client{qos: cfg.QoS, log: logger.New("mqtt_client"), subs: make(map[string]paho.MessageHandler)}
	opts.OnConnect = func(pc paho.Client) {
		c.log.Infof("MQTT connected to %s", cfg.Broker)
		c.resubscribe(pc)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		c.log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(paho.Client, *paho.ClientOptions) {
		c.log.Warnf("reconnecting to MQTT broker")
	}
	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	c.cli = cli
	return c, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(10 * time.Second)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, fmt.Errorf("ca bundle %s holds no certificates", c.CABundle)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// Subscribe registers handler for topic, now and after reconnects.
func (c *Client) Subscribe(topic string, handler paho.MessageHandler) error {
	c.mu.Lock()
	c.subs[topic] = handler
	c.mu.Unlock()
	token := c.cli.Subscribe(topic, c.qos, handler)
	token.Wait()
	return token.Error()
}

func (c *Client) resubscribe(pc paho.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for topic, h := range c.subs {
		if token := pc.Subscribe(topic, c.qos, h); token.Wait() && token.Error() != nil {
			c.log.Errorf("resubscribe %s: %v", topic, token.Error())
		}
	}
}

// Publish sends payload to topic.
func (c *Client) Publish(topic string, retained bool, payload []byte) error {
	token := c.cli.Publish(topic, c.qos, retained, payload)
	token.Wait()
	return token.Error()
}

// Disconnect gracefully closes the MQTT connection.
func (c *Client) Disconnect() {
	if c.cli != nil && c.cli.IsConnected() {
		c.cli.Disconnect(250)
	}
}
