package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Capstone-E1/agrismart_backend/internal/models"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// CommandRefresh asks the backend to poll ThingSpeak immediately
const CommandRefresh = "refresh"

// Client bridges sensor snapshots to an MQTT broker
type Client struct {
	client         mqtt.Client
	prefix         string
	qos            byte
	commandHandler func(command string)
	errorHandler   func(error)
	isConnected    atomic.Bool
	publish        func(topic string, retained bool, payload []byte) error

	publishMu     sync.Mutex
	published     bool
	lastPublished uint64
}

// Config holds MQTT connection configuration
type Config struct {
	BrokerURL    string
	ClientID     string
	Username     string
	Password     string
	TopicPrefix  string
	QoS          byte
	KeepAlive    time.Duration
	PingTimeout  time.Duration
	ConnectRetry bool
}

// DefaultConfig returns default MQTT configuration
func DefaultConfig() *Config {
	return &Config{
		BrokerURL:    "tcp://localhost:1883",
		ClientID:     "agrismart_backend",
		TopicPrefix:  "agrismart",
		QoS:          1,
		KeepAlive:    30 * time.Second,
		PingTimeout:  10 * time.Second,
		ConnectRetry: true,
	}
}

// SensorState is the retained payload published per sensor
type SensorState struct {
	ID        string            `json:"id"`
	Type      models.SensorKind `json:"type"`
	Value     models.Value      `json:"value"`
	Unit      models.Unit       `json:"unit"`
	Status    models.Status     `json:"status"`
	Severity  models.Severity   `json:"severity"`
	Live      bool              `json:"live"`
	Sequence  uint64            `json:"sequence"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewClient creates a new MQTT client for the sensor bridge
func NewClient(config *Config) *Client {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.BrokerURL)
	opts.SetClientID(config.ClientID)
	opts.SetKeepAlive(config.KeepAlive)
	opts.SetPingTimeout(config.PingTimeout)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(config.ConnectRetry)

	if config.Username != "" {
		opts.SetUsername(config.Username)
	}
	if config.Password != "" {
		opts.SetPassword(config.Password)
	}

	prefix := strings.Trim(config.TopicPrefix, "/")
	if prefix == "" {
		prefix = "agrismart"
	}

	client := &Client{
		prefix: prefix,
		qos:    config.QoS,
	}
	client.publish = client.publishToBroker

	opts.SetDefaultPublishHandler(client.defaultMessageHandler)
	opts.SetOnConnectHandler(client.onConnect)
	opts.SetConnectionLostHandler(client.onConnectionLost)

	client.client = mqtt.NewClient(opts)

	return client
}

// Connect establishes connection to MQTT broker
func (c *Client) Connect() error {
	log.Println("Connecting to MQTT broker...")

	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	log.Println("Successfully connected to MQTT broker")
	c.isConnected.Store(true)
	return nil
}

// Disconnect closes the MQTT connection
func (c *Client) Disconnect() {
	if c.isConnected.Swap(false) {
		c.client.Disconnect(250)
		log.Println("Disconnected from MQTT broker")
	}
}

// IsConnected returns the connection status
func (c *Client) IsConnected() bool {
	return c.isConnected.Load() && c.client.IsConnected()
}

// StateTopic is the retained topic for one sensor
func (c *Client) StateTopic(sensorID string) string {
	return c.prefix + "/sensors/" + sensorID + "/state"
}

// AlertTopic carries status-change alerts
func (c *Client) AlertTopic() string {
	return c.prefix + "/alerts"
}

// CommandTopic is where operators send commands such as "refresh"
func (c *Client) CommandTopic() string {
	return c.prefix + "/commands"
}

// SetCommandHandler sets the callback for commands received on CommandTopic
func (c *Client) SetCommandHandler(handler func(command string)) {
	c.commandHandler = handler
}

// SetErrorHandler sets the callback function for errors
func (c *Client) SetErrorHandler(handler func(error)) {
	c.errorHandler = handler
}

// SubscribeToCommands subscribes to the command topic
func (c *Client) SubscribeToCommands() error {
	topic := c.CommandTopic()
	if token := c.client.Subscribe(topic, c.qos, c.commandMessageHandler); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", topic, token.Error())
	}
	log.Printf("Subscribed to topic: %s", topic)
	return nil
}

// commandMessageHandler accepts either a bare command or {"command": "..."}
func (c *Client) commandMessageHandler(_ mqtt.Client, msg mqtt.Message) {
	command := parseCommand(msg.Payload())
	log.Printf("Received command on topic %s: %q", msg.Topic(), command)

	if command == "" {
		if c.errorHandler != nil {
			c.errorHandler(fmt.Errorf("empty command on %s", msg.Topic()))
		}
		return
	}
	if c.commandHandler != nil {
		c.commandHandler(command)
	}
}

func parseCommand(payload []byte) string {
	var wrapped struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(payload, &wrapped); err == nil && wrapped.Command != "" {
		return strings.ToLower(strings.TrimSpace(wrapped.Command))
	}
	return strings.ToLower(strings.TrimSpace(string(payload)))
}

// PublishSnapshot publishes a retained state message per sensor. A snapshot
// not newer than the last one published is skipped so the retained state
// never goes back in time.
func (c *Client) PublishSnapshot(snap *models.Snapshot) error {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	if c.published && snap.Sequence <= c.lastPublished {
		return nil
	}
	c.published = true
	c.lastPublished = snap.Sequence

	var firstErr error
	for _, s := range snap.Sensors {
		payload, err := json.Marshal(SensorState{
			ID:        s.ID,
			Type:      s.Type,
			Value:     s.CurrentValue,
			Unit:      s.Unit,
			Status:    s.Status,
			Severity:  s.Severity,
			Live:      snap.Live,
			Sequence:  snap.Sequence,
			Timestamp: snap.FetchedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal state for sensor %s: %w", s.ID, err)
		}
		if err := c.publish(c.StateTopic(s.ID), true, payload); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// PublishStatusChange publishes a non-retained alert
func (c *Client) PublishStatusChange(change models.StatusChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal status change: %w", err)
	}
	return c.publish(c.AlertTopic(), false, payload)
}

// OnSnapshot publishes a committed snapshot and its alerts. Publishing runs
// in its own goroutine so a slow broker never holds up polling.
func (c *Client) OnSnapshot(snap *models.Snapshot, changes []models.StatusChange) {
	if !c.IsConnected() {
		return
	}
	go func() {
		if err := c.PublishSnapshot(snap); err != nil {
			log.Printf("⚠️  MQTT: %v", err)
		}
		for _, change := range changes {
			if err := c.PublishStatusChange(change); err != nil {
				log.Printf("⚠️  MQTT: %v", err)
			}
		}
	}()
}

func (c *Client) publishToBroker(topic string, retained bool, payload []byte) error {
	token := c.client.Publish(topic, c.qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("timed out publishing to %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// defaultMessageHandler handles messages on unsubscribed topics
func (c *Client) defaultMessageHandler(_ mqtt.Client, msg mqtt.Message) {
	log.Printf("Received message on unhandled topic %s: %s", msg.Topic(), string(msg.Payload()))
}

// onConnect callback when connection is established
func (c *Client) onConnect(_ mqtt.Client) {
	log.Println("MQTT client connected")
	c.isConnected.Store(true)
}

// onConnectionLost callback when connection is lost
func (c *Client) onConnectionLost(_ mqtt.Client, err error) {
	log.Printf("MQTT connection lost: %v", err)
	c.isConnected.Store(false)

	if c.errorHandler != nil {
		c.errorHandler(fmt.Errorf("MQTT connection lost: %w", err))
	}
}
