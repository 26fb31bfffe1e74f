package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// SensorReading is the telemetry payload a field gateway publishes on
// <base>/<unit>/sensors. CO2PPM stays nil for units without the sensor.
type SensorReading struct {
	ZoneTemp      float64  `json:"zone_temp"`
	OutdoorTemp   float64  `json:"outdoor_temp"`
	DischargeTemp float64  `json:"discharge_temp"`
	CO2PPM        *float64 `json:"co2_ppm,omitempty"`
	FanStatus     bool     `json:"fan_status"`
}

// estopCommand is the payload for the emergency-stop command topic.
type estopCommand struct {
	Asserted bool `json:"asserted"`
}

// MessageHandlers contains callback functions for inbound messages.
type MessageHandlers struct {
	OnSensorReading func(unitID string, reading SensorReading)
	OnEmergencyStop func(asserted bool)
}

// ClientConfig holds MQTT client configuration.
type ClientConfig struct {
	Broker    string
	ClientID  string
	Username  string
	Password  string
	BaseTopic string // e.g. "bas" -> "bas/<unit>/sensors", "bas/<unit>/state", "bas/cmd/estop"
}

// Client wraps the paho client with the controller's topic layout.
type Client struct {
	client    mqtt.Client
	handlers  MessageHandlers
	baseTopic string
}

// NewClient connects to the broker with auto-reconnect enabled.
func NewClient(cfg ClientConfig) (*Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Info().Str("broker", cfg.Broker).Msg("mqtt connected")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("mqtt connection lost")
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	return &Client{
		client:    client,
		baseTopic: cfg.BaseTopic,
	}, nil
}

// SetHandlers sets the inbound message handlers. Call before SubscribeAll.
func (c *Client) SetHandlers(handlers MessageHandlers) {
	c.handlers = handlers
}

// SubscribeAll subscribes to the sensor telemetry and emergency-stop
// command topics.
func (c *Client) SubscribeAll() error {
	sensorTopic := c.baseTopic + "/+/sensors"
	if err := c.subscribe(sensorTopic, c.handleSensorReading); err != nil {
		return fmt.Errorf("failed to subscribe to sensor topic: %w", err)
	}
	log.Info().Str("topic", sensorTopic).Msg("subscribed to sensor telemetry")

	estopTopic := c.baseTopic + "/cmd/estop"
	if err := c.subscribe(estopTopic, c.handleEmergencyStop); err != nil {
		return fmt.Errorf("failed to subscribe to estop topic: %w", err)
	}
	log.Info().Str("topic", estopTopic).Msg("subscribed to emergency stop commands")

	return nil
}

func (c *Client) subscribe(topic string, handler mqtt.MessageHandler) error {
	token := c.client.Subscribe(topic, 1, handler)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (c *Client) handleSensorReading(_ mqtt.Client, msg mqtt.Message) {
	if c.handlers.OnSensorReading == nil {
		return
	}
	unitID := unitFromTopic(msg.Topic())
	if unitID == "" {
		log.Warn().Str("topic", msg.Topic()).Msg("sensor message on unparseable topic")
		return
	}
	var reading SensorReading
	if err := json.Unmarshal(msg.Payload(), &reading); err != nil {
		log.Warn().Err(err).Str("topic", msg.Topic()).Msg("bad sensor payload")
		return
	}
	c.handlers.OnSensorReading(unitID, reading)
}

func (c *Client) handleEmergencyStop(_ mqtt.Client, msg mqtt.Message) {
	if c.handlers.OnEmergencyStop == nil {
		return
	}
	var cmd estopCommand
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		log.Warn().Err(err).Msg("bad estop payload")
		return
	}
	c.handlers.OnEmergencyStop(cmd.Asserted)
}

// PublishState publishes a unit's scan result as retained JSON so late
// subscribers see the current state immediately.
func (c *Client) PublishState(unitID string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal state payload: %w", err)
	}
	topic := fmt.Sprintf("%s/%s/state", c.baseTopic, unitID)
	token := c.client.Publish(topic, 1, true, body)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish state: %w", token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (c *Client) Close() {
	c.client.Disconnect(250)
	log.Info().Msg("mqtt client disconnected")
}

// unitFromTopic extracts the unit ID from "<base>/<unit>/sensors".
func unitFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[len(parts)-2]
}
