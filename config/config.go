package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/servicecoinrwb/BAS-System/internal/control"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Control    ControlConfig    `yaml:"control"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	Serial     SerialConfig     `yaml:"serial"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Units      []UnitConfig     `yaml:"units"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration. Driver is
// "sqlite" or "postgres"; sqlite is the default for a standalone controller.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	EnableTimescale        bool   `yaml:"enable_timescale"`
}

// ControlConfig holds the control-loop tuning. Every field defaults to the
// stock rooftop-unit values when left zero.
type ControlConfig struct {
	ScanIntervalSeconds  int           `yaml:"scan_interval_seconds"`
	ScanInterval         time.Duration `yaml:"-"` // Ignored by YAML parser
	TrendIntervalSeconds int           `yaml:"trend_interval_seconds"`
	TrendInterval        time.Duration `yaml:"-"` // Ignored by YAML parser
	LogCap               int           `yaml:"log_cap"`

	OccupiedCooling        float64 `yaml:"occupied_cooling"`
	OccupiedHeating        float64 `yaml:"occupied_heating"`
	UnoccupiedCooling      float64 `yaml:"unoccupied_cooling"`
	UnoccupiedHeating      float64 `yaml:"unoccupied_heating"`
	Deadband               float64 `yaml:"deadband"`
	EconomizerDifferential float64 `yaml:"economizer_differential"`
	DCVMinPosition         float64 `yaml:"dcv_min_position"`
	DCVTargetPPM           float64 `yaml:"dcv_target_ppm"`
	DCVSpanPPM             float64 `yaml:"dcv_span_ppm"`
	FanFailTimeoutSeconds  int     `yaml:"fan_fail_timeout_seconds"`
	FreezeLimit            float64 `yaml:"freeze_limit"`
	ShutdownOnFreeze       bool    `yaml:"shutdown_on_freeze"`
}

// Params converts the configured tuning into control parameters.
func (c ControlConfig) Params() control.Params {
	return control.Params{
		Occupied:               control.SetpointProfile{Cooling: c.OccupiedCooling, Heating: c.OccupiedHeating},
		Unoccupied:             control.SetpointProfile{Cooling: c.UnoccupiedCooling, Heating: c.UnoccupiedHeating},
		Deadband:               c.Deadband,
		EconomizerDifferential: c.EconomizerDifferential,
		DCVMinPosition:         c.DCVMinPosition,
		DCVTargetPPM:           c.DCVTargetPPM,
		DCVSpanPPM:             c.DCVSpanPPM,
		FanFailTimeout:         time.Duration(c.FanFailTimeoutSeconds) * time.Second,
		FreezeLimit:            c.FreezeLimit,
		ShutdownOnFreeze:       c.ShutdownOnFreeze,
	}
}

// MQTTConfig holds the broker connection for sensor intake and state
// publishing. Disabled by default; simulated units work without a broker.
type MQTTConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Broker    string `yaml:"broker"`
	ClientID  string `yaml:"client_id"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	BaseTopic string `yaml:"base_topic"`
}

// SerialConfig holds the relay-board output port. When disabled, computed
// outputs are logged instead of written to hardware.
type SerialConfig struct {
	Enabled bool   `yaml:"enabled"`
	Device  string `yaml:"device"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// UnitConfig declares one rooftop unit. Source is "sim" for the built-in
// plant simulator or "mqtt" for broker-fed telemetry.
type UnitConfig struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Schedule     string `yaml:"schedule"`
	Source       string `yaml:"source"`
	HasCO2Sensor bool   `yaml:"has_co2_sensor"`
	ModbusAddr   int    `yaml:"modbus_addr"`
}

// Load reads the configuration from the given path, fills defaults, and
// validates the control tuning.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()

	if err := cfg.Control.Params().Validate(); err != nil {
		return nil, fmt.Errorf("invalid control tuning: %w", err)
	}
	for i, u := range cfg.Units {
		if u.ID == "" {
			return nil, fmt.Errorf("units[%d]: id is required", i)
		}
		if u.Source != "sim" && u.Source != "mqtt" {
			return nil, fmt.Errorf("unit %s: source must be \"sim\" or \"mqtt\", got %q", u.ID, u.Source)
		}
		if u.Source == "mqtt" && !cfg.MQTT.Enabled {
			return nil, fmt.Errorf("unit %s: mqtt source requires mqtt.enabled", u.ID)
		}
	}

	return &cfg, nil
}

// ApplyDefaults fills every zero field with its stock value. Load calls it;
// tests building a Config by hand call it themselves.
func (c *Config) ApplyDefaults() {
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimitPerSec <= 0 {
		c.Server.RateLimitPerSec = 10
	}
	if c.Server.RateLimitBurst <= 0 {
		c.Server.RateLimitBurst = 5
	}
	if c.Server.CacheTTLSeconds <= 0 {
		c.Server.CacheTTLSeconds = 30
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.DSN == "" && c.Database.Driver == "sqlite" {
		c.Database.DSN = "bas.db"
	}

	ctl := &c.Control
	if ctl.ScanIntervalSeconds <= 0 {
		ctl.ScanIntervalSeconds = 1
	}
	ctl.ScanInterval = time.Duration(ctl.ScanIntervalSeconds) * time.Second
	if ctl.TrendIntervalSeconds <= 0 {
		ctl.TrendIntervalSeconds = 60
	}
	ctl.TrendInterval = time.Duration(ctl.TrendIntervalSeconds) * time.Second
	if ctl.LogCap <= 0 {
		ctl.LogCap = 100
	}

	def := control.DefaultParams()
	if ctl.OccupiedCooling == 0 {
		ctl.OccupiedCooling = def.Occupied.Cooling
	}
	if ctl.OccupiedHeating == 0 {
		ctl.OccupiedHeating = def.Occupied.Heating
	}
	if ctl.UnoccupiedCooling == 0 {
		ctl.UnoccupiedCooling = def.Unoccupied.Cooling
	}
	if ctl.UnoccupiedHeating == 0 {
		ctl.UnoccupiedHeating = def.Unoccupied.Heating
	}
	if ctl.Deadband == 0 {
		ctl.Deadband = def.Deadband
	}
	if ctl.EconomizerDifferential == 0 {
		ctl.EconomizerDifferential = def.EconomizerDifferential
	}
	if ctl.DCVMinPosition == 0 {
		ctl.DCVMinPosition = def.DCVMinPosition
	}
	if ctl.DCVTargetPPM == 0 {
		ctl.DCVTargetPPM = def.DCVTargetPPM
	}
	if ctl.DCVSpanPPM == 0 {
		ctl.DCVSpanPPM = def.DCVSpanPPM
	}
	if ctl.FanFailTimeoutSeconds <= 0 {
		ctl.FanFailTimeoutSeconds = int(def.FanFailTimeout / time.Second)
	}
	if ctl.FreezeLimit == 0 {
		ctl.FreezeLimit = def.FreezeLimit
	}

	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "basd"
	}
	if c.MQTT.BaseTopic == "" {
		c.MQTT.BaseTopic = "bas"
	}

	if c.Push.TTL <= 0 {
		c.Push.TTL = 3600
	}
	if c.WorkerPool.Size <= 0 {
		c.WorkerPool.Size = 1
	}

	// A fresh install gets one simulated unit so the controller does
	// something useful before hardware is wired up.
	if len(c.Units) == 0 {
		c.Units = []UnitConfig{{
			ID:           "rtu-1",
			Name:         "RTU-1",
			Schedule:     "default",
			Source:       "sim",
			HasCO2Sensor: true,
			ModbusAddr:   1,
		}}
	}
	for i := range c.Units {
		if c.Units[i].Name == "" {
			c.Units[i].Name = c.Units[i].ID
		}
		if c.Units[i].Schedule == "" {
			c.Units[i].Schedule = "default"
		}
		if c.Units[i].Source == "" {
			c.Units[i].Source = "sim"
		}
		if c.Units[i].ModbusAddr == 0 {
			c.Units[i].ModbusAddr = 1
		}
	}
}
