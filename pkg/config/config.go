// Package config collects the bridge configuration from defaults,
// environment variables, an optional YAML file and command line flags,
// in increasing priority.
package config

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"time"

	"github.com/denisbrodbeck/machineid"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/cwbridge/pkg/serialport"
)

// Config is the bridge configuration.
type Config struct {
	Serial serialport.Config `yaml:"serial"`
	// Console is an optional secondary port only logged.
	Console string `yaml:"console"`
	// Listen is the address of the HTTP API.
	Listen string     `yaml:"listen"`
	MQTT   MQTTConfig `yaml:"mqtt"`
}

// MQTTConfig configures the status publisher.
type MQTTConfig struct {
	// URL of the broker, e.g. mqtt://host:1883/topic-prefix/.
	// Empty disables MQTT.
	URL      string        `yaml:"url"`
	Node     string        `yaml:"node"`
	Interval time.Duration `yaml:"interval"`
}

var (
	configFile string

	defaultConfig = Config{
		Serial: serialport.Config{
			Device:      "/dev/ttyUSB0",
			Baud:        serialport.DefaultBaud,
			ReadTimeout: serialport.DefaultReadTimeout,
		},
		Listen: ":8080",
		MQTT: MQTTConfig{
			Interval: time.Second,
		},
	}
)

func init() {
	if val := os.Getenv("CWBRIDGE_SERIAL"); val != "" {
		defaultConfig.Serial.Device = val
	}
	if val := os.Getenv("CWBRIDGE_LISTEN"); val != "" {
		defaultConfig.Listen = val
	}
	if val := os.Getenv("CWBRIDGE_MQTT_URL"); val != "" {
		defaultConfig.MQTT.URL = val
	}
	if val := os.Getenv("CWBRIDGE_CONFIG"); val != "" {
		configFile = val
	}
	defaultConfig.MQTT.Node = MachineID()
}

// MachineID returns the unique ID of the machine, used as default node name.
func MachineID() string {
	id, err := machineid.ProtectedID("cwbridge")
	if err != nil || id == "" {
		return "cwbridge"
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&configFile, "config", configFile, "YAML configuration file.")
	flag.StringVar(&defaultConfig.Serial.Device, "serial", defaultConfig.Serial.Device, "Serial device connected to the trainer.")
	flag.IntVar(&defaultConfig.Serial.Baud, "baud", defaultConfig.Serial.Baud, "Serial baud rate.")
	flag.DurationVar(&defaultConfig.Serial.ReadTimeout, "read-timeout", defaultConfig.Serial.ReadTimeout, "Serial read timeout.")
	flag.StringVar(&defaultConfig.Console, "console", defaultConfig.Console, "Optional console port to log.")
	flag.StringVar(&defaultConfig.Listen, "listen", defaultConfig.Listen, "HTTP API listen address.")
	flag.StringVar(&defaultConfig.MQTT.URL, "mqtt", defaultConfig.MQTT.URL, "MQTT broker URL, empty to disable.")
	flag.StringVar(&defaultConfig.MQTT.Node, "node", defaultConfig.MQTT.Node, "Node name used in MQTT topics.")
	flag.DurationVar(&defaultConfig.MQTT.Interval, "mqtt-interval", defaultConfig.MQTT.Interval, "MQTT status publish interval.")
}

// Parse parses flags. When a configuration file is given, it's loaded
// and flags are parsed again so explicit flags take precedence.
func Parse() error {
	flag.Parse()
	if configFile == "" {
		return nil
	}
	if err := defaultConfig.LoadFile(configFile); err != nil {
		return err
	}
	flag.Parse()
	return nil
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// LoadFile merges a YAML file into c.
func (c *Config) LoadFile(filename string) error {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %v", err)
	}
	return c.Load(data)
}

// Load merges YAML data into c, fields absent in data are unchanged.
func (c *Config) Load(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %v", err)
	}
	return nil
}
