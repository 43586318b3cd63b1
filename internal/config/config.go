package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	SPC           SPCConfig           `yaml:"spc"`
	MQTT          MQTTConfig          `yaml:"mqtt"`
	HomeAssistant HomeAssistantConfig `yaml:"homeassistant"`
	Zones         []ZoneConfig        `yaml:"zones"`
	Areas         []AreaConfig        `yaml:"areas"`
	Log           string              `yaml:"log"`
	Cache         bool                `yaml:"cache"`
	Metrics       string              `yaml:"metrics"`
}

type SPCConfig struct {
	APIURL   string `yaml:"api_url"`
	WSURL    string `yaml:"ws_url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type MQTTConfig struct {
	ClientID  string `yaml:"client_id"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Keepalive int    `yaml:"keepalive"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	QOS       int    `yaml:"qos"`
	Retain    bool   `yaml:"retain"`
	Prefix    string `yaml:"prefix"`
	Clean     bool   `yaml:"clean"`
}

type HomeAssistantConfig struct {
	Discovery bool   `yaml:"discovery"`
	Prefix    string `yaml:"prefix"`
}

type ZoneConfig struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	DeviceClass string `yaml:"device_class"`
}

type AreaConfig struct {
	ID                 string `yaml:"id"`
	Name               string `yaml:"name"`
	Code               string `yaml:"code"`
	CodeArmRequired    bool   `yaml:"code_arm_required"`
	CodeDisarmRequired bool   `yaml:"code_disarm_required"`
}

func LoadConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	// Set default values
	if config.MQTT.ClientID == "" {
		config.MQTT.ClientID = "spc2mqtt"
	}
	if config.MQTT.Host == "" {
		config.MQTT.Host = "localhost"
	}
	if config.MQTT.Port == 0 {
		config.MQTT.Port = 1883
	}
	if config.MQTT.Keepalive == 0 {
		config.MQTT.Keepalive = 60
	}
	if config.MQTT.Prefix == "" {
		config.MQTT.Prefix = "spc2mqtt"
	}
	if config.HomeAssistant.Prefix == "" {
		config.HomeAssistant.Prefix = "homeassistant"
	}
	if config.Log == "" {
		config.Log = "info"
	}

	if config.SPC.APIURL == "" {
		return nil, fmt.Errorf("spc.api_url is required")
	}
	if config.SPC.WSURL == "" {
		return nil, fmt.Errorf("spc.ws_url is required")
	}

	return &config, nil
}

// ZoneByID returns the zone override for the given vendor id, if any.
func (c *Config) ZoneByID(id string) *ZoneConfig {
	for i := range c.Zones {
		if c.Zones[i].ID == id {
			return &c.Zones[i]
		}
	}
	return nil
}

// AreaByID returns the area override for the given vendor id, if any.
func (c *Config) AreaByID(id string) *AreaConfig {
	for i := range c.Areas {
		if c.Areas[i].ID == id {
			return &c.Areas[i]
		}
	}
	return nil
}
