package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nrs-cansat/telemetry/internal/conf"
	"github.com/nrs-cansat/telemetry/internal/radio"
	"github.com/nrs-cansat/telemetry/internal/serlink"
)

// Config represents the ground unit configuration
type Config struct {
	Settings Settings         `yaml:"settings"`
	Radio    radio.RF95Config `yaml:"radio"`
	Serial   serlink.Config   `yaml:"serial"`
	Relay    RelayConfig      `yaml:"relay"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// RelayConfig represents the bridge timing
type RelayConfig struct {
	ReceiveTimeout conf.Duration `yaml:"receiveTimeout"`
}

// LoadConfig reads and parses the yaml configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	config := Config{
		Settings: Settings{LogLevel: "info"},
	}
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if config.Radio.Device == "" {
		return nil, fmt.Errorf("radio device is required")
	}
	if config.Serial.Port == "" {
		return nil, fmt.Errorf("serial port is required")
	}

	return &config, nil
}
