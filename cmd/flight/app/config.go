package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nrs-cansat/telemetry/internal/conf"
	"github.com/nrs-cansat/telemetry/internal/radio"
	"github.com/nrs-cansat/telemetry/internal/sensors"
)

// Config represents the flight unit configuration
type Config struct {
	Settings  Settings         `yaml:"settings"`
	Radio     radio.RF95Config `yaml:"radio"`
	Publisher PublisherConfig  `yaml:"publisher"`
	Sensors   SensorsConfig    `yaml:"sensors"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// PublisherConfig represents the cycle loop timing
type PublisherConfig struct {
	Interval       conf.Duration `yaml:"interval"`
	ReceiveTimeout conf.Duration `yaml:"receiveTimeout"`
}

// SensorsConfig shapes the simulated measurement bench. Physical
// sensor drivers live outside this module; the flight binary runs its
// channels in simulation against a real radio.
type SensorsConfig struct {
	Humidity    sensors.SimConfig `yaml:"humidity"`
	Temperature sensors.SimConfig `yaml:"temperature"`
	Pressure    sensors.SimConfig `yaml:"pressure"`
	Altitude    sensors.SimConfig `yaml:"altitude"`
	Gas         sensors.SimConfig `yaml:"gas"`
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

	return &config, nil
}
