package app

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nrs-cansat/telemetry/internal/conf"
	"github.com/nrs-cansat/telemetry/internal/receiver"
	"github.com/nrs-cansat/telemetry/internal/serlink"
)

// Config represents the ground station configuration
type Config struct {
	Settings Settings       `yaml:"settings"`
	Serial   serlink.Config `yaml:"serial"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Storage  StorageConfig  `yaml:"storage"`
	Commands CommandsConfig `yaml:"commands"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// PipelineConfig shapes the telemetry intake loop
type PipelineConfig struct {
	QueueLen      int           `yaml:"queueLen"`
	PollInterval  conf.Duration `yaml:"pollInterval"`
	DummyInterval conf.Duration `yaml:"dummyInterval"`
}

// StorageConfig tells the station where flight data lands
type StorageConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
	CSVAutoStart  bool   `yaml:"csvAutoStart"`
	BatchSize     int    `yaml:"batchSize"`
}

// CommandsConfig shapes the servo command path
type CommandsConfig struct {
	Debounce   conf.Duration       `yaml:"debounce"`
	ServoRange receiver.ServoRange `yaml:"servoRange"`
}

// LoadConfig reads and parses the yaml configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	config := Config{
		Settings: Settings{LogLevel: "info"},
		Storage:  StorageConfig{DataDirectory: "."},
	}
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if config.Serial.Port == "" {
		return nil, fmt.Errorf("serial port is required")
	}

	return &config, nil
}
