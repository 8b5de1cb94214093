package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"jk80-print/internal/escpos"
	"jk80-print/internal/printer"
)

// Config holds the user-tunable settings
type Config struct {
	TargetName string `yaml:"target_name"`
	Transport  string `yaml:"transport"`   // "socket" or "serial"
	Channel    int    `yaml:"channel"`     // RFCOMM channel for the socket transport
	SerialPort string `yaml:"serial_port"` // e.g. /dev/rfcomm0; empty uses the device's own port
	BaudRate   int    `yaml:"baud_rate"`
	QueueSize  int    `yaml:"queue_size"`
	LogLevel   string `yaml:"log_level"`
}

// Default returns the settings used when no config file exists
func Default() Config {
	return Config{
		TargetName: printer.TargetName,
		Transport:  printer.TransportSocket,
		Channel:    printer.DefaultChannel,
		BaudRate:   printer.DefaultBaudRate,
		QueueSize:  1,
		LogLevel:   "info",
	}
}

// Path returns $XDG_CONFIG_HOME/jk80-print/config.yaml
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "jk80-print", "config.yaml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Transport {
	case printer.TransportSocket, printer.TransportSerial:
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	// RFCOMM channels are 1-30
	if c.Channel < 1 || c.Channel > 30 {
		return fmt.Errorf("channel %d out of range 1-30", c.Channel)
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.BaudRate)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("queue_size must be at least 1")
	}
	return nil
}

// Model is the printer model stamped on the test receipt. An empty
// target name, which disables the device filter, keeps the stock model.
func (c Config) Model() string {
	if c.TargetName == "" {
		return escpos.DefaultModel
	}
	return c.TargetName
}

// PlatformOptions maps the config onto the printer platform layer
func (c Config) PlatformOptions() printer.PlatformOptions {
	return printer.PlatformOptions{
		Transport:  c.Transport,
		Channel:    c.Channel,
		SerialPort: c.SerialPort,
		BaudRate:   c.BaudRate,
	}
}
