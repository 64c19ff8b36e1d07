package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	// BindAddress is the address the server listens on (e.g. "0.0.0.0:8080")
	BindAddress string `yaml:"bindAddress"`
	// SerialPort is the path to the modem's serial port. Empty means the
	// first USB serial device found is used.
	SerialPort string `yaml:"serialPort"`
	// BaudRate is the baud rate for serial communication with the modem
	BaudRate int `yaml:"baudRate"`
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string `yaml:"logLevel"`
	// APN is configured on the bearer profile before it is opened
	APN string `yaml:"apn"`
	// MaxRetries bounds the pings sent while connecting
	MaxRetries int `yaml:"maxRetries"`
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:8080"
		c.SerialPort = ""
		c.BaudRate = 9600
		c.LogLevel = "info"
		c.MaxRetries = 3
		return nil
	}
}

// WithFile overlays the values set in a YAML file. An empty path is ignored.
func WithFile(path string) ConfigOption {
	return func(c *Config) error {
		if path == "" {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(content, c); err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
			c.BindAddress = addr
		}

		if serial := os.Getenv("SERIAL_PORT"); serial != "" {
			c.SerialPort = serial
		}

		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			b, err := strconv.Atoi(baud)
			if err != nil {
				return fmt.Errorf("BAUD_RATE: %w", err)
			}
			c.BaudRate = b
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}

		if apn := os.Getenv("APN"); apn != "" {
			c.APN = apn
		}

		if retries := os.Getenv("MAX_RETRIES"); retries != "" {
			n, err := strconv.Atoi(retries)
			if err != nil {
				return fmt.Errorf("MAX_RETRIES: %w", err)
			}
			c.MaxRetries = n
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags that were set
// explicitly.
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		var errs []error
		fSet.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "bind-address":
				c.BindAddress = f.Value.String()
			case "serial-port":
				c.SerialPort = f.Value.String()
			case "baud-rate":
				b, err := strconv.Atoi(f.Value.String())
				if err != nil {
					errs = append(errs, fmt.Errorf("baud-rate: %w", err))
					return
				}
				c.BaudRate = b
			case "log-level":
				c.LogLevel = f.Value.String()
			case "apn":
				c.APN = f.Value.String()
			case "max-retries":
				n, err := strconv.Atoi(f.Value.String())
				if err != nil {
					errs = append(errs, fmt.Errorf("max-retries: %w", err))
					return
				}
				c.MaxRetries = n
			}
		})
		return errors.Join(errs...)
	}
}
