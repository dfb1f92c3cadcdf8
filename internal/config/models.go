package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// CurrentVersion is the config file schema version this build reads and writes
const CurrentVersion = 1

// Config represents the entire configuration file
type Config struct {
	Version   int             `yaml:"version"`
	API       APIConfig       `yaml:"api"`
	Web       WebConfig       `yaml:"web"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Logging   LoggingConfig   `yaml:"logging"`
	Backend   BackendConfig   `yaml:"backend"`
}

// APIConfig is how the dashboard reaches the inventory API
type APIConfig struct {
	BaseURL    string        `yaml:"base_url,omitempty"` // Empty means discover via mDNS
	Timeout    time.Duration `yaml:"timeout"`            // Bound on every request
	MaxRetries int           `yaml:"max_retries"`        // Retries for transient failures
}

// WebConfig is the browser front end listener
type WebConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DiscoveryConfig controls mDNS lookup of the inventory API
type DiscoveryConfig struct {
	Enabled bool          `yaml:"enabled"`
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig selects the log level and optional log file
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // debug, info, warn, error; empty disables logging
	File  string `yaml:"file,omitempty"`  // Used by the terminal UI so logs do not corrupt the screen
}

// BackendConfig configures the reference inventory API server
type BackendConfig struct {
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	SeedFile      string        `yaml:"seed_file,omitempty"`
	ProbeInterval time.Duration `yaml:"probe_interval"` // Zero disables probing
	ProbeTimeout  time.Duration `yaml:"probe_timeout"`
	Advertise     bool          `yaml:"advertise"` // Announce the API over mDNS
}

// Default creates a Config with default values
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		API: APIConfig{
			Timeout:    10 * time.Second,
			MaxRetries: 2,
		},
		Web: WebConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Discovery: DiscoveryConfig{
			Enabled: true,
			Timeout: 3 * time.Second,
		},
		Backend: BackendConfig{
			Host:          "0.0.0.0",
			Port:          8081,
			ProbeInterval: 30 * time.Second,
			ProbeTimeout:  2 * time.Second,
			Advertise:     true,
		},
	}
}

// fillDefaults replaces zero values left by a partial file with defaults
func (c *Config) fillDefaults() {
	d := Default()
	if c.API.Timeout <= 0 {
		c.API.Timeout = d.API.Timeout
	}
	if c.API.MaxRetries < 0 {
		c.API.MaxRetries = 0
	}
	if c.Web.Host == "" {
		c.Web.Host = d.Web.Host
	}
	if c.Web.Port == 0 {
		c.Web.Port = d.Web.Port
	}
	if c.Discovery.Timeout <= 0 {
		c.Discovery.Timeout = d.Discovery.Timeout
	}
	if c.Backend.Host == "" {
		c.Backend.Host = d.Backend.Host
	}
	if c.Backend.Port == 0 {
		c.Backend.Port = d.Backend.Port
	}
	if c.Backend.ProbeTimeout <= 0 {
		c.Backend.ProbeTimeout = d.Backend.ProbeTimeout
	}
}

// Validate checks that ports are in range and the version is supported
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion)
	}
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("invalid web port: %d", c.Web.Port)
	}
	if c.Backend.Port < 1 || c.Backend.Port > 65535 {
		return fmt.Errorf("invalid backend port: %d", c.Backend.Port)
	}
	return nil
}

// WebAddr returns host:port for the browser front end listener
func (c *Config) WebAddr() string {
	return net.JoinHostPort(c.Web.Host, strconv.Itoa(c.Web.Port))
}

// BackendAddr returns host:port for the inventory API listener
func (c *Config) BackendAddr() string {
	return net.JoinHostPort(c.Backend.Host, strconv.Itoa(c.Backend.Port))
}
