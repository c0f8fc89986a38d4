// Package config loads the YAML configuration for the three siloflow
// processes (Agent, Control Service, Ingress Worker), with defaults
// matching spec.md §6's named configuration keys.
//
// Grounded on hazyhaar-chrc/sas_ingester/config.go's
// DefaultConfig/LoadConfig/Validate trio.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AgentConfig configures one Agent process (C6).
type AgentConfig struct {
	File             string        `yaml:"file"`
	BufferSize       int           `yaml:"buffer_size"`
	ControlEndpoint  string        `yaml:"control_endpoint"`
	TickInterval     time.Duration `yaml:"tick_interval"`
	MaxPending       int           `yaml:"max_pending"`
	MaxUploadRetries int           `yaml:"max_upload_retries"`
}

// ControlConfig configures one Control Service replica (C7) and its
// embedded Schema Registry (C3).
type ControlConfig struct {
	ListenAddr   string        `yaml:"listen_addr"`
	SourceBucket string        `yaml:"source_bucket"`
	URLPoolSize  int           `yaml:"url_pool_size"`
	URLExpiry    time.Duration `yaml:"url_expiry"`

	RegistryNodeID   string `yaml:"registry_node_id"`
	RegistryBindAddr string `yaml:"registry_bind_addr"`
	RegistryDataDir  string `yaml:"registry_data_dir"`
}

// IngressConfig configures one Ingress Worker process (C8).
type IngressConfig struct {
	PollIntervalMS    int    `yaml:"poll_interval_ms"`
	BatchSize         int    `yaml:"batch_size"`
	DestinationBucket string `yaml:"destination_bucket"`
	QueueURL          string `yaml:"queue_url"`
	SchemaTable       string `yaml:"schema_table"`
}

// PollInterval returns PollIntervalMS as a time.Duration.
func (c IngressConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// Config is the top-level YAML document; a process reads only the
// section it needs.
type Config struct {
	Agent   AgentConfig   `yaml:"agent"`
	Control ControlConfig `yaml:"control"`
	Ingress IngressConfig `yaml:"ingress"`
}

// DefaultConfig returns the defaults spec.md §6 names.
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			BufferSize:       1024,
			TickInterval:     100 * time.Millisecond,
			MaxPending:       16,
			MaxUploadRetries: 5,
		},
		Control: ControlConfig{
			ListenAddr:       ":50051",
			URLPoolSize:      5,
			URLExpiry:        15 * time.Minute,
			RegistryNodeID:   "node-1",
			RegistryBindAddr: "127.0.0.1:7946",
			RegistryDataDir:  "./siloflow-registry-data",
		},
		Ingress: IngressConfig{
			PollIntervalMS: 100,
			BatchSize:      10,
		},
	}
}

// Load reads and parses a YAML config file, returning DefaultConfig
// merged with whatever the file overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that the numeric settings of all three sections are
// positive. It does not check string settings such as agent.file or
// ingress.destination_bucket.
func (c *Config) Validate() error {
	if c.Agent.BufferSize <= 0 {
		return fmt.Errorf("agent.buffer_size must be > 0")
	}
	if c.Control.URLPoolSize <= 0 {
		return fmt.Errorf("control.url_pool_size must be > 0")
	}
	if c.Ingress.BatchSize <= 0 {
		return fmt.Errorf("ingress.batch_size must be > 0")
	}
	if c.Ingress.PollIntervalMS <= 0 {
		return fmt.Errorf("ingress.poll_interval_ms must be > 0")
	}
	return nil
}
