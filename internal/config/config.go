// Package config loads runtime configuration for the agent.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all agent configuration. Zero values fall back to the
// defaults applied in Load, so a missing config file yields a usable
// local setup (direct Anthropic API, no memory, no sandbox).
type Config struct {
	Listen   ListenConfig  `yaml:"listen"`
	Model    ModelConfig   `yaml:"model"`
	Bedrock  BedrockConfig `yaml:"bedrock"`
	Memory   MemoryConfig  `yaml:"memory"`
	Sandbox  SandboxConfig `yaml:"sandbox"`
	Browser  BrowserConfig `yaml:"browser"`
	News     NewsConfig    `yaml:"news"`
	LogLevel string        `yaml:"log_level"`
}

// ListenConfig configures the HTTP listener.
type ListenConfig struct {
	Addr string `yaml:"addr"`
}

// ModelConfig selects the inference model.
type ModelConfig struct {
	ID        string `yaml:"id"`
	MaxTokens int    `yaml:"max_tokens"`
}

// BedrockConfig enables routing inference through Amazon Bedrock instead of
// the Anthropic API. Region is resolved by the AWS SDK config chain when
// empty.
type BedrockConfig struct {
	Enabled bool   `yaml:"enabled"`
	Region  string `yaml:"region"`
}

// MemoryConfig points at the long-term memory backend. An empty BaseURL
// disables persistence and recall (the adapter degrades to no-ops).
type MemoryConfig struct {
	BaseURL   string `yaml:"base_url"`
	StoreName string `yaml:"store_name"`
}

// SandboxConfig points at the code-interpreter backend. An empty BaseURL
// makes the execute_python tool report itself unavailable.
type SandboxConfig struct {
	BaseURL           string `yaml:"base_url"`
	SessionTTLSeconds int    `yaml:"session_ttl_seconds"`
}

// BrowserConfig points at the screenshot renderer used by browse_web's
// screenshot mode. Text and HTML extraction work without it.
type BrowserConfig struct {
	RendererURL string `yaml:"renderer_url"`
}

// NewsConfig configures the get_aws_news feed source.
type NewsConfig struct {
	FeedURL string `yaml:"feed_url"`
}

// Defaults, applied for any zero-valued field after YAML decoding.
const (
	DefaultAddr           = ":8080"
	DefaultModelID        = "claude-sonnet-4-5"
	DefaultBedrockModelID = "jp.anthropic.claude-sonnet-4-5-20250929-v1:0"
	DefaultMaxTokens      = 4096
	DefaultStoreName      = "awsq"
	DefaultSessionTTL     = 900
	DefaultFeedURL        = "https://aws.amazon.com/about-aws/whats-new/recent/feed/"
)

// DefaultSearchPaths returns the config file search order. An explicit path
// (from the -config flag) is checked first by FindConfig.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "awsq", "config.yaml"))
	}
	paths = append(paths, "/etc/awsq/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise the search paths are tried in order; "" is returned when nothing
// is found, which Load treats as all-defaults.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}
	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// Load reads the YAML config at path (or defaults when path is empty) and
// fills in default values for anything unset.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen.Addr == "" {
		c.Listen.Addr = DefaultAddr
	}
	if c.Model.ID == "" {
		if c.Bedrock.Enabled {
			c.Model.ID = DefaultBedrockModelID
		} else {
			c.Model.ID = DefaultModelID
		}
	}
	if c.Model.MaxTokens <= 0 {
		c.Model.MaxTokens = DefaultMaxTokens
	}
	if c.Memory.StoreName == "" {
		c.Memory.StoreName = DefaultStoreName
	}
	if c.Sandbox.SessionTTLSeconds <= 0 {
		c.Sandbox.SessionTTLSeconds = DefaultSessionTTL
	}
	if c.News.FeedURL == "" {
		c.News.FeedURL = DefaultFeedURL
	}
}
