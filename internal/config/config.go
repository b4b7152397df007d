package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the application configuration
type Config struct {
	Service ServiceConfig `json:"service"`
	Render  RenderConfig  `json:"render"`
	Focal   FocalConfig   `json:"focal"`
	Server  ServerConfig  `json:"server"`
}

// ServiceConfig addresses the remote image service
type ServiceConfig struct {
	BaseURL string            `json:"base_url"`
	Builder string            `json:"builder"`
	Extra   map[string]string `json:"extra,omitempty"`
}

// RenderConfig holds defaults for local rendering and composed URLs
type RenderConfig struct {
	DefaultFormat  string `json:"default_format"`
	DefaultQuality int    `json:"default_quality"`
}

// FocalConfig holds configuration for vision-model focal point detection
type FocalConfig struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
	Model   string `json:"model"`
}

// ServerConfig holds configuration for the HTTP server
type ServerConfig struct {
	Listen string `json:"listen"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			BaseURL: "http://localhost:8080",
			Builder: "query",
		},
		Render: RenderConfig{
			DefaultFormat:  "jpg",
			DefaultQuality: 85,
		},
		Focal: FocalConfig{
			Enabled: false,
			URL:     "http://localhost:11434",
			Model:   "minicpm-v",
		},
		Server: ServerConfig{
			Listen: ":8080",
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Service.BaseURL == "" {
		return fmt.Errorf("service.base_url cannot be empty")
	}

	if c.Service.Builder != "query" && c.Service.Builder != "path" {
		return fmt.Errorf("service.builder must be \"query\" or \"path\"")
	}

	if c.Render.DefaultQuality < 1 || c.Render.DefaultQuality > 100 {
		return fmt.Errorf("render.default_quality must be between 1 and 100")
	}

	if c.Render.DefaultFormat == "" {
		return fmt.Errorf("render.default_format cannot be empty")
	}

	if c.Focal.Enabled {
		if c.Focal.URL == "" {
			return fmt.Errorf("focal.url cannot be empty when focal detection is enabled")
		}
		if c.Focal.Model == "" {
			return fmt.Errorf("focal.model cannot be empty when focal detection is enabled")
		}
	}

	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen cannot be empty")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "image-url", "config.json")
}
