// Copyright 2025 The a2a-book-agent Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads and validates the agent's YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Agent     AgentConfig     `yaml:"agent"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Tasks     TasksConfig     `yaml:"tasks"`
	LogLevel  string          `yaml:"log_level"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"`
}

// Address returns the listen address.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AgentConfig identifies the agent in its card and routes.
type AgentConfig struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Version     string `yaml:"version"`
}

// CatalogConfig configures the outbound book catalog client.
type CatalogConfig struct {
	BaseURL    string `yaml:"base_url"`
	MaxRetries int    `yaml:"max_retries"`
}

// RateLimitConfig configures the per-caller fixed-window limiter.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
}

// TasksConfig configures task retention. A zero TTL keeps tasks for the
// process lifetime.
type TasksConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// UnmarshalYAML parses durations from strings like "30s" or "1h".
func (c *TasksConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		TTL           string `yaml:"ttl"`
		SweepInterval string `yaml:"sweep_interval"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	var err error
	if raw.TTL != "" {
		if c.TTL, err = time.ParseDuration(raw.TTL); err != nil {
			return fmt.Errorf("invalid tasks.ttl: %w", err)
		}
	}
	if raw.SweepInterval != "" {
		if c.SweepInterval, err = time.ParseDuration(raw.SweepInterval); err != nil {
			return fmt.Errorf("invalid tasks.sweep_interval: %w", err)
		}
	}
	return nil
}

// EnvironmentError is a misconfiguration detected at startup. It is
// fatal: the process refuses to start.
type EnvironmentError struct {
	Setting string
	Message string
}

func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Setting, e.Message)
}

// LoadDotEnv loads a .env file from the working directory when present.
// A missing file is not an error.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load reads, expands, and validates the config at path. An empty path
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetDefaults fills zero values with sensible defaults.
func (c *Config) SetDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Agent.ID == "" {
		c.Agent.ID = "book-agent"
	}
	if c.Agent.Name == "" {
		c.Agent.Name = "Book Excerpt Agent"
	}
	if c.Agent.Description == "" {
		c.Agent.Description = "Finds public domain books and returns short excerpts."
	}
	if c.Agent.Version == "" {
		c.Agent.Version = "1.0.0"
	}
	if c.Catalog.BaseURL == "" {
		c.Catalog.BaseURL = "https://gutendex.com"
	}
	if c.Catalog.MaxRetries == 0 {
		c.Catalog.MaxRetries = 3
	}
	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = 30
	}
	if c.Tasks.SweepInterval == 0 {
		c.Tasks.SweepInterval = time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &EnvironmentError{Setting: "server.port", Message: "must be between 1 and 65535"}
	}
	if c.Agent.ID == "" {
		return &EnvironmentError{Setting: "agent.id", Message: "must not be empty"}
	}
	if c.Catalog.MaxRetries < 1 {
		return &EnvironmentError{Setting: "catalog.max_retries", Message: "must be at least 1"}
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute < 1 {
		return &EnvironmentError{Setting: "rate_limit.requests_per_minute", Message: "must be at least 1"}
	}
	if c.Tasks.TTL < 0 {
		return &EnvironmentError{Setting: "tasks.ttl", Message: "must not be negative"}
	}
	return nil
}
