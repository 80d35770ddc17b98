// Package config loads the server configuration from an optional YAML file
// with DEEPFOCUS_* environment overrides on top.
package config

import (
	"fmt"
	"os"

	"github.com/deepfocushub/deepfocus/internal/llm"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	LLM      LLMConfig      `yaml:"llm"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	// TokenSecret signs bearer tokens. It has no default; the server
	// refuses to start without one.
	TokenSecret string `yaml:"token_secret"`
}

type LLMConfig struct {
	Enabled   bool   `yaml:"enabled"`
	LogCalls  bool   `yaml:"log_calls"`
	Endpoint  string `yaml:"endpoint"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

func DefaultConfig() *Config {
	llmDefaults := llm.DefaultConfig()
	return &Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Path: "deepfocus.db"},
		LLM: LLMConfig{
			Enabled:   llmDefaults.Enabled,
			Endpoint:  llmDefaults.Endpoint,
			Model:     llmDefaults.Model,
			TimeoutMs: llmDefaults.TimeoutMs,
		},
	}
}

// Load reads the YAML file at path (a missing file is fine when path is
// empty) and then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DEEPFOCUS_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DEEPFOCUS_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("DEEPFOCUS_TOKEN_SECRET"); v != "" {
		c.Auth.TokenSecret = v
	}

	// The LLM section reuses the llm package's own env handling so both
	// entry points agree on variable names.
	envLLM := llm.LoadConfig()
	if os.Getenv("DEEPFOCUS_LLM_ENABLED") != "" {
		c.LLM.Enabled = envLLM.Enabled
	}
	if os.Getenv("DEEPFOCUS_LLM_LOG_CALLS") != "" {
		c.LLM.LogCalls = envLLM.LogCalls
	}
	if os.Getenv("DEEPFOCUS_LLM_ENDPOINT") != "" {
		c.LLM.Endpoint = envLLM.Endpoint
	}
	if os.Getenv("DEEPFOCUS_LLM_API_KEY") != "" {
		c.LLM.APIKey = envLLM.APIKey
	}
	if os.Getenv("DEEPFOCUS_LLM_MODEL") != "" {
		c.LLM.Model = envLLM.Model
	}
	if os.Getenv("DEEPFOCUS_LLM_TIMEOUT_MS") != "" {
		c.LLM.TimeoutMs = envLLM.TimeoutMs
	}
}

// LLMClientConfig converts the section into the llm package's config type.
func (c *Config) LLMClientConfig() llm.Config {
	out := llm.DefaultConfig()
	out.Enabled = c.LLM.Enabled
	out.LogCalls = c.LLM.LogCalls
	if c.LLM.Endpoint != "" {
		out.Endpoint = c.LLM.Endpoint
	}
	out.APIKey = c.LLM.APIKey
	if c.LLM.Model != "" {
		out.Model = c.LLM.Model
	}
	if c.LLM.TimeoutMs > 0 {
		out.TimeoutMs = c.LLM.TimeoutMs
	}
	return out
}

// Validate checks the fields the server cannot run without.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Auth.TokenSecret == "" {
		return fmt.Errorf("auth.token_secret is required (set DEEPFOCUS_TOKEN_SECRET)")
	}
	return nil
}
