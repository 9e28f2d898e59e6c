package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for configuration when --config is not given.
const DefaultPath = "sourcetalk.yaml"

// Config holds all SourceTalk configuration.
type Config struct {
	// Content API (catalogs, materials, suppliers)
	Content ContentConfig `yaml:"content"`

	// Chat webhook
	Relay RelayConfig `yaml:"relay"`

	// Interactive listing behaviour
	Browse BrowseConfig `yaml:"browse"`

	// JSON backend
	Server ServerConfig `yaml:"server"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ContentConfig configures the content API client.
type ContentConfig struct {
	BaseURL  string `yaml:"base_url"`
	Token    string `yaml:"token"`
	Timeout  string `yaml:"timeout"`
	PageSize int    `yaml:"page_size"`
}

// RelayConfig configures the chat webhook.
type RelayConfig struct {
	WebhookURL string `yaml:"webhook_url"`
	Timeout    string `yaml:"timeout"`
}

// BrowseConfig configures filter debouncing and the page number window.
type BrowseConfig struct {
	DebounceWindow   string `yaml:"debounce_window"`
	PaginationRadius int    `yaml:"pagination_radius"`
}

// ServerConfig configures `sourcetalk serve`.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	MaxConnections  int    `yaml:"max_connections"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Content: ContentConfig{
			BaseURL:  "http://localhost:1337/api",
			Timeout:  "30s",
			PageSize: 12,
		},
		Relay: RelayConfig{
			Timeout: "120s",
		},
		Browse: BrowseConfig{
			DebounceWindow:   "2s",
			PaginationRadius: 1,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     "15s",
			ShutdownTimeout: "10s",
			MaxConnections:  256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration as YAML, replacing the file atomically.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("SOURCETALK_API_URL"); url != "" {
		c.Content.BaseURL = url
	}
	if token := os.Getenv("SOURCETALK_API_TOKEN"); token != "" {
		c.Content.Token = token
	}
	if url := os.Getenv("SOURCETALK_WEBHOOK_URL"); url != "" {
		c.Relay.WebhookURL = url
	}
	if addr := os.Getenv("SOURCETALK_SERVER_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if level := os.Getenv("SOURCETALK_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// GetContentTimeout returns the content API timeout as a duration.
func (c *Config) GetContentTimeout() time.Duration {
	return parseDuration(c.Content.Timeout, 30*time.Second)
}

// GetRelayTimeout returns the webhook timeout as a duration.
func (c *Config) GetRelayTimeout() time.Duration {
	return parseDuration(c.Relay.Timeout, 120*time.Second)
}

// GetDebounceWindow returns the filter quiescence window.
func (c *Config) GetDebounceWindow() time.Duration {
	return parseDuration(c.Browse.DebounceWindow, 2*time.Second)
}

// GetPaginationRadius returns how many pages either side of the current one
// are listed before collapsing into an ellipsis.
func (c *Config) GetPaginationRadius() int {
	if c.Browse.PaginationRadius < 1 {
		return 1
	}
	return c.Browse.PaginationRadius
}

// GetPageSize returns the listing page size.
func (c *Config) GetPageSize() int {
	if c.Content.PageSize < 1 {
		return 12
	}
	return c.Content.PageSize
}

// GetReadTimeout returns the server read timeout.
func (c *Config) GetReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 15*time.Second)
}

// GetShutdownTimeout returns how long serve waits for in-flight requests.
func (c *Config) GetShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

// GetMaxConnections returns the cap on simultaneous server connections.
func (c *Config) GetMaxConnections() int {
	if c.Server.MaxConnections < 1 {
		return 256
	}
	return c.Server.MaxConnections
}

// ValidateContent checks the settings the listing commands need.
func (c *Config) ValidateContent() error {
	if strings.TrimSpace(c.Content.BaseURL) == "" {
		return fmt.Errorf("content API base URL not configured (set content.base_url or SOURCETALK_API_URL)")
	}
	if strings.TrimSpace(c.Content.Token) == "" {
		return fmt.Errorf("content API token not configured (set content.token or SOURCETALK_API_TOKEN)")
	}
	return nil
}

// ValidateRelay checks the settings the chat commands need.
func (c *Config) ValidateRelay() error {
	if strings.TrimSpace(c.Relay.WebhookURL) == "" {
		return fmt.Errorf("chat webhook URL not configured (set relay.webhook_url or SOURCETALK_WEBHOOK_URL)")
	}
	return nil
}

// Validate validates the whole configuration.
func (c *Config) Validate() error {
	if err := c.ValidateContent(); err != nil {
		return err
	}
	return c.ValidateRelay()
}
