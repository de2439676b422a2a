package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// Source describes one configured news source.
type Source struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"` // hackernews, reddit, arxiv, rss
	URL     string `yaml:"url,omitempty"`
	Enabled bool   `yaml:"enabled"`
}

type Config struct {
	ServerPort         string   `yaml:"server_port"`
	BatchSize          int      `yaml:"batch_size"`
	ProcessingInterval string   `yaml:"processing_interval"`
	CacheRetention     string   `yaml:"cache_retention"`
	MinScore           float64  `yaml:"min_score"`
	TopArticles        int      `yaml:"top_articles"`
	CapabilityDelay    string   `yaml:"capability_delay"`
	LogLevel           string   `yaml:"log_level"`
	LogFormat          string   `yaml:"log_format"`
	Sources            []Source `yaml:"sources"`

	// Secrets come from the environment, never from the config file.
	OpenAIAPIKey   string `yaml:"-"`
	TelegramToken  string `yaml:"-"`
	TelegramChatID int64  `yaml:"-"`
}

func (c *Config) ProcessingIntervalDuration() time.Duration {
	return parseDuration(c.ProcessingInterval, 30*time.Minute)
}

func (c *Config) CacheRetentionDuration() time.Duration {
	return parseDuration(c.CacheRetention, 24*time.Hour)
}

func (c *Config) CapabilityDelayDuration() time.Duration {
	return parseDuration(c.CapabilityDelay, 100*time.Millisecond)
}

func (c *Config) EnabledSources() []Source {
	var out []Source
	for _, s := range c.Sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// AIEnabled reports whether the OpenAI-backed analyzer can be used.
func (c *Config) AIEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// TelegramEnabled reports whether digest broadcasting is configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "sotanews", "config.yaml")
}

func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, "sotanews", "sotanews.db")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config file at path (the default config path when empty),
// falling back to embedded defaults when no file exists, then applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run: embedded defaults only.
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", "")
	cfg.TelegramToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	cfg.TelegramChatID = getEnvAsInt64("TELEGRAM_CHAT_ID", 0)
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
}

func validate(cfg *Config) error {
	validTypes := map[string]bool{"hackernews": true, "reddit": true, "arxiv": true, "rss": true}
	for i, s := range cfg.Sources {
		if s.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if !validTypes[s.Type] {
			return fmt.Errorf("source %q: unknown type %q (valid: hackernews, reddit, arxiv, rss)", s.Name, s.Type)
		}
		if s.Type == "rss" && s.URL == "" {
			return fmt.Errorf("source %q: url is required for rss sources", s.Name)
		}
	}
	if cfg.MinScore < 0 || cfg.MinScore > 1 {
		return fmt.Errorf("min_score must be in [0, 1], got %v", cfg.MinScore)
	}
	return nil
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
