// Package config loads process settings from an optional .env file, an
// optional YAML file and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings are the process-wide settings. Per-run research options live in
// agent.Configuration.
type Settings struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key"`
	GeminiModel  string `mapstructure:"gemini_model"`

	FirecrawlAPIKey string        `mapstructure:"firecrawl_api_key"`
	FirecrawlAPIURL string        `mapstructure:"firecrawl_api_url"`
	CrawlProvider   string        `mapstructure:"crawl_provider"`
	CrawlTimeout    time.Duration `mapstructure:"crawl_timeout"`
	CrawlCacheTTL   time.Duration `mapstructure:"crawl_cache_ttl"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	Port        string `mapstructure:"port"`
	FrontendDir string `mapstructure:"frontend_dir"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

var keys = []string{
	"gemini_api_key",
	"gemini_model",
	"firecrawl_api_key",
	"firecrawl_api_url",
	"crawl_provider",
	"crawl_timeout",
	"crawl_cache_ttl",
	"redis_addr",
	"redis_password",
	"redis_db",
	"port",
	"frontend_dir",
	"log_level",
	"log_format",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("gemini_model", "gemini-2.5-flash")
	v.SetDefault("crawl_provider", "firecrawl")
	v.SetDefault("crawl_timeout", 30*time.Second)
	v.SetDefault("crawl_cache_ttl", 24*time.Hour)
	v.SetDefault("redis_db", 0)
	v.SetDefault("port", "8123")
	v.SetDefault("frontend_dir", "../frontend/dist")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
}

// Load reads .env (if present) into the environment without overriding
// variables already set, then resolves every setting from the environment,
// the YAML file at path (optional, empty to skip) and the defaults.
func Load(path string) (*Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", key, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	s.CrawlProvider = strings.ToLower(strings.TrimSpace(s.CrawlProvider))

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return &s, nil
}

// Validate rejects settings no component can run with.
func (s *Settings) Validate() error {
	var errs []error
	switch s.CrawlProvider {
	case "firecrawl", "readability":
	default:
		errs = append(errs, fmt.Errorf("crawl_provider must be firecrawl or readability, got %q", s.CrawlProvider))
	}
	if s.CrawlTimeout < 0 {
		errs = append(errs, fmt.Errorf("crawl_timeout must not be negative"))
	}
	if s.CrawlCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("crawl_cache_ttl must not be negative"))
	}
	if s.RedisDB < 0 {
		errs = append(errs, fmt.Errorf("redis_db must not be negative"))
	}
	if s.Port == "" {
		errs = append(errs, fmt.Errorf("port must be set"))
	}
	return errors.Join(errs...)
}
