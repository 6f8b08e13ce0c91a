package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with every setting unset.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range keys {
		env := strings.ToUpper(key)
		if _, ok := os.LookupEnv(env); ok {
			t.Setenv(env, "")
			require.NoError(t, os.Unsetenv(env))
		}
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, &Settings{
		GeminiModel:   "gemini-2.5-flash",
		CrawlProvider: "firecrawl",
		CrawlTimeout:  30 * time.Second,
		CrawlCacheTTL: 24 * time.Hour,
		Port:          "8123",
		FrontendDir:   "../frontend/dist",
		LogLevel:      "info",
		LogFormat:     "console",
	}, s)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9000\"\ncrawl_provider: readability\nredis_addr: localhost:6379\n"), 0o600))

	t.Setenv("PORT", "9100")
	t.Setenv("CRAWL_TIMEOUT", "45s")
	t.Setenv("FIRECRAWL_API_KEY", "fc-key")

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", s.Port)
	assert.Equal(t, "readability", s.CrawlProvider)
	assert.Equal(t, "localhost:6379", s.RedisAddr)
	assert.Equal(t, 45*time.Second, s.CrawlTimeout)
	assert.Equal(t, "fc-key", s.FirecrawlAPIKey)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GEMINI_API_KEY=from-dotenv\nLOG_LEVEL=debug\n"), 0o600))
	t.Setenv("LOG_LEVEL", "warn")
	t.Cleanup(func() { os.Unsetenv("GEMINI_API_KEY") })

	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", s.GeminiAPIKey)
	assert.Equal(t, "warn", s.LogLevel, "variables already set win over .env")
}

func TestLoad_MissingFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Settings{CrawlProvider: "firecrawl", Port: "8123"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Settings)
		want   string
	}{
		{"unknown provider", func(s *Settings) { s.CrawlProvider = "chrome" }, "crawl_provider"},
		{"negative timeout", func(s *Settings) { s.CrawlTimeout = -time.Second }, "crawl_timeout"},
		{"negative ttl", func(s *Settings) { s.CrawlCacheTTL = -time.Second }, "crawl_cache_ttl"},
		{"negative db", func(s *Settings) { s.RedisDB = -1 }, "redis_db"},
		{"no port", func(s *Settings) { s.Port = "" }, "port"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			assert.ErrorContains(t, s.Validate(), tt.want)
		})
	}
}
