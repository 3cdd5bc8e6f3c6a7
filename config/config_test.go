package config

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("SECRETS_DIR", t.TempDir())
	for _, key := range []string{
		"APP_ENV", "ENV", "PORT", "SERVER_PORT", "CORS_ALLOWED_ORIGINS", "CORS_ORIGIN",
		"DB_DRIVER", "JWT_SECRET", "LLM_PROVIDER", "LLM_API_KEY", "CLAUDE_API_KEY",
		"ANTHROPIC_API_KEY", "LLM_TIMEOUT", "LOG_FORMAT", "CONFIG_FILE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadConfigWithDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, "3001", cfg.ServerPort)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "anthropic", cfg.LLMProvider)
	assert.Equal(t, 1024, cfg.LLMMaxTokens)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, developmentJWTSecret, cfg.JWTSecret)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Empty(t, cfg.LLMAPIKey, "a missing key is not a startup error")
}

func TestLoadConfigFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "8080")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, https://chef.example.com")
	t.Setenv("CLAUDE_API_KEY", "sk-test")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("LLM_TIMEOUT", "5s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, []string{"http://localhost:5173", "https://chef.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "sk-test", cfg.LLMAPIKey)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, 5*time.Second, cfg.LLMTimeout)
}

func TestLoadConfigReadsSecrets(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	t.Setenv("SECRETS_DIR", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "llm_api_key"), []byte("from-secret\n"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret", cfg.LLMAPIKey)
}

func TestLoadConfigProductionRules(t *testing.T) {
	isolate(t)
	t.Setenv("ENV", "production")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "sqlite is not supported in production")
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Environment:    Development,
			ServerPort:     "3001",
			AllowedOrigins: []string{"*"},
			DBDriver:       "sqlite",
			SQLitePath:     ":memory:",
			JWTSecret:      "secret",
			JWTTTL:         time.Hour,
			LLMProvider:    "mock",
			LLMMaxTokens:   1024,
			LLMTimeout:     30 * time.Second,
		}
	}

	assert.NoError(t, ValidateConfig(valid()))

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad port", func(c *Config) { c.ServerPort = "abc" }, "PORT"},
		{"port out of range", func(c *Config) { c.ServerPort = "70000" }, "PORT"},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, "DB_DRIVER"},
		{"postgres without host", func(c *Config) { c.DBDriver = "postgres"; c.DBName = "x"; c.DBUser = "x" }, "DB_HOST"},
		{"unknown provider", func(c *Config) { c.LLMProvider = "bard" }, "LLM_PROVIDER"},
		{"zero timeout", func(c *Config) { c.LLMTimeout = 0 }, "LLM_TIMEOUT"},
		{"no origins", func(c *Config) { c.AllowedOrigins = nil }, "CORS_ALLOWED_ORIGINS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestParseEnvironment(t *testing.T) {
	assert.Equal(t, Production, ParseEnvironment("production"))
	assert.Equal(t, Production, ParseEnvironment("PROD"))
	assert.Equal(t, Test, ParseEnvironment("test"))
	assert.Equal(t, Development, ParseEnvironment("whatever"))
}

func TestPostgresConnectionStringsEscapeCredentials(t *testing.T) {
	cfg := &Config{
		DBHost:     "db.internal",
		DBPort:     "5432",
		DBUser:     "chef",
		DBPassword: `p@ss w/o'rd\x`,
		DBName:     "masterchef",
		DBSSLMode:  "require",
	}

	assert.Equal(t,
		`host='db.internal' port='5432' user='chef' password='p@ss w/o\'rd\\x' dbname='masterchef' sslmode='require'`,
		cfg.PostgresDSN())

	u, err := url.Parse(cfg.PostgresURL())
	require.NoError(t, err)
	assert.Equal(t, "postgres", u.Scheme)
	assert.Equal(t, "db.internal:5432", u.Host)
	assert.Equal(t, "chef", u.User.Username())
	password, ok := u.User.Password()
	require.True(t, ok)
	assert.Equal(t, `p@ss w/o'rd\x`, password)
	assert.Equal(t, "/masterchef", u.Path)
	assert.Equal(t, "require", u.Query().Get("sslmode"))
}
