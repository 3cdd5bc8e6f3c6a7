package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort      string
	ServerHost      string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string
	JWTTTL    time.Duration

	// Model gateway configuration
	LLMProvider  string
	LLMAPIKey    string
	LLMBaseURL   string
	LLMModel     string
	LLMMaxTokens int
	LLMTimeout   time.Duration

	// Recipe export storage
	S3Bucket    string
	AWSRegion   string
	AWSEndpoint string

	// Logging
	LogLevel  string
	LogFormat string
}

// developmentJWTSecret is only ever used outside production, ValidateConfig rejects it there.
const developmentJWTSecret = "masterchef-development-secret"

// LoadConfig reads configuration from environment variables, an optional
// config.yaml and Docker secrets, in that order of precedence.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Environment:     ParseEnvironment(v.GetString("env")),
		ServerPort:      v.GetString("port"),
		ServerHost:      v.GetString("host"),
		AllowedOrigins:  splitList(v.GetString("cors_allowed_origins")),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),

		DBDriver:   strings.ToLower(v.GetString("db_driver")),
		DBHost:     v.GetString("db_host"),
		DBPort:     v.GetString("db_port"),
		DBUser:     v.GetString("db_user"),
		DBPassword: v.GetString("db_password"),
		DBName:     v.GetString("db_name"),
		DBSSLMode:  v.GetString("db_ssl_mode"),
		SQLitePath: v.GetString("sqlite_path"),

		RedisHost:     v.GetString("redis_host"),
		RedisPort:     v.GetString("redis_port"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),
		RedisURL:      v.GetString("redis_url"),

		JWTSecret: v.GetString("jwt_secret"),
		JWTTTL:    v.GetDuration("jwt_ttl"),

		LLMProvider:  strings.ToLower(v.GetString("llm_provider")),
		LLMAPIKey:    v.GetString("llm_api_key"),
		LLMBaseURL:   v.GetString("llm_base_url"),
		LLMModel:     v.GetString("llm_model"),
		LLMMaxTokens: v.GetInt("llm_max_tokens"),
		LLMTimeout:   v.GetDuration("llm_timeout"),

		S3Bucket:    v.GetString("s3_bucket_name"),
		AWSRegion:   v.GetString("aws_region"),
		AWSEndpoint: v.GetString("aws_endpoint_url"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
	}

	// Sensitive values fall back to Docker secrets
	fillFromSecret(&cfg.DBPassword, "db_password")
	fillFromSecret(&cfg.RedisPassword, "redis_password")
	fillFromSecret(&cfg.JWTSecret, "jwt_secret")
	fillFromSecret(&cfg.LLMAPIKey, "llm_api_key")

	if cfg.JWTSecret == "" && !cfg.Environment.IsProduction() {
		cfg.JWTSecret = developmentJWTSecret
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
		if cfg.Environment.IsProduction() {
			cfg.LogFormat = "json"
		}
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", string(Development))
	v.SetDefault("port", "3001")
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("shutdown_timeout", "10s")

	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_name", "masterchef")
	v.SetDefault("db_ssl_mode", "disable")
	v.SetDefault("sqlite_path", "masterchef.db")

	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_db", 0)

	v.SetDefault("jwt_ttl", "24h")

	v.SetDefault("llm_provider", "anthropic")
	v.SetDefault("llm_max_tokens", 1024)
	v.SetDefault("llm_timeout", "30s")

	v.SetDefault("aws_region", "us-east-1")
	v.SetDefault("log_level", "info")
}

// bindEnv maps config keys to their environment variables. The first
// variable listed wins when several are set.
func bindEnv(v *viper.Viper) error {
	bindings := map[string][]string{
		"env":                  {"APP_ENV", "ENV"},
		"port":                 {"PORT", "SERVER_PORT"},
		"host":                 {"HOST", "SERVER_HOST"},
		"cors_allowed_origins": {"CORS_ALLOWED_ORIGINS", "CORS_ORIGIN"},
		"shutdown_timeout":     {"SHUTDOWN_TIMEOUT"},
		"db_driver":            {"DB_DRIVER"},
		"db_host":              {"DB_HOST"},
		"db_port":              {"DB_PORT"},
		"db_user":              {"DB_USER"},
		"db_password":          {"DB_PASSWORD"},
		"db_name":              {"DB_NAME"},
		"db_ssl_mode":          {"DB_SSL_MODE"},
		"sqlite_path":          {"SQLITE_PATH"},
		"redis_host":           {"REDIS_HOST"},
		"redis_port":           {"REDIS_PORT"},
		"redis_password":       {"REDIS_PASSWORD"},
		"redis_db":             {"REDIS_DB"},
		"redis_url":            {"REDIS_URL"},
		"jwt_secret":           {"JWT_SECRET"},
		"jwt_ttl":              {"JWT_TTL"},
		"llm_provider":         {"LLM_PROVIDER"},
		"llm_api_key":          {"LLM_API_KEY", "CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
		"llm_base_url":         {"LLM_BASE_URL"},
		"llm_model":            {"LLM_MODEL"},
		"llm_max_tokens":       {"LLM_MAX_TOKENS"},
		"llm_timeout":          {"LLM_TIMEOUT"},
		"s3_bucket_name":       {"S3_BUCKET_NAME"},
		"aws_region":           {"AWS_REGION"},
		"aws_endpoint_url":     {"AWS_ENDPOINT_URL"},
		"log_level":            {"LOG_LEVEL"},
		"log_format":           {"LOG_FORMAT"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return err
		}
	}
	return nil
}

// PostgresDSN builds the keyword/value connection string for the postgres
// driver. Every value is quoted so credentials may contain spaces or quotes.
func (c *Config) PostgresDSN() string {
	pairs := []struct{ key, value string }{
		{"host", c.DBHost},
		{"port", c.DBPort},
		{"user", c.DBUser},
		{"password", c.DBPassword},
		{"dbname", c.DBName},
		{"sslmode", c.DBSSLMode},
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.key+"="+quoteDSNValue(p.value))
	}
	return strings.Join(parts, " ")
}

// PostgresURL builds a postgres:// URL with escaped credentials
func (c *Config) PostgresURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	return u.String()
}

func quoteDSNValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func fillFromSecret(dst *string, name string) {
	if *dst == "" {
		*dst = readSecret(name)
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
