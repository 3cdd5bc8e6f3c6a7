package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	supportedDrivers   = map[string]bool{"sqlite": true, "postgres": true}
	supportedProviders = map[string]bool{"anthropic": true, "openai": true, "mock": true}
)

// ValidateConfig checks the loaded configuration. A missing model API key is
// not an error here; the gateway reports it per request as Unconfigured.
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port < 1 || port > 65535 {
		add("PORT", fmt.Sprintf("invalid port %q", cfg.ServerPort))
	}
	if len(cfg.AllowedOrigins) == 0 {
		add("CORS_ALLOWED_ORIGINS", "at least one origin is required")
	}

	if !supportedDrivers[cfg.DBDriver] {
		add("DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver))
	}
	if cfg.DBDriver == "postgres" {
		if cfg.DBHost == "" {
			add("DB_HOST", "required for postgres")
		}
		if cfg.DBName == "" {
			add("DB_NAME", "required for postgres")
		}
		if cfg.DBUser == "" {
			add("DB_USER", "required for postgres")
		}
	}
	if cfg.DBDriver == "sqlite" && cfg.SQLitePath == "" {
		add("SQLITE_PATH", "required for sqlite")
	}

	if cfg.JWTSecret == "" {
		add("JWT_SECRET", "required")
	}
	if cfg.JWTTTL <= 0 {
		add("JWT_TTL", "must be positive")
	}

	if !supportedProviders[cfg.LLMProvider] {
		add("LLM_PROVIDER", fmt.Sprintf("unsupported provider %q", cfg.LLMProvider))
	}
	if cfg.LLMMaxTokens <= 0 {
		add("LLM_MAX_TOKENS", "must be positive")
	}
	if cfg.LLMTimeout <= 0 {
		add("LLM_TIMEOUT", "must be positive")
	}

	if cfg.Environment.IsProduction() {
		if cfg.JWTSecret == developmentJWTSecret {
			add("JWT_SECRET", "development secret cannot be used in production")
		}
		if cfg.DBDriver == "sqlite" {
			add("DB_DRIVER", "sqlite is not supported in production")
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
