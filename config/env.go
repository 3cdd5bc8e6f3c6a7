package config

import (
	"os"
	"strings"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// ParseEnvironment maps a raw ENV value to an Environment. CI is detected
// from the CI variable set by most runners; anything unknown is development.
func ParseEnvironment(raw string) Environment {
	if os.Getenv("CI") == "true" && raw == "" {
		return CI
	}
	switch Environment(strings.ToLower(strings.TrimSpace(raw))) {
	case Production, "prod":
		return Production
	case Test:
		return Test
	case CI:
		return CI
	default:
		return Development
	}
}

// GetEnvironment determines the current environment from the process env
func GetEnvironment() Environment {
	raw := os.Getenv("APP_ENV")
	if raw == "" {
		raw = os.Getenv("ENV")
	}
	return ParseEnvironment(raw)
}

// IsProduction returns true for the production environment
func (e Environment) IsProduction() bool {
	return e == Production
}

// IsDevelopment returns true for the development environment
func (e Environment) IsDevelopment() bool {
	return e == Development
}
