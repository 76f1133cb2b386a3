package config

import (
	"fmt"
	"os"
	"strconv"
)

// Token defaults
const (
	DefaultJWTExpirationHours = 24
	DefaultJWTIssuer          = "job-matcher"
)

// JWTConfig holds configuration for signing and validating the bearer tokens
// required by the posting write endpoints.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
	Issuer          string
}

// NewJWTConfig creates a new JWT configuration from environment variables.
// It reads JWT_SECRET (required), JWT_EXPIRATION_HOURS (default: 24) and JWT_ISSUER.
func NewJWTConfig() (*JWTConfig, error) {
	config := &JWTConfig{
		Secret:          os.Getenv("JWT_SECRET"),
		ExpirationHours: DefaultJWTExpirationHours,
		Issuer:          os.Getenv("JWT_ISSUER"),
	}
	if config.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}

	if v := os.Getenv("JWT_EXPIRATION_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %v", err)
		}
		config.ExpirationHours = hours
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// normalize fills the issuer and validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Issuer == "" {
		c.Issuer = DefaultJWTIssuer
	}
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
