// Package config reads server settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mmynk/settleup/internal/money"
)

const defaultJWTSecret = "change-me-in-production"

type Config struct {
	// HTTP Server
	Port            string
	ShutdownTimeout time.Duration
	CORSOrigin      string

	// Storage
	DataBackend string
	DBPath      string
	SeedData    bool

	// Auth
	JWTSecret     string
	TokenDuration time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Ledger
	SplitEpsilon string

	// AMQP events; publishing is off when AMQPURL is empty.
	AMQPURL      string
	AMQPExchange string
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		CORSOrigin:      getEnv("CORS_ALLOWED_ORIGIN", "*"),

		DataBackend: getEnv("DATA_BACKEND", "sqlite"),
		DBPath:      getEnv("DB_PATH", "./data/settleup.db"),
		SeedData:    getEnvBool("SEED_DATA", false),

		JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
		TokenDuration: getEnvDuration("TOKEN_DURATION", 24*time.Hour),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		SplitEpsilon: getEnv("SPLIT_EPSILON", money.DefaultEpsilon.String()),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "settleup"),
	}
}

// Epsilon returns SplitEpsilon as money. Call Validate first.
func (c *Config) Epsilon() money.Money {
	eps, err := money.Parse(c.SplitEpsilon)
	if err != nil {
		return money.DefaultEpsilon
	}
	return eps
}

// UsesDefaultSecret reports whether JWT_SECRET was left unset.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.CORSOrigin != "*" {
		if u, err := url.Parse(c.CORSOrigin); err != nil || u.Scheme == "" || u.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid CORS origin '%s': must be '*' or scheme://host", c.CORSOrigin))
		}
	}

	validBackends := []string{"memory", "sqlite"}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}
	if c.DataBackend == "sqlite" && c.DBPath == "" {
		errors = append(errors, "database path cannot be empty when using sqlite backend")
	}

	if c.JWTSecret == "" {
		errors = append(errors, "JWT secret cannot be empty")
	}
	if c.TokenDuration < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid token duration %v: must be at least 1 minute", c.TokenDuration))
	}
	if c.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be positive", c.ShutdownTimeout))
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLevels, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLevels))
	}
	validFormats := []string{"text", "json"}
	if !slices.Contains(validFormats, strings.ToLower(c.LogFormat)) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validFormats))
	}

	if _, err := money.Parse(c.SplitEpsilon); err != nil {
		errors = append(errors, fmt.Sprintf("invalid split epsilon '%s': %v", c.SplitEpsilon, err))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
