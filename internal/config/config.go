// Geoportal - Tourist Objects API and MapServer Gateway
// Copyright 2026 The Geoportal Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/uralgeo/geoportal

// Package config defines the process-wide configuration for Geoportal.
//
// Configuration is loaded once at startup via Load (see koanf.go) and
// passed explicitly to every component that needs it. There is no cached
// global accessor; main owns the only instance.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Environment tags accepted by AppConfig.Env.
const (
	EnvDev  = "dev"
	EnvTest = "test"
	EnvProd = "prod"
)

// Config aggregates all configuration sections.
type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	MapServer MapServerConfig `koanf:"mapserver"`
	Auth      AuthConfig      `koanf:"auth"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// AppConfig holds application identity settings.
type AppConfig struct {
	Env       string `koanf:"env"`
	Name      string `koanf:"name"`
	Version   string `koanf:"version"`
	APIPrefix string `koanf:"api_prefix"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host           string        `koanf:"host"`
	Port           int           `koanf:"port"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
	CORSOrigins    []string      `koanf:"cors_origins"`
	RateLimitReqs  int           `koanf:"rate_limit_reqs"`
	RateLimitLogin int           `koanf:"rate_limit_login"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	MaxConns int    `koanf:"max_conns"`
}

// DSN builds the pgx connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Password), c.Host, c.Port, c.Name)
}

// MapServerConfig holds settings for the proxied MapServer upstream.
type MapServerConfig struct {
	// URL is the upstream base URL, e.g. http://mapserver:8080.
	URL string `koanf:"url"`

	// Timeout bounds each upstream call end to end.
	Timeout time.Duration `koanf:"timeout"`

	// BreakerThreshold is the consecutive-failure count that opens the
	// circuit; BreakerCooldown is how long it stays open.
	BreakerThreshold uint32        `koanf:"breaker_threshold"`
	BreakerCooldown  time.Duration `koanf:"breaker_cooldown"`

	// UpstreamRPS caps the request rate to MapServer; UpstreamBurst is
	// the token-bucket burst size. Zero disables the throttle.
	UpstreamRPS   float64 `koanf:"upstream_rps"`
	UpstreamBurst int     `koanf:"upstream_burst"`
}

// AuthConfig holds token signing and credential settings.
type AuthConfig struct {
	// SecretKey signs access tokens. Minimum 32 characters.
	SecretKey string `koanf:"secret_key"`

	// Algorithm is the HMAC signing algorithm: HS256, HS384 or HS512.
	Algorithm string `koanf:"algorithm"`

	// AccessTokenExpireMinutes is the token TTL in minutes.
	AccessTokenExpireMinutes int `koanf:"access_token_expire_minutes"`

	// CookieEnabled additionally delivers the token as an HTTP-only
	// access_token cookie on login.
	CookieEnabled bool `koanf:"cookie_enabled"`
}

// TTL returns the access-token lifetime as a duration.
func (c AuthConfig) TTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

var validAlgorithms = map[string]bool{
	"HS256": true,
	"HS384": true,
	"HS512": true,
}

// Validate checks the configuration for values that would make the
// process unsafe or unable to start. Called by Load after unmarshaling.
func (c *Config) Validate() error {
	switch c.App.Env {
	case EnvDev, EnvTest, EnvProd:
	default:
		return fmt.Errorf("app.env must be one of dev, test, prod; got %q", c.App.Env)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	if len(c.Auth.SecretKey) < 32 {
		return fmt.Errorf("auth.secret_key must be at least 32 characters")
	}
	if !validAlgorithms[c.Auth.Algorithm] {
		return fmt.Errorf("auth.algorithm %q is not a supported HMAC algorithm", c.Auth.Algorithm)
	}
	if c.Auth.AccessTokenExpireMinutes <= 0 {
		return fmt.Errorf("auth.access_token_expire_minutes must be positive")
	}

	u, err := url.Parse(c.MapServer.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("mapserver.url %q is not an absolute URL", c.MapServer.URL)
	}
	if c.MapServer.Timeout <= 0 {
		return fmt.Errorf("mapserver.timeout must be positive")
	}
	if c.MapServer.UpstreamRPS < 0 {
		return fmt.Errorf("mapserver.upstream_rps must not be negative")
	}

	if c.Database.Host == "" || c.Database.Name == "" {
		return fmt.Errorf("database.host and database.name are required")
	}

	if !strings.HasPrefix(c.App.APIPrefix, "/") {
		return fmt.Errorf("app.api_prefix must start with /")
	}

	return nil
}
