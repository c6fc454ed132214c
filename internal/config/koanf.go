// Geoportal - Tourist Objects API and MapServer Gateway
// Copyright 2026 The Geoportal Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/uralgeo/geoportal

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where a config file is searched, in order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/geoportal/config.yaml",
	"/etc/geoportal/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults, applied before the config
// file and environment variables.
func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Env:       EnvDev,
			Name:      "Geoportal API",
			Version:   "0.1.0",
			APIPrefix: "/api/v1",
		},
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8000,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			CORSOrigins:    []string{"*"},
			RateLimitReqs:  100,
			RateLimitLogin: 5,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "password",
			Name:     "geoportaldb",
			MaxConns: 10,
		},
		MapServer: MapServerConfig{
			URL:              "http://localhost:8080",
			Timeout:          30 * time.Second,
			BreakerThreshold: 5,
			BreakerCooldown:  30 * time.Second,
			UpstreamRPS:      100,
			UpstreamBurst:    200,
		},
		Auth: AuthConfig{
			SecretKey:                "",
			Algorithm:                "HS256",
			AccessTokenExpireMinutes: 60,
			CookieEnabled:            true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from layered sources, highest wins:
//
//  1. Built-in defaults
//  2. Optional YAML config file (CONFIG_PATH or DefaultConfigPaths)
//  3. Environment variables (APP_ENV, DB_HOST, MAPSERVER_URL, ...)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices
// when they arrive through environment variables.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to config
// paths. Only listed variables are honored; everything else in the
// process environment is ignored.
var envMappings = map[string]string{
	// App
	"app_env":        "app.env",
	"app_name":       "app.name",
	"app_version":    "app.version",
	"app_api_prefix": "app.api_prefix",

	// Server
	"server_host":             "server.host",
	"server_port":             "server.port",
	"server_read_timeout":     "server.read_timeout",
	"server_write_timeout":    "server.write_timeout",
	"server_cors_origins":     "server.cors_origins",
	"server_rate_limit_reqs":  "server.rate_limit_reqs",
	"server_rate_limit_login": "server.rate_limit_login",

	// Database
	"db_host":      "database.host",
	"db_port":      "database.port",
	"db_user":      "database.user",
	"db_password":  "database.password",
	"db_name":      "database.name",
	"db_max_conns": "database.max_conns",

	// MapServer
	"mapserver_url":               "mapserver.url",
	"mapserver_timeout":           "mapserver.timeout",
	"mapserver_breaker_threshold": "mapserver.breaker_threshold",
	"mapserver_breaker_cooldown":  "mapserver.breaker_cooldown",
	"mapserver_upstream_rps":      "mapserver.upstream_rps",
	"mapserver_upstream_burst":    "mapserver.upstream_burst",

	// Auth
	"auth_secret_key":                  "auth.secret_key",
	"auth_algorithm":                   "auth.algorithm",
	"auth_access_token_expire_minutes": "auth.access_token_expire_minutes",
	"auth_cookie_enabled":              "auth.cookie_enabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps environment variable names to koanf paths:
// MAPSERVER_URL -> mapserver.url, DB_HOST -> database.host.
// Returning "" drops the variable.
func envTransformFunc(key string) string {
	if path, ok := envMappings[strings.ToLower(key)]; ok {
		return path
	}
	return ""
}
