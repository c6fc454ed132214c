// Geoportal - Tourist Objects API and MapServer Gateway
// Copyright 2026 The Geoportal Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/uralgeo/geoportal

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-key-at-least-32-characters!!"

// isolate keeps Load away from any real config file in the working
// directory or environment.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("AUTH_SECRET_KEY", testSecret)
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Env != EnvDev {
		t.Errorf("App.Env = %q, want %q", cfg.App.Env, EnvDev)
	}
	if cfg.App.APIPrefix != "/api/v1" {
		t.Errorf("App.APIPrefix = %q, want /api/v1", cfg.App.APIPrefix)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Auth.Algorithm != "HS256" {
		t.Errorf("Auth.Algorithm = %q, want HS256", cfg.Auth.Algorithm)
	}
	if cfg.Auth.TTL() != time.Hour {
		t.Errorf("Auth.TTL() = %v, want 1h", cfg.Auth.TTL())
	}
	if cfg.MapServer.Timeout != 30*time.Second {
		t.Errorf("MapServer.Timeout = %v, want 30s", cfg.MapServer.Timeout)
	}
	if cfg.MapServer.BreakerThreshold != 5 {
		t.Errorf("MapServer.BreakerThreshold = %d, want 5", cfg.MapServer.BreakerThreshold)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SERVER_CORS_ORIGINS", "https://maps.example.com, https://admin.example.com")
	t.Setenv("DB_HOST", "pg.internal")
	t.Setenv("DB_PASSWORD", "hunter2@/")
	t.Setenv("MAPSERVER_URL", "http://mapserver.internal:8080/")
	t.Setenv("MAPSERVER_TIMEOUT", "45s")
	t.Setenv("AUTH_ALGORITHM", "HS512")
	t.Setenv("AUTH_ACCESS_TOKEN_EXPIRE_MINUTES", "15")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Env != EnvProd {
		t.Errorf("App.Env = %q, want prod", cfg.App.Env)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	wantOrigins := []string{"https://maps.example.com", "https://admin.example.com"}
	if len(cfg.Server.CORSOrigins) != 2 ||
		cfg.Server.CORSOrigins[0] != wantOrigins[0] ||
		cfg.Server.CORSOrigins[1] != wantOrigins[1] {
		t.Errorf("Server.CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, wantOrigins)
	}
	if cfg.Database.Host != "pg.internal" {
		t.Errorf("Database.Host = %q, want pg.internal", cfg.Database.Host)
	}
	if cfg.MapServer.Timeout != 45*time.Second {
		t.Errorf("MapServer.Timeout = %v, want 45s", cfg.MapServer.Timeout)
	}
	if cfg.Auth.Algorithm != "HS512" {
		t.Errorf("Auth.Algorithm = %q, want HS512", cfg.Auth.Algorithm)
	}
	if cfg.Auth.TTL() != 15*time.Minute {
		t.Errorf("Auth.TTL() = %v, want 15m", cfg.Auth.TTL())
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadUnlistedEnvIgnored(t *testing.T) {
	isolate(t)
	t.Setenv("SERVER_SECRET_BACKDOOR", "true")
	t.Setenv("DATABASE_HOST", "should-be-ignored")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, unlisted variable leaked through", cfg.Database.Host)
	}
}

func TestLoadConfigFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := strings.Join([]string{
		"server:",
		"  port: 8443",
		"mapserver:",
		"  url: http://tiles.internal:8080",
		"auth:",
		"  access_token_expire_minutes: 120",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	// Environment wins over the file.
	t.Setenv("SERVER_PORT", "8888")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8888 {
		t.Errorf("Server.Port = %d, want env override 8888", cfg.Server.Port)
	}
	if cfg.MapServer.URL != "http://tiles.internal:8080" {
		t.Errorf("MapServer.URL = %q, want file value", cfg.MapServer.URL)
	}
	if cfg.Auth.AccessTokenExpireMinutes != 120 {
		t.Errorf("AccessTokenExpireMinutes = %d, want 120", cfg.Auth.AccessTokenExpireMinutes)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Auth.SecretKey = testSecret
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "bad env",
			mutate:  func(c *Config) { c.App.Env = "staging" },
			wantErr: "app.env",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "short secret",
			mutate:  func(c *Config) { c.Auth.SecretKey = "short" },
			wantErr: "auth.secret_key",
		},
		{
			name:    "unsupported algorithm",
			mutate:  func(c *Config) { c.Auth.Algorithm = "RS256" },
			wantErr: "auth.algorithm",
		},
		{
			name:    "zero token lifetime",
			mutate:  func(c *Config) { c.Auth.AccessTokenExpireMinutes = 0 },
			wantErr: "access_token_expire_minutes",
		},
		{
			name:    "relative mapserver url",
			mutate:  func(c *Config) { c.MapServer.URL = "mapserver:8080" },
			wantErr: "mapserver.url",
		},
		{
			name:    "zero mapserver timeout",
			mutate:  func(c *Config) { c.MapServer.Timeout = 0 },
			wantErr: "mapserver.timeout",
		},
		{
			name:    "missing database name",
			mutate:  func(c *Config) { c.Database.Name = "" },
			wantErr: "database",
		},
		{
			name:    "prefix without slash",
			mutate:  func(c *Config) { c.App.APIPrefix = "api/v1" },
			wantErr: "api_prefix",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "pg.internal",
		Port:     5432,
		User:     "geo",
		Password: "p@ss/word",
		Name:     "geoportaldb",
	}
	dsn := cfg.DSN()
	if !strings.HasPrefix(dsn, "postgres://geo:") {
		t.Errorf("DSN() = %q, want postgres scheme with user", dsn)
	}
	if strings.Contains(dsn, "p@ss/word") {
		t.Errorf("DSN() = %q, credentials not escaped", dsn)
	}
	if !strings.HasSuffix(dsn, "@pg.internal:5432/geoportaldb") {
		t.Errorf("DSN() = %q, want host and database suffix", dsn)
	}
}
