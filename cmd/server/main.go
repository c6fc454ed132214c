// Geoportal - Tourist Objects API and MapServer Gateway
// Copyright 2026 The Geoportal Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/uralgeo/geoportal

// Command server runs the Geoportal backend: the user/role API, the
// token endpoint and the MapServer gateway.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uralgeo/geoportal/internal/api"
	"github.com/uralgeo/geoportal/internal/auth"
	"github.com/uralgeo/geoportal/internal/config"
	"github.com/uralgeo/geoportal/internal/database"
	"github.com/uralgeo/geoportal/internal/logging"
	"github.com/uralgeo/geoportal/internal/proxy"
)

const shutdownGrace = 15 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("version", cfg.App.Version).
		Str("env", cfg.App.Env).
		Msg("Starting Geoportal backend")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	tokens, err := auth.NewTokenManager(&cfg.Auth)
	if err != nil {
		return err
	}
	gate := auth.NewMiddleware(tokens, store)
	forwarder := proxy.NewForwarder(&cfg.MapServer)
	handler := api.NewHandler(cfg, store, tokens)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handler, gate, forwarder),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	logging.Info().Msg("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logging.Info().Msg("Server stopped")
	return nil
}
