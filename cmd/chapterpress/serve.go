// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"chapterpress/internal/auth"
	"chapterpress/internal/cache"
	"chapterpress/internal/content"
	"chapterpress/internal/database"
	"chapterpress/internal/handlers"
	"chapterpress/internal/render"
	"chapterpress/internal/router"
	"chapterpress/internal/session"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx)
		},
	}
}

func runServe(parent context.Context, cc *commandContext) error {
	cfg, err := cc.ensureConfig()
	if err != nil {
		return err
	}
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	// Stop on SIGINT or SIGTERM; everything below shares this context.
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, h, err := cc.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Close(closeCtx); err != nil {
			slog.Warn("closing content store failed", "error", err)
		}
	}()
	slog.Info("content store ready", "backend", h.Kind)

	// Valkey is optional; without it public pages are rendered on every request.
	var pageCache *cache.PageCache
	if cfg.CacheEnabled() {
		valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			return fmt.Errorf("connect valkey: %w", err)
		}
		defer valkeyClient.Close()
		pageCache = cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)
	} else {
		slog.Warn("valkey not configured, page cache disabled")
	}

	svc := content.NewService(repositories(h), content.WithChangeHook(pageCache.InvalidateAll))

	if cfg.IsDev() {
		if err := database.Seed(ctx, svc); err != nil {
			return err
		}
	}

	tokens, err := auth.NewTokenManager(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return err
	}
	secureCookies := !cfg.IsDev()
	sessions := session.NewStore(tokens, secureCookies)

	renderer, err := render.New()
	if err != nil {
		return fmt.Errorf("initialize templates: %w", err)
	}

	creds := auth.Credentials{
		Username:   cfg.AdminUsername,
		Password:   cfg.AdminPassword,
		TOTPSecret: cfg.AdminTOTPSecret,
	}

	r := router.New(router.Deps{
		Sessions:       sessions,
		API:            handlers.NewAPI(svc, sessions, creds),
		Admin:          handlers.NewAdmin(renderer, svc, creds, cfg.SessionTTL),
		Auth:           handlers.NewAuth(renderer, sessions, creds),
		Public:         handlers.NewPublic(renderer, svc, pageCache),
		CORSOrigins:    cfg.CORSOrigins,
		LoginRateLimit: cfg.LoginRateLimit,
		SecureCookies:  secureCookies,
		Ready:          h.Ping,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
