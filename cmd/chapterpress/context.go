package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	"chapterpress/internal/config"
	"chapterpress/internal/content"
	"chapterpress/internal/database"
	"chapterpress/internal/store"
	"chapterpress/internal/store/mongostore"
)

// commandContext carries state shared by every subcommand. Configuration is
// loaded at most once per process.
type commandContext struct {
	envFile *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(envFile *string) *commandContext {
	return &commandContext{envFile: envFile}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if c.envFile != nil {
			if path := strings.TrimSpace(*c.envFile); path != "" {
				if err := godotenv.Load(path); err != nil {
					c.configErr = fmt.Errorf("load env file %s: %w", path, err)
					return
				}
			}
		}
		cfg, err := config.Load()
		if err != nil {
			c.configErr = fmt.Errorf("configuration: %w", err)
			return
		}
		setupLogger(cfg)
		c.config = cfg
	})
	return c.config, c.configErr
}

// setupLogger installs the default slog logger: text in development,
// JSON everywhere else.
func setupLogger(cfg *config.Config) {
	var handler slog.Handler
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	slog.SetDefault(slog.New(handler))
}

// openStore connects to the configured backend and brings its schema up
// to date. The caller owns the returned client and must Close it.
func (c *commandContext) openStore(ctx context.Context) (*database.Client, *database.Handle, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	client := database.NewClient(cfg.DatabaseURI, cfg.DatabaseName)
	h, err := client.Connect(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Prepare(ctx, h); err != nil {
		_ = client.Close(ctx)
		return nil, nil, err
	}
	return client, h, nil
}

// repositories picks the repository set matching the handle's backend.
func repositories(h *database.Handle) content.Repositories {
	if h.Kind == database.KindMongo {
		return mongostore.Repositories(h.Mongo)
	}
	return store.Repositories(h.SQL)
}
