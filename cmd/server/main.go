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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/ourstudio-se/shop-assistant/pkg/assistant"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/cart"
	cartpg "github.com/ourstudio-se/shop-assistant/pkg/assistant/cart/postgres"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/catalog"
	catalogpg "github.com/ourstudio-se/shop-assistant/pkg/assistant/catalog/postgres"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/conversation"
	convpg "github.com/ourstudio-se/shop-assistant/pkg/assistant/conversation/postgres"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/llm"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/llm/anthropic"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/llm/openai"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/server"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/shopping"
	"github.com/ourstudio-se/shop-assistant/pkg/assistant/state"
)

type config struct {
	Port        int      `envconfig:"PORT" default:"8080"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS"`

	DatabaseURL string `envconfig:"DATABASE_URL"`

	OpenAIAPIKey     string `envconfig:"OPENAI_API_KEY"`
	OpenRouterAPIKey string `envconfig:"OPENROUTER_API_KEY"`
	AnthropicAPIKey  string `envconfig:"ANTHROPIC_API_KEY"`
	Model            string `envconfig:"MODEL"`

	PromptProfile string `envconfig:"PROMPT_PROFILE"`

	CatalogBaseURL string `envconfig:"CATALOG_BASE_URL"`
	SiteURL        string `envconfig:"SITE_URL"`
	SiteName       string `envconfig:"SITE_NAME" default:"shop-assistant"`
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	agentCfg := assistant.DefaultConfig()
	if cfg.Model != "" {
		agentCfg = agentCfg.WithModel(cfg.Model)
	}
	if cfg.PromptProfile != "" {
		profile, err := assistant.LoadProfile(cfg.PromptProfile)
		if err != nil {
			return err
		}
		agentCfg = agentCfg.WithSystemPrompt(profile.SystemPrompt())
	}

	var (
		carts        cart.Store         = cart.NewMemoryStore()
		convStore    conversation.Store = conversation.NewMemoryStore()
		productCache catalog.Cache      = catalog.NewMemoryCache()
	)

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		defer pool.Close()

		if err := migrate(ctx, pool); err != nil {
			return err
		}

		carts = cartpg.New(pool)
		convStore = convpg.New(pool)
		productCache = catalogpg.New(pool)
		logger.Info("using postgres storage")
	} else {
		logger.Info("using in-memory storage")
	}

	var clientOpts []catalog.ClientOption
	if cfg.CatalogBaseURL != "" {
		clientOpts = append(clientOpts, catalog.WithBaseURL(cfg.CatalogBaseURL))
	}
	catalogSvc := catalog.NewService(
		catalog.NewClient(clientOpts...),
		productCache,
		catalog.WithLogger(logger),
	)

	stateStore := state.NewStore()
	toolset := shopping.New(stateStore, carts, catalogSvc, shopping.WithLogger(logger))

	agent := assistant.New(provider, convStore, toolset, stateStore, carts,
		assistant.WithConfig(agentCfg),
		assistant.WithLogger(logger),
	)

	srv := server.New(agent, server.Config{CORSOrigins: cfg.CORSOrigins})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", httpServer.Addr, "model", agentCfg.Model)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
	}

	return nil
}

func buildProvider(cfg config) (llm.Provider, error) {
	switch {
	case cfg.AnthropicAPIKey != "":
		return anthropic.New(anthropic.Config{APIKey: cfg.AnthropicAPIKey}), nil
	case cfg.OpenRouterAPIKey != "":
		return openai.NewOpenRouter(openai.OpenRouterConfig{
			APIKey:   cfg.OpenRouterAPIKey,
			SiteURL:  cfg.SiteURL,
			SiteName: cfg.SiteName,
		}), nil
	case cfg.OpenAIAPIKey != "":
		return openai.NewWithAPIKey(cfg.OpenAIAPIKey), nil
	}
	return nil, fmt.Errorf("no LLM credentials: set ANTHROPIC_API_KEY, OPENROUTER_API_KEY or OPENAI_API_KEY")
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		convpg.Migration(""),
		cartpg.Migration(""),
		catalogpg.Migration(""),
	}
	for _, sql := range migrations {
		if _, err := pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("running migration: %w", err)
		}
	}
	return nil
}
