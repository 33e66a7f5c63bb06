package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hrygo/taskgpt/ai/core/embedding"
	"github.com/hrygo/taskgpt/ai/core/llm"
	"github.com/hrygo/taskgpt/ai/extract"
	"github.com/hrygo/taskgpt/ai/metrics"
	"github.com/hrygo/taskgpt/ai/resolver"
	"github.com/hrygo/taskgpt/ai/routing"
	"github.com/hrygo/taskgpt/ai/session"
	"github.com/hrygo/taskgpt/ai/vector"
	"github.com/hrygo/taskgpt/internal/profile"
	"github.com/hrygo/taskgpt/plugin/chat_apps/channels"
	"github.com/hrygo/taskgpt/plugin/chat_apps/channels/telegram"
	"github.com/hrygo/taskgpt/store"
	"github.com/hrygo/taskgpt/store/db"
)

// app holds the long-lived collaborators shared by every session.
type app struct {
	store   *store.Store
	index   *vector.TaskIndex
	metrics *metrics.PrometheusExporter
	runner  *session.Runner
}

func newApp(ctx context.Context, p *profile.Profile) (*app, error) {
	dbDriver, err := db.NewDBDriver(p)
	if err != nil {
		return nil, err
	}
	storeInstance := store.New(dbDriver, p)
	if err := storeInstance.Migrate(ctx); err != nil {
		_ = storeInstance.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	var model llm.Service
	if p.IsAIEnabled() {
		model, err = llm.NewService(&llm.Config{
			Provider:  p.LLMProvider,
			Model:     p.LLMModel,
			APIKey:    p.LLMAPIKey,
			BaseURL:   p.LLMBaseURL,
			Timeout:   p.LLMTimeout,
			RateLimit: p.LLMRateLimit,
		})
		if err != nil {
			_ = storeInstance.Close()
			return nil, err
		}
		go model.Warmup(ctx)
	}

	var embedder embedding.Embedder
	if p.IsEmbeddingEnabled() {
		provider, err := embedding.NewProvider(&embedding.Config{
			BaseURL:        p.EmbeddingBaseURL,
			APIKey:         p.EmbeddingAPIKey,
			EmbeddingModel: p.EmbeddingModel,
		})
		if err != nil {
			_ = storeInstance.Close()
			return nil, err
		}
		embedder = provider
	} else {
		slog.Info("embeddings disabled, tasks are matched by exact title only")
	}

	exporter := metrics.NewPrometheusExporter(metrics.DefaultConfig())
	index := vector.NewTaskIndex(storeInstance, embedder)

	routerConfig := routing.DefaultConfig()
	routerConfig.LLM = model
	routerConfig.Metrics = exporter

	cfg := session.Config{
		Store:       storeInstance,
		Index:       index,
		Classifier:  routing.NewService(routerConfig),
		Extractor:   extract.NewExtractor(model),
		Resolver:    resolver.New(index),
		LLM:         model,
		Metrics:     exporter,
		MaxAttempts: p.MaxAttempts,
	}

	return &app{
		store:   storeInstance,
		index:   index,
		metrics: exporter,
		runner:  session.NewRunner(cfg),
	}, nil
}

// newTelegramHub connects the bot when a token is configured. It returns a
// nil hub when Telegram is disabled.
func newTelegramHub(p *profile.Profile, runner *session.Runner) (*telegram.Hub, error) {
	if p.TelegramToken == "" {
		return nil, nil
	}
	bot, err := telegram.NewBot(&telegram.TelegramConfig{
		BotToken:    p.TelegramToken,
		APIEndpoint: p.TelegramAPIEndpoint,
	})
	if err != nil {
		return nil, err
	}
	return telegram.NewHub(bot, func(ctx context.Context, ch channels.Channel) {
		if err := runner.Run(ctx, ch); err != nil {
			slog.Error("telegram session failed", "error", err)
		}
	}), nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
}
