// Package embedding turns task titles into vectors through an
// OpenAI-compatible embeddings endpoint.
package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/hrygo/taskgpt/ai/cache"
)

// Embedder produces embeddings for short texts.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// Config configures the embedding provider.
type Config struct {
	BaseURL        string
	APIKey         string
	EmbeddingModel string
	MaxRetries     int
	Timeout        time.Duration
	CacheSize      int
}

// DefaultConfig returns the OpenAI defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "https://api.openai.com/v1",
		EmbeddingModel: "text-embedding-3-small",
		MaxRetries:     3,
		Timeout:        30 * time.Second,
		CacheSize:      512,
	}
}

// Provider is an Embedder backed by go-openai.
type Provider struct {
	config *Config
	client *openai.Client
	cache  *cache.LRUCache[string, []float32]
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewProvider creates a provider. Zero config fields take DefaultConfig values.
func NewProvider(cfg *Config) (*Provider, error) {
	def := DefaultConfig()
	if cfg == nil {
		cfg = def
	}
	c := *cfg
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = def.EmbeddingModel
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = def.MaxRetries
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.CacheSize <= 0 {
		c.CacheSize = def.CacheSize
	}

	clientConfig := openai.DefaultConfig(c.APIKey)
	clientConfig.BaseURL = c.BaseURL
	clientConfig.HTTPClient = &http.Client{Timeout: c.Timeout}

	return &Provider{
		config: &c,
		client: openai.NewClientWithConfig(clientConfig),
		cache:  cache.NewLRUCache[string, []float32](c.CacheSize, time.Hour),
		sleep:  sleepContext,
	}, nil
}

// Model returns the embedding model name.
func (p *Provider) Model() string {
	return p.config.EmbeddingModel
}

// Validate checks that the provider can be used.
func (p *Provider) Validate(ctx context.Context) error {
	if p.config.APIKey == "" {
		return fmt.Errorf("embedding API key is required")
	}
	return nil
}

// Embed returns the embedding of text. Identical texts are served from cache.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}
	if vec, ok := p.cache.Get(text); ok {
		return vec, nil
	}

	var lastErr error
	for attempt := 0; attempt < p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := p.sleep(ctx, time.Duration(1<<(attempt-1))*200*time.Millisecond); err != nil {
				return nil, err
			}
		}
		resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: openai.EmbeddingModel(p.config.EmbeddingModel),
		})
		if err != nil {
			lastErr = err
			slog.Debug("embedding request failed", "attempt", attempt+1, "error", err)
			continue
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			lastErr = fmt.Errorf("empty embedding response")
			continue
		}
		vec := resp.Data[0].Embedding
		p.cache.Set(text, vec, 0)
		return vec, nil
	}
	return nil, fmt.Errorf("embed after %d attempts: %w", p.config.MaxRetries, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
