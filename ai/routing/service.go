package routing

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/hrygo/taskgpt/ai/core/llm"
	"github.com/hrygo/taskgpt/ai/internal/strutil"
	"github.com/hrygo/taskgpt/ai/metrics"
)

const (
	defaultMaxAttempts = 3
	defaultBaseBackoff = time.Second
)

// Service classifies utterances in three layers: cache, rule, model.
type Service struct {
	llm         llm.Completer
	ruleMatcher *RuleMatcher
	cache       *RouterCache
	metrics     *metrics.PrometheusExporter

	maxAttempts int
	baseBackoff time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// Config contains the configuration for the router service.
type Config struct {
	// LLM is optional. Without it only the rule layer answers.
	LLM llm.Completer

	EnableCache bool
	Cache       CacheConfig

	Metrics *metrics.PrometheusExporter

	// MaxAttempts bounds model calls per classification (default: 3).
	MaxAttempts int
	// BaseBackoff is the wait after the first failed call; it doubles
	// after each further failure (default: 1s).
	BaseBackoff time.Duration
	// Sleep replaces the context-aware wait between attempts.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultConfig returns a Config with the cache enabled.
func DefaultConfig() Config {
	return Config{EnableCache: true}
}

// NewService creates a new router service.
func NewService(cfg Config) *Service {
	svc := &Service{
		llm:         cfg.LLM,
		ruleMatcher: NewRuleMatcher(),
		metrics:     cfg.Metrics,
		maxAttempts: cfg.MaxAttempts,
		baseBackoff: cfg.BaseBackoff,
		sleep:       cfg.Sleep,
	}
	if svc.maxAttempts <= 0 {
		svc.maxAttempts = defaultMaxAttempts
	}
	if svc.baseBackoff <= 0 {
		svc.baseBackoff = defaultBaseBackoff
	}
	if svc.sleep == nil {
		svc.sleep = sleepContext
	}
	if cfg.EnableCache {
		svc.cache = NewRouterCache(cfg.Cache)
	}
	return svc
}

// ClassifyIntent classifies utterance against the main menu.
func (s *Service) ClassifyIntent(ctx context.Context, utterance string) Intent {
	return IntentFromMenuCode(s.Classify(ctx, utterance, MenuOptions).Code)
}

// Classify implements IntentClassifier.
func (s *Service) Classify(ctx context.Context, utterance string, set OptionSet) Classification {
	start := time.Now()
	if strings.TrimSpace(utterance) == "" {
		s.record(set, "empty", Unrecognized)
		return Unrecognized
	}

	// Layer 0: cache
	if s.cache != nil {
		if result, ok := s.cache.Get(set, utterance); ok {
			s.metrics.RecordCacheHit("router")
			s.record(set, "cache", result)
			slog.Debug("classified by cache",
				"option_set", set.Name,
				"input", strutil.Truncate(utterance, 50),
				"code", result.Code,
				"latency_ms", time.Since(start).Milliseconds())
			return result
		}
		s.metrics.RecordCacheMiss("router")
	}

	// Layer 1: rule
	if code := s.ruleMatcher.Match(utterance, set); code > 0 {
		result := Classification{Status: StatusSpecific, Code: code}
		s.record(set, "rule", result)
		return result
	}

	// Layer 2: model
	if s.llm == nil {
		s.record(set, "rule", Unrecognized)
		return Unrecognized
	}
	reply, ok := s.complete(ctx, buildPrompt(utterance, set))
	if !ok {
		s.record(set, "llm_error", Unrecognized)
		return Unrecognized
	}
	result := parseReply(reply, set)
	if result.Recognized() || result.Status == StatusAmbiguous {
		if s.cache != nil {
			s.cache.Set(set, utterance, result)
		}
	} else {
		slog.Debug("model reply matched no option",
			"option_set", set.Name,
			"reply", strutil.Truncate(reply, 80))
	}
	s.record(set, "llm", result)
	slog.Debug("classified by model",
		"option_set", set.Name,
		"input", strutil.Truncate(utterance, 50),
		"code", result.Code,
		"status", result.Status,
		"latency_ms", time.Since(start).Milliseconds())
	return result
}

// complete calls the model with bounded retries and exponential backoff.
func (s *Service) complete(ctx context.Context, prompt string) (string, bool) {
	backoff := s.baseBackoff
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		reply, err := s.llm.Complete(ctx, prompt)
		if err == nil {
			return reply, true
		}
		slog.Warn("classifier model call failed",
			"attempt", attempt,
			"max_attempts", s.maxAttempts,
			"error", err)
		if attempt == s.maxAttempts {
			break
		}
		if err := s.sleep(ctx, backoff); err != nil {
			return "", false
		}
		backoff *= 2
	}
	return "", false
}

func (s *Service) record(set OptionSet, source string, result Classification) {
	outcome := "none"
	switch {
	case result.Recognized():
		outcome = "matched"
	case result.Status == StatusAmbiguous:
		outcome = "ambiguous"
	}
	s.metrics.RecordClassification(set.Name, source, outcome)
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

var _ IntentClassifier = (*Service)(nil)
