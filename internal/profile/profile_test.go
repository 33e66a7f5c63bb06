package profile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every TASKGPT_* variable FromEnv reads for the test's lifetime.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TASKGPT_LLM_PROVIDER",
		"TASKGPT_LLM_API_KEY",
		"TASKGPT_LLM_BASE_URL",
		"TASKGPT_LLM_MODEL",
		"TASKGPT_LLM_TIMEOUT_SECONDS",
		"TASKGPT_LLM_RATE_LIMIT",
		"TASKGPT_EMBEDDING_PROVIDER",
		"TASKGPT_EMBEDDING_MODEL",
		"TASKGPT_EMBEDDING_API_KEY",
		"TASKGPT_EMBEDDING_BASE_URL",
		"TASKGPT_TELEGRAM_TOKEN",
		"TASKGPT_TELEGRAM_API_ENDPOINT",
		"TASKGPT_MAX_ATTEMPTS",
	} {
		t.Setenv(key, "")
	}
}

func TestProfileDefaults(t *testing.T) {
	clearEnv(t)

	p := &Profile{}
	p.FromEnv()

	assert.Equal(t, "openai", p.LLMProvider)
	assert.Equal(t, "https://api.openai.com/v1", p.LLMBaseURL)
	assert.Equal(t, "gpt-4o-mini", p.LLMModel)
	assert.Equal(t, 60, p.LLMTimeout)
	assert.Equal(t, 5.0, p.LLMRateLimit)
	assert.Equal(t, 5, p.MaxAttempts)
	assert.Equal(t, "text-embedding-3-small", p.EmbeddingModel)
	assert.False(t, p.IsAIEnabled())
	assert.False(t, p.IsEmbeddingEnabled())
}

func TestProfileFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		field    func(*Profile) string
		expected string
	}{
		{
			name:     "provider defaults apply",
			env:      map[string]string{"TASKGPT_LLM_PROVIDER": "deepseek"},
			field:    func(p *Profile) string { return p.LLMBaseURL + " " + p.LLMModel },
			expected: "https://api.deepseek.com deepseek-chat",
		},
		{
			name:     "unknown provider falls back to openai",
			env:      map[string]string{"TASKGPT_LLM_PROVIDER": "nope"},
			field:    func(p *Profile) string { return p.LLMProvider },
			expected: "openai",
		},
		{
			name:     "explicit model wins",
			env:      map[string]string{"TASKGPT_LLM_PROVIDER": "ollama", "TASKGPT_LLM_MODEL": "qwen2.5"},
			field:    func(p *Profile) string { return p.LLMModel },
			expected: "qwen2.5",
		},
		{
			name:     "embedding key inherits llm key",
			env:      map[string]string{"TASKGPT_LLM_API_KEY": "sk-test"},
			field:    func(p *Profile) string { return p.EmbeddingAPIKey },
			expected: "sk-test",
		},
		{
			name:     "telegram token",
			env:      map[string]string{"TASKGPT_TELEGRAM_TOKEN": "123:abc"},
			field:    func(p *Profile) string { return p.TelegramToken },
			expected: "123:abc",
		},
		{
			name:     "self-hosted bot api",
			env:      map[string]string{"TASKGPT_TELEGRAM_API_ENDPOINT": "http://localhost:8081/bot%s/%s"},
			field:    func(p *Profile) string { return p.TelegramAPIEndpoint },
			expected: "http://localhost:8081/bot%s/%s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			p := &Profile{}
			p.FromEnv()

			assert.Equal(t, tt.expected, tt.field(p))
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("sqlite dsn derived from data dir", func(t *testing.T) {
		dir := t.TempDir()
		p := &Profile{Mode: "bogus", Data: filepath.Join(dir, "data")}

		require.NoError(t, p.Validate())
		assert.Equal(t, "dev", p.Mode)
		assert.Equal(t, "sqlite", p.Driver)
		assert.Equal(t, filepath.Join(dir, "data", "taskgpt_dev.db"), p.DSN)
		assert.Equal(t, 5, p.MaxAttempts)
	})

	t.Run("postgres requires dsn", func(t *testing.T) {
		p := &Profile{Mode: "prod", Driver: "postgres", Data: t.TempDir()}
		require.Error(t, p.Validate())
	})

	t.Run("unknown driver", func(t *testing.T) {
		p := &Profile{Driver: "mysql", Data: t.TempDir(), DSN: "x"}
		require.Error(t, p.Validate())
	})
}
