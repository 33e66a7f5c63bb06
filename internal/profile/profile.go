package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Profile is configuration to start the server and chat sessions.
type Profile struct {
	// LLM configuration (OpenAI-compatible protocol).
	LLMProvider  string  // openai, deepseek, siliconflow, dashscope, openrouter, ollama
	LLMAPIKey    string  // API key; an empty key disables model-backed features
	LLMBaseURL   string  // optional, defaults per provider
	LLMModel     string  // optional, defaults per provider
	LLMTimeout   int     // request timeout in seconds
	LLMRateLimit float64 // requests per second across all sessions, 0 = unlimited

	// Embedding configuration
	EmbeddingProvider string
	EmbeddingModel    string
	EmbeddingAPIKey   string
	EmbeddingBaseURL  string

	// Chat transports
	TelegramToken string
	// TelegramAPIEndpoint is a Bot API URL pattern with two %s verbs for the
	// token and the method. Empty uses api.telegram.org.
	TelegramAPIEndpoint string

	// Session behaviour
	MaxAttempts int // bound on clarification re-prompts

	Mode    string
	Addr    string
	Port    int
	Data    string
	Driver  string
	DSN     string
	Version string
}

// Provider default configurations for the LLM.
// Used when TASKGPT_LLM_BASE_URL or TASKGPT_LLM_MODEL is not set.
var llmProviderDefaults = map[string]struct {
	BaseURL string
	Model   string
}{
	"openai": {
		BaseURL: "https://api.openai.com/v1",
		Model:   "gpt-4o-mini",
	},
	"deepseek": {
		BaseURL: "https://api.deepseek.com",
		Model:   "deepseek-chat",
	},
	"siliconflow": {
		BaseURL: "https://api.siliconflow.cn/v1",
		Model:   "Qwen/Qwen2.5-7B-Instruct",
	},
	"dashscope": {
		BaseURL: "https://dashscope.aliyuncs.com/compatible-mode/v1",
		Model:   "qwen-plus",
	},
	"openrouter": {
		BaseURL: "https://openrouter.ai/api/v1",
		Model:   "openai/gpt-4o-mini",
	},
	"ollama": {
		BaseURL: "http://localhost:11434/v1",
		Model:   "llama3.1",
	},
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled reports whether an LLM API key is configured.
func (p *Profile) IsAIEnabled() bool {
	return p.LLMAPIKey != ""
}

// IsEmbeddingEnabled reports whether semantic task search can be used.
func (p *Profile) IsEmbeddingEnabled() bool {
	return p.EmbeddingAPIKey != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvOrDefaultFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// FromEnv loads configuration from TASKGPT_* environment variables.
func (p *Profile) FromEnv() {
	p.LLMProvider = getEnvOrDefault("TASKGPT_LLM_PROVIDER", "openai")
	p.LLMAPIKey = getEnvOrDefault("TASKGPT_LLM_API_KEY", "")
	p.LLMBaseURL = getEnvOrDefault("TASKGPT_LLM_BASE_URL", "")
	p.LLMModel = getEnvOrDefault("TASKGPT_LLM_MODEL", "")
	p.LLMTimeout = getEnvOrDefaultInt("TASKGPT_LLM_TIMEOUT_SECONDS", 60)
	p.LLMRateLimit = getEnvOrDefaultFloat("TASKGPT_LLM_RATE_LIMIT", 5)

	if _, ok := llmProviderDefaults[p.LLMProvider]; !ok {
		slog.Warn("Unknown LLM provider, using default: openai", "provider", p.LLMProvider)
		p.LLMProvider = "openai"
	}
	defaults := llmProviderDefaults[p.LLMProvider]
	if p.LLMBaseURL == "" {
		p.LLMBaseURL = defaults.BaseURL
	}
	if p.LLMModel == "" {
		p.LLMModel = defaults.Model
	}

	// Embeddings reuse the LLM credentials unless configured separately.
	p.EmbeddingProvider = getEnvOrDefault("TASKGPT_EMBEDDING_PROVIDER", p.LLMProvider)
	p.EmbeddingModel = getEnvOrDefault("TASKGPT_EMBEDDING_MODEL", "text-embedding-3-small")
	p.EmbeddingAPIKey = getEnvOrDefault("TASKGPT_EMBEDDING_API_KEY", p.LLMAPIKey)
	p.EmbeddingBaseURL = getEnvOrDefault("TASKGPT_EMBEDDING_BASE_URL", p.LLMBaseURL)

	p.TelegramToken = getEnvOrDefault("TASKGPT_TELEGRAM_TOKEN", "")
	p.TelegramAPIEndpoint = getEnvOrDefault("TASKGPT_TELEGRAM_API_ENDPOINT", "")
	p.MaxAttempts = getEnvOrDefaultInt("TASKGPT_MAX_ATTEMPTS", 5)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

// Validate normalizes mode, data directory and DSN.
func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 5
	}

	if p.Data == "" {
		if p.Mode == "prod" {
			p.Data = "/var/opt/taskgpt"
		} else {
			p.Data = "."
		}
	}
	if p.Driver == "sqlite" {
		if err := os.MkdirAll(p.Data, 0o770); err != nil {
			slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
			return errors.Wrap(err, "failed to create data directory")
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir

	switch p.Driver {
	case "sqlite":
		if p.DSN == "" {
			p.DSN = filepath.Join(dataDir, fmt.Sprintf("taskgpt_%s.db", p.Mode))
		}
	case "postgres":
		if p.DSN == "" {
			return errors.New("dsn is required for the postgres driver")
		}
	default:
		return errors.Errorf("unsupported driver %q", p.Driver)
	}
	return nil
}
