package config

import (
	"log/slog"

	"github.com/caarlos0/env/v10"
)

// Config is the full runtime configuration for both services; each
// reads only the fields it needs.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes

	// Store
	DBURL string `env:"DB_URL"`

	// Queue
	QueueURL string `env:"QUEUE_URL"`

	// Cache. Redis is optional; with no address the service runs uncached.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	CacheTTL      int    `env:"CACHE_TTL" envDefault:"86400"` // seconds

	// LLM providers. Gemini is primary; OpenAI is used as a fallback
	// only when OPENAI_API_KEY is set.
	GeminiKey     string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	OpenAIKey     string `env:"OPENAI_API_KEY"`
	FallbackModel string `env:"FALLBACK_MODEL" envDefault:"gpt-4o-mini"`

	// OCR
	OCRLanguages []string `env:"OCR_LANGUAGES" envSeparator:"," envDefault:"eng"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
