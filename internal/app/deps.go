package app

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"form-agent/internal/cache"
	"form-agent/internal/config"
	"form-agent/internal/extract"
	"form-agent/internal/llm"
	"form-agent/internal/logger"
	"form-agent/internal/queue"
	"form-agent/internal/store"
)

// Deps bundles common runtime dependencies for services. Builders fill
// only the fields their service uses.
type Deps struct {
	Config    config.Config
	Log       *slog.Logger
	Store     store.Store
	Queue     queue.Queue
	Cache     cache.Cache
	LLM       llm.Client
	Extractor extract.Extractor
}

// Build loads env, config, and the components the gateway needs.
func Build() (Deps, error) {
	deps, err := buildBase()
	if err != nil {
		return Deps{}, err
	}
	llmClient, err := buildLLM(deps.Config, deps.Log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	deps.LLM = llmClient
	return deps, nil
}

// BuildExtractor loads env, config, and the components the extraction
// worker needs.
func BuildExtractor() (Deps, error) {
	deps, err := buildBase()
	if err != nil {
		return Deps{}, err
	}
	deps.Extractor = extract.New(deps.Config.OCRLanguages)
	deps.Log.Info("using Tesseract OCR", "languages", deps.Config.OCRLanguages)
	return deps, nil
}

func buildBase() (Deps, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	c := buildCache(cfg, log)

	return Deps{
		Config: cfg,
		Log:    log,
		Store:  st,
		Queue:  q,
		Cache:  c,
	}, nil
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	if cfg.DBURL == "" {
		return nil, fmt.Errorf("DB_URL is required")
	}
	db, err := store.NewPostgres(cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
	}
	log.Info("using Postgres store")
	return db, nil
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	if cfg.QueueURL == "" {
		return nil, fmt.Errorf("QUEUE_URL is required")
	}
	nc, err := nats.Connect(cfg.QueueURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Info("using NATS queue")
	return queue.NewNATS(log, nc), nil
}

func buildCache(cfg config.Config, log *slog.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set; responses will not be cached")
		return cache.NewNoOpCache()
	}
	c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Warn("redis unavailable, falling back to no-op cache", "err", err)
		return cache.NewNoOpCache()
	}
	log.Info("using Redis cache", "addr", cfg.RedisAddr)
	return c
}

func buildLLM(cfg config.Config, log *slog.Logger) (llm.Client, error) {
	if cfg.GeminiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	gemini, err := llm.NewGeminiClient(cfg.GeminiKey, cfg.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	log.Info("using Gemini LLM client", "model", cfg.GeminiModel)

	if cfg.OpenAIKey == "" {
		return gemini, nil
	}
	fallback, err := llm.NewOpenAIClient(cfg.OpenAIKey, openai.ChatModel(cfg.FallbackModel))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI fallback: %w", err)
	}
	log.Info("OpenAI fallback enabled", "model", cfg.FallbackModel)
	return llm.NewFailover(log, gemini, fallback), nil
}
