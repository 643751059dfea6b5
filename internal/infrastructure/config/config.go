package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddress   string
	ShutdownTimeout time.Duration

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json or text

	// Datasets
	QuestionBankPath string
	LessonBankPath   string

	// Persistence
	StatsBackend string // "sqlite" or "redis"
	SQLitePath   string
	RedisURL     string
	RedisPrefix  string

	// Hints
	HintProvider   string // "openai", "anthropic" or "none"
	LLMURL         string // OpenAI-compatible endpoint, e.g. "http://localhost:1234"
	LLMModel       string // model name, e.g. "qwen3-8b"
	AnthropicKey   string
	AnthropicModel string

	// Session pacing
	AdvanceDelay  time.Duration
	IntroDelay    time.Duration
	RepromptDelay time.Duration
	HintCap       int

	EventsTopic    string
	TranscriptSize int
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		ServerAddress:    mustGetenv("SERVER_ADDRESS"),
		ShutdownTimeout:  mustGetDuration("SHUTDOWN_TIMEOUT"),
		LogLevel:         getenvDefault("LOG_LEVEL", "info"),
		LogFormat:        getenvDefault("LOG_FORMAT", "json"),
		QuestionBankPath: getenvDefault("QUESTION_BANK_PATH", "data/ict_quiz.json"),
		LessonBankPath:   getenvDefault("LESSON_BANK_PATH", "data/ict_lessons.json"),
		StatsBackend:     getenvDefault("STATS_BACKEND", "sqlite"),
		SQLitePath:       getenvDefault("SQLITE_PATH", "quizengine.db"),
		RedisURL:         getenvDefault("REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix:      getenvDefault("REDIS_PREFIX", "quizengine:"),
		HintProvider:     getenvDefault("HINT_PROVIDER", "openai"),
		LLMURL:           getenvDefault("LLM_URL", "http://localhost:1234"),
		LLMModel:         getenvDefault("LLM_MODEL", "qwen3-8b"),
		AnthropicKey:     os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:   os.Getenv("ANTHROPIC_MODEL"),
		AdvanceDelay:     getDurationDefault("ADVANCE_DELAY", 600*time.Millisecond),
		IntroDelay:       getDurationDefault("INTRO_DELAY", 800*time.Millisecond),
		RepromptDelay:    getDurationDefault("REPROMPT_DELAY", 700*time.Millisecond),
		HintCap:          getIntDefault("HINT_CAP", 2),
		EventsTopic:      getenvDefault("EVENTS_TOPIC", "quiz.session.events"),
		TranscriptSize:   getIntDefault("TRANSCRIPT_SIZE", 50),
	}

	switch cfg.StatsBackend {
	case "sqlite", "redis":
	default:
		log.Fatalf("config: STATS_BACKEND=%q must be sqlite or redis", cfg.StatsBackend)
	}
	switch cfg.HintProvider {
	case "openai", "none":
	case "anthropic":
		if cfg.AnthropicKey == "" {
			log.Fatalf("config: HINT_PROVIDER=anthropic requires ANTHROPIC_API_KEY")
		}
	default:
		log.Fatalf("config: HINT_PROVIDER=%q must be openai, anthropic or none", cfg.HintProvider)
	}

	return cfg
}

func mustGetenv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("config: required environment variable %s is not set", k)
	}
	return v
}

func mustGetDuration(k string) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("config: required environment variable %s is not set", k)
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid duration: %v", k, v, err)
	}
	return d
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}

func getDurationDefault(k string, fallback time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid duration: %v", k, v, err)
	}
	return d
}

func getIntDefault(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("config: %s=%q is not a valid integer: %v", k, v, err)
	}
	return n
}
