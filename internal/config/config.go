package config

import (
	"time"

	"github.com/edusloth/edusloth-backend/internal/logger"
	"github.com/edusloth/edusloth-backend/internal/utils"
)

// Config is assembled once in main and injected everywhere; nothing in the
// codebase reads the environment after startup.
type Config struct {
	Port    string
	LogMode string

	JWTSecretKey   string
	AccessTokenTTL time.Duration

	Mongo   MongoConfig
	S3      S3Config
	OpenAI  ProviderConfig
	Gemini  ProviderConfig
	Workers WorkerConfig
	Otel    OtelConfig

	// PrimaryProvider selects which generation provider is tried first:
	// "gemini" or "openai". The other one becomes the fallback.
	PrimaryProvider string
}

type MongoConfig struct {
	URL      string
	Database string
}

type S3Config struct {
	Region         string
	AccessKey      string
	SecretKey      string
	Endpoint       string
	DocumentBucket string
	AudioBucket    string
	PresignExpiry  time.Duration
}

// ProviderConfig carries everything a generation provider needs, including
// the size policy of the chunking pipeline. SingleCallChars is the largest
// text that goes out in one call; anything above it is partitioned into
// ChunkChars-sized windows.
type ProviderConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	TranscribeModel string
	SingleCallChars int
	ChunkChars      int
	Timeout         time.Duration
}

type WorkerConfig struct {
	Count     int
	QueueSize int
}

// OtelConfig drives request tracing. With no OTLP endpoint configured spans
// go to a pretty-printed stdout exporter.
type OtelConfig struct {
	Enabled     bool
	ServiceName string
	Environment string
	Version     string
	Endpoint    string
	Headers     string
	Insecure    bool
	SampleRatio float64
}

const (
	// Rough estimate of 4 chars per token: 7k tokens for the legacy
	// text-size model, 900k tokens for the large-context one.
	openAISingleCallChars = 28000
	geminiSingleCallChars = 3600000
)

func Load(log *logger.Logger) *Config {
	cfg := &Config{
		Port:           utils.GetEnv("PORT", "8080", log),
		LogMode:        utils.GetEnv("LOG_MODE", "development", log),
		JWTSecretKey:   utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		AccessTokenTTL: time.Duration(utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 8*24*3600, log)) * time.Second,
		Mongo: MongoConfig{
			URL:      utils.GetEnv("MONGODB_URL", "mongodb://localhost:27017", log),
			Database: utils.GetEnv("MONGODB_DB", "edusloth", log),
		},
		S3: S3Config{
			Region:         utils.GetEnv("AWS_REGION", "us-east-1", log),
			AccessKey:      utils.GetEnv("AWS_ACCESS_KEY_ID", "", log),
			SecretKey:      utils.GetEnv("AWS_SECRET_ACCESS_KEY", "", log),
			Endpoint:       utils.GetEnv("S3_ENDPOINT", "", log),
			DocumentBucket: utils.GetEnv("S3_DOCUMENT_BUCKET", "edusloth-dev-documents", log),
			AudioBucket:    utils.GetEnv("S3_AUDIO_BUCKET", "edusloth-dev-audio", log),
			PresignExpiry:  time.Duration(utils.GetEnvAsInt("S3_PRESIGN_EXPIRY_SECONDS", 3600, log)) * time.Second,
		},
		OpenAI: ProviderConfig{
			APIKey:          utils.GetEnv("OPENAI_API_KEY", "", log),
			BaseURL:         utils.GetEnv("OPENAI_BASE_URL", "https://api.openai.com", log),
			Model:           utils.GetEnv("OPENAI_MODEL", "gpt-4o", log),
			TranscribeModel: utils.GetEnv("OPENAI_TRANSCRIBE_MODEL", "whisper-1", log),
			SingleCallChars: utils.GetEnvAsInt("OPENAI_SINGLE_CALL_CHARS", openAISingleCallChars, log),
			ChunkChars:      utils.GetEnvAsInt("OPENAI_CHUNK_CHARS", openAISingleCallChars, log),
			Timeout:         time.Duration(utils.GetEnvAsInt("OPENAI_TIMEOUT_SECONDS", 180, log)) * time.Second,
		},
		Gemini: ProviderConfig{
			APIKey:          utils.GetEnv("GOOGLE_API_KEY", "", log),
			Model:           utils.GetEnv("GEMINI_MODEL", "gemini-2.0-flash", log),
			SingleCallChars: utils.GetEnvAsInt("GEMINI_SINGLE_CALL_CHARS", geminiSingleCallChars, log),
			ChunkChars:      utils.GetEnvAsInt("GEMINI_CHUNK_CHARS", geminiSingleCallChars, log),
			Timeout:         time.Duration(utils.GetEnvAsInt("GEMINI_TIMEOUT_SECONDS", 180, log)) * time.Second,
		},
		Workers: WorkerConfig{
			Count:     utils.GetEnvAsInt("WORKER_COUNT", 4, log),
			QueueSize: utils.GetEnvAsInt("WORKER_QUEUE_SIZE", 64, log),
		},
		Otel: OtelConfig{
			Enabled:     utils.GetEnvAsBool("OTEL_ENABLED", false, log),
			ServiceName: utils.GetEnv("OTEL_SERVICE_NAME", "edusloth-backend", log),
			Environment: utils.GetEnv("ENVIRONMENT", "development", log),
			Version:     utils.GetEnv("SERVICE_VERSION", "", log),
			Endpoint:    utils.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "", log),
			Headers:     utils.GetEnv("OTEL_EXPORTER_OTLP_HEADERS", "", log),
			Insecure:    utils.GetEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", false, log),
			SampleRatio: utils.GetEnvAsFloat("OTEL_SAMPLER_RATIO", 0.1, log),
		},
		PrimaryProvider: utils.GetEnv("AI_PRIMARY_PROVIDER", "", log),
	}
	if cfg.PrimaryProvider == "" {
		if cfg.Gemini.APIKey != "" {
			cfg.PrimaryProvider = "gemini"
		} else {
			cfg.PrimaryProvider = "openai"
		}
	}
	return cfg
}
