package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Bearer token required on the query endpoint.
	APIToken string `envconfig:"API_TOKEN"`

	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL"`
	AnswerModel    string `envconfig:"ANSWER_MODEL"`

	// Hard per-request payload ceiling imposed by the embedding provider, in
	// bytes of serialized request. Chunks are sized below this with a safety
	// margin for the request envelope.
	ProviderPayloadLimit int `envconfig:"PROVIDER_PAYLOAD_LIMIT" default:"36000"`
	// MaxChunkBytes defaults to ProviderPayloadLimit minus a 10% margin when 0.
	MaxChunkBytes      int `envconfig:"MAX_CHUNK_BYTES" default:"0"`
	MaxConcurrentCalls int `envconfig:"MAX_CONCURRENT_CALLS" default:"8"`
	EmbedMaxRetries    int `envconfig:"EMBED_MAX_RETRIES" default:"0"`

	TopN               int     `envconfig:"TOP_N" default:"5"`
	SimilarityThreshold float64 `envconfig:"SIMILARITY_THRESHOLD" default:"0.4"`
	// cap_then_filter (default) or filter_then_cap; see ranker docs.
	SelectionOrder string `envconfig:"SELECTION_ORDER" default:"cap_then_filter"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DOCSAGE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.MaxChunkBytes <= 0 {
		cfg.MaxChunkBytes = cfg.ProviderPayloadLimit - cfg.ProviderPayloadLimit/10
	}
	if cfg.MaxChunkBytes >= cfg.ProviderPayloadLimit {
		return nil, fmt.Errorf("MAX_CHUNK_BYTES (%d) must be below PROVIDER_PAYLOAD_LIMIT (%d)", cfg.MaxChunkBytes, cfg.ProviderPayloadLimit)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasS3() bool {
	return c.S3AccessKey != "" && c.S3SecretKey != ""
}
