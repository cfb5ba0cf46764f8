package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/docsage-ai/docsage/internal/domain"
)

const (
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = openai.AdaEmbeddingV2
	// DefaultEmbeddingDimensions is the expected dimension of embeddings from ada-002
	DefaultEmbeddingDimensions = 1536
	// DefaultPayloadLimit is the provider's hard per-request payload ceiling in
	// bytes of serialized request, enforced locally before the call.
	DefaultPayloadLimit = 36000
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrNoAPIKey is returned when OpenAI API key is not set
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
)

// EmbeddingAPI defines the interface for embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, text string) ([]float32, error)
}

// Client wraps the OpenAI API client. A single Client instance (one model, one
// dimension, one payload ceiling) is shared by document-chunk and query call
// sites so both sides of every similarity comparison come from the same
// provider configuration.
type Client struct {
	api          EmbeddingAPI
	model        openai.EmbeddingModel
	dimensions   int
	payloadLimit int
}

type OpenAIAdapter struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewOpenAIAdapter(apiKey string, model openai.EmbeddingModel) *OpenAIAdapter {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &OpenAIAdapter{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// CreateEmbeddings calls the OpenAI API to create embeddings
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, text string) ([]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: a.model,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	return resp.Data[0].Embedding, nil
}

type Config struct {
	APIKey              string
	EmbeddingModel      openai.EmbeddingModel
	EmbeddingDimensions int
	PayloadLimit        int
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	model := cfg.EmbeddingModel
	if model == "" {
		model = DefaultEmbeddingModel
	}
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	payloadLimit := cfg.PayloadLimit
	if payloadLimit <= 0 {
		payloadLimit = DefaultPayloadLimit
	}
	return &Client{
		api:          NewOpenAIAdapter(cfg.APIKey, model),
		model:        model,
		dimensions:   dimensions,
		payloadLimit: payloadLimit,
	}
}

// NewClientFromEnv creates a new OpenAI client using OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// GenerateEmbedding generates an embedding for the given text. The serialized
// request size is checked against the provider's payload ceiling before any
// network call is made.
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	if size := c.requestSize(text); size > c.payloadLimit {
		return nil, domain.NewDomainErrorWithCause(
			domain.ErrCodePayloadTooLarge,
			fmt.Sprintf("serialized request is %d bytes, ceiling is %d", size, c.payloadLimit),
			domain.ErrPayloadTooLarge,
		)
	}

	embedding, err := c.api.CreateEmbeddings(ctx, text)
	if err != nil {
		return nil, classifyProviderError(err)
	}

	if len(embedding) != c.dimensions {
		return nil, domain.NewDomainError(
			domain.ErrCodeDeserialization,
			fmt.Sprintf("embedding has %d dimensions, expected %d", len(embedding), c.dimensions),
		)
	}

	return embedding, nil
}

// requestSize returns the byte size of the serialized embedding request as it
// would go over the wire.
func (c *Client) requestSize(text string) int {
	payload, err := json.Marshal(openai.EmbeddingRequest{
		Input: []string{text},
		Model: c.model,
	})
	if err != nil {
		// Marshaling a string slice cannot fail; fall back to the raw length.
		return len(text)
	}
	return len(payload)
}

// classifyProviderError maps transport and API errors onto the domain taxonomy,
// preserving the remote error body for diagnostics.
func classifyProviderError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return domain.NewDomainErrorWithCause(
			domain.ErrCodeProvider,
			fmt.Sprintf("embedding request failed with status %d: %s", apiErr.HTTPStatusCode, apiErr.Message),
			err,
		)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return domain.NewDomainErrorWithCause(
			domain.ErrCodeProvider,
			fmt.Sprintf("embedding request failed with status %d", reqErr.HTTPStatusCode),
			err,
		)
	}

	var unmarshalErr *json.UnmarshalTypeError
	if errors.As(err, &unmarshalErr) {
		return domain.NewDomainErrorWithCause(domain.ErrCodeDeserialization, "could not parse embedding response", err)
	}

	return domain.NewDomainErrorWithCause(domain.ErrCodeProvider, "embedding request failed", err)
}
