package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/docsage-ai/docsage/internal/domain"
)

// DefaultAnswerModel is the chat model used for answer generation.
const DefaultAnswerModel = openai.GPT4oMini

const answerSystemPrompt = `You answer questions strictly from the provided document context.
If the context states that no relevant content was found, reply that the question is out of scope for the document.
Respond with a JSON object of the form {"answers": ["...", "..."]} containing exactly one answer per question, in order.
Do not include markdown, code fences, or any text outside the JSON object.`

// ChatAPI defines the interface for chat completion calls
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// AnswerClient generates natural-language answers from an assembled context
// window plus the original questions.
type AnswerClient struct {
	api   ChatAPI
	model string
}

// NewAnswerClient creates an AnswerClient backed by the OpenAI chat API.
func NewAnswerClient(apiKey, model string) *AnswerClient {
	if model == "" {
		model = DefaultAnswerModel
	}
	return &AnswerClient{
		api:   openai.NewClient(apiKey),
		model: model,
	}
}

// NewAnswerClientWithAPI creates an AnswerClient with an explicit ChatAPI,
// used by tests.
func NewAnswerClientWithAPI(api ChatAPI, model string) *AnswerClient {
	if model == "" {
		model = DefaultAnswerModel
	}
	return &AnswerClient{api: api, model: model}
}

// GenerateAnswers asks the model to answer every question from the given
// context window. It returns one answer per question, in question order.
func (c *AnswerClient) GenerateAnswers(ctx context.Context, contextText string, questions []string) ([]string, error) {
	if len(questions) == 0 {
		return nil, domain.ErrEmptyQuestions
	}

	var prompt strings.Builder
	prompt.WriteString("Document context:\n")
	prompt.WriteString(contextText)
	prompt.WriteString("\n\nQuestions:\n")
	for i, q := range questions {
		fmt.Fprintf(&prompt, "%d. %s\n", i+1, q)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: answerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt.String()},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, classifyProviderError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, domain.NewDomainError(domain.ErrCodeDeserialization, "chat completion returned no choices")
	}

	return parseAnswers(resp.Choices[0].Message.Content, len(questions))
}

// parseAnswers decodes the model's JSON answers payload. The raw content is
// included in the error for diagnostics when the shape is wrong.
func parseAnswers(content string, want int) ([]string, error) {
	var payload struct {
		Answers []string `json:"answers"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, domain.NewDomainErrorWithCause(
			domain.ErrCodeDeserialization,
			fmt.Sprintf("could not parse answers payload: %s", content),
			err,
		)
	}

	if len(payload.Answers) == 0 {
		return nil, domain.NewDomainError(
			domain.ErrCodeDeserialization,
			fmt.Sprintf("answers payload is empty: %s", content),
		)
	}

	// Pad or trim so callers always get one answer per question.
	answers := payload.Answers
	for len(answers) < want {
		answers = append(answers, "No answer was produced for this question.")
	}
	return answers[:want], nil
}
