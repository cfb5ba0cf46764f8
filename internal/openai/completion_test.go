package openai

import (
	"context"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/docsage-ai/docsage/internal/domain"
)

type MockChatAPI struct {
	mock.Mock
}

func (m *MockChatAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

func chatResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func TestGenerateAnswers_Success(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := NewAnswerClientWithAPI(mockAPI, "")

	mockAPI.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return len(req.Messages) == 2 &&
			req.Messages[0].Role == openai.ChatMessageRoleSystem &&
			req.ResponseFormat != nil &&
			req.ResponseFormat.Type == openai.ChatCompletionResponseFormatTypeJSONObject
	})).Return(chatResponse(`{"answers":["Thirty days.","Monthly."]}`), nil)

	answers, err := client.GenerateAnswers(context.Background(), "context text",
		[]string{"What is the grace period?", "When are premiums due?"})

	require.NoError(t, err)
	assert.Equal(t, []string{"Thirty days.", "Monthly."}, answers)
	mockAPI.AssertExpectations(t)
}

func TestGenerateAnswers_NoQuestions(t *testing.T) {
	client := NewAnswerClientWithAPI(new(MockChatAPI), "")

	_, err := client.GenerateAnswers(context.Background(), "context", nil)

	assert.ErrorIs(t, err, domain.ErrEmptyQuestions)
}

func TestGenerateAnswers_ProviderError(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := NewAnswerClientWithAPI(mockAPI, "")

	apiErr := &openai.APIError{HTTPStatusCode: 503, Message: "overloaded"}
	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, apiErr)

	_, err := client.GenerateAnswers(context.Background(), "context", []string{"q"})

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeProvider, domainErr.Code)
}

func TestGenerateAnswers_NoChoices(t *testing.T) {
	mockAPI := new(MockChatAPI)
	client := NewAnswerClientWithAPI(mockAPI, "")

	mockAPI.On("CreateChatCompletion", mock.Anything, mock.Anything).
		Return(openai.ChatCompletionResponse{}, nil)

	_, err := client.GenerateAnswers(context.Background(), "context", []string{"q"})

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeDeserialization, domainErr.Code)
}

func TestParseAnswers_ValidPayload(t *testing.T) {
	answers, err := parseAnswers(`{"answers":["a","b","c"]}`, 3)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, answers)
}

func TestParseAnswers_InvalidJSON(t *testing.T) {
	_, err := parseAnswers(`not json`, 1)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeDeserialization, domainErr.Code)
	assert.Contains(t, domainErr.Message, "not json")
}

func TestParseAnswers_EmptyAnswers(t *testing.T) {
	_, err := parseAnswers(`{"answers":[]}`, 2)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeDeserialization, domainErr.Code)
}

func TestParseAnswers_PadsShortPayload(t *testing.T) {
	answers, err := parseAnswers(`{"answers":["only one"]}`, 3)

	require.NoError(t, err)
	require.Len(t, answers, 3)
	assert.Equal(t, "only one", answers[0])
	assert.NotEmpty(t, answers[1])
	assert.NotEmpty(t, answers[2])
}

func TestParseAnswers_TrimsLongPayload(t *testing.T) {
	answers, err := parseAnswers(`{"answers":["a","b","c","d"]}`, 2)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, answers)
}
