package genai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/MedCausal/DiagPipe/internal/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// mockChatService implements chatService for testing.
type mockChatService struct {
	resp   openai.ChatCompletion
	err    error
	params openai.ChatCompletionNewParams
}

func (m *mockChatService) New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.params = params
	if m.err != nil {
		return nil, m.err
	}
	return &m.resp, nil
}

func newTestClient(chat chatService) *Client {
	return &Client{
		chat:        chat,
		model:       openai.ChatModelGPT4o,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
	}
}

func TestGeneratePrompt_Success(t *testing.T) {
	// Prepare a mock response with one choice
	mockResp := openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "Hello World"}},
		},
	}
	svc := &mockChatService{resp: mockResp}
	client := newTestClient(svc)

	out, err := client.GeneratePrompt(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != "Hello World" {
		t.Errorf("expected 'Hello World', got '%s'", out)
	}
	if len(svc.params.Messages) != 2 {
		t.Errorf("expected system+user messages, got %d", len(svc.params.Messages))
	}
}

func TestGeneratePrompt_ServiceErrorIsGenerationUnavailable(t *testing.T) {
	client := newTestClient(&mockChatService{err: errors.New("service failure")})
	_, err := client.GeneratePrompt(context.Background(), "sys", "usr")
	if !errors.Is(err, models.ErrGenerationUnavailable) {
		t.Errorf("expected ErrGenerationUnavailable, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "service failure") {
		t.Errorf("expected underlying cause in message, got %v", err)
	}
}

func TestGenerateWithMessages_NoChoices(t *testing.T) {
	// Empty choices slice
	mockResp := openai.ChatCompletion{Choices: []openai.ChatCompletionChoice{}}
	client := newTestClient(&mockChatService{resp: mockResp})

	messages := []openai.ChatCompletionMessageParamUnion{openai.UserMessage("hi")}
	_, err := client.GenerateWithMessages(context.Background(), messages)
	if !errors.Is(err, ErrNoChoicesReturned) {
		t.Errorf("expected no choices returned error, got %v", err)
	}
}

func TestNewClient_NoKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewClient()
	if err == nil {
		t.Error("expected error when API key not provided, got nil")
	}
}

func TestNewClient_OptionsApplied(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	client, err := NewClient(
		WithAPIKey("test-key"),
		WithModel(openai.ChatModelGPT4oMini),
		WithTemperature(0.1),
		WithMaxTokens(128),
	)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if client.model != openai.ChatModelGPT4oMini {
		t.Errorf("model option not applied: %s", client.model)
	}
	if client.temperature != 0.1 || client.maxTokens != 128 {
		t.Errorf("generation options not applied: %+v", client)
	}
}
