package analysis

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Provider is the external analysis collaborator: text in, text out, may
// fail or time out.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

var _ Provider = (*OpenAIProvider)(nil)

// OpenAIProvider calls a chat-completions endpoint with the analysis prompt
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	jsonOutput bool
}

func NewOpenAIProvider(apiKey, model string, jsonOutput bool) *OpenAIProvider {
	return &OpenAIProvider{
		client:     openai.NewClient(apiKey),
		model:      model,
		jsonOutput: jsonOutput,
	}
}

func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0.3,
		MaxTokens:   350,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	if p.jsonOutput {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: provider returned empty response", ErrInvalidResponse)
	}

	return resp.Choices[0].Message.Content, nil
}
