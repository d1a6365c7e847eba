package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/groundcheck/internal/util"
)

// OpenAIProvider implements Provider for OpenAI-compatible endpoints.
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates the provider. An API key is required.
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks the endpoint answers a lightweight call.
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// Review generates a review via the Chat Completions API.
func (p *OpenAIProvider) Review(ctx context.Context, req ReviewRequest) (*ReviewResponse, error) {
	chatReq, model, cancelCtx, cancel := p.prepare(ctx, req)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(cancelCtx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	review := strings.TrimSpace(resp.Choices[0].Message.Content)
	return &ReviewResponse{
		Markdown:   review,
		Model:      model,
		TokensUsed: resp.Usage.TotalTokens,
		Warnings:   checkReferences(req, review),
	}, nil
}

// ReviewStream streams the review to out as it is generated.
func (p *OpenAIProvider) ReviewStream(ctx context.Context, req ReviewRequest, out io.Writer) (*ReviewResponse, error) {
	chatReq, model, cancelCtx, cancel := p.prepare(ctx, req)
	defer cancel()

	stream, err := p.client.CreateChatCompletionStream(cancelCtx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	defer stream.Close()

	var b strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("OpenAI stream error: %w", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		b.WriteString(delta)
		if out != nil {
			io.WriteString(out, delta)
		}
	}

	review := strings.TrimSpace(b.String())
	return &ReviewResponse{
		Markdown: review,
		Model:    model,
		Warnings: checkReferences(req, review),
	}, nil
}

func (p *OpenAIProvider) prepare(ctx context.Context, req ReviewRequest) (openai.ChatCompletionRequest, string, context.Context, context.CancelFunc) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req)
	}

	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 2000
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	cancelCtx, cancel := context.WithTimeout(ctx, timeout)

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	}
	return chatReq, model, cancelCtx, cancel
}
