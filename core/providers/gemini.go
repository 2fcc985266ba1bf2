package providers

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider implements Provider for Google's Gemini models
type GeminiProvider struct {
	client  *genai.Client
	config  GeminiConfig
	counter *CharacterBasedCounter
}

// NewGeminiProvider creates a new Gemini provider with the given configuration
func NewGeminiProvider(ctx context.Context, config GeminiConfig) (*GeminiProvider, error) {
	if config.Model == "" {
		config.Model = DefaultGeminiConfig().Model
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultGeminiConfig().MaxTokens
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: config.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	return &GeminiProvider{
		client:  client,
		config:  config,
		counter: NewCharacterBasedCounter(DefaultTokenCounterConfig()),
	}, nil
}

// Name returns the provider identifier
func (p *GeminiProvider) Name() string {
	return string(ProviderTypeGemini)
}

// Complete performs a non-streaming completion request
func (p *GeminiProvider) Complete(ctx context.Context, req *Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}

	if req.SystemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	if req.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*req.Temperature))
	} else if p.config.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(p.config.Temperature))
	}

	result, err := p.client.Models.GenerateContent(ctx, model, p.convertMessages(req.Messages), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini complete: %w", err)
	}

	return p.convertResponse(model, result), nil
}

// CountTokens estimates token usage for the given messages
func (p *GeminiProvider) CountTokens(messages []Message) (int, error) {
	return p.counter.Count(messages)
}

func (p *GeminiProvider) convertMessages(messages []Message) []*genai.Content {
	result := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		role := genai.Role(genai.RoleUser)
		if msg.Role == RoleAssistant {
			role = genai.RoleModel
		}
		result = append(result, genai.NewContentFromText(msg.Content, role))
	}
	return result
}

func (p *GeminiProvider) convertResponse(model string, result *genai.GenerateContentResponse) *Response {
	resp := &Response{
		Content:    result.Text(),
		Model:      model,
		StopReason: StopReasonEndTurn,
	}

	if len(result.Candidates) > 0 && result.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		resp.StopReason = StopReasonMaxTokens
	}

	if result.UsageMetadata != nil {
		resp.Usage = Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
		}
	}

	return resp
}
