// Package azureopenai implements llm.Provider against an Azure OpenAI
// deployment using the official OpenAI Go SDK.
package azureopenai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/skillsenselab/tina-api/internal/llm"
)

const (
	// ProviderName is the registered name for the Azure OpenAI provider.
	ProviderName = "azure-openai"

	// Placeholder defaults let the process start without credentials; calls
	// made against them fail and degrade at the caller's boundary.
	defaultEndpoint   = "https://your-openai-endpoint.openai.azure.com/"
	defaultAPIKey     = "your-api-key-here"
	defaultDeployment = "new-azure-openai-gpt-4o"
	defaultAPIVersion = "2024-12-01-preview"
	defaultTimeout    = 120 * time.Second
)

// Config holds configuration for the Azure OpenAI provider.
type Config struct {
	// Endpoint is the resource endpoint URL.
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`
	// APIKey authenticates against the resource.
	APIKey string `json:"api_key" mapstructure:"api_key"`
	// Deployment is the model deployment name used for completions.
	Deployment string `json:"deployment" mapstructure:"deployment"`
	// APIVersion selects the service API version.
	APIVersion string `json:"api_version" mapstructure:"api_version"`
	// Timeout bounds each completion request.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// Provider implements llm.Provider using the Azure OpenAI chat completions API.
type Provider struct {
	cfg    Config
	client openai.Client
}

// NewProvider creates a new Azure OpenAI provider.
func NewProvider(cfg Config) *Provider {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.APIKey == "" {
		cfg.APIKey = defaultAPIKey
	}
	if cfg.Deployment == "" {
		cfg.Deployment = defaultDeployment
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	client := openai.NewClient(
		azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
		azure.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(cfg.Timeout),
	)
	return &Provider{cfg: cfg, client: client}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the provider has non-placeholder credentials.
func (p *Provider) IsAvailable(_ context.Context) bool {
	return p.cfg.APIKey != "" && p.cfg.APIKey != defaultAPIKey &&
		p.cfg.Endpoint != "" && p.cfg.Endpoint != defaultEndpoint
}

// Complete sends a chat completion request to the configured deployment.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case llm.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case llm.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	model := p.cfg.Deployment
	if req.Model != "" {
		model = req.Model
	}

	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    shared.ChatModel(model),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("azure openai complete: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("azure openai complete: response contains no choices")
	}

	return &llm.CompletionResponse{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage: llm.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}
