package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pageling/pageling"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider using OpenAI's API.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key (uses OPENAI_API_KEY env var if empty)
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Name identifies the provider for usage accounting.
func (p *OpenAIProvider) Name() string { return "openai" }

// Translate translates one text using OpenAI.
func (p *OpenAIProvider) Translate(ctx context.Context, text, sourceLng, targetLng string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.buildSystemPrompt(sourceLng, targetLng)},
			{Role: openai.ChatMessageRoleUser, Content: p.buildUserMessage(text)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", &pageling.ProviderError{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", &pageling.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return p.parseResponse(resp.Choices[0].Message.Content)
}

func (p *OpenAIProvider) buildSystemPrompt(sourceLng, targetLng string) string {
	sourceName := pageling.GetLanguageName(sourceLng)
	targetName := pageling.GetLanguageName(targetLng)

	return fmt.Sprintf(`# Role
You are an expert native translator. You translate website content from %s to %s with the fluency and nuance of a highly educated native speaker.

# Style Guide
- **Natural Flow**: Avoid literal translations. Rephrase to sound completely natural to a native speaker.
- **Idioms**: Never translate idioms literally. Replace them with natural %s equivalents.
- **HTML/Code Safety**: Do NOT translate HTML tags, class names, IDs, attributes, URLs, email addresses, or content inside backticks.
- **Interpolation**: Do NOT translate variables or placeholders (e.g., {{name}}, {count}, %%s, $1).
- **Formatting**: Preserve meaningful whitespace and use idiomatic punctuation for the target language.
- **Slugs**: If the input looks like a URL slug (lowercase words joined by hyphens), return a slug in the same shape.

# Format
Return a valid JSON object: { "translation": "..." }
Do NOT wrap in Markdown code blocks.`, sourceName, targetName, targetName)
}

func (p *OpenAIProvider) buildUserMessage(text string) string {
	data, _ := json.Marshal(map[string]string{"text": text})
	return string(data)
}

func (p *OpenAIProvider) parseResponse(content string) (string, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(content), &obj); err == nil {
		if v, ok := obj["translation"]; ok {
			if s, ok := v.(string); ok {
				return s, nil
			}
		}
		// Fallback: first string value
		for _, v := range obj {
			if s, ok := v.(string); ok {
				return s, nil
			}
		}
	}

	return "", &pageling.ProviderError{
		Message:   "invalid response format from OpenAI",
		Retryable: false,
	}
}

func isRetryableError(err error) bool {
	// Check for common retryable conditions
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"temporary",
		"503",
		"502",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// Verify OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)
