package provider

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildSystemPrompt(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	prompt := p.buildSystemPrompt("en", "de")

	// Check key elements are present
	if !strings.Contains(prompt, "English") {
		t.Error("Prompt should contain source language name")
	}
	if !strings.Contains(prompt, "German") {
		t.Error("Prompt should contain target language name")
	}
	if !strings.Contains(prompt, "slug") {
		t.Error("Prompt should instruct slug-shaped output for slug input")
	}
	if !strings.Contains(prompt, "JSON") {
		t.Error("Prompt should require a JSON response")
	}
}

func TestBuildUserMessage(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	msg := p.buildUserMessage("Hello World")

	if msg != `{"text":"Hello World"}` {
		t.Errorf("Expected JSON object, got: %s", msg)
	}
}

func TestParseResponse_TranslationKey(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	result, err := p.parseResponse(`{"translation": "Hallo Welt"}`)
	if err != nil {
		t.Fatalf("parseResponse failed: %v", err)
	}
	if result != "Hallo Welt" {
		t.Errorf("Expected 'Hallo Welt', got %q", result)
	}
}

func TestParseResponse_FallbackStringValue(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	result, err := p.parseResponse(`{"result": "Hallo"}`)
	if err != nil {
		t.Fatalf("parseResponse failed: %v", err)
	}
	if result != "Hallo" {
		t.Errorf("Expected fallback string value, got %q", result)
	}
}

func TestParseResponse_Invalid(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})

	tests := []string{
		`not json`,
		`{"translation": 42}`,
		`{}`,
	}
	for _, content := range tests {
		if _, err := p.parseResponse(content); err == nil {
			t.Errorf("Expected error for %q", content)
		}
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", errors.New("429 Rate limit exceeded"), true},
		{"timeout", errors.New("request timeout"), true},
		{"bad gateway", errors.New("HTTP 502"), true},
		{"service unavailable", errors.New("503 Service Unavailable"), true},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"invalid key", errors.New("401 Unauthorized"), false},
		{"bad request", errors.New("400 Bad Request"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.want {
				t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestNewOpenAIProvider_Defaults(t *testing.T) {
	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test"})
	if p.model != "gpt-4o-mini" {
		t.Errorf("Expected default model, got %q", p.model)
	}
	if p.temperature != 0.3 {
		t.Errorf("Expected default temperature, got %f", p.temperature)
	}

	custom := NewOpenAIProvider(OpenAIConfig{APIKey: "test", Model: "gpt-4o", Temperature: 0.7})
	if custom.model != "gpt-4o" || custom.temperature != 0.7 {
		t.Error("Explicit settings must not be overridden")
	}
}
