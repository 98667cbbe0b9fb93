package provider

import (
	"context"
	"fmt"
)

// MockProvider is a mock translation provider for testing.
type MockProvider struct {
	Translations map[string]string // Map of source text to translation
	CallCount    int               // Number of times Translate was called
	LastText     string            // Last text received
	LastTarget   string            // Last target language received
	Err          error             // Error to return on every call, if set
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":                "Hola",
			"World":                "Mundo",
			"Hello World":          "Hola Mundo",
			"Welcome to our site.": "Bienvenido a nuestro sitio.",
		},
	}
}

// Name identifies the provider for usage accounting.
func (m *MockProvider) Name() string { return "mock" }

// Translate returns mock translations.
func (m *MockProvider) Translate(ctx context.Context, text, sourceLng, targetLng string) (string, error) {
	m.CallCount++
	m.LastText = text
	m.LastTarget = targetLng

	if m.Err != nil {
		return "", m.Err
	}
	if translation, ok := m.Translations[text]; ok {
		return translation, nil
	}
	// Bracketed text for unknown translations
	return fmt.Sprintf("[%s:%s]", targetLng, text), nil
}

// Reset resets the call count and recorded request state.
func (m *MockProvider) Reset() {
	m.CallCount = 0
	m.LastText = ""
	m.LastTarget = ""
}

// Verify MockProvider implements Provider
var _ Provider = (*MockProvider)(nil)
