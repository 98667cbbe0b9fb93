package provider

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMockProvider_KnownTranslation(t *testing.T) {
	m := NewMockProvider()

	result, err := m.Translate(context.Background(), "Hello", "en", "es")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if result != "Hola" {
		t.Errorf("Expected 'Hola', got %q", result)
	}
	if m.CallCount != 1 {
		t.Errorf("Expected 1 call, got %d", m.CallCount)
	}
	if m.LastText != "Hello" || m.LastTarget != "es" {
		t.Errorf("Request state not recorded: %q / %q", m.LastText, m.LastTarget)
	}
}

func TestMockProvider_UnknownTranslation(t *testing.T) {
	m := NewMockProvider()

	result, err := m.Translate(context.Background(), "Something else", "en", "de")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if result != "[de:Something else]" {
		t.Errorf("Expected bracketed fallback, got %q", result)
	}
}

func TestMockProvider_Error(t *testing.T) {
	m := NewMockProvider()
	m.Err = errors.New("simulated failure")

	if _, err := m.Translate(context.Background(), "Hello", "en", "es"); err == nil {
		t.Error("Expected configured error")
	}
	if m.CallCount != 1 {
		t.Errorf("Failed calls still count, got %d", m.CallCount)
	}
}

func TestMockProvider_Reset(t *testing.T) {
	m := NewMockProvider()
	m.Translate(context.Background(), "Hello", "en", "es")
	m.Reset()

	if m.CallCount != 0 || m.LastText != "" || m.LastTarget != "" {
		t.Error("Reset should clear the recorded state")
	}
}

func TestUsageCounter(t *testing.T) {
	u := NewUsageCounter()

	u.ReportUsage("openai", 100)
	u.ReportUsage("openai", 50)
	u.ReportUsage("mock", 7)

	if u.Chars("openai") != 150 {
		t.Errorf("Expected 150 chars for openai, got %d", u.Chars("openai"))
	}
	if u.Chars("unknown") != 0 {
		t.Errorf("Unknown provider should be 0, got %d", u.Chars("unknown"))
	}

	totals := u.Totals()
	if totals["openai"] != 150 || totals["mock"] != 7 {
		t.Errorf("Unexpected totals: %v", totals)
	}
}

func TestUsageCounter_Concurrent(t *testing.T) {
	u := NewUsageCounter()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u.ReportUsage("p", 1)
		}()
	}
	wg.Wait()

	if u.Chars("p") != 100 {
		t.Errorf("Expected 100, got %d", u.Chars("p"))
	}
}
