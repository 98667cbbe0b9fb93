// Package provider defines machine-translation provider implementations.
package provider

import (
	"sync"

	"github.com/pageling/pageling"
)

// Provider is the machine-translation backend interface.
// This is an alias to the main package interface for convenience.
type Provider = pageling.Provider

// UsageReporter is an alias to the main package interface.
type UsageReporter = pageling.UsageReporter

// UsageCounter is an in-memory UsageReporter summing characters per provider.
type UsageCounter struct {
	mu    sync.Mutex
	chars map[string]int
}

// NewUsageCounter creates an empty usage counter.
func NewUsageCounter() *UsageCounter {
	return &UsageCounter{chars: make(map[string]int)}
}

// ReportUsage adds chars to the provider's total.
func (u *UsageCounter) ReportUsage(provider string, chars int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.chars[provider] += chars
}

// Chars returns the billed character count for a provider.
func (u *UsageCounter) Chars(provider string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.chars[provider]
}

// Totals returns a copy of all per-provider totals.
func (u *UsageCounter) Totals() map[string]int {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make(map[string]int, len(u.chars))
	for p, n := range u.chars {
		out[p] = n
	}
	return out
}

var _ UsageReporter = (*UsageCounter)(nil)
