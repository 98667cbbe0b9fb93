package pageling

import "context"

// Provider is the machine-translation collaborator: translate one text from
// the source to the target language. Implementations may fail; the engine
// recovers locally by serving the source text.
type Provider interface {
	Translate(ctx context.Context, text, sourceLng, targetLng string) (string, error)

	// Name identifies the provider for usage accounting.
	Name() string
}

// UsageReporter receives the character count of successful provider calls
// for cost accounting. Failed calls are never billed.
type UsageReporter interface {
	ReportUsage(provider string, chars int)
}
