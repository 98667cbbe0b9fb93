package pageling

import "fmt"

// ConfigError indicates an invalid engine configuration. It is fatal at
// setup: New refuses to build an engine from a config that fails validation.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// ProviderError indicates a machine-translation provider failure (API error,
// rate limit, timeout, malformed response). Provider failures are recovered
// locally: the source text is served and the key stays untranslated so a
// later request retries.
type ProviderError struct {
	Message   string
	Cause     error
	Retryable bool // Whether the operation can be retried
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// StoreError indicates a persistent translation store failure (file
// unreadable or unwritable). Surfaced as a hard failure of the session flush;
// the in-memory overlay is preserved so a retry does not lose data.
type StoreError struct {
	Message string
	Cause   error
}

func (e *StoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("store error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("store error: %s", e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// RewriteError indicates a content rewriting failure (parse or serialize
// error). Individual nodes that cannot be matched are skipped, never an
// error; RewriteError is reserved for whole-document failures.
type RewriteError struct {
	Message string
	Cause   error
}

func (e *RewriteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rewrite error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("rewrite error: %s", e.Message)
}

func (e *RewriteError) Unwrap() error {
	return e.Cause
}
