// Package store implements the translation store and cache: persistent
// per-language translation tables behind a pluggable file codec, a
// per-request in-memory overlay with read-your-writes semantics, an
// append-only discovery log, and optional shared read-through cache tiers.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// ContextSlug is the context qualifier used for URL path segments.
const ContextSlug = "slug"

// Key identifies a translation entry: the source string plus an optional
// context qualifier disambiguating identical strings used in different
// places. Keys are globally unique across all languages.
type Key struct {
	Str     string `json:"str"`
	Context string `json:"context,omitempty"`
}

// Entry is one translation record: the key, one value per target language,
// and the shared flag. Shared entries propagate edits to every entry with a
// byte-identical source string regardless of context.
type Entry struct {
	Key    Key
	Values map[string]string
	Shared bool
}

// clone returns a deep copy of the entry's value map.
func (e *Entry) clone() map[string]string {
	out := make(map[string]string, len(e.Values))
	for lng, v := range e.Values {
		out[lng] = v
	}
	return out
}

// DiscoveryRecord marks the first sighting of a string during rendering that
// has no stored translation yet. Records are append-only.
type DiscoveryRecord struct {
	ID      string    `json:"id"`
	Str     string    `json:"str"`
	Context string    `json:"context,omitempty"`
	URL     string    `json:"url"`
	Time    time.Time `json:"time"`
}

// Key returns the translation key of the record.
func (r DiscoveryRecord) Key() Key {
	return Key{Str: r.Str, Context: r.Context}
}

// HashKey returns a stable hex digest of a key, used for cache keys.
func HashKey(k Key) string {
	h := sha256.New()
	h.Write([]byte(k.Str))
	h.Write([]byte{0})
	h.Write([]byte(k.Context))
	return hex.EncodeToString(h.Sum(nil))
}

// CacheKey generates a shared-cache key from a translation key and language.
func CacheKey(k Key, lng string) string {
	return HashKey(k) + ":" + lng
}
