package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TranslateFunc is the machine-translation collaborator contract:
// (text, source, target) -> text. It may fail; failures are non-fatal.
type TranslateFunc func(ctx context.Context, text, sourceLng, targetLng string) (string, error)

// cell addresses one (key, language) translation value.
type cell struct {
	K   Key
	Lng string
}

// Session is the per-request scope over the catalog: a mutable overlay of
// translation changes with read-your-writes semantics plus the discovery
// buffer. Created at request start, flushed once at request end, never
// shared or reused across requests.
type Session struct {
	cat       *Catalog
	url       string
	discovery bool
	shared    Cache
	mt        TranslateFunc
	bill      func(chars int)
	timeout   time.Duration
	now       func() time.Time

	mu        sync.Mutex
	overlay   map[cell]string
	writes    []write
	marks     map[Key]bool
	sighted   map[Key]bool
	records   []DiscoveryRecord
}

// SessionOption configures a session.
type SessionOption func(*Session)

// WithDiscovery enables discovery logging of unknown strings.
func WithDiscovery(enabled bool) SessionOption {
	return func(s *Session) { s.discovery = enabled }
}

// WithSharedCache adds a shared read-through cache tier consulted between
// the overlay and the catalog.
func WithSharedCache(c Cache) SessionOption {
	return func(s *Session) { s.shared = c }
}

// WithMachineTranslation enables automatic translation of missing values.
// bill receives the source character count of each successful call; timeout
// bounds a single provider call.
func WithMachineTranslation(fn TranslateFunc, bill func(chars int), timeout time.Duration) SessionOption {
	return func(s *Session) {
		s.mt = fn
		s.bill = bill
		s.timeout = timeout
	}
}

// WithClock overrides the session clock.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// NewSession opens a request session for the page at url.
func (c *Catalog) NewSession(url string, opts ...SessionOption) *Session {
	s := &Session{
		cat:     c,
		url:     url,
		now:     time.Now,
		overlay: make(map[cell]string),
		marks:   make(map[Key]bool),
		sighted: make(map[Key]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// URL returns the externally visible URL this session serves.
func (s *Session) URL() string { return s.url }

// Lookup returns the merged per-language view for key: catalog values with
// the session's own writes layered on top.
func (s *Session) Lookup(k Key) (map[string]string, bool) {
	values, ok := s.cat.Lookup(k)
	if values == nil {
		values = make(map[string]string)
	}
	s.mu.Lock()
	for c, v := range s.overlay {
		if c.K == k {
			values[c.Lng] = v
			ok = true
		}
	}
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	return values, true
}

// Value returns the translation for (key, lng): overlay first, then the
// shared cache tier, then the catalog.
func (s *Session) Value(k Key, lng string) (string, bool) {
	s.mu.Lock()
	v, ok := s.overlay[cell{K: k, Lng: lng}]
	s.mu.Unlock()
	if ok {
		return v, true
	}
	if s.shared != nil {
		if v, ok := s.shared.Get(CacheKey(k, lng)); ok {
			return v, true
		}
	}
	v, ok = s.cat.Value(k, lng)
	if ok && s.shared != nil {
		_ = s.shared.Set(CacheKey(k, lng), v) // Ignore cache set errors
	}
	return v, ok
}

// Upsert buffers a translation write. Visible to subsequent lookups within
// this session immediately; durable only after Flush.
func (s *Session) Upsert(k Key, lng, value string) {
	s.mu.Lock()
	s.overlay[cell{K: k, Lng: lng}] = value
	s.writes = append(s.writes, write{K: k, Lng: lng, Value: value})
	s.mu.Unlock()
}

// MarkShared buffers a shared-flag change for key.
func (s *Session) MarkShared(k Key, shared bool) {
	s.mu.Lock()
	s.marks[k] = shared
	s.mu.Unlock()
}

// known reports whether the key exists in the catalog or this overlay.
func (s *Session) known(k Key) bool {
	if s.cat.Has(k) {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.overlay {
		if c.K == k {
			return true
		}
	}
	return false
}

// Discover records the first sighting of an unknown key. A key already in
// the store is never a discovery, and repeat sightings within one session
// produce no second record.
func (s *Session) Discover(k Key) {
	if !s.discovery || s.known(k) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sighted[k] {
		return
	}
	s.sighted[k] = true
	s.records = append(s.records, DiscoveryRecord{
		ID:      uuid.NewString(),
		Str:     k.Str,
		Context: k.Context,
		URL:     s.url,
		Time:    s.now(),
	})
}

// Resolve returns the rendered text for key in lng: a stored or buffered
// translation when present, otherwise the source string. An unknown key is
// logged as a discovery; a missing value triggers machine translation when
// configured. Rendering is never blocked by a missing translation.
func (s *Session) Resolve(ctx context.Context, k Key, lng string) string {
	if lng == s.cat.SourceLng() {
		s.Discover(k)
		return k.Str
	}
	if v, ok := s.Value(k, lng); ok {
		return v
	}
	s.Discover(k)
	if s.mt == nil {
		return k.Str
	}
	v, err := s.autoTranslate(ctx, k, lng)
	if err != nil {
		// Provider failure: serve the source text, store nothing, bill
		// nothing. The key stays untranslated so a later request retries.
		return k.Str
	}
	return v
}

// autoTranslate calls the provider for a missing value, stores the result
// as non-shared and records the character count for billing.
func (s *Session) autoTranslate(ctx context.Context, k Key, lng string) (string, error) {
	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	v, err := s.mt(callCtx, k.Str, s.cat.SourceLng(), lng)
	if err != nil {
		return "", err
	}
	s.Upsert(k, lng, v)
	if s.bill != nil {
		s.bill(len([]rune(k.Str)))
	}
	return v, nil
}

// Records returns the discovery records buffered so far, in sighting order.
func (s *Session) Records() []DiscoveryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]DiscoveryRecord(nil), s.records...)
}

// Flush merges the overlay into the catalog (last writer wins per cell,
// shared values propagate to identical source strings), persists the touched
// tables and appends the discovery buffer to the log. On failure the overlay
// is preserved so a retry does not lose data.
func (s *Session) Flush() error {
	s.mu.Lock()
	writes := append([]write(nil), s.writes...)
	marks := make(map[Key]bool, len(s.marks))
	for k, v := range s.marks {
		marks[k] = v
	}
	records := append([]DiscoveryRecord(nil), s.records...)
	s.mu.Unlock()

	if err := s.cat.commit(writes, marks); err != nil {
		return err
	}
	if s.shared != nil {
		for _, w := range writes {
			_ = s.shared.Set(CacheKey(w.K, w.Lng), w.Value)
		}
	}
	if log := s.cat.Log(); log != nil && len(records) > 0 {
		if err := log.Append(records); err != nil {
			return err
		}
	}
	s.Discard()
	return nil
}

// Discard drops all buffered writes and discovery records without flushing.
// Used when a request aborts mid-pipeline and by the tokenize rollback.
func (s *Session) Discard() {
	s.mu.Lock()
	s.overlay = make(map[cell]string)
	s.writes = nil
	s.marks = make(map[Key]bool)
	s.sighted = make(map[Key]bool)
	s.records = nil
	s.mu.Unlock()
}

// TranslatePath maps a URL path between languages segment by segment, using
// slug-context entries. Unknown segments pass through unchanged, so the
// result is always a servable path.
func (s *Session) TranslatePath(path, from, to string) string {
	if from == to {
		return path
	}
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "/"
	}
	source := s.cat.SourceLng()
	segs := strings.Split(trimmed, "/")
	for i, seg := range segs {
		// Map the segment to its source form first.
		src := seg
		if from != source {
			if k, ok := s.reverseValue(seg, from); ok {
				src = k.Str
			}
		}
		if to == source {
			segs[i] = src
			continue
		}
		if v, ok := s.Value(Key{Str: src, Context: ContextSlug}, to); ok && v != "" {
			segs[i] = v
		} else {
			segs[i] = src
		}
	}
	return "/" + strings.Join(segs, "/")
}

// reverseValue finds the slug key whose translation in lng matches value,
// checking the overlay before the catalog.
func (s *Session) reverseValue(value, lng string) (Key, bool) {
	s.mu.Lock()
	for c, v := range s.overlay {
		if c.Lng == lng && c.K.Context == ContextSlug && v == value {
			s.mu.Unlock()
			return c.K, true
		}
	}
	s.mu.Unlock()
	return s.cat.ReverseValue(value, lng, ContextSlug)
}

// TouchPath registers the segments of a source-language path as slug keys so
// translated URLs become discoverable and, when enabled, machine translated.
func (s *Session) TouchPath(ctx context.Context, path string, targets []string) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return
	}
	for _, seg := range strings.Split(trimmed, "/") {
		k := Key{Str: seg, Context: ContextSlug}
		for _, lng := range targets {
			_ = s.Resolve(ctx, k, lng)
		}
	}
}
