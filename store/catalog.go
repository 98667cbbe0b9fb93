package store

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Catalog is the process-wide view of the persistent translation tables.
// It supports concurrent readers and serializes committing writers per
// language file. All mutation goes through session flushes or the explicit
// operator entry points (Delete, DeleteUnused, Reset, Import).
type Catalog struct {
	mu      sync.RWMutex
	entries map[Key]*Entry
	codec   FileCodec
	source  string
	targets []string
	fileMu  map[string]*sync.Mutex
	log     *DiscoveryLog
}

// Open loads the translation tables for every target language.
func Open(source string, targets []string, codec FileCodec, log *DiscoveryLog) (*Catalog, error) {
	c := &Catalog{
		entries: make(map[Key]*Entry),
		codec:   codec,
		source:  source,
		targets: append([]string(nil), targets...),
		fileMu:  make(map[string]*sync.Mutex, len(targets)),
		log:     log,
	}
	for _, lng := range targets {
		c.fileMu[lng] = &sync.Mutex{}
		rows, err := codec.Read(lng)
		if err != nil {
			return nil, fmt.Errorf("loading catalog: %w", err)
		}
		for _, row := range rows {
			k := Key{Str: row.Str, Context: row.Context}
			e, ok := c.entries[k]
			if !ok {
				e = &Entry{Key: k, Values: make(map[string]string)}
				c.entries[k] = e
			}
			e.Values[lng] = row.Value
			e.Shared = e.Shared || row.Shared
		}
	}
	return c, nil
}

// SourceLng returns the configured source language.
func (c *Catalog) SourceLng() string { return c.source }

// TargetLngs returns the persisted target languages.
func (c *Catalog) TargetLngs() []string { return append([]string(nil), c.targets...) }

// Log returns the discovery log backing this catalog.
func (c *Catalog) Log() *DiscoveryLog { return c.log }

// Lookup returns a copy of the per-language values for key.
func (c *Catalog) Lookup(k Key) (map[string]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[k]
	if !ok {
		return nil, false
	}
	return e.clone(), true
}

// Has reports whether the catalog holds any entry for key.
func (c *Catalog) Has(k Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[k]
	return ok
}

// Value returns the stored translation for (key, lng).
func (c *Catalog) Value(k Key, lng string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[k]
	if !ok {
		return "", false
	}
	v, ok := e.Values[lng]
	return v, ok
}

// ReverseValue finds the key whose translation in lng equals value, filtered
// by context. Used to map a translated URL segment back to its source form.
func (c *Catalog) ReverseValue(value, lng, context string) (Key, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for k, e := range c.entries {
		if k.Context != context {
			continue
		}
		if e.Values[lng] == value {
			return k, true
		}
	}
	return Key{}, false
}

// Keys returns a snapshot of every stored key.
func (c *Catalog) Keys() []Key {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		out = append(out, k)
	}
	return out
}

// Len returns the number of stored entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// write is one buffered overlay cell pending commit.
type write struct {
	K     Key
	Lng   string
	Value string
}

// commit merges a session overlay: writes apply in order (last writer wins
// per cell), shared entries propagate the written value to every entry with
// an identical source string, and the touched language tables are persisted.
// Inserting an existing key updates in place, never a second entry.
func (c *Catalog) commit(writes []write, sharedMarks map[Key]bool) error {
	if len(writes) == 0 && len(sharedMarks) == 0 {
		return nil
	}
	touched := make(map[string]bool)

	c.mu.Lock()
	for k, shared := range sharedMarks {
		if e, ok := c.entries[k]; ok {
			e.Shared = shared
		} else {
			c.entries[k] = &Entry{Key: k, Values: make(map[string]string), Shared: shared}
		}
	}
	for _, w := range writes {
		e, ok := c.entries[w.K]
		if !ok {
			e = &Entry{Key: w.K, Values: make(map[string]string)}
			c.entries[w.K] = e
		}
		e.Values[w.Lng] = w.Value
		touched[w.Lng] = true
		if e.Shared {
			for k2, e2 := range c.entries {
				if k2 == w.K || k2.Str != w.K.Str {
					continue
				}
				e2.Values[w.Lng] = w.Value
			}
		}
	}
	c.mu.Unlock()

	langs := make([]string, 0, len(touched))
	for lng := range touched {
		langs = append(langs, lng)
	}
	sort.Strings(langs)
	return c.persist(langs)
}

// persist writes the given language tables through the codec, one committing
// writer per file.
func (c *Catalog) persist(langs []string) error {
	for _, lng := range langs {
		mu, ok := c.fileMu[lng]
		if !ok {
			// A language outside the configured targets (the tokenize
			// flow's synthetic pair) still gets a writer lock.
			c.mu.Lock()
			mu, ok = c.fileMu[lng]
			if !ok {
				mu = &sync.Mutex{}
				c.fileMu[lng] = mu
			}
			c.mu.Unlock()
		}
		// Snapshot under the file lock: a snapshot taken before it could be
		// overwritten by a later, more complete writer and then written last,
		// dropping the newer entries from disk.
		mu.Lock()
		rows := c.rows(lng)
		err := c.codec.Write(lng, rows)
		mu.Unlock()
		if err != nil {
			return fmt.Errorf("persisting table %s: %w", lng, err)
		}
	}
	return nil
}

// rows builds the sorted persisted form of one language table.
func (c *Catalog) rows(lng string) []Row {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rows := make([]Row, 0, len(c.entries))
	for k, e := range c.entries {
		v, ok := e.Values[lng]
		if !ok {
			continue
		}
		rows = append(rows, Row{Str: k.Str, Context: k.Context, Value: v, Shared: e.Shared})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Str != rows[j].Str {
			return rows[i].Str < rows[j].Str
		}
		return rows[i].Context < rows[j].Context
	})
	return rows
}

// Delete removes an entry and persists every affected language table.
func (c *Catalog) Delete(k Key) error {
	c.mu.Lock()
	e, ok := c.entries[k]
	var langs []string
	if ok {
		for lng := range e.Values {
			langs = append(langs, lng)
		}
		delete(c.entries, k)
	}
	c.mu.Unlock()
	if !ok {
		return nil
	}
	sort.Strings(langs)
	return c.persist(langs)
}

// DeleteUnused removes every key with zero discovery sightings after since
// and returns the count removed. Destructive; only invoked by the explicit
// operator-driven batch flow, never by page serving.
func (c *Catalog) DeleteUnused(since time.Time) (int, error) {
	if c.log == nil {
		return 0, fmt.Errorf("deleting unused translations: no discovery log configured")
	}
	sighted, err := c.log.KeysSightedSince(since)
	if err != nil {
		return 0, fmt.Errorf("deleting unused translations: %w", err)
	}

	c.mu.Lock()
	removed := 0
	for k := range c.entries {
		if !sighted[k] {
			delete(c.entries, k)
			removed++
		}
	}
	c.mu.Unlock()

	if removed == 0 {
		return 0, nil
	}
	if err := c.persist(c.TargetLngs()); err != nil {
		return removed, err
	}
	return removed, nil
}

// Reset clears every translation table and the discovery log. Destructive,
// operator-invoked only.
func (c *Catalog) Reset() error {
	c.mu.Lock()
	c.entries = make(map[Key]*Entry)
	c.mu.Unlock()
	if err := c.persist(c.TargetLngs()); err != nil {
		return err
	}
	if c.log != nil {
		return c.log.Reset()
	}
	return nil
}

// Upsert writes one cell directly, bypassing a session. Used by the importer
// and admin edits; serving always goes through sessions.
func (c *Catalog) Upsert(k Key, lng, value string, shared bool) error {
	marks := map[Key]bool{}
	if shared {
		marks[k] = true
	}
	return c.commit([]write{{K: k, Lng: lng, Value: value}}, marks)
}

// SetShared toggles the shared flag for a key and persists its languages.
func (c *Catalog) SetShared(k Key, shared bool) error {
	c.mu.Lock()
	e, ok := c.entries[k]
	var langs []string
	if ok {
		e.Shared = shared
		for lng := range e.Values {
			langs = append(langs, lng)
		}
	}
	c.mu.Unlock()
	if !ok {
		return nil
	}
	sort.Strings(langs)
	return c.persist(langs)
}
