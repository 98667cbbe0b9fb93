package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DiscoveryLog is an append-only record of first sightings, one JSON object
// per line. Appends are serialized; concurrent appenders never interleave
// partial lines.
type DiscoveryLog struct {
	path string
	mu   sync.Mutex
}

// OpenDiscoveryLog opens (or lazily creates) the log at path.
func OpenDiscoveryLog(path string) *DiscoveryLog {
	return &DiscoveryLog{path: path}
}

// Append writes records to the end of the log.
func (l *DiscoveryLog) Append(recs []DiscoveryRecord) error {
	if len(recs) == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(l.path), 0o750); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return fmt.Errorf("opening discovery log: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("appending discovery record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing discovery log: %w", err)
	}
	return nil
}

// Get returns the records flushed strictly after since, in append order.
// urls, when non-empty, restricts results to sightings on those URLs.
// onlyNew keeps only keys whose first sighting ever is after since, one
// record per key.
func (l *DiscoveryLog) Get(since time.Time, urls []string, onlyNew bool) ([]DiscoveryRecord, error) {
	all, err := l.read()
	if err != nil {
		return nil, err
	}

	urlSet := make(map[string]bool, len(urls))
	for _, u := range urls {
		urlSet[u] = true
	}

	firstSeen := make(map[Key]time.Time)
	for _, rec := range all {
		if t, ok := firstSeen[rec.Key()]; !ok || rec.Time.Before(t) {
			firstSeen[rec.Key()] = rec.Time
		}
	}

	var out []DiscoveryRecord
	seenKeys := make(map[Key]bool)
	for _, rec := range all {
		if !rec.Time.After(since) {
			continue
		}
		if len(urlSet) > 0 && !urlSet[rec.URL] {
			continue
		}
		if onlyNew {
			if !firstSeen[rec.Key()].After(since) {
				continue
			}
			if seenKeys[rec.Key()] {
				continue
			}
			seenKeys[rec.Key()] = true
		}
		out = append(out, rec)
	}
	return out, nil
}

// KeysSightedSince returns the set of keys with at least one sighting after
// since. Used by the unused-translation prune.
func (l *DiscoveryLog) KeysSightedSince(since time.Time) (map[Key]bool, error) {
	all, err := l.read()
	if err != nil {
		return nil, err
	}
	out := make(map[Key]bool)
	for _, rec := range all {
		if rec.Time.After(since) {
			out[rec.Key()] = true
		}
	}
	return out, nil
}

// Reset truncates the log. Destructive, operator-invoked only.
func (l *DiscoveryLog) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	err := os.Remove(l.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("resetting discovery log: %w", err)
	}
	return nil
}

func (l *DiscoveryLog) read() ([]DiscoveryRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening discovery log: %w", err)
	}
	defer f.Close()

	var out []DiscoveryRecord
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec DiscoveryRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			// A torn tail line from a crashed writer is skipped, not fatal.
			continue
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning discovery log: %w", err)
	}
	return out, nil
}
