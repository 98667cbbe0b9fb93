package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"
)

// ExportFormat is the JSON structure for catalog export/import.
type ExportFormat struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []ExportEntry     `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ExportEntry is a single exported translation entry.
type ExportEntry struct {
	Str     string            `json:"str"`
	Context string            `json:"context,omitempty"`
	Values  map[string]string `json:"values"`
	Shared  bool              `json:"shared,omitempty"`
}

// Export writes the full catalog to w in JSON format.
func (c *Catalog) Export(w io.Writer, metadata map[string]string) error {
	c.mu.RLock()
	entries := make([]ExportEntry, 0, len(c.entries))
	for k, e := range c.entries {
		entries = append(entries, ExportEntry{
			Str:     k.Str,
			Context: k.Context,
			Values:  e.clone(),
			Shared:  e.Shared,
		})
	}
	c.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Str != entries[j].Str {
			return entries[i].Str < entries[j].Str
		}
		return entries[i].Context < entries[j].Context
	})

	export := ExportFormat{
		Version:    "1.0",
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    entries,
		Metadata:   metadata,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(export); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// ExportToFile exports the catalog to a file.
// The path is provided by the caller and is intentionally user-controlled.
func (c *Catalog) ExportToFile(path string, metadata map[string]string) error {
	f, err := os.Create(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()
	return c.Export(f, metadata)
}

// ImportResult contains statistics about an import operation.
type ImportResult struct {
	Version  string
	Metadata map[string]string
	Imported int
	Failed   int
}

// Import reads exported entries from r and merges them into the catalog.
// Existing keys are updated in place.
func (c *Catalog) Import(r io.Reader) (*ImportResult, error) {
	var export ExportFormat
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}

	result := &ImportResult{
		Version:  export.Version,
		Metadata: export.Metadata,
	}

	for _, entry := range export.Entries {
		k := Key{Str: entry.Str, Context: entry.Context}
		failed := false
		for lng, v := range entry.Values {
			if err := c.Upsert(k, lng, v, entry.Shared); err != nil {
				failed = true
			}
		}
		if failed {
			result.Failed++
		} else {
			result.Imported++
		}
	}
	return result, nil
}

// ImportFromFile imports catalog entries from a file.
// The path is provided by the caller and is intentionally user-controlled.
func (c *Catalog) ImportFromFile(path string) (*ImportResult, error) {
	f, err := os.Open(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return c.Import(f)
}
