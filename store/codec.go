package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Row is one persisted translation cell: source string, context, translated
// value and the shared flag, as stored in a per-language table file.
type Row struct {
	Str     string `json:"str"`
	Context string `json:"context,omitempty"`
	Value   string `json:"value"`
	Shared  bool   `json:"shared,omitempty"`
}

// FileCodec reads and writes one translation table per language. Write must
// replace the table atomically; readers never observe a partial write. A
// PO/MO-backed codec satisfies the same contract.
type FileCodec interface {
	Read(lng string) ([]Row, error)
	Write(lng string, rows []Row) error
}

// JSONCodec persists tables as one JSON file per language under Dir.
// Writes go through a temp file and rename, so a concurrent reader sees
// either the old or the new table, never a mix.
type JSONCodec struct {
	Dir string
}

// NewJSONCodec creates a codec rooted at dir.
func NewJSONCodec(dir string) *JSONCodec {
	return &JSONCodec{Dir: dir}
}

func (c *JSONCodec) path(lng string) string {
	return filepath.Join(c.Dir, lng+".json")
}

// Read loads the table for lng. A missing file is an empty table.
func (c *JSONCodec) Read(lng string) ([]Row, error) {
	data, err := os.ReadFile(c.path(lng))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", lng, err)
	}
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decoding table %s: %w", lng, err)
	}
	return rows, nil
}

// Write atomically replaces the table for lng.
func (c *JSONCodec) Write(lng string, rows []Row) error {
	if err := os.MkdirAll(c.Dir, 0o750); err != nil {
		return fmt.Errorf("creating table dir: %w", err)
	}
	f, err := os.CreateTemp(c.Dir, lng+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp table: %w", err)
	}
	tmp := f.Name()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encoding table %s: %w", lng, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing temp table: %w", err)
	}
	if err := os.Rename(tmp, c.path(lng)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing table %s: %w", lng, err)
	}
	return nil
}

// MemCodec is an in-memory FileCodec for tests and the tokenize flow, which
// must leave no trace on disk.
type MemCodec struct {
	mu     sync.Mutex
	tables map[string][]Row
}

// NewMemCodec creates an empty in-memory codec.
func NewMemCodec() *MemCodec {
	return &MemCodec{tables: make(map[string][]Row)}
}

// Read returns the stored table for lng.
func (c *MemCodec) Read(lng string) ([]Row, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Row(nil), c.tables[lng]...), nil
}

// Write replaces the stored table for lng.
func (c *MemCodec) Write(lng string, rows []Row) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[lng] = append([]Row(nil), rows...)
	return nil
}

var (
	_ FileCodec = (*JSONCodec)(nil)
	_ FileCodec = (*MemCodec)(nil)
)
