// internal/scores/file.go
//
// JSON-document recorder: one object keyed by game title, each holding a
// timestamp -> raw score map. A random suffix keeps equal timestamps apart.
//
//	{
//	  "Minesweeper": { "2026-10-17T14:05:09.123+02:00|0c6f…": 192 },
//	  "Snake":       { "2026-10-17T14:09:41.5+02:00|9a1d…": 14 }
//	}
//
// The whole document is rewritten on every Record (temp file + rename).
// A missing file is created as "{}" on first use.

package scores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

type document map[string]map[string]float64

// File is a Recorder backed by a single JSON file.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile returns a recorder writing to path, creating parent directories.
func NewFile(path string) (*File, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return &File{path: path}, nil
}

func (f *File) Record(ctx context.Context, e Entry) error {
	if err := validate(e); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return err
	}
	byTime := doc[e.Title]
	if byTime == nil {
		byTime = make(map[string]float64)
		doc[e.Title] = byTime
	}
	byTime[stampKey(e.At)] = e.Raw
	return f.save(doc)
}

func (f *File) History(ctx context.Context, title string, descending bool) ([]Entry, error) {
	f.mu.Lock()
	doc, err := f.load()
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(doc[title]))
	for ts, raw := range doc[title] {
		at, err := parseStamp(ts)
		if err != nil {
			return nil, fmt.Errorf("parse %s timestamp %q: %w", f.path, ts, err)
		}
		out = append(out, Entry{Title: title, Raw: raw, At: at})
	}
	Sort(out, descending)
	return out, nil
}

func (f *File) load() (document, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(f.path, []byte("{}"), 0o644); err != nil {
			return nil, fmt.Errorf("create %s: %w", f.path, err)
		}
		return document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	doc := document{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return doc, nil
}

func (f *File) save(doc document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
