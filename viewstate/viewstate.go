// Package viewstate persists per-table grid layout (column widths and
// order, sorts, filters) to local JSON files so a table reopens the way
// the user left it. The cache is advisory: a missing or unreadable file
// just means defaults.
package viewstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pgtui/gridq/grid"
	"github.com/pgtui/gridq/logger"
)

const namespace = "grid-view-state"

// Cache reads and writes one JSON file per connection reference. Inside a
// file, tables are keyed "schema.table", with the schema omitted for
// public so existing keys stay valid.
type Cache struct {
	dir string
}

// New returns a cache rooted at dir, creating it if needed.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("viewstate: create cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Load returns the saved snapshot for a table, or nil when none exists.
func (c *Cache) Load(ref, schema, table string) (*grid.ViewSnapshot, error) {
	states, err := c.read(ref)
	if err != nil {
		return nil, err
	}
	snap, ok := states[tableKey(schema, table)]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

// Save writes the snapshot for a table, preserving the other tables
// already stored under the same connection reference.
func (c *Cache) Save(ref, schema, table string, snap grid.ViewSnapshot) error {
	states, err := c.read(ref)
	if err != nil {
		return err
	}
	if states == nil {
		states = map[string]grid.ViewSnapshot{}
	}
	states[tableKey(schema, table)] = snap

	data, err := json.MarshalIndent(states, "", "  ")
	if err != nil {
		return fmt.Errorf("viewstate: encode: %w", err)
	}
	if err := os.WriteFile(c.path(ref), data, 0o644); err != nil {
		return fmt.Errorf("viewstate: write: %w", err)
	}
	return nil
}

func (c *Cache) read(ref string) (map[string]grid.ViewSnapshot, error) {
	data, err := os.ReadFile(c.path(ref))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("viewstate: read: %w", err)
	}
	var states map[string]grid.ViewSnapshot
	if err := json.Unmarshal(data, &states); err != nil {
		// A corrupt cache file is not worth failing a table open over.
		logger.Error("view state cache unreadable, starting fresh", map[string]any{
			"file": c.path(ref), "error": err.Error(),
		})
		return nil, nil
	}
	return states, nil
}

func (c *Cache) path(ref string) string {
	return filepath.Join(c.dir, namespace+"-"+safeRef(ref)+".json")
}

func tableKey(schema, table string) string {
	if schema == "" || schema == "public" {
		return table
	}
	return schema + "." + table
}

// safeRef keeps connection references usable as file names.
func safeRef(ref string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, ref)
}
