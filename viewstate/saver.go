package viewstate

import (
	"sync"
	"time"

	"github.com/pgtui/gridq/grid"
	"github.com/pgtui/gridq/logger"
)

// Saver debounces view-state writes: rapid layout changes coalesce into
// one write after a quiet period. Saves are dropped until Enable is
// called, which happens after the initial table load, so the empty
// starting state never clobbers a previously saved one.
type Saver struct {
	cache *Cache
	delay time.Duration

	mu      sync.Mutex
	enabled bool
	timer   *time.Timer
	pending *pendingSave
}

type pendingSave struct {
	ref    string
	schema string
	table  string
	snap   grid.ViewSnapshot
}

// NewSaver wraps a cache with a debounce delay.
func NewSaver(cache *Cache, delay time.Duration) *Saver {
	return &Saver{cache: cache, delay: delay}
}

// Enable starts accepting saves. Call once the initial load completed.
func (s *Saver) Enable() {
	s.mu.Lock()
	s.enabled = true
	s.mu.Unlock()
}

// Schedule records the latest snapshot and (re)starts the debounce timer.
func (s *Saver) Schedule(ref, schema, table string, snap grid.ViewSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	s.pending = &pendingSave{ref: ref, schema: schema, table: table, snap: snap}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.flush)
}

// Flush writes any pending snapshot immediately. Used on shutdown.
func (s *Saver) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.flush()
}

func (s *Saver) flush() {
	s.mu.Lock()
	p := s.pending
	s.pending = nil
	s.mu.Unlock()
	if p == nil {
		return
	}
	if err := s.cache.Save(p.ref, p.schema, p.table, p.snap); err != nil {
		logger.Error("view state save failed", map[string]any{
			"table": p.table, "error": err.Error(),
		})
	}
}
