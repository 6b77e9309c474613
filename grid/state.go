// Package grid holds the grid engine's state store: one State value and a
// transition function composed from independent groups. The hosting UI
// dispatches actions and renders whatever State it gets back; it never
// reaches into the services directly for state.
package grid

import (
	"github.com/pgtui/gridq/meta"
	"github.com/pgtui/gridq/query"
	"github.com/pgtui/gridq/rows"
)

// TotalRowsUnknown marks the row count as invalidated and needing a
// recount. Distinct from zero, which is a real count.
const TotalRowsUnknown int64 = -1

// RefreshMode tells the host whether and how urgently to refetch after a
// dispatch. Page changes refresh immediately; sort and filter changes are
// debounced so rapid adjustments coalesce into one fetch.
type RefreshMode int

const (
	RefreshNone RefreshMode = iota
	RefreshDebounced
	RefreshImmediate
)

// Column is the derived per-column grid configuration: classification,
// width, and layout flags. Key is the column name and is the identity
// used by resize/reorder/freeze, so layout operations stay correct while
// positions shift.
type Column struct {
	Key      string
	Kind     meta.Kind
	Width    int
	Frozen   bool
	Editable bool
	Enums    []string
}

// ColumnLayout is the persisted slice of a Column: what the view-state
// cache stores and restores.
type ColumnLayout struct {
	Key    string `json:"key"`
	Width  int    `json:"width"`
	Frozen bool   `json:"frozen,omitempty"`
}

// ViewSnapshot is the persistable part of a State.
type ViewSnapshot struct {
	Columns []ColumnLayout `json:"columnLayout"`
	Sorts   []query.Sort   `json:"sorts,omitempty"`
	Filters []query.Filter `json:"filters,omitempty"`
}

// State is the whole grid state. Values are copied through Apply; the
// slices and maps inside are replaced, not mutated in place, whenever a
// transition changes them.
type State struct {
	Table   *meta.Table
	Columns []Column

	Records   []rows.Record
	TotalRows int64

	Page        int
	RowsPerPage int

	Sorts   []query.Sort
	Filters []query.Filter

	Selected    map[int]bool
	AllSelected bool

	// Initialized is set by table init; Loaded is set by the first row
	// set to arrive. View-state writes are gated on Loaded so a saved
	// layout is never clobbered by the empty initial state.
	Initialized bool
	Loaded      bool

	// LoadedSeq is the fetch sequence number of the newest applied row
	// set; older arrivals are dropped.
	LoadedSeq int64

	Refresh RefreshMode
}

// NewState returns the uninitialized state with the given page size.
func NewState(rowsPerPage int) State {
	if rowsPerPage < 1 {
		rowsPerPage = 100
	}
	return State{
		Page:        1,
		RowsPerPage: rowsPerPage,
		TotalRows:   TotalRowsUnknown,
		Selected:    map[int]bool{},
	}
}

// Snapshot extracts the persistable view state.
func (s State) Snapshot() ViewSnapshot {
	layout := make([]ColumnLayout, len(s.Columns))
	for i, c := range s.Columns {
		layout[i] = ColumnLayout{Key: c.Key, Width: c.Width, Frozen: c.Frozen}
	}
	return ViewSnapshot{Columns: layout, Sorts: s.Sorts, Filters: s.Filters}
}

// SelectedRecords returns the explicitly selected records in row order.
// When the all-rows flag is set the loaded page is not authoritative and
// callers must re-query instead.
func (s State) SelectedRecords() []rows.Record {
	var out []rows.Record
	for _, r := range s.Records {
		if s.Selected[r.Idx] {
			out = append(out, r)
		}
	}
	return out
}

// SelectionCount reports how many rows the selection covers, using the
// known total when every row is selected.
func (s State) SelectionCount() int64 {
	if s.AllSelected {
		if s.TotalRows == TotalRowsUnknown {
			return int64(len(s.Records))
		}
		return s.TotalRows
	}
	return int64(len(s.SelectedRecords()))
}

// deriveColumns builds the grid column configuration from the table
// descriptor: kinds classified once, primary keys pinned first, widths
// from classification, then any restored layout applied on top.
func deriveColumns(table *meta.Table, restored *ViewSnapshot) []Column {
	cols := make([]Column, 0, len(table.Columns))
	// Primary keys first, the rest in position order.
	for _, mc := range table.Columns {
		if mc.IsPrimaryKey {
			cols = append(cols, newColumn(table, mc))
		}
	}
	for _, mc := range table.Columns {
		if !mc.IsPrimaryKey {
			cols = append(cols, newColumn(table, mc))
		}
	}
	if restored == nil || len(restored.Columns) == 0 {
		return cols
	}

	byKey := make(map[string]Column, len(cols))
	for _, c := range cols {
		byKey[c.Key] = c
	}
	ordered := make([]Column, 0, len(cols))
	for _, saved := range restored.Columns {
		c, ok := byKey[saved.Key]
		if !ok {
			// Saved layout mentions a column that no longer exists.
			continue
		}
		if saved.Width > 0 {
			c.Width = saved.Width
		}
		c.Frozen = saved.Frozen
		ordered = append(ordered, c)
		delete(byKey, saved.Key)
	}
	// Columns added since the layout was saved keep their derived spot.
	for _, c := range cols {
		if _, pending := byKey[c.Key]; pending {
			ordered = append(ordered, c)
		}
	}
	return pinFrozen(ordered)
}

func newColumn(table *meta.Table, mc meta.Column) Column {
	kind := meta.Classify(mc, table.RelationshipFor(mc.Name))
	// Primary keys stay read-only in the grid: the key is the row's
	// mutation target, so editing it in place cannot be expressed as an
	// update against that same row.
	return Column{
		Key:      mc.Name,
		Kind:     kind,
		Width:    meta.DefaultWidth(kind),
		Editable: mc.IsUpdatable && !table.ReadOnly && !mc.IsPrimaryKey,
		Enums:    mc.Enums,
	}
}

// pinFrozen keeps frozen columns at the left, preserving relative order
// within each group.
func pinFrozen(cols []Column) []Column {
	out := make([]Column, 0, len(cols))
	for _, c := range cols {
		if c.Frozen {
			out = append(out, c)
		}
	}
	for _, c := range cols {
		if !c.Frozen {
			out = append(out, c)
		}
	}
	return out
}
