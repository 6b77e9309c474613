package grid

import (
	"github.com/pgtui/gridq/query"
	"github.com/pgtui/gridq/rows"
)

// Apply is the transition function. The action is offered to every group
// in a fixed order; each group returns a modified state or passes it
// through unchanged.
func Apply(s State, a Action) State {
	for _, group := range transitionGroups {
		s = group(s, a)
	}
	return s
}

var transitionGroups = []func(State, Action) State{
	applyTable,
	applyRows,
	applyPagination,
	applySort,
	applyFilter,
	applySelection,
	applyColumns,
}

func applyTable(s State, a Action) State {
	init, ok := a.(InitTable)
	if !ok {
		return s
	}
	next := NewState(s.RowsPerPage)
	next.Table = init.Table
	next.Columns = deriveColumns(init.Table, init.Restored)
	if init.Restored != nil {
		next.Sorts = init.Restored.Sorts
		next.Filters = init.Restored.Filters
	}
	next.Initialized = true
	next.Refresh = RefreshImmediate
	return next
}

func applyRows(s State, a Action) State {
	switch act := a.(type) {
	case SetRows:
		if act.Page.Seq < s.LoadedSeq {
			// A newer fetch already landed; this page is stale.
			return s
		}
		s.Records = act.Page.Records
		s.LoadedSeq = act.Page.Seq
		s.Loaded = true
		s.Refresh = RefreshNone
		s.Selected = map[int]bool{}
		s.AllSelected = false

	case SetTotalRows:
		s.TotalRows = act.Total

	case AddNewRow:
		rec := act.Record
		if rec.Idx < 0 {
			rec.Idx = nextIdx(s.Records)
		}
		s.Records = append(append([]rows.Record(nil), s.Records...), rec)
		if s.TotalRows != TotalRowsUnknown {
			s.TotalRows++
		}

	case EditRow:
		records := append([]rows.Record(nil), s.Records...)
		for i, r := range records {
			if r.Idx == act.Record.Idx {
				records[i] = act.Record
				break
			}
		}
		s.Records = records

	case RemoveRows:
		drop := make(map[int]bool, len(act.Idxs))
		for _, idx := range act.Idxs {
			drop[idx] = true
		}
		kept := make([]rows.Record, 0, len(s.Records))
		for _, r := range s.Records {
			if !drop[r.Idx] {
				kept = append(kept, r)
			}
		}
		removed := int64(len(s.Records) - len(kept))
		s.Records = kept
		if s.TotalRows != TotalRowsUnknown {
			s.TotalRows -= removed
			if s.TotalRows < 0 {
				s.TotalRows = 0
			}
		}
		selected := cloneSelection(s.Selected)
		for _, idx := range act.Idxs {
			delete(selected, idx)
		}
		s.Selected = selected

	case RemoveAllRows:
		s.Records = nil
		s.TotalRows = 0
		s.Selected = map[int]bool{}
		s.AllSelected = false
	}
	return s
}

func applyPagination(s State, a Action) State {
	switch act := a.(type) {
	case SetPage:
		page := act.Page
		if page < 1 {
			page = 1
		}
		s.Page = page
		s.Refresh = RefreshImmediate

	case SetRowsPerPage:
		if act.Rows >= 1 {
			s.RowsPerPage = act.Rows
		}
		s.Page = 1
		s.Refresh = RefreshImmediate
	}
	return s
}

func applySort(s State, a Action) State {
	switch act := a.(type) {
	case SetSorts:
		s.Sorts = act.Sorts
		return invalidateCount(s)

	case ToggleSort:
		sorts := append([]query.Sort(nil), s.Sorts...)
		for i, term := range sorts {
			if term.Column != act.Column {
				continue
			}
			if term.Ascending {
				sorts[i].Ascending = false
			} else {
				sorts = append(sorts[:i], sorts[i+1:]...)
			}
			s.Sorts = sorts
			return invalidateCount(s)
		}
		s.Sorts = append(sorts, query.Sort{Column: act.Column, Ascending: true})
		return invalidateCount(s)
	}
	return s
}

func applyFilter(s State, a Action) State {
	switch act := a.(type) {
	case SetFilters:
		s.Filters = act.Filters

	case AddFilter:
		s.Filters = append(append([]query.Filter(nil), s.Filters...), act.Filter)

	case RemoveFilter:
		if act.Index < 0 || act.Index >= len(s.Filters) {
			return s
		}
		filters := append([]query.Filter(nil), s.Filters...)
		s.Filters = append(filters[:act.Index], filters[act.Index+1:]...)

	case ClearFilters:
		if len(s.Filters) == 0 {
			return s
		}
		s.Filters = nil

	default:
		return s
	}
	// A changed predicate invalidates the count and the page position.
	s.Page = 1
	return invalidateCount(s)
}

func applySelection(s State, a Action) State {
	switch act := a.(type) {
	case SelectRow:
		selected := cloneSelection(s.Selected)
		if act.Selected {
			selected[act.Idx] = true
		} else {
			delete(selected, act.Idx)
		}
		s.Selected = selected
		// An explicit subset always replaces an all-rows selection.
		s.AllSelected = false

	case SelectAll:
		s.Selected = map[int]bool{}
		s.AllSelected = true

	case ClearSelection:
		s.Selected = map[int]bool{}
		s.AllSelected = false
	}
	return s
}

func applyColumns(s State, a Action) State {
	switch act := a.(type) {
	case ResizeColumn:
		width := act.Width
		if width < minColumnWidth {
			width = minColumnWidth
		}
		cols := append([]Column(nil), s.Columns...)
		for i := range cols {
			if cols[i].Key == act.Key {
				cols[i].Width = width
			}
		}
		s.Columns = cols

	case MoveColumn:
		src, dst := -1, -1
		for i, c := range s.Columns {
			if c.Key == act.Key {
				src = i
			}
			if c.Key == act.TargetKey {
				dst = i
			}
		}
		if src < 0 || dst < 0 || src == dst {
			return s
		}
		if s.Columns[src].Frozen || s.Columns[dst].Frozen {
			// Frozen columns are pinned and do not take part in reordering.
			return s
		}
		cols := append([]Column(nil), s.Columns...)
		moved := cols[src]
		cols = append(cols[:src], cols[src+1:]...)
		rest := append([]Column(nil), cols[dst:]...)
		cols = append(append(cols[:dst:dst], moved), rest...)
		s.Columns = cols

	case FreezeColumn:
		cols := append([]Column(nil), s.Columns...)
		for i := range cols {
			if cols[i].Key == act.Key {
				cols[i].Frozen = act.Frozen
			}
		}
		s.Columns = pinFrozen(cols)
	}
	return s
}

const minColumnWidth = 40

func invalidateCount(s State) State {
	s.TotalRows = TotalRowsUnknown
	s.Refresh = RefreshDebounced
	return s
}

func cloneSelection(m map[int]bool) map[int]bool {
	out := make(map[int]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func nextIdx(records []rows.Record) int {
	next := 0
	for _, r := range records {
		if r.Idx >= next {
			next = r.Idx + 1
		}
	}
	return next
}
