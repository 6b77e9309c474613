package grid

import (
	"github.com/pgtui/gridq/meta"
	"github.com/pgtui/gridq/query"
	"github.com/pgtui/gridq/rows"
)

// Action is a dispatched grid transition. Every action is offered to each
// transition group in a fixed order by Apply.
type Action interface{ isAction() }

// InitTable replaces the table descriptor, derives the column
// configuration, applies any restored view state, and resets pagination,
// selection, and rows. It is the only action allowed to replace the
// descriptor.
type InitTable struct {
	Table    *meta.Table
	Restored *ViewSnapshot
}

// SetRows replaces the row set wholesale after a page fetch. Stale pages
// (Seq older than the newest applied) are dropped.
type SetRows struct {
	Page rows.Page
}

// SetTotalRows records a fresh count result.
type SetTotalRows struct {
	Total int64
}

// SetPage requests a different 1-based page. Refreshes immediately.
type SetPage struct {
	Page int
}

// SetRowsPerPage changes the page size and returns to page one.
// Refreshes immediately.
type SetRowsPerPage struct {
	Rows int
}

// SetSorts replaces the sort list.
type SetSorts struct {
	Sorts []query.Sort
}

// ToggleSort cycles one column through ascending, descending, unsorted.
type ToggleSort struct {
	Column string
}

// SetFilters replaces the filter list.
type SetFilters struct {
	Filters []query.Filter
}

// AddFilter appends one filter.
type AddFilter struct {
	Filter query.Filter
}

// RemoveFilter removes the filter at the given list position.
type RemoveFilter struct {
	Index int
}

// ClearFilters removes all filters.
type ClearFilters struct{}

// AddNewRow appends a server-returned inserted row without a refetch.
type AddNewRow struct {
	Record rows.Record
}

// EditRow splices a server-returned updated row back into place by its
// positional handle.
type EditRow struct {
	Record rows.Record
}

// RemoveRows drops rows by positional handle without a refetch.
type RemoveRows struct {
	Idxs []int
}

// RemoveAllRows empties the row set, reflecting a bulk delete.
type RemoveAllRows struct{}

// SelectRow sets or clears one row's selection. Any explicit subset
// selection clears the all-rows flag.
type SelectRow struct {
	Idx      int
	Selected bool
}

// SelectAll marks every row matching the current filters as selected,
// beyond just the loaded page.
type SelectAll struct{}

// ClearSelection clears both the selection set and the all-rows flag.
type ClearSelection struct{}

// ResizeColumn sets one column's width by key.
type ResizeColumn struct {
	Key   string
	Width int
}

// MoveColumn reorders by key: the column moves to the position currently
// held by the target column. Frozen columns do not participate.
type MoveColumn struct {
	Key       string
	TargetKey string
}

// FreezeColumn pins or unpins a column at the left edge.
type FreezeColumn struct {
	Key    string
	Frozen bool
}

func (InitTable) isAction()      {}
func (SetRows) isAction()        {}
func (SetTotalRows) isAction()   {}
func (SetPage) isAction()        {}
func (SetRowsPerPage) isAction() {}
func (SetSorts) isAction()       {}
func (ToggleSort) isAction()     {}
func (SetFilters) isAction()     {}
func (AddFilter) isAction()      {}
func (RemoveFilter) isAction()   {}
func (ClearFilters) isAction()   {}
func (AddNewRow) isAction()      {}
func (EditRow) isAction()        {}
func (RemoveRows) isAction()     {}
func (RemoveAllRows) isAction()  {}
func (SelectRow) isAction()      {}
func (SelectAll) isAction()      {}
func (ClearSelection) isAction() {}
func (ResizeColumn) isAction()   {}
func (MoveColumn) isAction()     {}
func (FreezeColumn) isAction()   {}
