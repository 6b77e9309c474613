package grid

import (
	"testing"

	"github.com/pgtui/gridq/drivers"
	"github.com/pgtui/gridq/meta"
	"github.com/pgtui/gridq/query"
	"github.com/pgtui/gridq/rows"
)

func ordersTable() *meta.Table {
	return &meta.Table{
		Info: meta.TableInfo{Schema: "public", Name: "orders"},
		Columns: []meta.Column{
			{Name: "status", Position: 1, DataType: "text", Format: "text", IsUpdatable: true},
			{Name: "id", Position: 2, DataType: "bigint", Format: "int8", IsPrimaryKey: true, IsUpdatable: true},
			{Name: "total", Position: 3, DataType: "numeric", Format: "numeric", IsUpdatable: true},
		},
		PrimaryKeys: []meta.PrimaryKey{{Schema: "public", Table: "orders", Column: "id"}},
	}
}

func record(idx int, id int64) rows.Record {
	return rows.Record{Idx: idx, Data: drivers.Row{"id": id}}
}

func initialized() State {
	return Apply(NewState(50), InitTable{Table: ordersTable()})
}

func TestInitTable(t *testing.T) {
	s := initialized()

	if !s.Initialized {
		t.Fatal("state not initialized")
	}
	if s.Loaded {
		t.Error("Loaded must stay false until the first row set arrives")
	}
	if s.Page != 1 || s.TotalRows != TotalRowsUnknown {
		t.Errorf("page=%d total=%d, want 1 and unknown", s.Page, s.TotalRows)
	}
	if s.Refresh != RefreshImmediate {
		t.Error("init should request an immediate fetch")
	}
	if len(s.Columns) != 3 || s.Columns[0].Key != "id" {
		t.Fatalf("primary key not pinned first: %+v", s.Columns)
	}
	if s.Columns[0].Kind != meta.KindNumber || s.Columns[1].Kind != meta.KindText {
		t.Errorf("columns not classified: %+v", s.Columns)
	}
	if s.Columns[0].Width != meta.DefaultWidth(meta.KindNumber) {
		t.Errorf("width = %d, want classifier default", s.Columns[0].Width)
	}
}

func TestPrimaryKeyColumnsNotEditable(t *testing.T) {
	s := initialized()

	for _, c := range s.Columns {
		switch c.Key {
		case "id":
			if c.Editable {
				t.Error("primary key column must not be editable")
			}
		default:
			if !c.Editable {
				t.Errorf("updatable column %s should be editable", c.Key)
			}
		}
	}
}

func TestInitTableRestoresViewState(t *testing.T) {
	restored := &ViewSnapshot{
		Columns: []ColumnLayout{
			{Key: "total", Width: 300},
			{Key: "id", Width: 90},
		},
		Sorts:   []query.Sort{{Column: "total", Ascending: false}},
		Filters: []query.Filter{{Columns: []string{"status"}, Operator: query.OpEqual, Value: "pending"}},
	}
	s := Apply(NewState(50), InitTable{Table: ordersTable(), Restored: restored})

	if s.Columns[0].Key != "total" || s.Columns[0].Width != 300 {
		t.Errorf("restored layout not applied: %+v", s.Columns)
	}
	if s.Columns[1].Key != "id" || s.Columns[1].Width != 90 {
		t.Errorf("restored layout not applied: %+v", s.Columns)
	}
	// status was not in the saved layout and keeps its derived spot.
	if s.Columns[2].Key != "status" {
		t.Errorf("unsaved column misplaced: %+v", s.Columns)
	}
	if len(s.Sorts) != 1 || s.Sorts[0].Column != "total" {
		t.Errorf("sorts not restored: %+v", s.Sorts)
	}
	if len(s.Filters) != 1 {
		t.Errorf("filters not restored: %+v", s.Filters)
	}
}

func TestSetRows(t *testing.T) {
	s := initialized()
	s = Apply(s, SelectRow{Idx: 0, Selected: true})

	s = Apply(s, SetRows{Page: rows.Page{Records: []rows.Record{record(0, 1), record(1, 2)}, Seq: 1}})
	if !s.Loaded {
		t.Error("first row set should set the loaded flag")
	}
	if s.Refresh != RefreshNone {
		t.Error("row arrival should clear the refresh request")
	}
	if len(s.Records) != 2 {
		t.Fatalf("got %d records", len(s.Records))
	}
	if len(s.Selected) != 0 {
		t.Error("wholesale row replacement should clear the selection")
	}
}

func TestStaleRowsDropped(t *testing.T) {
	s := initialized()
	s = Apply(s, SetRows{Page: rows.Page{Records: []rows.Record{record(0, 10)}, Seq: 2}})
	s = Apply(s, SetRows{Page: rows.Page{Records: []rows.Record{record(0, 99)}, Seq: 1}})

	if s.LoadedSeq != 2 {
		t.Errorf("loaded seq = %d, want 2", s.LoadedSeq)
	}
	if s.Records[0].Data["id"] != int64(10) {
		t.Error("stale page overwrote a newer one")
	}
}

func TestPagination(t *testing.T) {
	s := initialized()
	s.Refresh = RefreshNone

	s = Apply(s, SetPage{Page: 3})
	if s.Page != 3 || s.Refresh != RefreshImmediate {
		t.Errorf("page=%d refresh=%v, want 3 and immediate", s.Page, s.Refresh)
	}

	s = Apply(s, SetPage{Page: 0})
	if s.Page != 1 {
		t.Errorf("page = %d, want clamp to 1", s.Page)
	}

	s = Apply(s, SetPage{Page: 4})
	s = Apply(s, SetRowsPerPage{Rows: 25})
	if s.RowsPerPage != 25 || s.Page != 1 {
		t.Errorf("rowsPerPage=%d page=%d, want 25 and reset to 1", s.RowsPerPage, s.Page)
	}
}

func TestToggleSortCycle(t *testing.T) {
	s := initialized()
	s = Apply(s, SetTotalRows{Total: 10})

	s = Apply(s, ToggleSort{Column: "total"})
	if len(s.Sorts) != 1 || !s.Sorts[0].Ascending {
		t.Fatalf("first toggle should sort ascending: %+v", s.Sorts)
	}
	if s.TotalRows != TotalRowsUnknown {
		t.Error("sort change should invalidate the count")
	}
	if s.Refresh != RefreshDebounced {
		t.Error("sort change should request a debounced refresh")
	}

	s = Apply(s, ToggleSort{Column: "total"})
	if len(s.Sorts) != 1 || s.Sorts[0].Ascending {
		t.Fatalf("second toggle should sort descending: %+v", s.Sorts)
	}

	s = Apply(s, ToggleSort{Column: "total"})
	if len(s.Sorts) != 0 {
		t.Fatalf("third toggle should remove the sort: %+v", s.Sorts)
	}
}

func TestFilterChanges(t *testing.T) {
	s := initialized()
	s = Apply(s, SetTotalRows{Total: 10})
	s = Apply(s, SetPage{Page: 5})

	s = Apply(s, AddFilter{Filter: query.Filter{Columns: []string{"status"}, Operator: query.OpEqual, Value: "pending"}})
	if len(s.Filters) != 1 {
		t.Fatalf("filters = %+v", s.Filters)
	}
	if s.TotalRows != TotalRowsUnknown {
		t.Error("filter change should invalidate the count")
	}
	if s.Page != 1 {
		t.Error("filter change should return to page one")
	}
	if s.Refresh != RefreshDebounced {
		t.Error("filter change should request a debounced refresh")
	}

	s = Apply(s, RemoveFilter{Index: 0})
	if len(s.Filters) != 0 {
		t.Errorf("filters = %+v, want empty", s.Filters)
	}

	s = Apply(s, RemoveFilter{Index: 5})
	if s.Refresh != RefreshDebounced {
		t.Error("out-of-range removal should leave state usable")
	}
}

func TestSelection(t *testing.T) {
	s := initialized()
	s = Apply(s, SetRows{Page: rows.Page{Records: []rows.Record{record(0, 1), record(1, 2)}, Seq: 1}})

	s = Apply(s, SelectAll{})
	if !s.AllSelected {
		t.Fatal("all-rows flag not set")
	}

	// Selecting an explicit subset clears the all-rows flag.
	s = Apply(s, SelectRow{Idx: 1, Selected: true})
	if s.AllSelected {
		t.Error("explicit selection should clear the all-rows flag")
	}
	if got := s.SelectedRecords(); len(got) != 1 || got[0].Idx != 1 {
		t.Errorf("selected records = %+v", got)
	}

	s = Apply(s, ClearSelection{})
	if s.AllSelected || len(s.Selected) != 0 {
		t.Error("selection not cleared")
	}
}

func TestSelectionCount(t *testing.T) {
	s := initialized()
	s = Apply(s, SetRows{Page: rows.Page{Records: []rows.Record{record(0, 1), record(1, 2)}, Seq: 1}})
	s = Apply(s, SetTotalRows{Total: 400})

	s = Apply(s, SelectAll{})
	if got := s.SelectionCount(); got != 400 {
		t.Errorf("all-rows selection count = %d, want the full total", got)
	}

	s = Apply(s, SelectRow{Idx: 0, Selected: true})
	if got := s.SelectionCount(); got != 1 {
		t.Errorf("subset selection count = %d, want 1", got)
	}
}

func TestRowMutationReflection(t *testing.T) {
	s := initialized()
	s = Apply(s, SetRows{Page: rows.Page{Records: []rows.Record{record(0, 1), record(1, 2), record(2, 3)}, Seq: 1}})
	s = Apply(s, SetTotalRows{Total: 3})

	s = Apply(s, EditRow{Record: rows.Record{Idx: 1, Data: drivers.Row{"id": int64(2), "status": "shipped"}}})
	if s.Records[1].Data["status"] != "shipped" {
		t.Error("edited row not spliced back in place")
	}

	s = Apply(s, AddNewRow{Record: rows.Record{Idx: -1, Data: drivers.Row{"id": int64(4)}}})
	if len(s.Records) != 4 || s.TotalRows != 4 {
		t.Errorf("records=%d total=%d after add, want 4 and 4", len(s.Records), s.TotalRows)
	}
	if s.Records[3].Idx != 3 {
		t.Errorf("new row idx = %d, want next free handle 3", s.Records[3].Idx)
	}

	s = Apply(s, SelectRow{Idx: 0, Selected: true})
	s = Apply(s, RemoveRows{Idxs: []int{0, 2}})
	if len(s.Records) != 2 || s.TotalRows != 2 {
		t.Errorf("records=%d total=%d after remove, want 2 and 2", len(s.Records), s.TotalRows)
	}
	if len(s.Selected) != 0 {
		t.Error("removed rows should leave the selection")
	}

	s = Apply(s, RemoveAllRows{})
	if len(s.Records) != 0 || s.TotalRows != 0 {
		t.Errorf("records=%d total=%d after remove all, want 0 and 0", len(s.Records), s.TotalRows)
	}
}

func TestColumnLayoutActions(t *testing.T) {
	s := initialized()

	s = Apply(s, ResizeColumn{Key: "status", Width: 200})
	if col := columnByKey(t, s, "status"); col.Width != 200 {
		t.Errorf("width = %d, want 200", col.Width)
	}

	s = Apply(s, ResizeColumn{Key: "status", Width: 1})
	if col := columnByKey(t, s, "status"); col.Width != minColumnWidth {
		t.Errorf("width = %d, want clamp to %d", col.Width, minColumnWidth)
	}

	// id, status, total → move total to status's position.
	s = Apply(s, MoveColumn{Key: "total", TargetKey: "status"})
	if s.Columns[1].Key != "total" || s.Columns[2].Key != "status" {
		t.Errorf("move failed: %v", columnKeys(s))
	}

	s = Apply(s, FreezeColumn{Key: "status", Frozen: true})
	if s.Columns[0].Key != "status" || !s.Columns[0].Frozen {
		t.Errorf("frozen column not pinned left: %v", columnKeys(s))
	}

	// Frozen columns do not take part in reordering.
	before := columnKeys(s)
	s = Apply(s, MoveColumn{Key: "status", TargetKey: "total"})
	if got := columnKeys(s); !equalKeys(got, before) {
		t.Errorf("frozen move changed order: %v -> %v", before, got)
	}

	s = Apply(s, FreezeColumn{Key: "status", Frozen: false})
	if s.Columns[0].Frozen {
		t.Error("unfreeze failed")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := initialized()
	s = Apply(s, ResizeColumn{Key: "id", Width: 90})
	s = Apply(s, ToggleSort{Column: "total"})

	snap := s.Snapshot()
	restored := Apply(NewState(50), InitTable{Table: ordersTable(), Restored: &snap})

	if columnByKey(t, restored, "id").Width != 90 {
		t.Error("width lost through snapshot round trip")
	}
	if len(restored.Sorts) != 1 || restored.Sorts[0].Column != "total" {
		t.Errorf("sorts lost through snapshot round trip: %+v", restored.Sorts)
	}
}

func columnByKey(t *testing.T, s State, key string) Column {
	t.Helper()
	for _, c := range s.Columns {
		if c.Key == key {
			return c
		}
	}
	t.Fatalf("no column %q in %v", key, columnKeys(s))
	return Column{}
}

func columnKeys(s State) []string {
	keys := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		keys[i] = c.Key
	}
	return keys
}

func equalKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
