package gridview

import (
	"strings"
	"testing"

	"github.com/pgtui/gridq/drivers"
	"github.com/pgtui/gridq/grid"
	"github.com/pgtui/gridq/meta"
	"github.com/pgtui/gridq/rows"
)

func testState() grid.State {
	table := &meta.Table{
		Info: meta.TableInfo{Schema: "public", Name: "users"},
		Columns: []meta.Column{
			{Name: "id", Position: 1, DataType: "bigint", Format: "int8", IsPrimaryKey: true},
			{Name: "name", Position: 2, DataType: "text", Format: "text", IsUpdatable: true},
		},
		PrimaryKeys: []meta.PrimaryKey{{Schema: "public", Table: "users", Column: "id"}},
	}
	s := grid.Apply(grid.NewState(50), grid.InitTable{Table: table})
	return grid.Apply(s, grid.SetRows{Page: rows.Page{Records: []rows.Record{
		{Idx: 0, Data: drivers.Row{"id": int64(1), "name": "Ada"}},
		{Idx: 1, Data: drivers.Row{"id": int64(2), "name": "Grace"}},
	}, Seq: 1}})
}

func TestStatusBarCounts(t *testing.T) {
	m := New()
	m.SetSize(120, 20)
	m.SetState(testState())

	view := m.View()
	if !strings.Contains(view, "Row 1/2, Col 1/2") {
		t.Errorf("status bar missing cursor position:\n%s", view)
	}
}

func TestCursorCell(t *testing.T) {
	m := New()
	m.SetSize(120, 20)
	m.SetState(testState())

	if got := m.CursorCell(); got != "1" {
		t.Errorf("cursor cell = %q, want %q", got, "1")
	}
}

func TestSetStateClampsCursor(t *testing.T) {
	m := New()
	m.SetSize(120, 20)
	s := testState()
	m.SetState(s)

	// Shrink the row set underneath the cursor.
	m.cursorRow = 1
	m.SetState(grid.Apply(s, grid.SetRows{Page: rows.Page{
		Records: []rows.Record{{Idx: 0, Data: drivers.Row{"id": int64(1), "name": "Ada"}}},
		Seq:     2,
	}}))

	if row, _ := m.Cursor(); row != 0 {
		t.Errorf("cursor row = %d, want clamped to 0", row)
	}
}
