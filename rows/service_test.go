package rows

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pgtui/gridq/drivers"
	"github.com/pgtui/gridq/meta"
	"github.com/pgtui/gridq/query"
	"github.com/pgtui/gridq/queue"
)

type fakeExec struct {
	mu     sync.Mutex
	sqls   []string
	result []drivers.Row
	err    error
}

func (f *fakeExec) Execute(_ context.Context, sqlText string) ([]drivers.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sqls = append(f.sqls, sqlText)
	return f.result, f.err
}

func (f *fakeExec) executed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sqls...)
}

func usersTable(pks ...string) *meta.Table {
	t := &meta.Table{
		Info: meta.TableInfo{Schema: "public", Name: "users"},
		Columns: []meta.Column{
			{Name: "id", DataType: "bigint", Format: "int8"},
			{Name: "version", DataType: "bigint", Format: "int8"},
			{Name: "name", DataType: "text", Format: "text"},
			{Name: "status", DataType: "text", Format: "text"},
		},
	}
	for _, pk := range pks {
		t.PrimaryKeys = append(t.PrimaryKeys, meta.PrimaryKey{Schema: "public", Table: "users", Column: pk})
	}
	return t
}

func wait(t *testing.T, ch chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestCount(t *testing.T) {
	exec := &fakeExec{result: []drivers.Row{{"count": int64(42)}}}
	svc := NewService(usersTable("id"), exec, nil, nil)

	got, err := svc.Count(context.Background(), []query.Filter{
		{Columns: []string{"status"}, Operator: query.OpEqual, Value: "pending"},
	})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if got != 42 {
		t.Errorf("count = %d, want 42", got)
	}
	want := "select count(*) from public.users where status = 'pending';"
	if sqls := exec.executed(); len(sqls) != 1 || sqls[0] != want {
		t.Errorf("executed %v, want [%s]", sqls, want)
	}
}

func TestCountShapeFailure(t *testing.T) {
	tests := []struct {
		name   string
		result []drivers.Row
	}{
		{"zero rows", []drivers.Row{}},
		{"two rows", []drivers.Row{{"count": int64(1)}, {"count": int64(2)}}},
		{"no count column", []drivers.Row{{"total": int64(1)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(usersTable("id"), &fakeExec{result: tt.result}, nil, nil)
			if _, err := svc.Count(context.Background(), nil); err == nil {
				t.Error("want shape-failure error, got nil")
			}
		})
	}
}

func TestFetchPage(t *testing.T) {
	exec := &fakeExec{result: []drivers.Row{
		{"id": int64(51), "name": "a"},
		{"id": int64(52), "name": "b"},
	}}
	svc := NewService(usersTable("id"), exec, nil, nil)

	page := svc.FetchPage(context.Background(), 2, 50,
		[]query.Filter{{Columns: []string{"status"}, Operator: query.OpEqual, Value: "pending"}},
		[]query.Sort{{Column: "created_at", Ascending: false}},
	)

	want := "select * from public.users where status = 'pending' order by created_at desc nulls last limit 50 offset 50;"
	if sqls := exec.executed(); sqls[0] != want {
		t.Errorf("sql = %q, want %q", sqls[0], want)
	}
	if len(page.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(page.Records))
	}
	for i, r := range page.Records {
		if r.Idx != i {
			t.Errorf("record %d has idx %d", i, r.Idx)
		}
	}
	if page.Seq != 1 {
		t.Errorf("first fetch seq = %d, want 1", page.Seq)
	}
	if next := svc.FetchPage(context.Background(), 3, 50, nil, nil); next.Seq != 2 {
		t.Errorf("second fetch seq = %d, want 2", next.Seq)
	}
}

func TestFetchPageClampsPage(t *testing.T) {
	for _, page := range []int{0, -3} {
		exec := &fakeExec{}
		svc := NewService(usersTable("id"), exec, nil, nil)
		svc.FetchPage(context.Background(), page, 50, nil, nil)
		want := "select * from public.users limit 50 offset 0;"
		if sqls := exec.executed(); sqls[0] != want {
			t.Errorf("page %d: sql = %q, want %q", page, sqls[0], want)
		}
	}
}

func TestFetchPageErrorIsNonFatal(t *testing.T) {
	boom := errors.New("permission denied")
	var reported error
	svc := NewService(usersTable("id"), &fakeExec{err: boom}, nil, func(err error) { reported = err })

	page := svc.FetchPage(context.Background(), 1, 50, nil, nil)
	if len(page.Records) != 0 {
		t.Errorf("got %d records, want 0", len(page.Records))
	}
	if page.Seq != 1 {
		t.Errorf("seq = %d, want 1 even on failure", page.Seq)
	}
	if !errors.Is(reported, boom) {
		t.Errorf("reported error = %v, want boom", reported)
	}
}

func TestNumericFilterCoercion(t *testing.T) {
	exec := &fakeExec{}
	svc := NewService(usersTable("id"), exec, nil, nil)

	svc.FetchPage(context.Background(), 1, 10, []query.Filter{
		{Columns: []string{"id"}, Operator: query.OpEqual, Value: "5"},
		{Columns: []string{"name"}, Operator: query.OpEqual, Value: "5"},
	}, nil)

	want := "select * from public.users where id = 5 and name = '5' limit 10 offset 0;"
	if sqls := exec.executed(); sqls[0] != want {
		t.Errorf("sql = %q, want %q", sqls[0], want)
	}
}

func TestInertFiltersAreDropped(t *testing.T) {
	exec := &fakeExec{result: []drivers.Row{{"count": int64(0)}}}
	svc := NewService(usersTable("id"), exec, nil, nil)

	_, err := svc.Count(context.Background(), []query.Filter{
		{Columns: []string{"name"}, Operator: query.OpEqual, Value: ""},
		{Columns: []string{"status"}, Operator: query.OpEqual, Value: nil},
		{Columns: []string{"name"}, Operator: query.OpIs, Value: nil},
	})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	want := "select count(*) from public.users where name is null;"
	if sqls := exec.executed(); sqls[0] != want {
		t.Errorf("sql = %q, want %q", sqls[0], want)
	}
}

func TestFetchAll(t *testing.T) {
	exec := &fakeExec{result: []drivers.Row{
		{"id": int64(1), "name": "a"},
		{"id": int64(2), "name": "b"},
	}}
	svc := NewService(usersTable("id"), exec, nil, nil)

	records, err := svc.FetchAll(context.Background(),
		[]query.Filter{{Columns: []string{"status"}, Operator: query.OpEqual, Value: "pending"}},
		[]query.Sort{{Column: "id", Ascending: true}},
		0,
	)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	for i, r := range records {
		if r.Idx != i {
			t.Errorf("record %d has idx %d", i, r.Idx)
		}
	}

	// The whole result set, not a page.
	want := "select * from public.users where status = 'pending' order by id asc nulls last;"
	if sqls := exec.executed(); len(sqls) != 1 || sqls[0] != want {
		t.Errorf("executed %v, want [%s]", sqls, want)
	}
}

func TestFetchAllRefusesOversizedResult(t *testing.T) {
	exec := &fakeExec{result: []drivers.Row{{"count": int64(50)}}}
	svc := NewService(usersTable("id"), exec, nil, nil)

	_, err := svc.FetchAll(context.Background(), nil, nil, 10)
	if !errors.Is(err, ErrTooManyRows) {
		t.Fatalf("err = %v, want ErrTooManyRows", err)
	}
	// Only the count ran; no rows were fetched.
	sqls := exec.executed()
	if len(sqls) != 1 || !strings.HasPrefix(sqls[0], "select count(*)") {
		t.Errorf("executed %v, want the count query only", sqls)
	}
}

func TestUpdateSingleColumn(t *testing.T) {
	exec := &fakeExec{result: []drivers.Row{{"id": int64(5), "name": "John"}}}
	q := queue.New()
	defer q.Close()
	svc := NewService(usersTable("id"), exec, q, nil)

	updated := make(chan Record, 1)
	err := svc.Update(
		Record{Idx: 3, Data: drivers.Row{"id": 5, "name": "John", "status": "active"}},
		"name",
		func(r Record) { updated <- r },
	)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	select {
	case r := <-updated:
		if r.Idx != 3 {
			t.Errorf("returned idx = %d, want original 3", r.Idx)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("onRowUpdate never fired")
	}

	want := `update public.users set (name) = (select name from json_populate_record(null::public.users, '{"name":"John"}')) where id = 5 returning *;`
	if sqls := exec.executed(); len(sqls) != 1 || sqls[0] != want {
		t.Errorf("executed %v, want [%s]", sqls, want)
	}
}

func TestUpdateFullRowExcludesPrimaryKey(t *testing.T) {
	exec := &fakeExec{result: []drivers.Row{{"id": int64(5)}}}
	q := queue.New()
	defer q.Close()
	svc := NewService(usersTable("id"), exec, q, nil)

	updated := make(chan Record, 1)
	err := svc.Update(
		Record{Idx: 0, Data: drivers.Row{"id": 5, "name": "John", "status": "active"}},
		"",
		func(r Record) { updated <- r },
	)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	select {
	case <-updated:
	case <-time.After(2 * time.Second):
		t.Fatal("onRowUpdate never fired")
	}

	want := `update public.users set (name,status) = (select name,status from json_populate_record(null::public.users, '{"name":"John","status":"active"}')) where id = 5 returning *;`
	if sqls := exec.executed(); sqls[0] != want {
		t.Errorf("sql = %q, want %q", sqls[0], want)
	}
}

func TestUpdateRefusesPrimaryKeyEdit(t *testing.T) {
	exec := &fakeExec{}
	svc := NewService(usersTable("id"), exec, nil, nil)

	// The record already carries the edited key value, so a snapshot
	// taken here would match the new key instead of the stored row.
	err := svc.Update(Record{Idx: 0, Data: drivers.Row{"id": 6, "name": "John"}}, "id", nil)
	if !errors.Is(err, ErrPrimaryKeyEdit) {
		t.Errorf("err = %v, want ErrPrimaryKeyEdit", err)
	}
	if len(exec.executed()) != 0 {
		t.Error("no SQL should be issued for a primary-key edit")
	}
}

func TestUpdateWithoutPrimaryKey(t *testing.T) {
	exec := &fakeExec{}
	svc := NewService(usersTable(), exec, nil, nil)

	err := svc.Update(Record{Data: drivers.Row{"name": "x"}}, "name", nil)
	if !errors.Is(err, ErrNoPrimaryKey) {
		t.Errorf("err = %v, want ErrNoPrimaryKey", err)
	}
	if len(exec.executed()) != 0 {
		t.Error("no SQL should be issued without a primary key")
	}
}

func TestDeleteSinglePrimaryKey(t *testing.T) {
	exec := &fakeExec{}
	q := queue.New()
	defer q.Close()
	svc := NewService(usersTable("id"), exec, q, nil)

	deleted := make(chan struct{})
	err := svc.Delete([]Record{
		{Idx: 0, Data: drivers.Row{"id": 1}},
		{Idx: 1, Data: drivers.Row{"id": 2}},
	}, func() { close(deleted) })
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	wait(t, deleted, "delete completion")

	want := "delete from public.users where id in (1,2);"
	if sqls := exec.executed(); sqls[0] != want {
		t.Errorf("sql = %q, want %q", sqls[0], want)
	}
}

func TestDeleteCompositePrimaryKey(t *testing.T) {
	exec := &fakeExec{}
	q := queue.New()
	defer q.Close()
	svc := NewService(usersTable("id", "version"), exec, q, nil)

	deleted := make(chan struct{})
	err := svc.Delete([]Record{
		{Idx: 0, Data: drivers.Row{"id": 1, "version": 2}},
		{Idx: 1, Data: drivers.Row{"id": 3, "version": 4}},
	}, func() { close(deleted) })
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	wait(t, deleted, "delete completion")

	want := "delete from public.users where (id, version) in ((1, 2), (3, 4));"
	if sqls := exec.executed(); sqls[0] != want {
		t.Errorf("sql = %q, want %q", sqls[0], want)
	}
}

func TestDeleteWithoutPrimaryKey(t *testing.T) {
	exec := &fakeExec{}
	svc := NewService(usersTable(), exec, nil, nil)

	err := svc.Delete([]Record{{Data: drivers.Row{"name": "x"}}}, nil)
	if !errors.Is(err, ErrNoPrimaryKey) {
		t.Errorf("err = %v, want ErrNoPrimaryKey", err)
	}
	if len(exec.executed()) != 0 {
		t.Error("no SQL should be issued without a primary key")
	}
}

func TestDeleteAll(t *testing.T) {
	t.Run("filtered delete", func(t *testing.T) {
		exec := &fakeExec{}
		q := queue.New()
		defer q.Close()
		svc := NewService(usersTable("id"), exec, q, nil)

		done := make(chan struct{})
		err := svc.DeleteAll([]query.Filter{
			{Columns: []string{"status"}, Operator: query.OpEqual, Value: "stale"},
		}, func() { close(done) })
		if err != nil {
			t.Fatalf("DeleteAll: %v", err)
		}
		wait(t, done, "delete-all completion")

		want := "delete from public.users where status = 'stale';"
		if sqls := exec.executed(); sqls[0] != want {
			t.Errorf("sql = %q, want %q", sqls[0], want)
		}
	})

	t.Run("truncate when unfiltered", func(t *testing.T) {
		exec := &fakeExec{}
		q := queue.New()
		defer q.Close()
		svc := NewService(usersTable("id"), exec, q, nil)

		done := make(chan struct{})
		// An inert filter does not count as active.
		err := svc.DeleteAll([]query.Filter{
			{Columns: []string{"status"}, Operator: query.OpEqual, Value: ""},
		}, func() { close(done) })
		if err != nil {
			t.Fatalf("DeleteAll: %v", err)
		}
		wait(t, done, "truncate completion")

		want := "truncate public.users;"
		if sqls := exec.executed(); sqls[0] != want {
			t.Errorf("sql = %q, want %q", sqls[0], want)
		}
	})
}

func TestWriteOrderPreserved(t *testing.T) {
	exec := &fakeExec{result: []drivers.Row{{"id": int64(1)}}}
	q := queue.New()
	defer q.Close()
	svc := NewService(usersTable("id"), exec, q, nil)

	done := make(chan struct{})
	if err := svc.Update(Record{Idx: 0, Data: drivers.Row{"id": 1, "name": "a"}}, "name", nil); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete([]Record{{Idx: 0, Data: drivers.Row{"id": 1}}}, func() { close(done) }); err != nil {
		t.Fatal(err)
	}
	wait(t, done, "second write")

	sqls := exec.executed()
	if len(sqls) != 2 {
		t.Fatalf("got %d statements, want 2", len(sqls))
	}
	if !strings.HasPrefix(sqls[0], "update") || !strings.HasPrefix(sqls[1], "delete") {
		t.Errorf("writes ran out of order: %v", sqls)
	}
}

func TestInsert(t *testing.T) {
	exec := &fakeExec{result: []drivers.Row{{"id": int64(9), "name": "New"}}}
	q := queue.New()
	defer q.Close()
	svc := NewService(usersTable("id"), exec, q, nil)

	inserted := make(chan []drivers.Row, 1)
	err := svc.Insert([]map[string]any{{"name": "New"}}, func(rows []drivers.Row) { inserted <- rows })
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	select {
	case rows := <-inserted:
		if len(rows) != 1 {
			t.Errorf("got %d returned rows, want 1", len(rows))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("onInserted never fired")
	}

	want := `insert into public.users (name) select name from jsonb_populate_recordset(null::public.users, '[{"name":"New"}]') returning *;`
	if sqls := exec.executed(); sqls[0] != want {
		t.Errorf("sql = %q, want %q", sqls[0], want)
	}
}
