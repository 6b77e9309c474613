package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/pgtui/gridq/drivers"
	"github.com/pgtui/gridq/storage"
	"github.com/pgtui/gridq/ui/sqlpreview"
)

type stubExec struct {
	result []drivers.Row
	err    error
	last   string
}

func (s *stubExec) Execute(_ context.Context, sqlText string) ([]drivers.Row, error) {
	s.last = sqlText
	return s.result, s.err
}

func TestRecordingExecutor(t *testing.T) {
	if err := storage.InitAt(filepath.Join(t.TempDir(), "storage.db")); err != nil {
		t.Fatalf("init storage: %v", err)
	}
	defer storage.Close()

	res, err := storage.DB.Exec(
		"INSERT INTO connections (name, driver, url) VALUES (?, ?, ?)",
		"test", "postgres", "postgres://localhost/test",
	)
	if err != nil {
		t.Fatalf("seed connection: %v", err)
	}
	connID, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("connection id: %v", err)
	}

	inner := &stubExec{result: []drivers.Row{{"id": int64(1)}, {"id": int64(2)}}}
	preview := sqlpreview.New()
	exec := newRecordingExecutor(inner, preview, connID)

	result, err := exec.Execute(context.Background(), "select * from public.users;")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("got %d rows, want 2", len(result))
	}
	if inner.last != "select * from public.users;" {
		t.Errorf("inner saw %q", inner.last)
	}
	if got := preview.Latest(); got != "select * from public.users;" {
		t.Errorf("preview latest = %q", got)
	}

	log, err := storage.RecentStatements(connID, 10)
	if err != nil {
		t.Fatalf("recent statements: %v", err)
	}
	if len(log) != 1 {
		t.Fatalf("got %d log entries, want 1", len(log))
	}
	if log[0].SQL != "select * from public.users;" || log[0].Rows != 2 || log[0].Error != "" {
		t.Errorf("unexpected log entry: %+v", log[0])
	}
}

func TestRecordingExecutorKeepsError(t *testing.T) {
	if err := storage.InitAt(filepath.Join(t.TempDir(), "storage.db")); err != nil {
		t.Fatalf("init storage: %v", err)
	}
	defer storage.Close()

	wantErr := errors.New("relation does not exist")
	inner := &stubExec{err: wantErr}
	exec := newRecordingExecutor(inner, sqlpreview.New(), 0)

	_, err := exec.Execute(context.Background(), "select * from public.missing;")
	if !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want the backend error", err)
	}
}
