// Package rows is the backend-facing row data service: it turns grid
// intents (count, fetch a page, edit a cell, delete rows) into SQL built
// by the query package and executes it through the injected executor.
// Reads run directly; writes go through the mutation queue.
package rows

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/pgtui/gridq/drivers"
	"github.com/pgtui/gridq/logger"
	"github.com/pgtui/gridq/meta"
	"github.com/pgtui/gridq/query"
	"github.com/pgtui/gridq/queue"
)

// ErrNoPrimaryKey is returned when update or delete is attempted on a
// table without a primary key. No SQL is built or sent in that case.
var ErrNoPrimaryKey = errors.New("rows: table has no primary key")

// ErrPrimaryKeyEdit is returned when an update targets a primary-key
// column. A key edit would poison the row match: the match values come
// from the record being updated, so the statement would target the new
// key and silently update nothing.
var ErrPrimaryKeyEdit = errors.New("rows: primary key columns cannot be edited")

// ErrTooManyRows is returned when a full-result fetch would exceed the
// caller's row limit. The fetch is refused before any rows move.
var ErrTooManyRows = errors.New("rows: too many rows")

// Record is one fetched row plus its positional handle. Idx is stable
// only within one fetched page; it is a selection/editing handle, never a
// durable identity. Row identity at mutation time always comes from the
// primary-key values in Data.
type Record struct {
	Idx  int
	Data drivers.Row
}

// Page is one fetched window of rows. Seq is the monotonic fetch sequence
// number; the store drops pages older than the newest one it has applied.
type Page struct {
	Records []Record
	Seq     int64
}

// Service reads and mutates one table's rows.
type Service struct {
	table   *meta.Table
	exec    drivers.Executor
	queue   *queue.Queue
	onError func(error)

	kinds map[string]meta.Kind
	seq   atomic.Int64
}

// NewService builds a service for one table. Column kinds are classified
// once here and drive numeric filter-value coercion.
func NewService(table *meta.Table, exec drivers.Executor, q *queue.Queue, onError func(error)) *Service {
	if onError == nil {
		onError = func(error) {}
	}
	kinds := make(map[string]meta.Kind, len(table.Columns))
	for _, col := range table.Columns {
		kinds[col.Name] = meta.Classify(col, table.RelationshipFor(col.Name))
	}
	return &Service{table: table, exec: exec, queue: q, onError: onError, kinds: kinds}
}

// Count returns the number of rows matching the given filters.
func (s *Service) Count(ctx context.Context, filters []query.Filter) (int64, error) {
	sql, err := query.From(s.table.Info.Name, s.table.Info.Schema).
		Count().
		Filters(s.screenFilters(filters)).
		ToSQL()
	if err != nil {
		return 0, err
	}
	result, err := s.exec.Execute(ctx, sql)
	if err != nil {
		return 0, fmt.Errorf("rows: fetch rows count failed: %w", err)
	}
	if len(result) != 1 {
		return 0, fmt.Errorf("rows: fetch rows count failed: got %d rows", len(result))
	}
	count, ok := result[0]["count"]
	if !ok {
		return 0, fmt.Errorf("rows: fetch rows count failed: no count column")
	}
	return toInt64(count), nil
}

// FetchPage fetches one 1-based page of rows. Pages at or below zero are
// treated as page one. Read failures are non-fatal: the error goes to the
// error handler and an empty page comes back, carrying the fetch sequence
// number either way.
func (s *Service) FetchPage(ctx context.Context, page, rowsPerPage int, filters []query.Filter, sorts []query.Sort) Page {
	if page < 1 {
		page = 1
	}
	seq := s.seq.Add(1)
	from := (page - 1) * rowsPerPage
	to := page*rowsPerPage - 1

	sql, err := query.From(s.table.Info.Name, s.table.Info.Schema).
		Select("*").
		Filters(s.screenFilters(filters)).
		Sorts(sorts).
		Range(from, to).
		ToSQL()
	if err != nil {
		s.onError(err)
		return Page{Seq: seq}
	}

	result, err := s.exec.Execute(ctx, sql)
	if err != nil {
		s.onError(err)
		return Page{Seq: seq}
	}

	records := make([]Record, len(result))
	for i, data := range result {
		records[i] = Record{Idx: i, Data: data}
	}
	logger.Debug("fetched page", map[string]any{
		"table": s.table.Info.Name, "page": page, "rows": len(records), "seq": seq,
	})
	return Page{Records: records, Seq: seq}
}

// FetchAll re-queries every row matching the filters, ignoring
// pagination; an all-rows selection is never served from the loaded
// page. With a positive maxRows the matching count is checked first and
// larger results are refused with ErrTooManyRows before any rows move.
func (s *Service) FetchAll(ctx context.Context, filters []query.Filter, sorts []query.Sort, maxRows int) ([]Record, error) {
	if maxRows > 0 {
		count, err := s.Count(ctx, filters)
		if err != nil {
			return nil, err
		}
		if count > int64(maxRows) {
			return nil, fmt.Errorf("%w: %d rows exceeds the limit of %d", ErrTooManyRows, count, maxRows)
		}
	}

	sql, err := query.From(s.table.Info.Name, s.table.Info.Schema).
		Select("*").
		Filters(s.screenFilters(filters)).
		Sorts(sorts).
		ToSQL()
	if err != nil {
		return nil, err
	}
	result, err := s.exec.Execute(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("rows: fetch all rows failed: %w", err)
	}

	records := make([]Record, len(result))
	for i, data := range result {
		records[i] = Record{Idx: i, Data: data}
	}
	return records, nil
}

// Update enqueues a row update. The row is targeted by a snapshot of its
// primary-key values taken now; the payload is the single changedColumn
// when given, otherwise every non-key column. Returns immediately after
// enqueueing; on success onRowUpdate receives the server-returned row
// with the original Idx so the store can splice it back into place.
func (s *Service) Update(record Record, changedColumn string, onRowUpdate func(Record)) error {
	match, err := s.primaryKeySnapshot(record)
	if err != nil {
		return err
	}
	if _, isKey := match[changedColumn]; isKey {
		return ErrPrimaryKeyEdit
	}

	var values map[string]any
	if changedColumn != "" {
		values = map[string]any{changedColumn: record.Data[changedColumn]}
	} else {
		values = make(map[string]any, len(record.Data))
		for col, v := range record.Data {
			if _, isKey := match[col]; isKey {
				continue
			}
			values[col] = v
		}
	}

	sql, err := query.From(s.table.Info.Name, s.table.Info.Schema).
		Update(values, query.WriteOptions{
			Returning:        true,
			EnumArrayColumns: s.table.EnumArrayColumns(),
		}).
		Match(match).
		ToSQL()
	if err != nil {
		return err
	}

	s.queue.Enqueue(queue.Task{
		Name: "update " + s.table.Info.Name,
		Run: func(ctx context.Context) error {
			result, err := s.exec.Execute(ctx, sql)
			if err != nil {
				return err
			}
			if onRowUpdate != nil && len(result) > 0 {
				onRowUpdate(Record{Idx: record.Idx, Data: result[0]})
			}
			return nil
		},
		Done: func(err error) {
			if err != nil {
				s.onError(err)
			}
		},
	})
	return nil
}

// Delete enqueues deletion of the given rows, targeted by their
// primary-key values.
func (s *Service) Delete(records []Record, onDeleted func()) error {
	if len(records) == 0 {
		return nil
	}
	pks := s.table.PrimaryKeyColumns()
	if len(pks) == 0 {
		return ErrNoPrimaryKey
	}

	b := query.From(s.table.Info.Name, s.table.Info.Schema).Delete(query.WriteOptions{})
	if len(pks) == 1 {
		values := make([]any, len(records))
		for i, r := range records {
			values[i] = r.Data[pks[0]]
		}
		b.Filter(pks[0], query.OpIn, values)
	} else {
		tuples := make([]any, len(records))
		for i, r := range records {
			tuple := make([]any, len(pks))
			for j, pk := range pks {
				tuple[j] = r.Data[pk]
			}
			tuples[i] = tuple
		}
		b.TupleFilter(pks, query.OpIn, tuples)
	}

	sql, err := b.ToSQL()
	if err != nil {
		return err
	}
	s.enqueueWrite("delete "+s.table.Info.Name, sql, onDeleted)
	return nil
}

// DeleteAll removes every row matching the current filters. With no
// active filters it truncates instead of deleting row by row.
func (s *Service) DeleteAll(filters []query.Filter, onDeleted func()) error {
	active := s.screenFilters(filters)

	var sql string
	var err error
	if len(active) == 0 {
		sql, err = query.From(s.table.Info.Name, s.table.Info.Schema).
			Truncate(query.TruncateOptions{}).
			ToSQL()
	} else {
		sql, err = query.From(s.table.Info.Name, s.table.Info.Schema).
			Delete(query.WriteOptions{}).
			Filters(active).
			ToSQL()
	}
	if err != nil {
		return err
	}
	s.enqueueWrite("delete all "+s.table.Info.Name, sql, onDeleted)
	return nil
}

// Insert enqueues insertion of new rows; on success onInserted receives
// the server-returned rows.
func (s *Service) Insert(rowData []map[string]any, onInserted func([]drivers.Row)) error {
	sql, err := query.From(s.table.Info.Name, s.table.Info.Schema).
		Insert(rowData, query.WriteOptions{
			Returning:        true,
			EnumArrayColumns: s.table.EnumArrayColumns(),
		}).
		ToSQL()
	if err != nil {
		return err
	}
	s.queue.Enqueue(queue.Task{
		Name: "insert " + s.table.Info.Name,
		Run: func(ctx context.Context) error {
			result, err := s.exec.Execute(ctx, sql)
			if err != nil {
				return err
			}
			if onInserted != nil {
				onInserted(result)
			}
			return nil
		},
		Done: func(err error) {
			if err != nil {
				s.onError(err)
			}
		},
	})
	return nil
}

func (s *Service) enqueueWrite(name, sql string, onDone func()) {
	s.queue.Enqueue(queue.Task{
		Name: name,
		Run: func(ctx context.Context) error {
			_, err := s.exec.Execute(ctx, sql)
			return err
		},
		Done: func(err error) {
			if err != nil {
				s.onError(err)
				return
			}
			if onDone != nil {
				onDone()
			}
		},
	})
}

func (s *Service) primaryKeySnapshot(record Record) (map[string]any, error) {
	pks := s.table.PrimaryKeyColumns()
	if len(pks) == 0 {
		return nil, ErrNoPrimaryKey
	}
	match := make(map[string]any, len(pks))
	for _, pk := range pks {
		match[pk] = record.Data[pk]
	}
	return match, nil
}

// screenFilters drops inert filters (empty value, except null checks) and
// coerces numeric-looking values on number columns so they embed as
// numbers rather than quoted strings.
func (s *Service) screenFilters(filters []query.Filter) []query.Filter {
	out := make([]query.Filter, 0, len(filters))
	for _, f := range filters {
		if f.Operator != query.OpIs && emptyValue(f.Value) {
			continue
		}
		if len(f.Columns) == 1 && s.kinds[f.Columns[0]] == meta.KindNumber {
			f.Value = coerceNumber(f.Operator, f.Value)
		}
		out = append(out, f)
	}
	return out
}

func emptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	default:
		return false
	}
}

// coerceNumber converts a numeric-looking string to a number. Values for
// in and is operators keep their original shape; the builder handles
// those forms itself.
func coerceNumber(op query.Operator, v any) any {
	if op == query.OpIn || op == query.OpIs {
		return v
	}
	str, ok := v.(string)
	if !ok {
		return v
	}
	str = strings.TrimSpace(str)
	if n, err := strconv.ParseInt(str, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(str, 64); err == nil {
		return f
	}
	return v
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case string:
		out, _ := strconv.ParseInt(n, 10, 64)
		return out
	default:
		return 0
	}
}
