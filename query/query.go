// Package query assembles SQL statements from structured inputs: a table,
// an action, filter/sort descriptors, and a row window. It is the single
// trust boundary between user-entered values and the SQL sent to the
// backend; every literal passes through escaping here.
package query

// Table identifies one relational table.
type Table struct {
	Name   string
	Schema string
}

// Operator is the closed set of filter operators the builder accepts.
type Operator string

const (
	OpEqual        Operator = "="
	OpNotEqual     Operator = "<>"
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpLike         Operator = "~~"
	OpILike        Operator = "~~*"
	OpNotLike      Operator = "!~~"
	OpNotILike     Operator = "!~~*"
	OpIn           Operator = "in"
	OpIs           Operator = "is"
)

// Filter is one predicate; filters on a builder are ANDed. Columns holds
// more than one name only for tuple filters (composite-key matching).
type Filter struct {
	Columns  []string
	Operator Operator
	Value    any
}

// Sort is one order-by term. Sorts apply in list order.
type Sort struct {
	Table      string
	Column     string
	Ascending  bool
	NullsFirst bool
}

// Pagination is a limit/offset window.
type Pagination struct {
	Limit  int
	Offset int
}

type action int

const (
	actionSelect action = iota
	actionCount
	actionInsert
	actionUpdate
	actionDelete
	actionTruncate
)

// WriteOptions control insert/update/delete statements.
type WriteOptions struct {
	Returning bool
	// EnumArrayColumns are cast to text[] in the returning clause so the
	// backend hands them back in a shape the grid can render.
	EnumArrayColumns []string
}

// TruncateOptions control truncate statements.
type TruncateOptions struct {
	Cascade bool
}

// Builder accumulates one statement through a fluent chain and renders it
// with ToSQL. A zero Builder is not usable; start with From.
type Builder struct {
	table      Table
	action     action
	selectCols string
	updateVals map[string]any
	insertRows []map[string]any
	writeOpts  WriteOptions
	truncOpts  TruncateOptions
	filters    []Filter
	sorts      []Sort
	pagination *Pagination
}

// From starts a statement against schema.table. An empty schema defaults
// to public.
func From(table, schema string) *Builder {
	if schema == "" {
		schema = "public"
	}
	return &Builder{table: Table{Name: table, Schema: schema}}
}

// Select makes this a select statement. An empty column list selects *.
func (b *Builder) Select(columns string) *Builder {
	b.action = actionSelect
	if columns == "" {
		columns = "*"
	}
	b.selectCols = columns
	return b
}

// Count makes this a count(*) statement.
func (b *Builder) Count() *Builder {
	b.action = actionCount
	return b
}

// Insert makes this an insert statement over the given rows.
func (b *Builder) Insert(rows []map[string]any, opts WriteOptions) *Builder {
	b.action = actionInsert
	b.insertRows = rows
	b.writeOpts = opts
	return b
}

// Update makes this an update statement assigning the given values.
func (b *Builder) Update(values map[string]any, opts WriteOptions) *Builder {
	b.action = actionUpdate
	b.updateVals = values
	b.writeOpts = opts
	return b
}

// Delete makes this a delete statement.
func (b *Builder) Delete(opts WriteOptions) *Builder {
	b.action = actionDelete
	b.writeOpts = opts
	return b
}

// Truncate makes this a truncate statement.
func (b *Builder) Truncate(opts TruncateOptions) *Builder {
	b.action = actionTruncate
	b.truncOpts = opts
	return b
}

// Filter appends one predicate; all predicates are ANDed.
func (b *Builder) Filter(column string, op Operator, value any) *Builder {
	b.filters = append(b.filters, Filter{Columns: []string{column}, Operator: op, Value: value})
	return b
}

// TupleFilter appends a predicate over a column tuple, e.g.
// (id, version) in ((1,2), (3,4)). Used to target rows by composite key.
func (b *Builder) TupleFilter(columns []string, op Operator, value any) *Builder {
	b.filters = append(b.filters, Filter{Columns: columns, Operator: op, Value: value})
	return b
}

// Filters appends pre-built predicates in order.
func (b *Builder) Filters(filters []Filter) *Builder {
	b.filters = append(b.filters, filters...)
	return b
}

// Match adds an equality predicate per map entry, in sorted key order.
// Used to target one row by its primary-key values.
func (b *Builder) Match(criteria map[string]any) *Builder {
	for _, col := range sortedKeys(criteria) {
		b.Filter(col, OpEqual, criteria[col])
	}
	return b
}

// Order appends one order-by term; terms apply in append order.
func (b *Builder) Order(table, column string, ascending, nullsFirst bool) *Builder {
	b.sorts = append(b.sorts, Sort{Table: table, Column: column, Ascending: ascending, NullsFirst: nullsFirst})
	return b
}

// Sorts appends pre-built order-by terms in order.
func (b *Builder) Sorts(sorts []Sort) *Builder {
	b.sorts = append(b.sorts, sorts...)
	return b
}

// Range restricts the statement to the inclusive row window [from, to].
func (b *Builder) Range(from, to int) *Builder {
	b.pagination = &Pagination{Offset: from, Limit: to - from + 1}
	return b
}

// ToSQL renders the accumulated statement.
func (b *Builder) ToSQL() (string, error) {
	switch b.action {
	case actionCount:
		return countSQL(b.table, b.filters)
	case actionInsert:
		return insertSQL(b.table, b.insertRows, b.writeOpts)
	case actionUpdate:
		return updateSQL(b.table, b.updateVals, b.filters, b.writeOpts)
	case actionDelete:
		return deleteSQL(b.table, b.filters, b.writeOpts)
	case actionTruncate:
		return truncateSQL(b.table, b.truncOpts), nil
	default:
		cols := b.selectCols
		if cols == "" {
			cols = "*"
		}
		return selectSQL(b.table, cols, b.filters, b.sorts, b.pagination)
	}
}
