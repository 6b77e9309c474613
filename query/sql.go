package query

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var errNoFilters = fmt.Errorf("query: update and delete require at least one filter")

func selectSQL(t Table, columns string, filters []Filter, sorts []Sort, p *Pagination) (string, error) {
	sql := fmt.Sprintf("select %s from %s", columns, tableRef(t))
	where, err := whereClause(filters)
	if err != nil {
		return "", err
	}
	sql += where
	sql += orderClause(sorts)
	if p != nil {
		sql += fmt.Sprintf(" limit %d offset %d", p.Limit, p.Offset)
	}
	return sql + ";", nil
}

func countSQL(t Table, filters []Filter) (string, error) {
	where, err := whereClause(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("select count(*) from %s%s;", tableRef(t), where), nil
}

func insertSQL(t Table, rows []map[string]any, opts WriteOptions) (string, error) {
	if len(rows) == 0 {
		return "", fmt.Errorf("query: insert requires at least one row")
	}
	cols := strings.Join(sortedKeys(rows[0]), ",")
	payload, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("query: encode insert payload: %w", err)
	}
	sql := fmt.Sprintf(
		"insert into %s (%s) select %s from jsonb_populate_recordset(null::%s, %s)",
		tableRef(t), cols, cols, tableRef(t), literalString(string(payload)),
	)
	return sql + returningClause(opts) + ";", nil
}

func updateSQL(t Table, values map[string]any, filters []Filter, opts WriteOptions) (string, error) {
	if len(filters) == 0 {
		return "", errNoFilters
	}
	cols := strings.Join(sortedKeys(values), ",")
	payload, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("query: encode update payload: %w", err)
	}
	where, err := whereClause(filters)
	if err != nil {
		return "", err
	}
	sql := fmt.Sprintf(
		"update %s set (%s) = (select %s from json_populate_record(null::%s, %s))",
		tableRef(t), cols, cols, tableRef(t), literalString(string(payload)),
	)
	return sql + where + returningClause(opts) + ";", nil
}

func deleteSQL(t Table, filters []Filter, opts WriteOptions) (string, error) {
	if len(filters) == 0 {
		return "", errNoFilters
	}
	where, err := whereClause(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("delete from %s%s%s;", tableRef(t), where, returningClause(opts)), nil
}

func truncateSQL(t Table, opts TruncateOptions) string {
	if opts.Cascade {
		return fmt.Sprintf("truncate %s cascade;", tableRef(t))
	}
	return fmt.Sprintf("truncate %s;", tableRef(t))
}

func returningClause(opts WriteOptions) string {
	if !opts.Returning {
		return ""
	}
	clause := " returning *"
	for _, col := range opts.EnumArrayColumns {
		clause += fmt.Sprintf(", %s::text[]", ident(col))
	}
	return clause
}

func whereClause(filters []Filter) (string, error) {
	var preds []string
	for _, f := range filters {
		pred, err := predicate(f)
		if err != nil {
			return "", err
		}
		if pred == "" {
			continue
		}
		preds = append(preds, pred)
	}
	if len(preds) == 0 {
		return "", nil
	}
	return " where " + strings.Join(preds, " and "), nil
}

func predicate(f Filter) (string, error) {
	if len(f.Columns) == 0 {
		return "", fmt.Errorf("query: filter has no column")
	}
	if len(f.Columns) > 1 {
		return tuplePredicate(f)
	}
	col := ident(f.Columns[0])

	switch f.Operator {
	case OpIn:
		return inPredicate(col, f.Value)
	case OpIs:
		return isPredicate(col, f.Value)
	case OpLike, OpILike, OpNotLike, OpNotILike:
		// Cast so pattern matching works on non-text columns too.
		return fmt.Sprintf("%s::text %s %s", col, f.Operator, literal(f.Value)), nil
	default:
		return fmt.Sprintf("%s %s %s", col, f.Operator, literal(f.Value)), nil
	}
}

func tuplePredicate(f Filter) (string, error) {
	switch f.Operator {
	case OpIs, OpLike, OpILike, OpNotLike, OpNotILike:
		return "", fmt.Errorf("query: operator %q cannot be used with a tuple filter", f.Operator)
	}

	cols := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		cols[i] = ident(c)
	}
	lhs := "(" + strings.Join(cols, ", ") + ")"

	if f.Operator == OpIn {
		values, ok := anySlice(f.Value)
		if !ok {
			return "", fmt.Errorf("query: tuple in filter value must be an array")
		}
		tuples := make([]string, len(values))
		for i, v := range values {
			tuple, err := tupleValues(v, len(f.Columns))
			if err != nil {
				return "", err
			}
			tuples[i] = tuple
		}
		return fmt.Sprintf("%s in (%s)", lhs, strings.Join(tuples, ", ")), nil
	}

	tuple, err := tupleValues(f.Value, len(f.Columns))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s", lhs, f.Operator, tuple), nil
}

// tupleValues renders one (v1, v2, ...) group and enforces arity. A string
// value is split on commas so "one,two" matches a two-column tuple.
func tupleValues(value any, arity int) (string, error) {
	var parts []any
	if s, ok := value.(string); ok {
		for _, piece := range strings.Split(s, ",") {
			parts = append(parts, strings.TrimSpace(piece))
		}
	} else {
		elems, ok := anySlice(value)
		if !ok {
			return "", fmt.Errorf("query: tuple filter value must be an array")
		}
		parts = elems
	}
	if len(parts) != arity {
		return "", fmt.Errorf("query: tuple filter value must have the same length as the column array")
	}
	rendered := make([]string, len(parts))
	for i, p := range parts {
		rendered[i] = literal(p)
	}
	return "(" + strings.Join(rendered, ", ") + ")", nil
}

func inPredicate(col string, value any) (string, error) {
	if s, ok := value.(string); ok {
		pieces := strings.Split(s, ",")
		quoted := make([]string, len(pieces))
		for i, p := range pieces {
			quoted[i] = literalString(p)
		}
		return fmt.Sprintf("%s in (%s)", col, strings.Join(quoted, ",")), nil
	}
	elems, ok := anySlice(value)
	if !ok {
		return "", fmt.Errorf("query: in filter value must be an array or comma-separated string")
	}
	rendered := make([]string, len(elems))
	for i, e := range elems {
		rendered[i] = literal(e)
	}
	return fmt.Sprintf("%s in (%s)", col, strings.Join(rendered, ",")), nil
}

func isPredicate(col string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		if value == nil {
			return col + " is null", nil
		}
		if b, ok := value.(bool); ok {
			return fmt.Sprintf("%s is %t", col, b), nil
		}
		return "", fmt.Errorf("query: is filter accepts null, not null, true or false")
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "null", "not null", "true", "false":
		return fmt.Sprintf("%s is %s", col, strings.ToLower(strings.TrimSpace(s))), nil
	}
	return "", fmt.Errorf("query: is filter accepts null, not null, true or false")
}

func orderClause(sorts []Sort) string {
	var terms []string
	for _, s := range sorts {
		if s.Column == "" {
			continue
		}
		col := ident(s.Column)
		if s.Table != "" {
			col = ident(s.Table) + "." + col
		}
		dir := "desc"
		if s.Ascending {
			dir = "asc"
		}
		nulls := "nulls last"
		if s.NullsFirst {
			nulls = "nulls first"
		}
		terms = append(terms, fmt.Sprintf("%s %s %s", col, dir, nulls))
	}
	if len(terms) == 0 {
		return ""
	}
	return " order by " + strings.Join(terms, ", ")
}

func tableRef(t Table) string {
	return ident(t.Schema) + "." + ident(t.Name)
}

var plainIdent = regexp.MustCompile(`^[a-z_][a-z0-9_$]*$`)

// ident quotes an identifier only when it needs it, so common names render
// the same way the backend's own tooling prints them.
func ident(name string) string {
	if plainIdent.MatchString(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// literal renders a value as a SQL literal. Strings are escaped by
// doubling single quotes; a string that is already an ARRAY[...] literal
// is passed through untouched.
func literal(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		if strings.HasPrefix(v, "ARRAY[") {
			return v
		}
		return literalString(v)
	case bool:
		return fmt.Sprintf("%t", v)
	case float64:
		// Trim the .0 off integral floats so 5.0 renders as 5.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	case float32:
		return literal(float64(v))
	default:
		return fmt.Sprintf("%v", v)
	}
}

func literalString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func anySlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case []int:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	case []int64:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	case []float64:
		out := make([]any, len(v))
		for i, n := range v {
			out[i] = n
		}
		return out, true
	default:
		return nil, false
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
