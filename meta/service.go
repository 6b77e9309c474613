package meta

import (
	"context"
	"fmt"
	"strings"

	"github.com/pgtui/gridq/drivers"
)

// Service issues the four fixed introspection templates through an
// injected Executor and decodes the results.
type Service struct {
	exec drivers.Executor
}

// NewService returns a Service bound to an executor.
func NewService(exec drivers.Executor) *Service {
	return &Service{exec: exec}
}

// FetchInfo returns table-level metadata, or an error when the table does
// not exist or the query fails.
func (s *Service) FetchInfo(ctx context.Context, name, schema string) (*TableInfo, error) {
	rows, err := s.exec.Execute(ctx, fmt.Sprintf(tableInfoSQL, quoteLiteral(schema), quoteLiteral(name)))
	if err != nil {
		return nil, err
	}
	if len(rows) != 1 {
		return nil, fmt.Errorf("meta: table %s.%s not found", schema, name)
	}
	r := rows[0]
	return &TableInfo{
		ID:           asInt(r["id"]),
		Schema:       asString(r["schema"]),
		Name:         asString(r["name"]),
		Comment:      asString(r["comment"]),
		RowsEstimate: asInt(r["rows_estimate"]),
	}, nil
}

// FetchColumns returns the table's columns in ordinal position order.
func (s *Service) FetchColumns(ctx context.Context, name, schema string) ([]Column, error) {
	rows, err := s.exec.Execute(ctx, fmt.Sprintf(columnsSQL, quoteLiteral(schema), quoteLiteral(name)))
	if err != nil {
		return nil, err
	}
	columns := make([]Column, 0, len(rows))
	for _, r := range rows {
		col := Column{
			Name:               asString(r["name"]),
			Position:           int(asInt(r["position"])),
			DataType:           asString(r["data_type"]),
			Format:             asString(r["format"]),
			IsNullable:         asBool(r["is_nullable"]),
			IsIdentity:         asBool(r["is_identity"]),
			IdentityGeneration: asString(r["identity_generation"]),
			IsUpdatable:        asBool(r["is_updatable"]),
			Comment:            asString(r["comment"]),
			Enums:              asStringArray(r["enums"]),
		}
		if r["default_value"] != nil {
			def := asString(r["default_value"])
			col.DefaultValue = &def
		}
		columns = append(columns, col)
	}
	return columns, nil
}

// FetchPrimaryKeys returns the table's primary-key columns in key order.
func (s *Service) FetchPrimaryKeys(ctx context.Context, name, schema string) ([]PrimaryKey, error) {
	rows, err := s.exec.Execute(ctx, fmt.Sprintf(primaryKeysSQL, quoteLiteral(schema), quoteLiteral(name)))
	if err != nil {
		return nil, err
	}
	keys := make([]PrimaryKey, 0, len(rows))
	for _, r := range rows {
		keys = append(keys, PrimaryKey{
			Schema: asString(r["schema"]),
			Table:  asString(r["name"]),
			Column: asString(r["column_name"]),
		})
	}
	return keys, nil
}

// FetchRelationships returns the table's outgoing foreign-key edges.
func (s *Service) FetchRelationships(ctx context.Context, name, schema string) ([]Relationship, error) {
	rows, err := s.exec.Execute(ctx, fmt.Sprintf(relationshipsSQL, quoteLiteral(schema), quoteLiteral(name)))
	if err != nil {
		return nil, err
	}
	rels := make([]Relationship, 0, len(rows))
	for _, r := range rows {
		rels = append(rels, Relationship{
			Constraint:   asString(r["constraint_name"]),
			SourceSchema: asString(r["source_schema"]),
			SourceTable:  asString(r["source_table"]),
			SourceColumn: asString(r["source_column"]),
			TargetSchema: asString(r["target_schema"]),
			TargetTable:  asString(r["target_table"]),
			TargetColumn: asString(r["target_column"]),
		})
	}
	return rels, nil
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "t" || b == "true" || b == "YES"
	case int64:
		return b != 0
	default:
		return false
	}
}

func asInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	case string:
		var out int64
		fmt.Sscanf(n, "%d", &out)
		return out
	default:
		return 0
	}
}

// asStringArray decodes either a native string slice or the text form of a
// postgres array ({red,green}) as the pq driver returns it.
func asStringArray(v any) []string {
	switch a := v.(type) {
	case nil:
		return nil
	case []string:
		return a
	case []any:
		out := make([]string, len(a))
		for i, e := range a {
			out[i] = asString(e)
		}
		return out
	case []byte:
		return parsePGArray(string(a))
	case string:
		return parsePGArray(a)
	default:
		return nil
	}
}

func parsePGArray(s string) []string {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return nil
	}
	inner := s[1 : len(s)-1]
	if inner == "" {
		return nil
	}

	var out []string
	var cur strings.Builder
	inQuotes := false
	for i := 0; i < len(inner); i++ {
		ch := inner[i]
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == '\\' && i+1 < len(inner):
			i++
			cur.WriteByte(inner[i])
		case ch == ',' && !inQuotes:
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	out = append(out, cur.String())
	return out
}
