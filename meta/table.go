package meta

import (
	"context"
	"errors"
	"fmt"
)

// ErrFetchTableInfo is the aggregate error surfaced when any part of full
// introspection fails or the table has no columns.
var ErrFetchTableInfo = errors.New("meta: fetch table info failed")

// LoadTable runs full introspection. The table is usable for editing only
// when all four queries succeed and at least one column came back;
// anything less surfaces the single aggregate error.
func (s *Service) LoadTable(ctx context.Context, name, schema string) (*Table, error) {
	info, err := s.FetchInfo(ctx, name, schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchTableInfo, err)
	}
	columns, err := s.FetchColumns(ctx, name, schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchTableInfo, err)
	}
	primaryKeys, err := s.FetchPrimaryKeys(ctx, name, schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchTableInfo, err)
	}
	relationships, err := s.FetchRelationships(ctx, name, schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchTableInfo, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: table %s.%s has no columns", ErrFetchTableInfo, schema, name)
	}

	markPrimaryKeys(columns, primaryKeys)
	return &Table{
		Info:          *info,
		Columns:       columns,
		PrimaryKeys:   primaryKeys,
		Relationships: relationships,
	}, nil
}

// LoadTableReadOnly is the fallback path used when full introspection is
// not permitted or not wanted: it needs only the columns query and yields
// a descriptor without primary-key, relationship or updatability data.
func (s *Service) LoadTableReadOnly(ctx context.Context, name, schema string) (*Table, error) {
	columns, err := s.FetchColumns(ctx, name, schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchTableInfo, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: table %s.%s has no columns", ErrFetchTableInfo, schema, name)
	}
	for i := range columns {
		columns[i].IsUpdatable = false
	}
	return &Table{
		Info:     TableInfo{Schema: schema, Name: name},
		Columns:  columns,
		ReadOnly: true,
	}, nil
}

func markPrimaryKeys(columns []Column, keys []PrimaryKey) {
	for _, pk := range keys {
		for i := range columns {
			if columns[i].Name == pk.Column {
				columns[i].IsPrimaryKey = true
			}
		}
	}
}
