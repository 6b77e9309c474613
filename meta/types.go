// Package meta discovers a table's schema through fixed catalog queries
// and classifies each column into the semantic kind that drives editing
// and rendering behavior.
package meta

// TableInfo is the table-level half of a descriptor.
type TableInfo struct {
	ID           int64
	Schema       string
	Name         string
	Comment      string
	RowsEstimate int64
}

// Column describes one column of a table.
type Column struct {
	Name               string
	Position           int
	DataType           string
	Format             string
	IsPrimaryKey       bool
	IsNullable         bool
	IsUpdatable        bool
	IsIdentity         bool
	IdentityGeneration string
	DefaultValue       *string
	Enums              []string
	Comment            string
}

// PrimaryKey names one column of the table's primary key.
type PrimaryKey struct {
	Schema string
	Table  string
	Column string
}

// Relationship is one foreign-key edge from a source column to its target.
type Relationship struct {
	Constraint   string
	SourceSchema string
	SourceTable  string
	SourceColumn string
	TargetSchema string
	TargetTable  string
	TargetColumn string
}

// Table is the normalized descriptor the grid is initialized with. It is
// replaced wholesale whenever the grid is pointed at a different table.
type Table struct {
	Info          TableInfo
	Columns       []Column
	PrimaryKeys   []PrimaryKey
	Relationships []Relationship
	// ReadOnly is set by the fallback path that skips primary-key and
	// relationship discovery; editing is not offered on such tables.
	ReadOnly bool
}

// PrimaryKeyColumns returns the names of the primary-key columns in
// declaration order.
func (t *Table) PrimaryKeyColumns() []string {
	cols := make([]string, len(t.PrimaryKeys))
	for i, pk := range t.PrimaryKeys {
		cols[i] = pk.Column
	}
	return cols
}

// RelationshipFor returns the foreign-key edge whose source is the given
// column, or nil.
func (t *Table) RelationshipFor(column string) *Relationship {
	for i := range t.Relationships {
		if t.Relationships[i].SourceColumn == column &&
			t.Relationships[i].SourceSchema == t.Info.Schema &&
			t.Relationships[i].SourceTable == t.Info.Name {
			return &t.Relationships[i]
		}
	}
	return nil
}

// EnumArrayColumns lists columns whose type is an array of a user-defined
// enum; write statements cast these to text[] in their returning clause.
func (t *Table) EnumArrayColumns() []string {
	var cols []string
	for _, c := range t.Columns {
		if c.DataType == "array" && len(c.Enums) > 0 {
			cols = append(cols, c.Name)
		}
	}
	return cols
}
