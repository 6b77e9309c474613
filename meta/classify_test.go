package meta

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		col  Column
		fk   *Relationship
		want Kind
	}{
		{"bigint", Column{DataType: "bigint", Format: "int8"}, nil, KindNumber},
		{"numeric", Column{DataType: "numeric", Format: "numeric"}, nil, KindNumber},
		{"double", Column{DataType: "double precision", Format: "float8"}, nil, KindNumber},
		{"text", Column{DataType: "text", Format: "text"}, nil, KindText},
		{"varchar", Column{DataType: "character varying", Format: "varchar"}, nil, KindText},
		{"uuid", Column{DataType: "uuid", Format: "uuid"}, nil, KindText},
		{"citext", Column{DataType: "user-defined", Format: "citext"}, nil, KindCitext},
		{"boolean", Column{DataType: "boolean", Format: "bool"}, nil, KindBoolean},
		{"json", Column{DataType: "json", Format: "json"}, nil, KindJSON},
		{"jsonb", Column{DataType: "jsonb", Format: "jsonb"}, nil, KindJSON},
		{"text array", Column{DataType: "array", Format: "_text"}, nil, KindArray},
		{"date", Column{DataType: "date", Format: "date"}, nil, KindDate},
		{"time", Column{DataType: "time without time zone", Format: "time"}, nil, KindTime},
		{"timetz", Column{DataType: "time with time zone", Format: "timetz"}, nil, KindTime},
		{"timestamp", Column{DataType: "timestamp without time zone", Format: "timestamp"}, nil, KindDateTime},
		{"timestamptz", Column{DataType: "timestamp with time zone", Format: "timestamptz"}, nil, KindDateTime},
		{"enum", Column{DataType: "user-defined", Format: "mood", Enums: []string{"happy", "sad"}}, nil, KindEnum},
		{"user-defined without enums still enum", Column{DataType: "user-defined", Format: "composite"}, nil, KindEnum},
		{"unknown", Column{DataType: "tsvector", Format: "tsvector"}, nil, KindUnknown},
		{
			"relationship wins over enum",
			Column{DataType: "user-defined", Format: "mood", Enums: []string{"happy"}},
			&Relationship{TargetTable: "moods"},
			KindForeignKey,
		},
		{
			"relationship wins over number",
			Column{DataType: "bigint", Format: "int8"},
			&Relationship{TargetTable: "users"},
			KindForeignKey,
		},
		{
			"array wins over enum element type",
			Column{DataType: "array", Format: "_mood", Enums: []string{"happy"}},
			nil,
			KindArray,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.col, tt.fk); got != tt.want {
				t.Errorf("Classify(%s/%s) = %v, want %v", tt.col.DataType, tt.col.Format, got, tt.want)
			}
		})
	}
}

func TestDefaultWidth(t *testing.T) {
	if DefaultWidth(KindNumber) >= DefaultWidth(KindDate) {
		t.Error("number columns should be narrower than date columns")
	}
	if DefaultWidth(KindDate) >= DefaultWidth(KindText) {
		t.Error("date columns should be narrower than text columns")
	}
	if DefaultWidth(KindBoolean) >= DefaultWidth(KindUnknown) {
		t.Error("boolean columns should be narrower than unknown columns")
	}
}
