package app

import (
	"testing"

	"github.com/pgtui/gridq/meta"
)

func TestParseCellInput(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind meta.Kind
		want any
	}{
		{"null keyword", "null", meta.KindText, nil},
		{"null any case", " NULL ", meta.KindNumber, nil},
		{"integer on number column", "42", meta.KindNumber, int64(42)},
		{"float on number column", "3.5", meta.KindNumber, 3.5},
		{"non-numeric on number column", "abc", meta.KindNumber, "abc"},
		{"bool on boolean column", "true", meta.KindBoolean, true},
		{"text stays text", "42", meta.KindText, "42"},
		{"literal null needs quoting upstream", "nullable", meta.KindText, "nullable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseCellInput(tt.text, tt.kind)
			if got != tt.want {
				t.Errorf("parseCellInput(%q, %v) = %#v, want %#v", tt.text, tt.kind, got, tt.want)
			}
		})
	}
}
