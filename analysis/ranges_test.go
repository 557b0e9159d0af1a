package analysis_test

import (
	"testing"

	"github.com/wippyai/wasm-audit/analysis"
)

func TestFormatRanges(t *testing.T) {
	tests := []struct {
		name    string
		indexes []uint32
		want    string
	}{
		{
			name:    "trailing range",
			indexes: []uint32{1, 2, 4, 5, 7, 9, 10},
			want:    "[1..2, 4..5, 7, 9..10]",
		},
		{
			name:    "trailing singleton stays single",
			indexes: []uint32{1, 2, 4, 5, 7, 9},
			want:    "[1..2, 4..5, 7, 9]",
		},
		{
			name:    "single value",
			indexes: []uint32{3},
			want:    "[3]",
		},
		{
			name:    "one contiguous run",
			indexes: []uint32{0, 1, 2, 3},
			want:    "[0..3]",
		},
		{
			name:    "empty",
			indexes: nil,
			want:    "[]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := analysis.FormatRanges(tt.indexes); got != tt.want {
				t.Errorf("FormatRanges(%v) = %q, want %q", tt.indexes, got, tt.want)
			}
		})
	}
}
