package parsers

import (
	"reflect"
	"testing"
)

func TestSplitCells(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "empty line",
			line: "",
			want: nil,
		},
		{
			name: "plain cells",
			line: "a,b,c",
			want: []string{"a", "b", "c"},
		},
		{
			name: "quoted comma is not a separator",
			line: `"120 000,50",b`,
			want: []string{"120 000,50", "b"},
		},
		{
			name: "quotes are stripped from output",
			line: `"Приём врача",500`,
			want: []string{"Приём врача", "500"},
		},
		{
			name: "cells are trimmed",
			line: " x , y ",
			want: []string{"x", "y"},
		},
		{
			name: "trailing comma yields empty cell",
			line: "a,",
			want: []string{"a", ""},
		},
		{
			name: "consecutive commas yield empty cells",
			line: "a,,c",
			want: []string{"a", "", "c"},
		},
		{
			name: "unclosed quote degrades to one cell",
			line: `"unclosed,rest`,
			want: []string{"unclosed,rest"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitCells(tt.line)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitCells(%q) = %#v, want %#v", tt.line, got, tt.want)
			}
		})
	}
}

func TestCellAt(t *testing.T) {
	cells := []string{"a", "b"}
	if got := cellAt(cells, 1); got != "b" {
		t.Errorf("cellAt(1) = %q, want %q", got, "b")
	}
	if got := cellAt(cells, 5); got != "" {
		t.Errorf("cellAt(5) = %q, want empty", got)
	}
	if got := cellAt(cells, -1); got != "" {
		t.Errorf("cellAt(-1) = %q, want empty", got)
	}
}
