package table

import (
	"strings"
	"testing"

	"github.com/atomicstack/nativebridge/internal/testutil"
)

func TestFormatAlignsColumns(t *testing.T) {
	rows := [][]string{
		{"Name", "Size", "Kind"},
		{"report.pdf", "10 KB", "PDF"},
		{"notes.md", "900 B", "Markdown"},
	}
	lines := Format(rows, []Alignment{AlignLeft, AlignRight})
	testutil.AssertGolden(t, "table_format.golden", strings.Join(lines, "\n")+"\n")
}

func TestFormatEmpty(t *testing.T) {
	if got := Format(nil, nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestPad(t *testing.T) {
	cases := []struct {
		cell  string
		width int
		align Alignment
		want  string
	}{
		{"ab", 4, AlignLeft, "ab  "},
		{"ab", 4, AlignRight, "  ab"},
		{"abcdef", 4, AlignLeft, "abc…"},
		{"日本", 5, AlignLeft, "日本 "},
		{"ab", 0, AlignLeft, ""},
	}
	for _, tc := range cases {
		if got := Pad(tc.cell, tc.width, tc.align); got != tc.want {
			t.Fatalf("Pad(%q, %d): expected %q, got %q", tc.cell, tc.width, tc.want, got)
		}
	}
}

func TestWidthsCountsTerminalCells(t *testing.T) {
	widths := Widths([][]string{{"a", "日本語"}, {"abc"}})
	if len(widths) != 2 || widths[0] != 3 || widths[1] != 6 {
		t.Fatalf("expected [3 6], got %v", widths)
	}
}
