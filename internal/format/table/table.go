// Package table lays out terminal cells in aligned columns.
package table

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Alignment of a column's cells.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// Gap separates adjacent columns.
const Gap = "  "

// Format returns the rows padded according to the widest entry in each
// column. Cell widths are measured in terminal cells, so styled text and
// wide runes line up.
func Format(rows [][]string, alignments []Alignment) []string {
	if len(rows) == 0 {
		return nil
	}
	widths := Widths(rows)
	out := make([]string, len(rows))
	for i, row := range rows {
		var b strings.Builder
		for c, cell := range row {
			if c > 0 {
				b.WriteString(Gap)
			}
			b.WriteString(Pad(cell, widths[c], alignAt(alignments, c)))
		}
		out[i] = strings.TrimRight(b.String(), " ")
	}
	return out
}

// Widths returns the widest cell of each column.
func Widths(rows [][]string) []int {
	var widths []int
	for _, row := range rows {
		for c, cell := range row {
			if c >= len(widths) {
				widths = append(widths, 0)
			}
			if w := ansi.StringWidth(cell); w > widths[c] {
				widths[c] = w
			}
		}
	}
	return widths
}

// Pad fits cell into width cells, truncating with an ellipsis when it is
// too wide.
func Pad(cell string, width int, align Alignment) string {
	if width <= 0 {
		return ""
	}
	w := ansi.StringWidth(cell)
	if w > width {
		return ansi.Truncate(cell, width, "…")
	}
	fill := strings.Repeat(" ", width-w)
	if align == AlignRight {
		return fill + cell
	}
	return cell + fill
}

func alignAt(alignments []Alignment, c int) Alignment {
	if c < len(alignments) {
		return alignments[c]
	}
	return AlignLeft
}
