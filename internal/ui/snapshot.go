package ui

import (
	"github.com/atomicstack/nativebridge/internal/adapter"
	"github.com/atomicstack/nativebridge/internal/format/table"
	"github.com/atomicstack/nativebridge/internal/model"
	"github.com/atomicstack/nativebridge/internal/native"
	"github.com/atomicstack/nativebridge/internal/ui/state"
	"github.com/charmbracelet/x/ansi"
)

// autoColumnLimit caps the width of a column sized to its content.
const autoColumnLimit = 40

// column is the rendering-side copy of a table column.
type column struct {
	Title string
	Width int
	Align table.Alignment
}

// outlineRows flattens src the way an outline view shows it: children of
// collapsed nodes are skipped.
func outlineRows(src adapter.Enumerable) []state.Row {
	var rows []state.Row
	var walk func(parent string, depth int)
	walk = func(parent string, depth int) {
		n := src.ChildCount(parent)
		for i := 0; i < n; i++ {
			id := src.ChildAt(parent, i)
			if id == "" {
				continue
			}
			row := state.Row{
				ID:         id,
				Label:      src.ValueAt(id, "label"),
				Icon:       src.ValueAt(id, "icon"),
				Badge:      src.ValueAt(id, "badge"),
				Depth:      depth,
				Expandable: src.ChildCount(id) > 0,
				Expanded:   src.ValueAt(id, "expanded") == "true",
			}
			if row.Label == "" {
				row.Label = id
			}
			rows = append(rows, row)
			if row.Expandable && row.Expanded {
				walk(id, depth+1)
			}
		}
	}
	walk(adapter.Root, 0)
	return rows
}

// tableRows copies the visible rows of src. Columns without a declared
// width are sized to their widest cell.
func tableRows(src adapter.TableSource) ([]column, []state.Row) {
	specs := src.Columns()
	columns := make([]column, len(specs))
	for i, spec := range specs {
		columns[i] = column{Title: spec.Title, Width: spec.Width, Align: alignment(spec.Align)}
		if columns[i].Title == "" {
			columns[i].Title = spec.ID
		}
	}
	n := src.RowCount()
	rows := make([]state.Row, 0, n)
	for r := 0; r < n; r++ {
		cells := make([]string, len(specs))
		for c := range specs {
			cells[c] = src.CellAt(r, c)
		}
		rows = append(rows, state.Row{ID: src.RowID(r), Cells: cells})
	}
	for c, spec := range specs {
		if spec.Width > 0 {
			continue
		}
		w := ansi.StringWidth(columns[c].Title)
		for _, row := range rows {
			if cw := ansi.StringWidth(row.Cells[c]); cw > w {
				w = cw
			}
		}
		if w > autoColumnLimit {
			w = autoColumnLimit
		}
		columns[c].Width = w
	}
	return columns, rows
}

func alignment(a model.Alignment) table.Alignment {
	if a == model.AlignRight {
		return table.AlignRight
	}
	return table.AlignLeft
}

// menuLine is one rendered row of a context menu. Submenus are flattened
// and indented; only leaves can be chosen.
type menuLine struct {
	ID        string
	Label     string
	Shortcut  string
	Depth     int
	Enabled   bool
	Checked   bool
	Separator bool
	Parent    bool
}

func (l menuLine) selectable() bool {
	return l.Enabled && !l.Separator && !l.Parent
}

func menuLines(items []native.MenuItem, depth int) []menuLine {
	var out []menuLine
	for _, item := range items {
		line := menuLine{
			ID:        item.ID,
			Label:     item.Label,
			Shortcut:  item.Shortcut,
			Depth:     depth,
			Enabled:   item.Enabled,
			Checked:   item.Checked,
			Separator: item.Separator,
			Parent:    len(item.Submenu) > 0,
		}
		out = append(out, line)
		if line.Parent {
			out = append(out, menuLines(item.Submenu, depth+1)...)
		}
	}
	return out
}
