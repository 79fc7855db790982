package state

import "strings"

// Row is one displayed line of a list or table pane. Rows are immutable
// snapshots taken on the UI loop; panes never reach back into the model.
type Row struct {
	ID         string
	Label      string
	Icon       string
	Badge      string
	Depth      int
	Expandable bool
	Expanded   bool
	// Cells holds one value per column for table rows.
	Cells []string
}

// Text is what filtering matches against: the label, or the joined cells of
// a table row.
func (r Row) Text() string {
	if r.Label != "" || len(r.Cells) == 0 {
		return r.Label
	}
	return strings.Join(r.Cells, " ")
}

// CloneRows produces a copy of rows with their own cell slices.
func CloneRows(rows []Row) []Row {
	dup := make([]Row, len(rows))
	copy(dup, rows)
	for i := range dup {
		if dup[i].Cells != nil {
			dup[i].Cells = append([]string(nil), dup[i].Cells...)
		}
	}
	return dup
}
