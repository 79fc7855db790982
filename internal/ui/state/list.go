// Package state holds the cursor, filter and viewport of a terminal list
// pane.
package state

// List tracks what a pane shows: the full row snapshot, the filtered rows,
// the cursor within them and the first visible row.
type List struct {
	ID             string
	Title          string
	Rows           []Row
	Full           []Row
	Filter         string
	FilterCursor   int
	Cursor         int
	LastCursor     int
	ViewportOffset int
}

// NewList constructs an empty list.
func NewList(id, title string) *List {
	return &List{ID: id, Title: title, LastCursor: -1}
}

// IndexOf returns the visible index of the row with id, or -1.
func (l *List) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, row := range l.Rows {
		if row.ID == id {
			return i
		}
	}
	return -1
}

// Current returns the row under the cursor.
func (l *List) Current() (Row, bool) {
	if l.Cursor < 0 || l.Cursor >= len(l.Rows) {
		return Row{}, false
	}
	return l.Rows[l.Cursor], true
}

// CurrentID returns the id under the cursor, or "".
func (l *List) CurrentID() string {
	row, ok := l.Current()
	if !ok {
		return ""
	}
	return row.ID
}

// SetRows replaces the snapshot. The cursor stays on the same row id when
// that row survives; otherwise it is clamped.
func (l *List) SetRows(rows []Row) {
	keep := l.CurrentID()
	prevOffset := l.ViewportOffset
	l.Full = CloneRows(rows)
	l.applyFilter()
	if idx := l.IndexOf(keep); idx >= 0 {
		l.Cursor = idx
	}
	if len(l.Rows) == 0 {
		l.ViewportOffset = 0
		return
	}
	if prevOffset < 0 || prevOffset > len(l.Rows)-1 {
		l.ViewportOffset = 0
		return
	}
	l.ViewportOffset = prevOffset
}

// Focus moves the cursor to id. It reports whether the row is visible.
func (l *List) Focus(id string) bool {
	idx := l.IndexOf(id)
	if idx < 0 {
		return false
	}
	l.Cursor = idx
	return true
}
