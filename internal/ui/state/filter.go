package state

import (
	"strings"
	"unicode"

	"github.com/atomicstack/nativebridge/internal/model"
)

// SetFilter replaces the query and places the filter cursor at cursor
// (clamped to the query). Starting a filter remembers the row cursor;
// clearing it puts the row cursor back.
func (l *List) SetFilter(query string, cursor int) {
	was := strings.TrimSpace(l.Filter) != ""
	now := strings.TrimSpace(query) != ""
	l.Filter = query
	l.FilterCursor = clamp(cursor, 0, len([]rune(query)))

	if now {
		if !was {
			l.LastCursor = l.Cursor
		}
		l.Cursor = 0
	}
	l.applyFilter()

	switch {
	case now:
		if idx := BestMatchIndex(l.Rows, query); idx >= 0 {
			l.Cursor = idx
		}
	case was:
		if l.LastCursor >= 0 && l.LastCursor < len(l.Rows) {
			l.Cursor = l.LastCursor
		} else if len(l.Rows) > 0 {
			l.Cursor = len(l.Rows) - 1
		}
		l.LastCursor = -1
	}
}

func (l *List) applyFilter() {
	l.Rows = FilterRows(l.Full, l.Filter)
	n := len(l.Rows)
	if n == 0 {
		l.Cursor, l.ViewportOffset = 0, 0
		return
	}
	if l.Cursor < 0 || l.Cursor >= n {
		l.Cursor = n - 1
	}
	if l.ViewportOffset >= n {
		l.ViewportOffset = 0
	}
}

// FilterCursorPos returns the rune offset of the filter cursor.
func (l *List) FilterCursorPos() int {
	return clamp(l.FilterCursor, 0, len([]rune(l.Filter)))
}

// editFilter applies fn to the query runes and reapplies the filter when fn
// reports a change.
func (l *List) editFilter(fn func(q []rune, pos int) ([]rune, int, bool)) bool {
	q, pos, ok := fn([]rune(l.Filter), l.FilterCursorPos())
	if !ok {
		return false
	}
	l.SetFilter(string(q), pos)
	return true
}

// moveFilterCursor places the cursor where fn says, reporting movement.
func (l *List) moveFilterCursor(fn func(q []rune, pos int) int) bool {
	pos := l.FilterCursorPos()
	next := clamp(fn([]rune(l.Filter), pos), 0, len([]rune(l.Filter)))
	if next == pos {
		return false
	}
	l.FilterCursor = next
	return true
}

// InsertFilterText inserts text at the filter cursor.
func (l *List) InsertFilterText(text string) bool {
	ins := []rune(text)
	return l.editFilter(func(q []rune, pos int) ([]rune, int, bool) {
		if len(ins) == 0 {
			return nil, 0, false
		}
		out := make([]rune, 0, len(q)+len(ins))
		out = append(append(append(out, q[:pos]...), ins...), q[pos:]...)
		return out, pos + len(ins), true
	})
}

// DeleteFilterRuneBackward deletes the rune before the filter cursor.
func (l *List) DeleteFilterRuneBackward() bool {
	return l.editFilter(func(q []rune, pos int) ([]rune, int, bool) {
		if pos == 0 {
			return nil, 0, false
		}
		return append(q[:pos-1], q[pos:]...), pos - 1, true
	})
}

// DeleteFilterWordBackward deletes back to the start of the previous word.
func (l *List) DeleteFilterWordBackward() bool {
	return l.editFilter(func(q []rune, pos int) ([]rune, int, bool) {
		start := wordStart(q, pos)
		if start == pos {
			return nil, 0, false
		}
		return append(q[:start], q[pos:]...), start, true
	})
}

// MoveFilterCursorStart moves the filter cursor to the start.
func (l *List) MoveFilterCursorStart() bool {
	return l.moveFilterCursor(func([]rune, int) int { return 0 })
}

// MoveFilterCursorEnd moves the filter cursor to the end.
func (l *List) MoveFilterCursorEnd() bool {
	return l.moveFilterCursor(func(q []rune, _ int) int { return len(q) })
}

// MoveFilterCursorWordBackward moves to the start of the previous word.
func (l *List) MoveFilterCursorWordBackward() bool {
	return l.moveFilterCursor(wordStart)
}

// MoveFilterCursorWordForward moves past the next word and its trailing
// spaces.
func (l *List) MoveFilterCursorWordForward() bool {
	return l.moveFilterCursor(wordEnd)
}

// MoveFilterCursorRuneBackward moves the filter cursor one rune backward.
func (l *List) MoveFilterCursorRuneBackward() bool {
	return l.moveFilterCursor(func(_ []rune, pos int) int { return pos - 1 })
}

// MoveFilterCursorRuneForward moves the filter cursor one rune forward.
func (l *List) MoveFilterCursorRuneForward() bool {
	return l.moveFilterCursor(func(_ []rune, pos int) int { return pos + 1 })
}

func wordStart(q []rune, pos int) int {
	for pos > 0 && unicode.IsSpace(q[pos-1]) {
		pos--
	}
	for pos > 0 && !unicode.IsSpace(q[pos-1]) {
		pos--
	}
	return pos
}

func wordEnd(q []rune, pos int) int {
	for pos < len(q) && !unicode.IsSpace(q[pos]) {
		pos++
	}
	for pos < len(q) && unicode.IsSpace(q[pos]) {
		pos++
	}
	return pos
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// FilterRows returns copies of the rows matching query. Rows are matched on
// Text with the same matcher native tables use; when no text matches, a
// substring of the row id is accepted so paths and node ids stay reachable.
func FilterRows(rows []Row, query string) []Row {
	if strings.TrimSpace(query) == "" {
		return CloneRows(rows)
	}
	idx := model.MatchIndices(query, len(rows), func(i int) string { return rows[i].Text() })
	if len(idx) == 0 {
		needle := strings.ToLower(strings.TrimSpace(query))
		for i, row := range rows {
			if strings.Contains(strings.ToLower(row.ID), needle) {
				idx = append(idx, i)
			}
		}
	}
	out := make([]Row, 0, len(idx))
	for _, i := range idx {
		out = append(out, rows[i])
	}
	return CloneRows(out)
}

// matchTiers rank how well a row answers a query, strongest first. Each
// receives the lowered query and the lowered row text and id.
var matchTiers = []func(q, text, id string) bool{
	func(q, text, id string) bool { return text == q || id == q },
	func(q, text, _ string) bool { return strings.HasPrefix(text, q) },
	func(q, _, id string) bool { return strings.HasPrefix(id, q) },
	func(q, _, id string) bool { return strings.Contains(id, q) },
	func(q, text, _ string) bool { return strings.Contains(text, q) },
}

// BestMatchIndex picks the row the cursor should land on for query: the
// first row in the strongest matching tier, else the first fuzzy match,
// else row 0. It returns -1 for no rows.
func BestMatchIndex(rows []Row, query string) int {
	if len(rows) == 0 {
		return -1
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}
	texts := make([]string, len(rows))
	ids := make([]string, len(rows))
	for i, row := range rows {
		texts[i] = strings.ToLower(row.Text())
		ids[i] = strings.ToLower(row.ID)
	}
	for _, tier := range matchTiers {
		for i := range rows {
			if tier(q, texts[i], ids[i]) {
				return i
			}
		}
	}
	if idx := model.MatchIndices(q, len(rows), func(i int) string { return texts[i] }); len(idx) > 0 {
		return idx[0]
	}
	return 0
}
