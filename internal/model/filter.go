package model

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// SetFilter restricts the visible rows to those whose values fuzzy-match
// query. An empty query shows every row. It reports whether the visible set
// changed.
func (t *Table) SetFilter(query string) bool {
	trimmed := strings.TrimSpace(query)
	if trimmed == t.filter {
		return false
	}
	t.filter = trimmed
	t.applyFilter()
	return true
}

// Filter returns the active query.
func (t *Table) Filter() string { return t.filter }

// VisibleLen returns the number of rows passing the filter.
func (t *Table) VisibleLen() int {
	if t.filter == "" {
		return len(t.rows)
	}
	return len(t.visible)
}

// VisibleRow maps a visible position to its row.
func (t *Table) VisibleRow(i int) (Row, bool) {
	if t.filter == "" {
		return t.Row(i)
	}
	if i < 0 || i >= len(t.visible) {
		return Row{}, false
	}
	return t.Row(t.visible[i])
}

// VisibleIndexOf returns the visible position of the row with id, or -1.
func (t *Table) VisibleIndexOf(id string) int {
	idx := t.IndexOf(id)
	if idx < 0 || t.filter == "" {
		return idx
	}
	for i, v := range t.visible {
		if v == idx {
			return i
		}
	}
	return -1
}

func (t *Table) applyFilter() {
	t.visible = nil
	if t.filter == "" {
		return
	}
	t.passes++
	t.visible = MatchIndices(t.filter, len(t.rows), func(i int) string {
		return strings.Join(t.rows[i].Values, " ")
	})
}

// MatchIndices returns, in original order, the indices whose text matches
// query. Fuzzy matches win; when there are none it falls back to a plain
// case-insensitive substring test.
func MatchIndices(query string, n int, text func(int) string) []int {
	trimmed := strings.TrimSpace(query)
	out := make([]int, 0, n)
	if trimmed == "" {
		for i := 0; i < n; i++ {
			out = append(out, i)
		}
		return out
	}
	labels := make([]string, n)
	for i := range labels {
		labels[i] = text(i)
	}
	ranks := fuzzy.RankFindNormalizedFold(trimmed, labels)
	if len(ranks) > 0 {
		hit := make([]bool, n)
		for _, r := range ranks {
			hit[r.OriginalIndex] = true
		}
		for i, ok := range hit {
			if ok {
				out = append(out, i)
			}
		}
		return out
	}
	lower := strings.ToLower(trimmed)
	for i, label := range labels {
		if strings.Contains(strings.ToLower(label), lower) {
			out = append(out, i)
		}
	}
	return out
}
