package model

import (
	"strconv"

	"github.com/atomicstack/nativebridge/internal/protocol"
)

// Alignment of a column's cells.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// ColumnSpec describes one table column. Columns are fixed once the table
// exists.
type ColumnSpec struct {
	ID    string
	Title string
	Width int
	Align Alignment
}

// Row holds one value per column, in column order.
type Row struct {
	ID     string
	Values []string
}

// Table is an append/remove-only row store.
type Table struct {
	columns []ColumnSpec
	colIdx  map[string]int
	rows    []Row
	rowIdx  map[string]int
	nextID  uint64
	filter  string
	visible []int
	passes  int // filter evaluations over the whole table
}

// DefaultFileColumns are used by file browsers created without columns.
var DefaultFileColumns = []ColumnSpec{
	{ID: "name", Title: "Name", Width: 32},
	{ID: "size", Title: "Size", Width: 10, Align: AlignRight},
	{ID: "modified", Title: "Modified", Width: 20},
	{ID: "kind", Title: "Kind", Width: 12},
}

// NewTable creates an empty table with the given columns.
func NewTable(columns []ColumnSpec) *Table {
	t := &Table{
		columns: append([]ColumnSpec(nil), columns...),
		colIdx:  make(map[string]int, len(columns)),
		rowIdx:  make(map[string]int),
	}
	for i, c := range t.columns {
		t.colIdx[c.ID] = i
	}
	return t
}

// Columns returns the column specs.
func (t *Table) Columns() []ColumnSpec { return t.columns }

// Len returns the row count.
func (t *Table) Len() int { return len(t.rows) }

// Row returns the row at index i.
func (t *Table) Row(i int) (Row, bool) {
	if i < 0 || i >= len(t.rows) {
		return Row{}, false
	}
	return t.rows[i], true
}

// IndexOf returns the position of the row with id, or -1.
func (t *Table) IndexOf(id string) int {
	if i, ok := t.rowIdx[id]; ok {
		return i
	}
	return -1
}

// Cell returns the value at (row, column id).
func (t *Table) Cell(row int, column string) string {
	r, ok := t.Row(row)
	if !ok {
		return ""
	}
	c, ok := t.colIdx[column]
	if !ok || c >= len(r.Values) {
		return ""
	}
	return r.Values[c]
}

// CellAt returns the value at (row, column index).
func (t *Table) CellAt(row, col int) string {
	r, ok := t.Row(row)
	if !ok || col < 0 || col >= len(r.Values) {
		return ""
	}
	return r.Values[col]
}

// Append adds a row built from values keyed by column id. Unknown keys are
// ignored and missing ones are left empty. An empty id is generated.
func (t *Table) Append(id string, values map[string]string) (string, error) {
	id, err := t.insert(id, values)
	if err == nil && t.filter != "" {
		t.applyFilter()
	}
	return id, err
}

// NewRow is one entry of an AppendAll batch.
type NewRow struct {
	ID     string
	Values map[string]string
}

// AppendAll appends rows in order and re-runs the filter once for the whole
// batch. It stops at the first failing row; rows before it stay appended.
func (t *Table) AppendAll(rows []NewRow) ([]string, error) {
	ids := make([]string, 0, len(rows))
	var err error
	for _, r := range rows {
		var id string
		if id, err = t.insert(r.ID, r.Values); err != nil {
			break
		}
		ids = append(ids, id)
	}
	if len(ids) > 0 && t.filter != "" {
		t.applyFilter()
	}
	return ids, err
}

func (t *Table) insert(id string, values map[string]string) (string, error) {
	if id == "" {
		for {
			t.nextID++
			id = "row-" + strconv.FormatUint(t.nextID, 10)
			if _, taken := t.rowIdx[id]; !taken {
				break
			}
		}
	}
	if _, exists := t.rowIdx[id]; exists {
		return "", protocol.Errorf(protocol.CodeInvalidPayload, "row %q already exists", id)
	}
	row := Row{ID: id, Values: make([]string, len(t.columns))}
	for i, c := range t.columns {
		row.Values[i] = values[c.ID]
	}
	t.rowIdx[id] = len(t.rows)
	t.rows = append(t.rows, row)
	return id, nil
}

// Remove deletes the rows with the given ids and reports how many were found.
func (t *Table) Remove(ids ...string) int {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := t.rowIdx[id]; ok {
			drop[id] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return 0
	}
	kept := t.rows[:0]
	for _, r := range t.rows {
		if _, gone := drop[r.ID]; !gone {
			kept = append(kept, r)
		}
	}
	for i := len(kept); i < len(t.rows); i++ {
		t.rows[i] = Row{}
	}
	t.rows = kept
	t.reindex()
	t.applyFilter()
	return len(drop)
}

// Clear removes every row.
func (t *Table) Clear() int {
	n := len(t.rows)
	t.rows = nil
	t.rowIdx = make(map[string]int)
	t.visible = nil
	return n
}

func (t *Table) reindex() {
	t.rowIdx = make(map[string]int, len(t.rows))
	for i, r := range t.rows {
		t.rowIdx[r.ID] = i
	}
}

// ColumnsFromPayload parses column specs; an empty list yields the file
// browser defaults.
func ColumnsFromPayload(items []protocol.Payload) ([]ColumnSpec, error) {
	if len(items) == 0 {
		return append([]ColumnSpec(nil), DefaultFileColumns...), nil
	}
	cols := make([]ColumnSpec, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		var spec ColumnSpec
		if s, ok := item.Str(); ok {
			spec = ColumnSpec{ID: s, Title: s}
		} else {
			id, err := item.RequireString("id")
			if err != nil {
				return nil, err
			}
			spec = ColumnSpec{
				ID:    id,
				Title: item.String("title", id),
				Width: item.Int("width", 0),
			}
			if item.String("align", "") == "right" {
				spec.Align = AlignRight
			}
		}
		if _, dup := seen[spec.ID]; dup {
			return nil, protocol.Errorf(protocol.CodeInvalidPayload, "column %q declared twice", spec.ID)
		}
		seen[spec.ID] = struct{}{}
		cols = append(cols, spec)
	}
	return cols, nil
}

// RowValuesFromPayload flattens a row object into column values. Values may
// be given inline or under a "values" object.
func RowValuesFromPayload(p protocol.Payload) map[string]string {
	src := p
	if v := p.Get("values"); v.IsObject() {
		src = v
	}
	out := make(map[string]string)
	for _, kv := range src.Fields() {
		out[kv.Key] = kv.Value
	}
	return out
}
