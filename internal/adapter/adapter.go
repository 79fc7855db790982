// Package adapter lets native list and table widgets pull their content
// from a script-described model.
//
// Adapters hold only a registry handle. Each query resolves the component
// again, so an adapter whose component was destroyed reports zero items and
// empty values instead of touching freed state.
package adapter

import (
	"github.com/atomicstack/nativebridge/internal/model"
	"github.com/atomicstack/nativebridge/internal/registry"
)

// Root is the item id that denotes the invisible root of a model.
const Root = ""

// Enumerable is the pull interface native outline and list widgets query.
type Enumerable interface {
	ChildCount(item string) int
	ChildAt(item string, i int) string
	ValueAt(item, column string) string
}

// TableSource is the pull interface native table widgets query. Rows are
// addressed by visible position.
type TableSource interface {
	Enumerable
	RowCount() int
	RowID(r int) string
	CellAt(r, c int) string
	Columns() []model.ColumnSpec
}

// Resolver resolves a handle to its live component.
type Resolver interface {
	Resolve(registry.Handle) (registry.Component, bool)
}

// TreeBacked is implemented by components that own a hierarchy.
type TreeBacked interface {
	Tree() *model.Hierarchy
}

// TableBacked is implemented by components that own a table.
type TableBacked interface {
	Table() *model.Table
}

// TreeAdapter exposes a TreeBacked component as an Enumerable.
type TreeAdapter struct {
	reg Resolver
	ref registry.Handle
}

// NewTree binds an adapter to ref.
func NewTree(reg Resolver, ref registry.Handle) *TreeAdapter {
	return &TreeAdapter{reg: reg, ref: ref}
}

// Handle returns the bound handle.
func (a *TreeAdapter) Handle() registry.Handle { return a.ref }

func (a *TreeAdapter) tree() *model.Hierarchy {
	c, ok := a.reg.Resolve(a.ref)
	if !ok {
		return nil
	}
	tb, ok := c.(TreeBacked)
	if !ok {
		return nil
	}
	return tb.Tree()
}

// ChildCount returns the number of children under item.
func (a *TreeAdapter) ChildCount(item string) int {
	t := a.tree()
	if t == nil {
		return 0
	}
	return len(t.Children(item))
}

// ChildAt returns the id of the i-th child of item.
func (a *TreeAdapter) ChildAt(item string, i int) string {
	t := a.tree()
	if t == nil {
		return ""
	}
	children := t.Children(item)
	if i < 0 || i >= len(children) {
		return ""
	}
	return children[i].ID
}

// ValueAt returns a display attribute of item: id, label, icon, badge or
// expanded.
func (a *TreeAdapter) ValueAt(item, column string) string {
	t := a.tree()
	if t == nil {
		return ""
	}
	n, ok := t.Find(item)
	if !ok {
		return ""
	}
	switch column {
	case "id":
		return n.ID
	case "label", "":
		return n.Label
	case "icon":
		return n.Icon
	case "badge":
		return n.Badge
	case "expanded":
		if n.Expanded {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// IsExpandable reports whether item has children.
func (a *TreeAdapter) IsExpandable(item string) bool {
	return a.ChildCount(item) > 0
}

// TableAdapter exposes a TableBacked component as a TableSource.
type TableAdapter struct {
	reg Resolver
	ref registry.Handle
}

// NewTable binds an adapter to ref.
func NewTable(reg Resolver, ref registry.Handle) *TableAdapter {
	return &TableAdapter{reg: reg, ref: ref}
}

// Handle returns the bound handle.
func (a *TableAdapter) Handle() registry.Handle { return a.ref }

func (a *TableAdapter) table() *model.Table {
	c, ok := a.reg.Resolve(a.ref)
	if !ok {
		return nil
	}
	tb, ok := c.(TableBacked)
	if !ok {
		return nil
	}
	return tb.Table()
}

// Columns returns the column specs, or nil for a dead handle.
func (a *TableAdapter) Columns() []model.ColumnSpec {
	if t := a.table(); t != nil {
		return t.Columns()
	}
	return nil
}

// RowCount returns the number of visible rows.
func (a *TableAdapter) RowCount() int {
	if t := a.table(); t != nil {
		return t.VisibleLen()
	}
	return 0
}

// RowID returns the id of the visible row r.
func (a *TableAdapter) RowID(r int) string {
	t := a.table()
	if t == nil {
		return ""
	}
	row, ok := t.VisibleRow(r)
	if !ok {
		return ""
	}
	return row.ID
}

// CellAt returns the value at visible row r, column c.
func (a *TableAdapter) CellAt(r, c int) string {
	t := a.table()
	if t == nil {
		return ""
	}
	row, ok := t.VisibleRow(r)
	if !ok || c < 0 || c >= len(row.Values) {
		return ""
	}
	return row.Values[c]
}

// ChildCount treats the table as a flat list under Root.
func (a *TableAdapter) ChildCount(item string) int {
	if item != Root {
		return 0
	}
	return a.RowCount()
}

// ChildAt returns the id of the i-th visible row.
func (a *TableAdapter) ChildAt(item string, i int) string {
	if item != Root {
		return ""
	}
	return a.RowID(i)
}

// ValueAt returns the named column of the row with id item.
func (a *TableAdapter) ValueAt(item, column string) string {
	t := a.table()
	if t == nil {
		return ""
	}
	return t.Cell(t.IndexOf(item), column)
}
