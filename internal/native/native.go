// Package native declares the widget toolkit the bridge drives.
//
// A toolkit renders widgets and reports user gestures. Every callback a
// toolkit invokes must run on the UI loop; toolkits that render on their
// own goroutine post gestures through the scheduler they were given.
package native

import (
	"github.com/atomicstack/nativebridge/internal/adapter"
)

// Widget is the common surface of every native view.
type Widget interface {
	// Reload re-queries the widget's data source.
	Reload()
	// Close releases the native view. It is called exactly once.
	Close()
}

// Gestures are the user interactions a list or table widget reports.
type Gestures struct {
	Select   func(item string)
	Activate func(item string)
}

// Sidebar is a native outline view.
type Sidebar interface {
	Widget
	Select(item string)
	SetExpanded(item string, expanded bool)
}

// FileBrowser is a native table view.
type FileBrowser interface {
	Widget
	SelectRow(id string)
}

// SplitView arranges child widgets side by side.
type SplitView interface {
	Widget
	SetPosition(fraction float64)
	Attach(children []string)
}

// SplitOptions configure a split view at creation.
type SplitOptions struct {
	Vertical bool
	Position float64
	Children []string
}

// MenuItem is one row of a native menu.
type MenuItem struct {
	ID        string
	Label     string
	Icon      string
	Shortcut  string
	Enabled   bool
	Checked   bool
	Separator bool
	Submenu   []MenuItem
}

// MenuRequest asks the toolkit to pop up a context menu. Exactly one of
// Choose or Dismiss is called, unless the overlay is closed first.
type MenuRequest struct {
	Target  string
	X, Y    float64
	Items   []MenuItem
	Choose  func(itemID string)
	Dismiss func()
}

// DragItem is one payload entry of a drag session or drop.
type DragItem struct {
	ID    string
	Type  string
	Value string
}

// DragRequest starts a native drag. End reports the final operation.
type DragRequest struct {
	Session string
	Source  string
	Items   []DragItem
	End     func(operation string)
}

// DropRequest registers a widget as a drop destination.
type DropRequest struct {
	Target string
	Types  []string
	Drop   func(items []DragItem, operation string)
}

// PreviewItem is one document shown by the preview panel.
type PreviewItem struct {
	Path  string
	Title string
}

// PreviewRequest opens the quick-preview panel. Closed is called when the
// user dismisses it.
type PreviewRequest struct {
	Items  []PreviewItem
	Index  int
	Source string
	Closed func()
}

// Overlay is a transient native interaction that can be cancelled.
type Overlay interface {
	Close()
}

// Toolkit creates native widgets and overlays for one window.
type Toolkit interface {
	NewSidebar(id string, src adapter.Enumerable, g Gestures) (Sidebar, error)
	NewFileBrowser(id string, src adapter.TableSource, g Gestures) (FileBrowser, error)
	NewSplitView(id string, opts SplitOptions) (SplitView, error)
	ShowMenu(req MenuRequest) (Overlay, error)
	BeginDrag(req DragRequest) (Overlay, error)
	RegisterDropTarget(req DropRequest) (Overlay, error)
	ShowPreview(req PreviewRequest) (Overlay, error)
	SetTitle(title string)
	Close()
}

// Clipboard exposes the system pasteboard.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(text string) error
}
