package widgets

import (
	"path"
	"strconv"
	"strings"

	"github.com/atomicstack/nativebridge/internal/adapter"
	"github.com/atomicstack/nativebridge/internal/bridge"
	"github.com/atomicstack/nativebridge/internal/model"
	"github.com/atomicstack/nativebridge/internal/native"
	"github.com/atomicstack/nativebridge/internal/protocol"
	"github.com/atomicstack/nativebridge/internal/registry"
)

// FileBrowser is the registry component of the fileBrowser domain.
type FileBrowser struct {
	table    *model.Table
	view     native.FileBrowser
	reload   *adapter.Coalescer
	selected string
}

// Table implements adapter.TableBacked.
func (f *FileBrowser) Table() *model.Table { return f.table }

// Selected returns the selected row id.
func (f *FileBrowser) Selected() string { return f.selected }

// Release implements registry.Component.
func (f *FileBrowser) Release() {
	f.reload.Stop()
	if f.view != nil {
		f.view.Close()
	}
}

// FileBrowserActions returns the fileBrowser domain's action table.
func (w *Widgets) FileBrowserActions() bridge.Actions {
	return bridge.Actions{
		"create":         w.createFileBrowser,
		"addRow":         w.addRow,
		"addFiles":       w.addFiles,
		"removeRows":     w.removeRows,
		"clear":          w.clearRows,
		"setSelectedRow": w.setSelectedRow,
		"filter":         w.filterRows,
		"destroy":        w.destroyFileBrowser,
	}
}

func (w *Widgets) fileBrowser(req *bridge.Request) (*FileBrowser, registry.Handle, error) {
	id, err := req.Data.RequireString("id")
	if err != nil {
		return nil, registry.Handle{}, err
	}
	c, h, err := w.reg.Get(protocol.DomainFileBrowser, id)
	if err != nil {
		return nil, registry.Handle{}, err
	}
	return c.(*FileBrowser), h, nil
}

func (w *Widgets) createFileBrowser(req *bridge.Request) (interface{}, error) {
	cols, err := model.ColumnsFromPayload(req.Data.Array("columns"))
	if err != nil {
		return nil, err
	}
	table := model.NewTable(cols)
	h, err := w.reg.Create(protocol.DomainFileBrowser, req.Data.String("id", ""), func(h registry.Handle) (registry.Component, error) {
		f := &FileBrowser{table: table}
		view, err := w.kit.NewFileBrowser(h.ID, adapter.NewTable(w.reg, h), w.gestures(h, func(id string) { f.selected = id }))
		if err != nil {
			return nil, protocol.Wrap(protocol.CodeNativeCallFailed, err, "create file browser view")
		}
		f.view = view
		f.reload = adapter.NewCoalescer(h.ID, w.sched, w.coalesce, view.Reload)
		return f, nil
	})
	if err != nil {
		return nil, err
	}
	ids := make([]interface{}, 0, len(cols))
	for _, c := range cols {
		ids = append(ids, c.ID)
	}
	return map[string]interface{}{"id": h.ID, "columns": ids}, nil
}

func (w *Widgets) addRow(req *bridge.Request) (interface{}, error) {
	f, _, err := w.fileBrowser(req)
	if err != nil {
		return nil, err
	}
	row := req.Data.Get("row")
	if !row.Exists() {
		return nil, protocol.Errorf(protocol.CodeMissingData, "addRow requires row")
	}
	if !row.IsObject() {
		return nil, protocol.Errorf(protocol.CodeInvalidPayload, "row must be an object")
	}
	values := model.RowValuesFromPayload(row)
	delete(values, "id")
	id, err := f.table.Append(row.String("id", ""), values)
	if err != nil {
		return nil, err
	}
	f.reload.Request()
	return map[string]interface{}{"rowId": id}, nil
}

type fileRow struct {
	id     string
	values map[string]string
}

// fileRowFromPayload accepts a bare path string or an object with path,
// name, size, modified and kind. The path doubles as the row id.
func fileRowFromPayload(p protocol.Payload) (fileRow, error) {
	if s, ok := p.Str(); ok {
		return newFileRow(s, nil), nil
	}
	if !p.IsObject() {
		return fileRow{}, protocol.Errorf(protocol.CodeInvalidPayload, "file entry must be a path or an object")
	}
	filePath := p.String("path", "")
	if filePath == "" {
		filePath = p.String("name", "")
	}
	if filePath == "" {
		return fileRow{}, protocol.Errorf(protocol.CodeMissingData, "file entry requires path")
	}
	return newFileRow(filePath, model.RowValuesFromPayload(p)), nil
}

func newFileRow(filePath string, given map[string]string) fileRow {
	values := map[string]string{
		"name": path.Base(filePath),
		"kind": fileKind(filePath),
	}
	for k, v := range given {
		if v != "" {
			values[k] = v
		}
	}
	if size, err := strconv.ParseInt(values["size"], 10, 64); err == nil {
		values["size"] = formatSize(size)
	}
	delete(values, "path")
	return fileRow{id: filePath, values: values}
}

func fileKind(filePath string) string {
	if strings.HasSuffix(filePath, "/") {
		return "Folder"
	}
	ext := strings.TrimPrefix(path.Ext(filePath), ".")
	if ext == "" {
		return "Document"
	}
	return strings.ToUpper(ext) + " file"
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(n)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "B"
}

// addFiles appends every entry or none: the batch is validated before the
// table is touched, so a bad entry leaves the browser unchanged.
func (w *Widgets) addFiles(req *bridge.Request) (interface{}, error) {
	f, _, err := w.fileBrowser(req)
	if err != nil {
		return nil, err
	}
	if !req.Data.Get("files").IsArray() {
		return nil, protocol.Errorf(protocol.CodeMissingData, "addFiles requires files")
	}
	entries := req.Data.Array("files")
	rows := make([]model.NewRow, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		row, err := fileRowFromPayload(e)
		if err != nil {
			return nil, protocol.Errorf(protocol.CodeOf(err), "files[%d]: %v", i, err)
		}
		if _, dup := seen[row.id]; dup || f.table.IndexOf(row.id) >= 0 {
			return nil, protocol.Errorf(protocol.CodeInvalidPayload, "file %q already listed", row.id)
		}
		seen[row.id] = struct{}{}
		rows = append(rows, model.NewRow{ID: row.id, Values: row.values})
	}
	if _, err := f.table.AppendAll(rows); err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		f.reload.Request()
	}
	return map[string]interface{}{"added": len(rows), "total": f.table.Len()}, nil
}

func (w *Widgets) removeRows(req *bridge.Request) (interface{}, error) {
	f, h, err := w.fileBrowser(req)
	if err != nil {
		return nil, err
	}
	ids := req.Data.Strings("rowIds")
	if len(ids) == 0 {
		if id := req.Data.String("rowId", ""); id != "" {
			ids = []string{id}
		}
	}
	if len(ids) == 0 {
		return nil, protocol.Errorf(protocol.CodeMissingData, "removeRows requires rowIds")
	}
	removed := f.table.Remove(ids...)
	if removed > 0 {
		if f.selected != "" && f.table.IndexOf(f.selected) < 0 {
			f.selected = ""
			w.events.ForgetSelection(h.ID)
		}
		f.reload.Request()
	}
	return map[string]interface{}{"removed": removed}, nil
}

func (w *Widgets) clearRows(req *bridge.Request) (interface{}, error) {
	f, h, err := w.fileBrowser(req)
	if err != nil {
		return nil, err
	}
	removed := f.table.Clear()
	if removed > 0 {
		f.selected = ""
		w.events.ForgetSelection(h.ID)
		f.reload.Request()
	}
	return map[string]interface{}{"removed": removed}, nil
}

func (w *Widgets) setSelectedRow(req *bridge.Request) (interface{}, error) {
	f, h, err := w.fileBrowser(req)
	if err != nil {
		return nil, err
	}
	id, err := req.Data.RequireString("rowId")
	if err != nil {
		return nil, err
	}
	if f.table.IndexOf(id) < 0 {
		return nil, protocol.Errorf(protocol.CodeHandleNotFound, "file browser %q has no row %q", h.ID, id)
	}
	f.selected = id
	f.view.SelectRow(id)
	w.selected(h, id)
	return map[string]interface{}{"rowId": id}, nil
}

func (w *Widgets) filterRows(req *bridge.Request) (interface{}, error) {
	f, _, err := w.fileBrowser(req)
	if err != nil {
		return nil, err
	}
	if f.table.SetFilter(req.Data.String("query", "")) {
		f.reload.Request()
	}
	return map[string]interface{}{"query": f.table.Filter(), "visible": f.table.VisibleLen()}, nil
}

func (w *Widgets) destroyFileBrowser(req *bridge.Request) (interface{}, error) {
	id, err := req.Data.RequireString("id")
	if err != nil {
		return nil, err
	}
	return w.destroy(protocol.DomainFileBrowser, id), nil
}
