package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/atomicstack/nativebridge/internal/format/table"
	"github.com/atomicstack/nativebridge/internal/ui/state"
	btable "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	previewPanelMinWidth = 30  // below this the preview covers the whole body
	previewPanelFraction = 0.6 // share of the body given to the preview panel
)

// View implements tea.Model.
func (m *Model) View() string {
	width, height := m.size()
	bodyH := height - 2
	if bodyH < 3 {
		bodyH = 3
	}
	bodyW := width

	var panel string
	if m.preview != nil {
		pw := int(float64(width) * previewPanelFraction)
		if pw < previewPanelMinWidth || width-pw < previewPanelMinWidth/2 {
			pw = width
		}
		panel = m.renderPreviewPanel(pw, bodyH)
		bodyW = width - pw
	}

	body := panel
	if bodyW > 0 {
		body = m.renderRoots(bodyW, bodyH)
		if panel != "" {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, panel)
		}
	}
	if m.menu != nil {
		block := m.renderMenu()
		x := (width - lipgloss.Width(block)) / 2
		y := (bodyH - lipgloss.Height(block)) / 2
		body = overlayBlock(body, block, x, y)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.header(width), body, m.statusLine(width))
}

func (m *Model) size() (int, int) {
	width, height := m.width, m.height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	return width, height
}

func (m *Model) header(width int) string {
	title := m.title
	if title == "" {
		title = "nativebridge"
	}
	return styles.Title.Width(width).Render(ansi.Truncate(" "+title, width, "…"))
}

// paneRows is how many rows fit in p at the current size; it drives paging.
func (m *Model) paneRows(p *pane) int {
	_, height := m.size()
	rows := height - 2 - 3
	if p.kind == paneTable {
		rows -= 2
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Model) renderRoots(width, height int) string {
	roots := m.roots()
	if len(roots) == 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, styles.Empty.Render("(no widgets)"))
	}
	sizes := evenSizes(width, len(roots))
	blocks := make([]string, 0, len(roots))
	for i, id := range roots {
		blocks = append(blocks, m.renderPane(id, sizes[i], height, map[string]bool{}))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}

func (m *Model) renderPane(id string, width, height int, seen map[string]bool) string {
	p, ok := m.panes[id]
	if !ok || seen[id] || width < 1 || height < 1 {
		return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, "")
	}
	seen[id] = true
	if p.kind == paneSplit {
		return m.renderSplit(p, width, height, seen)
	}
	return m.renderBox(p, width, height)
}

// renderSplit lays children side by side when the divider is vertical and
// stacked otherwise. The first child gets position of the space.
func (m *Model) renderSplit(p *pane, width, height int, seen map[string]bool) string {
	var children []string
	for _, id := range p.children {
		if _, ok := m.panes[id]; ok {
			children = append(children, id)
		}
	}
	if len(children) == 0 {
		return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, "")
	}
	total := height
	if p.vertical {
		total = width
	}
	sizes := splitSizes(total, p.position, len(children))
	blocks := make([]string, len(children))
	for i, id := range children {
		if p.vertical {
			blocks[i] = m.renderPane(id, sizes[i], height, seen)
		} else {
			blocks[i] = m.renderPane(id, width, sizes[i], seen)
		}
	}
	if p.vertical {
		return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

func splitSizes(total int, position float64, n int) []int {
	if n <= 1 {
		return []int{total}
	}
	first := int(math.Round(float64(total) * position))
	if first < 1 {
		first = 1
	}
	if limit := total - (n - 1); first > limit {
		first = limit
	}
	return append([]int{first}, evenSizes(total-first, n-1)...)
}

func evenSizes(total, n int) []int {
	sizes := make([]int, n)
	for i := range sizes {
		sizes[i] = total / n
	}
	if n > 0 {
		sizes[n-1] += total - (total/n)*n
	}
	return sizes
}

// renderBox draws a list or table pane with a border, a title line and as
// many rows as fit.
func (m *Model) renderBox(p *pane, width, height int) string {
	innerW, innerH := width-2, height-2
	if innerW < 1 || innerH < 1 {
		return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, "")
	}
	focused := p.id == m.focus
	lines := []string{m.paneTitle(p, focused, innerW)}
	rowsH := innerH - 1
	if p.kind == paneTable {
		lines = append(lines, m.renderGrid(p, focused, innerW, rowsH)...)
	} else {
		lines = append(lines, m.renderList(p, innerW, rowsH)...)
	}
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, innerW, "")
	}
	style := styles.Pane
	if focused {
		style = styles.FocusedPane
	}
	return style.Width(innerW).Height(innerH).MaxHeight(height).Render(strings.Join(lines, "\n"))
}

func (m *Model) paneTitle(p *pane, focused bool, width int) string {
	title := p.list.Title
	if p.dropToken != "" {
		title += " " + styles.DropTarget.Render("⇣")
	}
	if p.list.Filter != "" {
		title += fmt.Sprintf("  /%s (%d)", p.list.Filter, len(p.list.Rows))
	}
	style := styles.PaneTitle
	if focused {
		style = styles.FocusedTitle
	}
	return style.Render(ansi.Truncate(title, width, "…"))
}

func emptyLine(l *state.List, what string) string {
	if l.Filter != "" {
		return styles.Empty.Render(fmt.Sprintf("No matches for %q", l.Filter))
	}
	return styles.Empty.Render("(no " + what + ")")
}

func (m *Model) renderList(p *pane, width, height int) []string {
	l := p.list
	if len(l.Rows) == 0 {
		return []string{emptyLine(l, "items")}
	}
	l.EnsureCursorVisible(height)
	end := l.ViewportOffset + height
	if end > len(l.Rows) {
		end = len(l.Rows)
	}
	lines := make([]string, 0, end-l.ViewportOffset)
	for i := l.ViewportOffset; i < end; i++ {
		lines = append(lines, buildRowLine(l.Rows[i], i == l.Cursor, width))
	}
	return lines
}

// buildRowLine renders one outline row: indicator, indent, disclosure
// glyph, label and a right-aligned badge.
func buildRowLine(row state.Row, atCursor bool, width int) string {
	lineStyle, glyphStyle := styles.Row, styles.RowIndicator
	if atCursor {
		lineStyle, glyphStyle = styles.CursorRow, styles.CursorGlyph
	}
	disclosure := "  "
	if row.Expandable {
		disclosure = "▸ "
		if row.Expanded {
			disclosure = "▾ "
		}
	}
	label := strings.Repeat("  ", row.Depth) + disclosure
	if row.Icon != "" {
		label += row.Icon + " "
	}
	label += row.Label

	badge := ""
	if row.Badge != "" {
		badge = " " + row.Badge + " "
	}
	textW := width - 2 - ansi.StringWidth(badge)
	if textW < 1 {
		textW, badge = width-2, ""
	}
	line := glyphStyle.Render("▌") + lineStyle.Render(" "+table.Pad(label, textW, table.AlignLeft))
	if badge != "" {
		line += styles.Badge.Render(badge)
	}
	return line
}

func newGrid() btable.Model {
	s := btable.DefaultStyles()
	s.Header = styles.TableHeader.Copy().Padding(0, 1)
	s.Cell = lipgloss.NewStyle().Padding(0, 1)
	s.Selected = styles.CursorRow.Copy()
	return btable.New(btable.WithStyles(s))
}

// gridColumns shrinks column widths proportionally so the table fits.
func gridColumns(columns []column, width int) []btable.Column {
	out := make([]btable.Column, len(columns))
	want := 0
	for i, c := range columns {
		w := c.Width
		if w <= 0 {
			w = ansi.StringWidth(c.Title)
		}
		out[i] = btable.Column{Title: c.Title, Width: w}
		want += w + 2
	}
	if want > width && want > 0 {
		for i := range out {
			w := out[i].Width * (width - 2*len(out)) / (want - 2*len(out))
			if w < 1 {
				w = 1
			}
			out[i].Width = w
		}
	}
	return out
}

func (m *Model) renderGrid(p *pane, focused bool, width, height int) []string {
	if len(p.columns) == 0 || height < 2 {
		return []string{emptyLine(p.list, "columns")}
	}
	cols := gridColumns(p.columns, width)
	rows := make([]btable.Row, len(p.list.Rows))
	for i, row := range p.list.Rows {
		cells := make(btable.Row, len(cols))
		for c := range cols {
			value := ""
			if c < len(row.Cells) {
				value = row.Cells[c]
			}
			cells[c] = table.Pad(value, cols[c].Width, p.columns[c].Align)
		}
		rows[i] = cells
	}
	p.grid.SetColumns(cols)
	p.grid.SetRows(rows)
	p.grid.SetWidth(width)
	p.grid.SetHeight(height)
	if focused {
		p.grid.Focus()
	} else {
		p.grid.Blur()
	}
	if len(rows) == 0 {
		header := strings.Split(p.grid.View(), "\n")
		if len(header) > 2 {
			header = header[:2]
		}
		return append(header, emptyLine(p.list, "rows"))
	}
	p.grid.SetCursor(p.list.Cursor)
	lines := strings.Split(p.grid.View(), "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	return lines
}

func (m *Model) renderMenu() string {
	o := m.menu
	cells := make([][]string, len(o.lines))
	for i, line := range o.lines {
		mark := "  "
		if line.Checked {
			mark = "✓ "
		}
		label := mark + strings.Repeat("  ", line.Depth) + line.Label
		if line.Parent {
			label += " ▸"
		}
		cells[i] = []string{label, line.Shortcut}
	}
	formatted := table.Format(cells, []table.Alignment{table.AlignLeft, table.AlignRight})
	width := 0
	for _, text := range formatted {
		if w := ansi.StringWidth(text); w > width {
			width = w
		}
	}
	out := make([]string, len(o.lines))
	for i, line := range o.lines {
		text := table.Pad(formatted[i], width, table.AlignLeft)
		switch {
		case line.Separator:
			out[i] = styles.MenuSeparator.Render(strings.Repeat("─", width))
		case i == o.cursor:
			out[i] = styles.MenuSelected.Render(text)
		case !line.selectable():
			out[i] = styles.MenuDisabled.Render(text)
		default:
			out[i] = styles.MenuItem.Render(text)
		}
	}
	if len(out) == 0 {
		out = append(out, styles.MenuDisabled.Render("(empty menu)"))
	}
	return styles.Menu.Render(strings.Join(out, "\n"))
}

// overlayBlock paints block over base with its top-left corner at x, y.
// Base cells right of the block on covered lines are dropped.
func overlayBlock(base, block string, x, y int) string {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	baseLines := strings.Split(base, "\n")
	for i, line := range strings.Split(block, "\n") {
		row := y + i
		if row >= len(baseLines) {
			break
		}
		left := ansi.Truncate(baseLines[row], x, "")
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		baseLines[row] = left + line
	}
	return strings.Join(baseLines, "\n")
}

func (m *Model) renderPreviewPanel(width, height int) string {
	o := m.preview
	innerW, innerH := width-2, height-2
	if innerW < 1 || innerH < 2 {
		return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, "")
	}
	item := o.items[o.index]
	label := item.Title
	if label == "" {
		label = item.Path
	}
	title := fmt.Sprintf("%s (%d/%d)", label, o.index+1, len(o.items))
	var lines []string
	switch {
	case o.loading:
		lines = []string{styles.PreviewBody.Render("Loading preview…")}
	case o.err != "":
		lines = []string{styles.PreviewError.Render(o.err)}
	default:
		o.body.Width = innerW
		o.body.Height = innerH - 1
		if !o.body.AtTop() || !o.body.AtBottom() {
			title += styles.PreviewScroll.Render(fmt.Sprintf(" %3.f%%", o.body.ScrollPercent()*100))
		}
		lines = strings.Split(styles.PreviewBody.Render(o.body.View()), "\n")
	}
	lines = append([]string{styles.PreviewTitle.Render(title)}, lines...)
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, innerW, "")
	}
	if len(lines) > innerH {
		lines = lines[:innerH]
	}
	return styles.PreviewBorder.Width(innerW).Height(innerH).Render(strings.Join(lines, "\n"))
}

func (m *Model) statusLine(width int) string {
	var text string
	switch {
	case m.menu != nil:
		text = styles.Status.Render("↑/↓ move  enter choose  esc dismiss")
	case m.preview != nil:
		text = styles.Status.Render("←/→ item  ↑/↓ scroll  esc close")
	case m.drag != nil:
		target := m.focus
		if target == "" {
			target = "nowhere"
		}
		text = styles.Drag.Render(fmt.Sprintf(" dragging %d from %s to %s ", m.drag.count, m.drag.source, target)) +
			styles.Status.Render("  tab target  c copy  m move  l link  esc cancel")
	default:
		if p := m.focusedPane(); p != nil && p.list.Filter != "" {
			text = m.filterPrompt(p.list)
		} else {
			text = styles.Status.Render("tab focus  ↑/↓ move  enter open  type to filter  ctrl+c quit")
		}
	}
	return ansi.Truncate(text, width, "")
}

// filterPrompt renders the filter text with the blinking cursor at its
// rune position.
func (m *Model) filterPrompt(l *state.List) string {
	runes := []rune(l.Filter)
	pos := l.FilterCursorPos()
	char := " "
	after := ""
	if pos < len(runes) {
		char = string(runes[pos])
		after = string(runes[pos+1:])
	}
	m.filterCursor.SetChar(char)
	return styles.FilterPrompt.Render("filter› ") +
		styles.Filter.Render(string(runes[:pos])) +
		m.filterCursor.View() +
		styles.Filter.Render(after)
}
