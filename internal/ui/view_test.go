package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atomicstack/nativebridge/internal/native"
	"github.com/atomicstack/nativebridge/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
)

func TestSplitSizes(t *testing.T) {
	cases := []struct {
		total    int
		position float64
		n        int
		want     []int
	}{
		{100, 0.3, 2, []int{30, 70}},
		{10, 0.99, 3, []int{8, 1, 1}},
		{10, 0, 2, []int{1, 9}},
		{7, 0.5, 1, []int{7}},
	}
	for _, tc := range cases {
		got := splitSizes(tc.total, tc.position, tc.n)
		if len(got) != len(tc.want) {
			t.Fatalf("splitSizes(%d, %v, %d): expected %v, got %v", tc.total, tc.position, tc.n, tc.want, got)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("splitSizes(%d, %v, %d): expected %v, got %v", tc.total, tc.position, tc.n, tc.want, got)
			}
		}
	}
}

func TestOverlayBlock(t *testing.T) {
	got := overlayBlock("aaaa\nbbbb\ncccc", "XY", 1, 1)
	if got != "aaaa\nbXY\ncccc" {
		t.Fatalf("expected block spliced at 1,1, got %q", got)
	}
	got = overlayBlock("ab", "XY\nZZ", 4, 0)
	if got != "ab  XY" {
		t.Fatalf("expected short lines padded and overflow dropped, got %q", got)
	}
}

func TestMenuLinesFlattenSubmenus(t *testing.T) {
	lines := menuLines([]native.MenuItem{
		{ID: "open", Label: "Open", Enabled: true},
		{Separator: true},
		{ID: "share", Label: "Share", Enabled: true, Submenu: []native.MenuItem{
			{ID: "mail", Label: "Mail", Enabled: true},
			{ID: "fax", Label: "Fax"},
		}},
	}, 0)
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
	if lines[3].ID != "mail" || lines[3].Depth != 1 {
		t.Fatalf("expected mail nested one level, got %+v", lines[3])
	}
	for i, want := range []bool{true, false, false, true, false} {
		if got := lines[i].selectable(); got != want {
			t.Fatalf("line %d (%s): expected selectable %v, got %v", i, lines[i].ID, want, got)
		}
	}

	o := &menuOverlay{lines: lines, cursor: -1}
	o.move(1)
	if o.cursor != 0 {
		t.Fatalf("expected first selectable line, got %d", o.cursor)
	}
	o.move(1)
	if o.cursor != 3 {
		t.Fatalf("expected move to skip the separator and parent, got %d", o.cursor)
	}
	o.move(1)
	if o.cursor != 0 {
		t.Fatalf("expected move to wrap, got %d", o.cursor)
	}
}

func TestBuildRowLine(t *testing.T) {
	row := state.Row{ID: "docs", Label: "Documents", Icon: "📁", Badge: "3", Depth: 1, Expandable: true}
	line := buildRowLine(row, true, 40)
	for _, want := range []string{"▌", "▸", "Documents", " 3 "} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	row.Expanded = true
	if line := buildRowLine(row, false, 40); !strings.Contains(line, "▾") {
		t.Fatalf("expected an open disclosure, got %q", line)
	}
}

func TestEmptyWindow(t *testing.T) {
	m := NewModel(Options{Title: "Empty"}, nil)
	h := NewHarness(m)
	h.Send(tea.WindowSizeMsg{Width: 60, Height: 12})
	view := h.View()
	if !strings.Contains(view, "(no widgets)") || !strings.Contains(view, "Empty") {
		t.Fatalf("expected placeholder view, got:\n%s", view)
	}
	if lines := strings.Split(view, "\n"); len(lines) != 12 {
		t.Fatalf("expected 12 lines, got %d", len(lines))
	}
}

func TestPreviewLines(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "blob"), []byte{0x7f, 0, 1}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "text"), []byte("a\tb\nc\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	lines, err := previewLines(dir)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if strings.Join(lines, ",") != "blob,sub"+string(filepath.Separator)+",text" {
		t.Fatalf("unexpected listing %v", lines)
	}
	lines, err = previewLines(filepath.Join(dir, "blob"))
	if err != nil || len(lines) != 1 || lines[0] != "binary file, 3 bytes" {
		t.Fatalf("expected binary note, got %v (%v)", lines, err)
	}
	lines, err = previewLines(filepath.Join(dir, "text"))
	if err != nil || strings.Join(lines, "|") != "a    b|c" {
		t.Fatalf("expected expanded text, got %v (%v)", lines, err)
	}
	if _, err := previewLines(filepath.Join(dir, "missing")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestStalePreviewResultIgnored(t *testing.T) {
	calls := 0
	orig := previewLinesFn
	previewLinesFn = func(path string) ([]string, error) {
		calls++
		return []string{"body of " + path}, nil
	}
	defer func() { previewLinesFn = orig }()

	m := NewModel(Options{Width: 80, Height: 20}, func(fn func()) { fn() })
	h := NewHarness(m)
	h.Send(previewOpenMsg{token: "p", items: []native.PreviewItem{{Path: "/one"}, {Path: "/two"}}})
	h.Send(previewLoadedMsg{token: "p", seq: 0, lines: []string{"stale"}})
	h.Key(tea.KeyRight)
	view := h.View()
	if strings.Contains(view, "stale") || !strings.Contains(view, "body of /two") {
		t.Fatalf("expected the second item, got:\n%s", view)
	}
	if calls != 2 {
		t.Fatalf("expected two loads, got %d", calls)
	}
}
