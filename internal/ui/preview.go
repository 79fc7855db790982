package ui

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// previewReadLimit caps how much of a file the preview panel reads.
const previewReadLimit = 64 << 10

type previewLoadedMsg struct {
	token string
	seq   int
	lines []string
	err   error
}

var previewLinesFn = previewLines

// loadPreview starts loading the current preview item. Results carry a
// sequence number so a slow read never overwrites a newer item.
func (m *Model) loadPreview() tea.Cmd {
	o := m.preview
	if o == nil {
		return nil
	}
	o.seq++
	o.loading = true
	o.err = ""
	o.body.SetContent("")
	token, seq := o.token, o.seq
	path := o.items[o.index].Path
	return func() tea.Msg {
		lines, err := previewLinesFn(path)
		return previewLoadedMsg{token: token, seq: seq, lines: lines, err: err}
	}
}

func (m *Model) handlePreviewLoaded(msg tea.Msg) tea.Cmd {
	loaded := msg.(previewLoadedMsg)
	o := m.preview
	if o == nil || o.token != loaded.token || o.seq != loaded.seq {
		return nil
	}
	o.loading = false
	if loaded.err != nil {
		o.err = loaded.err.Error()
		return nil
	}
	o.body.SetContent(strings.Join(loaded.lines, "\n"))
	o.body.GotoTop()
	return nil
}

// previewLines renders a file's text, a directory listing, or a note for
// binary content.
func previewLines(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("nothing to preview")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		lines := make([]string, 0, len(entries))
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() {
				name += string(filepath.Separator)
			}
			lines = append(lines, name)
		}
		if len(lines) == 0 {
			lines = append(lines, "(empty folder)")
		}
		return lines, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, previewReadLimit))
	if err != nil {
		return nil, err
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return []string{fmt.Sprintf("binary file, %d bytes", info.Size())}, nil
	}
	text := strings.ReplaceAll(string(data), "\t", "    ")
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if info.Size() > previewReadLimit {
		lines = append(lines, "…")
	}
	return lines, nil
}
