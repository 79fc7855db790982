package native

import (
	"sync"

	"github.com/atotto/clipboard"
)

// SystemClipboard reads and writes the desktop clipboard.
type SystemClipboard struct{}

// ReadText returns the clipboard's text content.
func (SystemClipboard) ReadText() (string, error) {
	return clipboard.ReadAll()
}

// WriteText replaces the clipboard's content.
func (SystemClipboard) WriteText(text string) error {
	return clipboard.WriteAll(text)
}

// Available reports whether a clipboard utility was found on this system.
func (SystemClipboard) Available() bool {
	return !clipboard.Unsupported
}

// MemoryClipboard is a process-local clipboard used when no system one
// exists.
type MemoryClipboard struct {
	mu   sync.Mutex
	text string
}

// ReadText returns the stored text.
func (m *MemoryClipboard) ReadText() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

// WriteText stores text.
func (m *MemoryClipboard) WriteText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}

// DefaultClipboard returns the system clipboard when supported and an
// in-memory one otherwise.
func DefaultClipboard() Clipboard {
	if (SystemClipboard{}).Available() {
		return SystemClipboard{}
	}
	return &MemoryClipboard{}
}
