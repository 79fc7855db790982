package menu

import (
	"strings"

	"github.com/atomicstack/nativebridge/internal/protocol"
)

// Index resolves entry ids across a descriptor's submenus. Each entry is
// also reachable by its path, e.g. "edit:copy".
type Index struct {
	byID   map[string]Entry
	byPath map[string]Entry
}

func buildIndex(entries []Entry) (*Index, error) {
	idx := &Index{byID: make(map[string]Entry), byPath: make(map[string]Entry)}
	if err := idx.add(entries, ""); err != nil {
		return nil, err
	}
	return idx, nil
}

func (i *Index) add(entries []Entry, prefix string) error {
	for _, e := range entries {
		if e.Separator {
			continue
		}
		if _, dup := i.byID[e.ID]; dup {
			return protocol.Errorf(protocol.CodeInvalidPayload, "menu entry %q declared twice", e.ID)
		}
		path := e.ID
		if prefix != "" {
			path = prefix + ":" + e.ID
		}
		i.byID[e.ID] = e
		i.byPath[path] = e
		if err := i.add(e.Submenu, path); err != nil {
			return err
		}
	}
	return nil
}

// Find looks up id, falling back to a path lookup and then to the last path
// component.
func (i *Index) Find(id string) (Entry, bool) {
	if e, ok := i.byID[id]; ok {
		return e, true
	}
	if e, ok := i.byPath[id]; ok {
		return e, true
	}
	if _, key := parentKey(id); key != id {
		e, ok := i.byID[key]
		return e, ok
	}
	return Entry{}, false
}

// Len returns the number of selectable entries.
func (i *Index) Len() int { return len(i.byID) }

func parentKey(id string) (string, string) {
	if !strings.Contains(id, ":") {
		return "", id
	}
	idx := strings.LastIndex(id, ":")
	return id[:idx], id[idx+1:]
}
