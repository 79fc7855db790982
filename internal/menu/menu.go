// Package menu parses script menu descriptors and tracks the presentation
// state of context menus.
package menu

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/atomicstack/nativebridge/internal/native"
	"github.com/atomicstack/nativebridge/internal/protocol"
)

// Entry is one row of a menu descriptor.
type Entry struct {
	ID        string
	Label     string
	Icon      string
	Shortcut  string
	Enabled   bool
	Checked   bool
	Separator bool
	Submenu   []Entry
}

// Descriptor is an ordered menu description supplied by script.
type Descriptor struct {
	Entries []Entry
	index   *Index
}

// Parse builds a descriptor from a JSON array of entries. Entries may be
// objects or bare strings; the string "-" is a separator.
func Parse(items []protocol.Payload) (*Descriptor, error) {
	entries, err := parseEntries(items, "")
	if err != nil {
		return nil, err
	}
	d := &Descriptor{Entries: entries}
	idx, err := buildIndex(entries)
	if err != nil {
		return nil, err
	}
	d.index = idx
	return d, nil
}

func parseEntries(items []protocol.Payload, parent string) ([]Entry, error) {
	out := make([]Entry, 0, len(items))
	for i, item := range items {
		if s, ok := item.Str(); ok {
			if s == "-" || s == "" {
				out = append(out, Entry{Separator: true})
				continue
			}
			out = append(out, Entry{ID: s, Label: prettyLabel(s), Enabled: true})
			continue
		}
		if !item.IsObject() {
			return nil, protocol.Errorf(protocol.CodeInvalidPayload, "menu entry %d%s must be an object or string", i, under(parent))
		}
		if item.Bool("separator", false) || item.String("type", "") == "separator" {
			out = append(out, Entry{Separator: true})
			continue
		}
		id := item.String("id", "")
		label := item.String("label", item.String("title", ""))
		if id == "" && label == "" {
			return nil, protocol.Errorf(protocol.CodeMissingData, "menu entry %d%s needs an id or label", i, under(parent))
		}
		if id == "" {
			id = slug(label)
		}
		if label == "" {
			label = prettyLabel(id)
		}
		e := Entry{
			ID:       id,
			Label:    label,
			Icon:     item.String("icon", ""),
			Shortcut: item.String("shortcut", item.String("keyEquivalent", "")),
			Enabled:  item.Bool("enabled", true),
			Checked:  item.Bool("checked", false),
		}
		if sub := item.Array("submenu"); len(sub) > 0 {
			children, err := parseEntries(sub, id)
			if err != nil {
				return nil, err
			}
			e.Submenu = children
		}
		out = append(out, e)
	}
	return out, nil
}

func under(parent string) string {
	if parent == "" {
		return ""
	}
	return fmt.Sprintf(" under %q", parent)
}

// Find returns the entry whose id is id, searching submenus.
func (d *Descriptor) Find(id string) (Entry, bool) {
	if d == nil || d.index == nil {
		return Entry{}, false
	}
	return d.index.Find(id)
}

// Len counts selectable entries, including those in submenus.
func (d *Descriptor) Len() int {
	if d == nil || d.index == nil {
		return 0
	}
	return d.index.Len()
}

// Native converts the descriptor into toolkit menu items.
func (d *Descriptor) Native() []native.MenuItem {
	if d == nil {
		return nil
	}
	return toNative(d.Entries)
}

func toNative(entries []Entry) []native.MenuItem {
	out := make([]native.MenuItem, 0, len(entries))
	for _, e := range entries {
		item := native.MenuItem{
			ID:        e.ID,
			Label:     e.Label,
			Icon:      e.Icon,
			Shortcut:  e.Shortcut,
			Enabled:   e.Enabled,
			Checked:   e.Checked,
			Separator: e.Separator,
		}
		if len(e.Submenu) > 0 {
			item.Submenu = toNative(e.Submenu)
		}
		out = append(out, item)
	}
	return out
}

func prettyLabel(id string) string {
	if id == "" {
		return id
	}
	parts := strings.FieldsFunc(id, func(r rune) bool {
		return r == '-' || r == '_' || r == ' ' || r == ':'
	})
	for i, part := range parts {
		runes := []rune(part)
		if len(runes) == 0 {
			continue
		}
		if i == 0 {
			runes[0] = unicode.ToUpper(runes[0])
		}
		for j := 1; j < len(runes); j++ {
			runes[j] = unicode.ToLower(runes[j])
		}
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}

func slug(label string) string {
	fields := strings.FieldsFunc(strings.ToLower(label), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, "-")
}
