package model

import (
	"fmt"

	"github.com/atomicstack/nativebridge/internal/protocol"
)

// Node is one entry of a hierarchy. Sections are top-level nodes.
type Node struct {
	ID       string
	Label    string
	Icon     string
	Badge    string
	Expanded bool
	Children []*Node

	parent *Node
}

// Parent returns the containing node, or nil for sections.
func (n *Node) Parent() *Node { return n.parent }

// Hierarchy is an ordered forest. Every id appears at most once, so a node
// can never be the child of two parents.
type Hierarchy struct {
	roots []*Node
	index map[string]*Node
}

// NewHierarchy returns an empty forest.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{index: make(map[string]*Node)}
}

// Len returns the number of nodes in the forest.
func (h *Hierarchy) Len() int { return len(h.index) }

// Roots returns the top-level nodes.
func (h *Hierarchy) Roots() []*Node { return h.roots }

// Find returns the node with id.
func (h *Hierarchy) Find(id string) (*Node, bool) {
	n, ok := h.index[id]
	return n, ok
}

// Children returns the children of id; the empty id denotes the root.
func (h *Hierarchy) Children(id string) []*Node {
	if id == "" {
		return h.roots
	}
	if n, ok := h.index[id]; ok {
		return n.Children
	}
	return nil
}

// AddSection appends a top-level node. Sections start expanded.
func (h *Hierarchy) AddSection(n *Node) error {
	if err := h.checkNew(n); err != nil {
		return err
	}
	n.Expanded = true
	n.parent = nil
	h.roots = append(h.roots, n)
	h.indexTree(n)
	return nil
}

// AddItem appends n (and any children it carries) under parentID.
func (h *Hierarchy) AddItem(parentID string, n *Node) error {
	parent, ok := h.index[parentID]
	if !ok {
		return protocol.Errorf(protocol.CodeHandleNotFound, "no section or item %q", parentID)
	}
	if err := h.checkNew(n); err != nil {
		return err
	}
	n.parent = parent
	parent.Children = append(parent.Children, n)
	h.indexTree(n)
	return nil
}

// Remove detaches id and its whole subtree.
func (h *Hierarchy) Remove(id string) bool {
	n, ok := h.index[id]
	if !ok {
		return false
	}
	siblings := &h.roots
	if n.parent != nil {
		siblings = &n.parent.Children
	}
	for i, s := range *siblings {
		if s == n {
			*siblings = append((*siblings)[:i:i], (*siblings)[i+1:]...)
			break
		}
	}
	h.unindexTree(n)
	n.parent = nil
	return true
}

// SetExpanded changes the disclosure state of id.
func (h *Hierarchy) SetExpanded(id string, expanded bool) bool {
	n, ok := h.index[id]
	if !ok {
		return false
	}
	changed := n.Expanded != expanded
	n.Expanded = expanded
	return changed
}

// Path returns the ids from the root section down to id.
func (h *Hierarchy) Path(id string) []string {
	n, ok := h.index[id]
	if !ok {
		return nil
	}
	var rev []string
	for cur := n; cur != nil; cur = cur.parent {
		rev = append(rev, cur.ID)
	}
	out := make([]string, len(rev))
	for i := range rev {
		out[i] = rev[len(rev)-1-i]
	}
	return out
}

// Walk visits nodes depth-first in display order. Collapsed nodes are not
// descended unless all is set. Returning false from fn stops the walk.
func (h *Hierarchy) Walk(all bool, fn func(n *Node, depth int) bool) {
	var visit func(nodes []*Node, depth int) bool
	visit = func(nodes []*Node, depth int) bool {
		for _, n := range nodes {
			if !fn(n, depth) {
				return false
			}
			if (all || n.Expanded) && len(n.Children) > 0 {
				if !visit(n.Children, depth+1) {
					return false
				}
			}
		}
		return true
	}
	visit(h.roots, 0)
}

func (h *Hierarchy) checkNew(n *Node) error {
	if n == nil || n.ID == "" {
		return protocol.Errorf(protocol.CodeMissingData, "item requires an id")
	}
	seen := make(map[string]struct{})
	var check func(*Node) error
	check = func(c *Node) error {
		if c.ID == "" {
			return protocol.Errorf(protocol.CodeMissingData, "item under %q requires an id", n.ID)
		}
		if _, dup := seen[c.ID]; dup {
			return protocol.Errorf(protocol.CodeInvalidPayload, "id %q appears twice", c.ID)
		}
		if _, exists := h.index[c.ID]; exists {
			return protocol.Errorf(protocol.CodeInvalidPayload, "id %q already exists", c.ID)
		}
		seen[c.ID] = struct{}{}
		for _, child := range c.Children {
			if err := check(child); err != nil {
				return err
			}
		}
		return nil
	}
	return check(n)
}

func (h *Hierarchy) indexTree(n *Node) {
	h.index[n.ID] = n
	for _, c := range n.Children {
		c.parent = n
		h.indexTree(c)
	}
}

func (h *Hierarchy) unindexTree(n *Node) {
	delete(h.index, n.ID)
	for _, c := range n.Children {
		h.unindexTree(c)
	}
}

// NodeFromPayload builds a node (with nested children) from script data.
func NodeFromPayload(p protocol.Payload) (*Node, error) {
	id, err := p.RequireString("id")
	if err != nil {
		return nil, err
	}
	n := &Node{
		ID:       id,
		Label:    p.String("label", p.String("title", id)),
		Icon:     p.String("icon", ""),
		Badge:    p.String("badge", ""),
		Expanded: p.Bool("expanded", false),
	}
	for i, child := range p.Array("children") {
		c, err := NodeFromPayload(child)
		if err != nil {
			return nil, fmt.Errorf("child %d of %q: %w", i, id, err)
		}
		n.Children = append(n.Children, c)
	}
	return n, nil
}
