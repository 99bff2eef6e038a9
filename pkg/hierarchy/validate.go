package hierarchy

import "github.com/matzehuels/orgchart/pkg/errors"

// Entry is the per-node information recorded by an Index.
type Entry struct {
	Node     *OrgNode
	ParentID string // empty for the root
	Level    int    // 1 for the root
}

// Index maps node ids to their position in a validated tree.
type Index struct {
	entries map[string]Entry
	order   []string // pre-order
}

// NewIndex validates root and indexes it in one traversal. A nil root yields
// an empty index.
func NewIndex(root *OrgNode) (*Index, error) {
	idx := &Index{entries: make(map[string]Entry)}
	if root == nil {
		return idx, nil
	}

	const (
		white = iota
		gray
		black
	)
	color := make(map[*OrgNode]int)

	var visit func(n *OrgNode, parentID string, level int) error
	visit = func(n *OrgNode, parentID string, level int) error {
		if n == nil {
			return errors.Structural("nil child under %q", parentID)
		}
		switch color[n] {
		case gray:
			return errors.Structural("cycle detected at node %q", n.ID)
		case black:
			return errors.Structural("node %q is reachable from more than one parent", n.ID)
		}
		if n.ID == "" {
			return errors.Structural("node under %q has an empty id", parentID)
		}
		if _, dup := idx.entries[n.ID]; dup {
			return errors.Structural("duplicate node id %q", n.ID)
		}

		color[n] = gray
		idx.entries[n.ID] = Entry{Node: n, ParentID: parentID, Level: level}
		idx.order = append(idx.order, n.ID)
		for _, c := range n.Children {
			if err := visit(c, n.ID, level+1); err != nil {
				return err
			}
		}
		color[n] = black
		return nil
	}

	if err := visit(root, "", 1); err != nil {
		return nil, err
	}
	return idx, nil
}

// Validate checks that root is a proper tree: no cycles, no shared subtrees,
// no empty or duplicate ids. A nil root is valid.
func Validate(root *OrgNode) error {
	_, err := NewIndex(root)
	return err
}

// Lookup returns the entry for id.
func (x *Index) Lookup(id string) (Entry, bool) {
	e, ok := x.entries[id]
	return e, ok
}

// Node returns the node for id, or nil.
func (x *Index) Node(id string) *OrgNode {
	return x.entries[id].Node
}

// Level returns the level of id (1 for the root), or 0 if unknown.
func (x *Index) Level(id string) int {
	return x.entries[id].Level
}

// Len returns the number of indexed nodes.
func (x *Index) Len() int { return len(x.order) }

// IDs returns all node ids in pre-order.
func (x *Index) IDs() []string { return x.order }

// Ancestors returns the ids from id's parent up to the root.
func (x *Index) Ancestors(id string) []string {
	var out []string
	for e, ok := x.entries[id]; ok && e.ParentID != ""; e, ok = x.entries[e.ParentID] {
		out = append(out, e.ParentID)
	}
	return out
}
