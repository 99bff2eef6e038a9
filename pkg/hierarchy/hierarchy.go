package hierarchy

import (
	"slices"
	"strings"

	"github.com/matzehuels/orgchart/pkg/errors"
)

// ViewMode selects which of the organization's hierarchies is browsed.
type ViewMode string

// Supported view modes.
const (
	ViewBusiness    ViewMode = "business"
	ViewLegal       ViewMode = "legal"
	ViewTerritorial ViewMode = "territorial"
)

// ViewModes lists every supported view mode in display order.
func ViewModes() []ViewMode {
	return []ViewMode{ViewBusiness, ViewLegal, ViewTerritorial}
}

// ParseViewMode converts s into a ViewMode. Matching is case-insensitive;
// unknown values are rejected with ErrCodeInvalidViewMode.
func ParseViewMode(s string) (ViewMode, error) {
	m := ViewMode(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(ViewModes(), m) {
		return "", errors.New(errors.ErrCodeInvalidViewMode,
			"unknown view mode %q (must be business, legal or territorial)", s)
	}
	return m, nil
}

// Next returns the view mode after m, wrapping around.
func (m ViewMode) Next() ViewMode {
	modes := ViewModes()
	i := slices.Index(modes, m)
	return modes[(i+1)%len(modes)]
}

func (m ViewMode) String() string { return string(m) }

// Well-known attribute keys.
const (
	AttrName      = "name"
	AttrRole      = "role"
	AttrAvatarRef = "avatarRef"
	AttrEmail     = "email"
)

// Attributes holds the display fields of a node for the active view mode.
// Which keys are populated varies by view mode.
type Attributes map[string]string

func (a Attributes) Name() string      { return a[AttrName] }
func (a Attributes) Role() string      { return a[AttrRole] }
func (a Attributes) AvatarRef() string { return a[AttrAvatarRef] }
func (a Attributes) Email() string     { return a[AttrEmail] }

// OrgNode is a person or position in the hierarchy. Children are ordered;
// siblings render left-to-right in slice order.
type OrgNode struct {
	ID         string     `json:"id" yaml:"id" toml:"id"`
	Attributes Attributes `json:"attributes,omitempty" yaml:"attributes,omitempty" toml:"attributes,omitempty"`
	Children   []*OrgNode `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`
}

// Label returns the node's display name, falling back to its id.
func (n *OrgNode) Label() string {
	if name := n.Attributes.Name(); name != "" {
		return name
	}
	return n.ID
}

// IsLeaf reports whether n has no children.
func (n *OrgNode) IsLeaf() bool { return len(n.Children) == 0 }

// Walk visits the tree in pre-order. level is 1 for the root. Returning false
// from fn skips the node's descendants. Walk does not guard against cycles;
// call Validate first on untrusted trees.
func Walk(root *OrgNode, fn func(n *OrgNode, level int) bool) {
	var visit func(n *OrgNode, level int)
	visit = func(n *OrgNode, level int) {
		if !fn(n, level) {
			return
		}
		for _, c := range n.Children {
			visit(c, level+1)
		}
	}
	if root != nil {
		visit(root, 1)
	}
}

// Find returns the node with the given id, or nil.
func Find(root *OrgNode, id string) *OrgNode {
	var found *OrgNode
	Walk(root, func(n *OrgNode, _ int) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Count returns the number of nodes in the tree.
func Count(root *OrgNode) int {
	count := 0
	Walk(root, func(*OrgNode, int) bool { count++; return true })
	return count
}

// Depth returns the number of levels in the tree (1 for a lone root, 0 for nil).
func Depth(root *OrgNode) int {
	depth := 0
	Walk(root, func(_ *OrgNode, level int) bool {
		depth = max(depth, level)
		return true
	})
	return depth
}
