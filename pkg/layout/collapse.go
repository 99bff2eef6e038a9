package layout

import "github.com/matzehuels/orgchart/pkg/hierarchy"

// CollapseState maps node ids to an explicit collapsed flag. Absent entries
// fall back to the detail-level default.
type CollapseState map[string]bool

// Collapsed reports the effective state of a node at the given level (root
// is level 1). An explicit entry always wins; otherwise nodes deeper than
// detailLevel are collapsed.
func (s CollapseState) Collapsed(id string, level, detailLevel int) bool {
	if v, ok := s[id]; ok {
		return v
	}
	return level > max(detailLevel, 1)
}

// Toggle flips the effective state of id and records it explicitly. It
// returns the new collapsed flag.
func (s CollapseState) Toggle(id string, level, detailLevel int) bool {
	v := !s.Collapsed(id, level, detailLevel)
	s[id] = v
	return v
}

// ExpandToLevel records explicit entries matching the default of a detail
// level: nodes at or above level are expanded, deeper nodes are collapsed.
func (s CollapseState) ExpandToLevel(root *hierarchy.OrgNode, level int) {
	hierarchy.Walk(root, func(n *hierarchy.OrgNode, l int) bool {
		if !n.IsLeaf() {
			s[n.ID] = l > level
		}
		return true
	})
}

// Reset removes every explicit entry.
func (s CollapseState) Reset() { clear(s) }

// Clone returns an independent copy of s.
func (s CollapseState) Clone() CollapseState {
	out := make(CollapseState, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
