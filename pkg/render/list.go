package render

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/matzehuels/orgchart/pkg/hierarchy"
	"github.com/matzehuels/orgchart/pkg/layout"
)

// ListStyles styles the list display mode. The zero value renders plain text.
type ListStyles struct {
	Name       lipgloss.Style
	Role       lipgloss.Style
	Collapsed  lipgloss.Style
	Enumerator lipgloss.Style
}

// ListText renders the visible hierarchy as an indented tree, one node per
// line. Collapsed nodes show the number of hidden descendants.
func ListText(root *hierarchy.OrgNode, collapse layout.CollapseState, detailLevel int, styles ListStyles) string {
	if root == nil {
		return ""
	}
	t := tree.Root(listLabel(root, false, styles)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(styles.Enumerator)
	if !root.IsLeaf() && collapse.Collapsed(root.ID, 1, detailLevel) {
		t = tree.Root(listLabel(root, true, styles))
	} else {
		addChildren(t, root, 1, collapse, detailLevel, styles)
	}
	return t.String()
}

func addChildren(t *tree.Tree, n *hierarchy.OrgNode, level int, collapse layout.CollapseState, detail int, st ListStyles) {
	for _, c := range n.Children {
		collapsed := !c.IsLeaf() && collapse.Collapsed(c.ID, level+1, detail)
		if c.IsLeaf() || collapsed {
			t.Child(listLabel(c, collapsed, st))
			continue
		}
		sub := tree.Root(listLabel(c, false, st))
		addChildren(sub, c, level+1, collapse, detail, st)
		t.Child(sub)
	}
}

func listLabel(n *hierarchy.OrgNode, collapsed bool, st ListStyles) string {
	label := st.Name.Render(n.Label())
	if role := n.Attributes.Role(); role != "" {
		label += " " + st.Role.Render("· "+role)
	}
	if collapsed {
		label += " " + st.Collapsed.Render(fmt.Sprintf("(+%d)", hierarchy.Count(n)-1))
	}
	return label
}
