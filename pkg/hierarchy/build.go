package hierarchy

import (
	"cmp"
	"maps"
	"slices"

	"github.com/matzehuels/orgchart/pkg/errors"
)

// Record is the flat, parent-id form of a node used by data sources and wire
// payloads. Name, Role, AvatarRef and Email are folded into Attributes by
// Build; Attributes may carry additional view-mode specific fields.
type Record struct {
	ID           string            `json:"id" yaml:"id" toml:"id" bson:"id"`
	ParentID     string            `json:"parent_id,omitempty" yaml:"parent_id,omitempty" toml:"parent_id,omitempty" bson:"parent_id,omitempty"`
	Name         string            `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty" bson:"name,omitempty"`
	Role         string            `json:"role,omitempty" yaml:"role,omitempty" toml:"role,omitempty" bson:"role,omitempty"`
	AvatarRef    string            `json:"avatar_ref,omitempty" yaml:"avatar_ref,omitempty" toml:"avatar_ref,omitempty" bson:"avatar_ref,omitempty"`
	Email        string            `json:"email,omitempty" yaml:"email,omitempty" toml:"email,omitempty" bson:"email,omitempty"`
	DisplayOrder int               `json:"display_order,omitempty" yaml:"display_order,omitempty" toml:"display_order,omitempty" bson:"display_order,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty" toml:"attributes,omitempty" bson:"attributes,omitempty"`
}

func (r Record) attributes() Attributes {
	attrs := make(Attributes, len(r.Attributes)+4)
	maps.Copy(attrs, r.Attributes)
	set := func(k, v string) {
		if v != "" {
			attrs[k] = v
		}
	}
	set(AttrName, r.Name)
	set(AttrRole, r.Role)
	set(AttrAvatarRef, r.AvatarRef)
	set(AttrEmail, r.Email)
	return attrs
}

// Build assembles a tree from flat records. Siblings are ordered by
// DisplayOrder, ties keep input order.
//
// Build fails with EMPTY_DATA when records is empty, and with
// STRUCTURAL_INTEGRITY on duplicate ids, unknown parent ids, zero or several
// roots, or records that form a cycle detached from the root.
func Build(records []Record) (*OrgNode, error) {
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyData, "no hierarchy records")
	}

	nodes := make(map[string]*OrgNode, len(records))
	for _, r := range records {
		if r.ID == "" {
			return nil, errors.Structural("record with empty id")
		}
		if _, dup := nodes[r.ID]; dup {
			return nil, errors.Structural("duplicate node id %q", r.ID)
		}
		nodes[r.ID] = &OrgNode{ID: r.ID, Attributes: r.attributes()}
	}

	// Stable sort keeps input order among equal display orders.
	ordered := slices.Clone(records)
	slices.SortStableFunc(ordered, func(a, b Record) int {
		return cmp.Compare(a.DisplayOrder, b.DisplayOrder)
	})

	var root *OrgNode
	for _, r := range ordered {
		n := nodes[r.ID]
		if r.ParentID == "" {
			if root != nil {
				return nil, errors.Structural("multiple roots: %q and %q", root.ID, r.ID)
			}
			root = n
			continue
		}
		if r.ParentID == r.ID {
			return nil, errors.Structural("node %q is its own parent", r.ID)
		}
		parent, ok := nodes[r.ParentID]
		if !ok {
			return nil, errors.Structural("node %q references unknown parent %q", r.ID, r.ParentID)
		}
		parent.Children = append(parent.Children, n)
	}
	if root == nil {
		return nil, errors.Structural("no root node (every record has a parent)")
	}

	// Records forming a closed loop never hang off the root.
	if reached := Count(root); reached != len(records) {
		return nil, errors.Structural("%d records are not reachable from root %q (cycle)",
			len(records)-reached, root.ID)
	}
	return root, nil
}

// Flatten converts a tree back into records in pre-order. DisplayOrder is the
// node's index among its siblings.
func Flatten(root *OrgNode) []Record {
	var out []Record
	var visit func(n *OrgNode, parentID string, order int)
	visit = func(n *OrgNode, parentID string, order int) {
		attrs := maps.Clone(n.Attributes)
		r := Record{
			ID:           n.ID,
			ParentID:     parentID,
			Name:         attrs.Name(),
			Role:         attrs.Role(),
			AvatarRef:    attrs.AvatarRef(),
			Email:        attrs.Email(),
			DisplayOrder: order,
		}
		for _, k := range []string{AttrName, AttrRole, AttrAvatarRef, AttrEmail} {
			delete(attrs, k)
		}
		if len(attrs) > 0 {
			r.Attributes = attrs
		}
		out = append(out, r)
		for i, c := range n.Children {
			visit(c, n.ID, i)
		}
	}
	if root != nil {
		visit(root, "", 0)
	}
	return out
}
