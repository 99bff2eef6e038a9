// Package hierarchy defines the organization tree the rest of orgchart works
// on: nodes with stable ids, view-mode dependent display attributes and an
// ordered list of children.
//
// # Model
//
// An [OrgNode] tree is rooted: exactly one node has no parent, every other
// node has exactly one parent, and ids are unique across the tree. The same
// organization can be browsed as several logically distinct trees, one per
// [ViewMode] (business, legal, territorial).
//
// Trees arrive either nested (an [OrgNode] with children) or as a flat list of
// parent-id [Record] values, the shape most data sources use. [Build] turns the
// flat form into a tree and [Validate] checks the structural invariants of a
// nested tree. Both fail fast with a STRUCTURAL_INTEGRITY error instead of
// looping on malformed input.
//
// # Files
//
// [ReadFile] accepts JSON, YAML and TOML documents; the format is chosen from
// the file extension:
//
//	doc, err := hierarchy.ReadFile("acme/business.yaml")
//	if err != nil {
//	    return err
//	}
//	root, err := doc.Tree()
package hierarchy
