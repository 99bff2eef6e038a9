package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Keyer generates cache keys for each pipeline stage.
type Keyer interface {
	// HierarchyKey names a loaded hierarchy document.
	HierarchyKey(orgID, viewMode string) string

	// LayoutKey names a computed layout for a hierarchy content hash.
	LayoutKey(hierarchyHash string, opts LayoutKeyOpts) string

	// ArtifactKey names a rendered artifact for a layout content hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the inputs that change a layout besides the hierarchy.
type LayoutKeyOpts struct {
	DetailLevel int             `json:"detail_level"`
	Collapse    map[string]bool `json:"collapse,omitempty"`
	NodeWidth   float64         `json:"node_width"`
	NodeHeight  float64         `json:"node_height"`
	HGap        float64         `json:"hgap"`
	VGap        float64         `json:"vgap"`
}

// ArtifactKeyOpts are the inputs that change a rendered artifact besides the
// layout.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	VizType     string  `json:"viz_type"`
	Theme       string  `json:"theme"`
	Scale       float64 `json:"scale,omitempty"`
	Detailed    bool    `json:"detailed,omitempty"`
	Interactive bool    `json:"interactive,omitempty"`
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HierarchyKey returns "hierarchy:<hash>" for the organization and view mode.
func (DefaultKeyer) HierarchyKey(orgID, viewMode string) string {
	return hashKey("hierarchy", orgID, viewMode)
}

// LayoutKey returns "layout:<hash>".
func (DefaultKeyer) LayoutKey(hierarchyHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", hierarchyHash, opts)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}

// Digest fingerprints the concatenation of parts. Each part is length
// prefixed so ("ab", "c") and ("a", "bc") differ.
func Digest(parts ...[]byte) string {
	h := sha256.New()
	var n [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// hashKey returns "<stage>:<digest>" over the JSON encoding of parts.
// encoding/json sorts map keys, so collapse sets hash the same in any order.
func hashKey(stage string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return stage + ":" + Digest(data)
}

// Namespaced places every key of inner under namespace, so staging and
// production servers can share one Redis. A trailing colon is added when
// missing; an empty namespace returns inner unchanged.
func Namespaced(inner Keyer, namespace string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	if namespace == "" {
		return inner
	}
	if !strings.HasSuffix(namespace, ":") {
		namespace += ":"
	}
	return namespacedKeyer{inner: inner, ns: namespace}
}

type namespacedKeyer struct {
	inner Keyer
	ns    string
}

func (k namespacedKeyer) HierarchyKey(orgID, viewMode string) string {
	return k.ns + k.inner.HierarchyKey(orgID, viewMode)
}

func (k namespacedKeyer) LayoutKey(hierarchyHash string, opts LayoutKeyOpts) string {
	return k.ns + k.inner.LayoutKey(hierarchyHash, opts)
}

func (k namespacedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.ns + k.inner.ArtifactKey(layoutHash, opts)
}
