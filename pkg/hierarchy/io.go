package hierarchy

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/orgchart/pkg/errors"
)

// Format identifies a document encoding.
type Format string

// Supported document formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath infers the document format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported hierarchy file %q (want .json, .yaml, .yml or .toml)", path)
	}
}

// Document is the file and wire envelope for one hierarchy. Exactly one of
// Root (nested form) or Nodes (flat parent-id form) is expected; when both
// are present Root wins.
type Document struct {
	OrganizationID string   `json:"organization_id,omitempty" yaml:"organization_id,omitempty" toml:"organization_id,omitempty"`
	ViewMode       ViewMode `json:"view_mode,omitempty" yaml:"view_mode,omitempty" toml:"view_mode,omitempty"`
	EffectiveDate  string   `json:"effective_date,omitempty" yaml:"effective_date,omitempty" toml:"effective_date,omitempty"`
	Root           *OrgNode `json:"root,omitempty" yaml:"root,omitempty" toml:"root,omitempty"`
	Nodes          []Record `json:"nodes,omitempty" yaml:"nodes,omitempty" toml:"nodes,omitempty"`
}

// Tree returns the document's validated tree. A document with neither a root
// nor records returns (nil, nil): the caller decides whether that is an
// empty-data condition.
func (d *Document) Tree() (*OrgNode, error) {
	if d.Root != nil {
		if err := Validate(d.Root); err != nil {
			return nil, err
		}
		return d.Root, nil
	}
	if len(d.Nodes) == 0 {
		return nil, nil
	}
	return Build(d.Nodes)
}

// =============================================================================
// Reading
// =============================================================================

// ReadDocument decodes a document in the given format.
func ReadDocument(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported document format %q", format)
	}
	return &doc, nil
}

// ReadFile reads a document file, choosing the decoder from its extension.
func ReadFile(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "hierarchy file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDocument(f, format)
}

// =============================================================================
// Writing
// =============================================================================

// WriteJSON encodes doc as indented JSON.
func WriteJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes doc as JSON to path.
func WriteFile(path string, doc *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(f, doc)
}

// Hash returns a stable SHA-256 hex digest of the tree's content. Map keys
// are sorted by encoding/json, so equal trees hash equally.
func Hash(root *OrgNode) string {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(root)
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}
