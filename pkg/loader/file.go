package loader

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/hierarchy"
)

// fileExtensions are tried in order for {dir}/{org}/{mode}.{ext}.
var fileExtensions = []string{".json", ".yaml", ".yml", ".toml"}

// File loads hierarchies from a directory laid out as
// {dir}/{org}/{mode}.{json|yaml|yml|toml}.
type File struct {
	dir string
}

// NewFile creates a loader rooted at dir.
func NewFile(dir string) *File {
	return &File{dir: dir}
}

// Path returns the first existing document path for org and mode.
func (f *File) Path(orgID string, mode hierarchy.ViewMode) (string, error) {
	if err := checkRequest(orgID, mode); err != nil {
		return "", err
	}
	base := filepath.Join(f.dir, orgID, string(mode))
	for _, ext := range fileExtensions {
		if _, err := os.Stat(base + ext); err == nil {
			return base + ext, nil
		}
	}
	return "", errors.New(errors.ErrCodeNotFound, "no %s hierarchy for organization %q in %s", mode, orgID, f.dir)
}

// Load reads and validates one hierarchy document.
func (f *File) Load(ctx context.Context, orgID string, mode hierarchy.ViewMode) (*hierarchy.OrgNode, error) {
	if err := ctx.Err(); err != nil {
		return normalize(orgID, nil, err)
	}
	path, err := f.Path(orgID, mode)
	if err != nil {
		if errors.Is(err, errors.ErrCodeNotFound) {
			return normalize(orgID, nil, err)
		}
		return nil, err
	}
	doc, err := hierarchy.ReadFile(path)
	if err != nil {
		return normalize(orgID, nil, err)
	}
	return tree(orgID, doc)
}

// Document loads a single document file regardless of layout. It backs the
// --file flag.
func Document(path string) Loader {
	return Func(func(ctx context.Context, orgID string, _ hierarchy.ViewMode) (*hierarchy.OrgNode, error) {
		if err := ctx.Err(); err != nil {
			return normalize(orgID, nil, err)
		}
		doc, err := hierarchy.ReadFile(path)
		if err != nil {
			return normalize(orgID, nil, err)
		}
		return tree(orgID, doc)
	})
}
