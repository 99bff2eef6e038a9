// Package loader fetches organization hierarchies from their data sources.
//
// Every source implements [Loader]. Results are normalized the same way
// regardless of the source:
//
//   - a missing or empty hierarchy is EMPTY_DATA, which callers show as a
//     "no data" placeholder rather than a failure
//   - a malformed hierarchy is STRUCTURAL_INTEGRITY
//   - every other failure is FETCH_FAILED, tagged TIMEOUT underneath when the
//     context deadline expired
//
// Sources compose by wrapping:
//
//	var l loader.Loader = loader.NewHTTP(baseURL)
//	l = loader.NewCached(l, c, nil, cache.TTLHierarchy)
//	l = loader.Instrument(l, logger)
package loader

import (
	"context"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/hierarchy"
)

// Loader fetches the hierarchy of one organization in one view mode.
type Loader interface {
	Load(ctx context.Context, orgID string, mode hierarchy.ViewMode) (*hierarchy.OrgNode, error)
}

// Func adapts a function to the Loader interface.
type Func func(ctx context.Context, orgID string, mode hierarchy.ViewMode) (*hierarchy.OrgNode, error)

// Load calls f.
func (f Func) Load(ctx context.Context, orgID string, mode hierarchy.ViewMode) (*hierarchy.OrgNode, error) {
	return f(ctx, orgID, mode)
}

// normalize applies the package's error taxonomy to a source result.
func normalize(orgID string, root *hierarchy.OrgNode, err error) (*hierarchy.OrgNode, error) {
	switch {
	case err == nil && root == nil:
		return nil, errors.EmptyData(orgID)
	case err == nil:
		return root, nil
	case errors.Is(err, errors.ErrCodeEmptyData),
		errors.Is(err, errors.ErrCodeStructural),
		errors.Is(err, errors.ErrCodeFetchFailed):
		return nil, err
	default:
		return nil, errors.FetchError(orgID, err)
	}
}

// tree extracts the validated tree of a decoded document.
func tree(orgID string, doc *hierarchy.Document) (*hierarchy.OrgNode, error) {
	root, err := doc.Tree()
	return normalize(orgID, root, err)
}

// checkRequest validates the organization id and view mode shared by all
// sources.
func checkRequest(orgID string, mode hierarchy.ViewMode) error {
	if err := errors.ValidateOrganizationID(orgID); err != nil {
		return err
	}
	_, err := hierarchy.ParseViewMode(string(mode))
	return err
}
