package loader

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/orgchart/pkg/hierarchy"
)

// Static serves hierarchies from memory, optionally after a fixed delay. It
// backs the demo organization and tests that need a slow source.
type Static struct {
	mu    sync.RWMutex
	trees map[staticKey]*hierarchy.OrgNode
	errs  map[staticKey]error
	delay time.Duration
}

type staticKey struct {
	org  string
	mode hierarchy.ViewMode
}

// NewStatic creates an empty static loader. A positive delay is waited out
// before every Load, honouring ctx.
func NewStatic(delay time.Duration) *Static {
	return &Static{
		trees: make(map[staticKey]*hierarchy.OrgNode),
		errs:  make(map[staticKey]error),
		delay: delay,
	}
}

// Set registers the tree for org and mode. A nil root makes the pair load as
// EMPTY_DATA.
func (s *Static) Set(orgID string, mode hierarchy.ViewMode, root *hierarchy.OrgNode) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := staticKey{orgID, mode}
	s.trees[k] = root
	delete(s.errs, k)
	return s
}

// Fail makes org and mode fail with err.
func (s *Static) Fail(orgID string, mode hierarchy.ViewMode, err error) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[staticKey{orgID, mode}] = err
	return s
}

// Load returns the registered tree, an EMPTY_DATA error for unknown pairs,
// or the registered failure.
func (s *Static) Load(ctx context.Context, orgID string, mode hierarchy.ViewMode) (*hierarchy.OrgNode, error) {
	if err := checkRequest(orgID, mode); err != nil {
		return nil, err
	}
	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return normalize(orgID, nil, ctx.Err())
		case <-t.C:
		}
	}

	s.mu.RLock()
	k := staticKey{orgID, mode}
	root, err := s.trees[k], s.errs[k]
	s.mu.RUnlock()

	if err == nil && root != nil {
		err = hierarchy.Validate(root)
	}
	return normalize(orgID, root, err)
}
