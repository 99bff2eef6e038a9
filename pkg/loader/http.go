package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/hierarchy"
	"github.com/matzehuels/orgchart/pkg/httputil"
	"github.com/matzehuels/orgchart/pkg/observability"
)

// HTTP loads hierarchies from the organization API:
//
//	GET {base}/orgs/{org}/hierarchies/{mode}
//
// The response body is a JSON hierarchy document in nested or flat form.
// Network failures, 429 and 5xx responses are retried with exponential
// backoff.
type HTTP struct {
	base    *url.URL
	client  *http.Client
	token   string
	backoff httputil.Backoff
}

// HTTPOption configures an HTTP loader.
type HTTPOption func(*HTTP)

// WithHTTPClient replaces the default client (30s timeout, X-Request-ID).
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTP) { h.client = c }
}

// WithToken sends "Authorization: Bearer <token>" on every request.
func WithToken(token string) HTTPOption {
	return func(h *HTTP) { h.token = token }
}

// WithRetry sets the attempt count and initial backoff delay.
func WithRetry(attempts int, delay time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.backoff.Attempts = attempts
		h.backoff.Delay = delay
	}
}

// NewHTTP creates an HTTP loader for the API rooted at baseURL.
func NewHTTP(baseURL string, opts ...HTTPOption) (*HTTP, error) {
	if err := errors.ValidateURL(baseURL); err != nil {
		return nil, err
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid base URL %q", baseURL)
	}
	h := &HTTP{
		base:    u,
		client:  httputil.NewClient(httputil.DefaultTimeout),
		backoff: httputil.DefaultBackoff(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Load fetches and validates one hierarchy.
func (h *HTTP) Load(ctx context.Context, orgID string, mode hierarchy.ViewMode) (*hierarchy.OrgNode, error) {
	if err := checkRequest(orgID, mode); err != nil {
		return nil, err
	}
	u := h.base.JoinPath("orgs", orgID, "hierarchies", string(mode))

	var doc hierarchy.Document
	err := h.backoff.Do(ctx, func() error {
		return h.get(ctx, u, &doc)
	})
	if err != nil {
		return normalize(orgID, nil, err)
	}
	return tree(orgID, &doc)
}

func (h *HTTP) get(ctx context.Context, u *url.URL, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, u.Host, u.Path)
	start := time.Now()

	resp, err := h.client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, u.Host, u.Path, err)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "request %s", u.Path))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if err := httputil.CheckResponse(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
