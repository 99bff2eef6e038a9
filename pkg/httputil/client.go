package httputil

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/orgchart/pkg/errors"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// DefaultTimeout bounds a single HTTP attempt.
const DefaultTimeout = 30 * time.Second

// NewClient returns an http.Client with the given timeout whose requests
// carry a fresh X-Request-ID unless the caller already set one.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &requestIDTransport{next: http.DefaultTransport},
	}
}

type requestIDTransport struct {
	next http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(RequestIDHeader) != "" {
		return t.next.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set(RequestIDHeader, uuid.NewString())
	return t.next.RoundTrip(r)
}

// CheckResponse maps a non-2xx response to an error. 404 becomes NOT_FOUND,
// 429 and 5xx become retryable NETWORK_ERROR honouring Retry-After, anything
// else FETCH_FAILED. A short prefix of the body is kept in the message.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	detail := resp.Status
	if req := resp.Request; req != nil {
		detail = fmt.Sprintf("%s %s: %s", req.Method, req.URL.Path, resp.Status)
	}
	if len(body) > 0 {
		detail += ": " + string(body)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s", detail)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		after := retryAfter(resp.Header.Get("Retry-After"), time.Now())
		return RetryableAfter(errors.New(errors.ErrCodeNetwork, "%s", detail), after)
	default:
		return errors.New(errors.ErrCodeFetchFailed, "%s", detail)
	}
}
