// Package httputil provides HTTP client plumbing for hierarchy loaders.
//
// # Retry
//
// [Backoff.Do] re-runs an operation with capped exponential backoff, but only
// for errors marked [Retryable]. [CheckResponse] classifies an HTTP response
// so that 5xx and 429 become retryable (waiting at least as long as the
// server's Retry-After) while 404 maps to NOT_FOUND:
//
//	err := httputil.DefaultBackoff().Do(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckResponse(resp)
//	})
//
// # Request ids
//
// [NewClient] returns a client whose transport stamps every outgoing request
// with an X-Request-ID header so that loader calls can be correlated with
// server logs.
package httputil
