// Package httputil provides HTTP helpers shared by the assistant clients.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff, but only when the
// error it returned was marked transient with [Retryable]:
//
//	err := httputil.Retry(ctx, 3, 500*time.Millisecond, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// Transport failures and 5xx responses are typically retryable. Client
// errors (4xx) are not and are returned immediately.
//
// # Clients
//
// [NewClient] returns an *http.Client with the timeout used for upstream
// model APIs.
package httputil
