// Package retry re-runs an operation with backoff between attempts.
//
// The downloader uses it for image fetches only, and only when the user asks for
// more than one attempt. IfNetwork limits retries to transport failures so that a
// server answering 404 or 500 is not asked again.
//
//	err := retry.Do(ctx, fetch, &retry.Config{
//	    MaxAttempts: 3,
//	    Backoff:     retry.DefaultExponentialBackoff(),
//	    RetryIf:     retry.IfNetwork,
//	})
package retry
