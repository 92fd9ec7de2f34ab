// Package ratelimit paces requests to the Twitter API.
//
// The timeline endpoint allows a fixed number of app-auth requests per
// 15-minute window. TokenBucket models that directly: capacity tokens that
// refill in full once the window elapses. Wait blocks until a token is free
// and returns early with the context's error on cancellation.
//
//	limiter := ratelimit.New(900, 15*time.Minute)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err
//	}
//
// New returns Unlimited when the budget is zero, so callers never need a nil check.
package ratelimit
