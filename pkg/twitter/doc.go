// Package twitter is a minimal client for the parts of the Twitter v1.1 REST API
// needed to download a user's images with app-only authentication.
//
// The flow is:
//
//	client := twitter.NewClient(twitter.ClientConfig{Limiter: limiter}, log)
//	if _, err := client.FetchBearerToken(ctx, key, secret); err != nil {
//	    return err // wraps errors.ErrBearerTokenNotFetched
//	}
//	page := client.GetTweets(ctx, twitter.TimelineQuery{ScreenName: "nasa", MaxID: cursor})
//	for _, tweet := range page.Tweets {
//	    urls, ok := twitter.ExtractImages(tweet)
//	    ...
//	}
//
// GetTweets never returns a Go error. A failed page is a TimelineResult with Err
// and Status set, so callers can stop paging and report why.
package twitter
