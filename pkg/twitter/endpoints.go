package twitter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultBaseURL is the base URL of the Twitter REST API
	DefaultBaseURL = "https://api.twitter.com"

	// TokenEndpoint issues app-only bearer tokens
	TokenEndpoint = "/oauth2/token"

	// TimelineEndpoint serves a user's tweets, newest first
	TimelineEndpoint = "/1.1/statuses/user_timeline.json"

	// DefaultPageSize is the number of tweets requested per page
	DefaultPageSize = 200

	// MaxPageSize is the maximum number of tweets the timeline endpoint returns per request
	MaxPageSize = 200
)

// TokenURL constructs the bearer token URL for the given API base
func TokenURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + TokenEndpoint
}

// TimelineURL constructs the URL for one timeline page
func TimelineURL(baseURL string, q TimelineQuery) string {
	count := q.Count
	if count <= 0 {
		count = DefaultPageSize
	} else if count > MaxPageSize {
		count = MaxPageSize
	}

	params := url.Values{}
	params.Set("screen_name", q.ScreenName)
	params.Set("count", strconv.Itoa(count))
	params.Set("include_rts", strconv.FormatBool(q.IncludeRetweets))
	params.Set("tweet_mode", "extended")
	if q.MaxID != 0 {
		params.Set("max_id", strconv.FormatInt(q.MaxID, 10))
	}

	return fmt.Sprintf("%s%s?%s", strings.TrimRight(baseURL, "/"), TimelineEndpoint, params.Encode())
}

// ImageURL appends the size variant to a media URL
func ImageURL(mediaURL, size string) string {
	if size == "" {
		return mediaURL
	}
	return mediaURL + ":" + size
}
