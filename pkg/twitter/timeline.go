package twitter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	errs "twtimg/pkg/errors"
)

// TimelineQuery selects one page of a user's timeline
type TimelineQuery struct {
	ScreenName string
	// MaxID is the id of the last tweet already processed; 0 starts from the newest tweet
	MaxID           int64
	Count           int
	IncludeRetweets bool
}

// TimelineResult is the outcome of one page fetch. A failed fetch is not a Go error:
// it carries Err and the HTTP Status (0 when no response arrived) and no tweets.
type TimelineResult struct {
	Tweets []Tweet
	Status int
	Err    error
}

// OK reports whether the page was fetched successfully
func (r TimelineResult) OK() bool {
	return r.Err == nil
}

// Empty reports whether there is nothing left to process
func (r TimelineResult) Empty() bool {
	return len(r.Tweets) == 0
}

// GetTweets fetches one page of the timeline.
//
// The API treats max_id as inclusive, so when a cursor is set the first tweet
// returned is the one already processed and is dropped. A page holding a single
// tweet means the timeline is exhausted.
func (c *Client) GetTweets(ctx context.Context, q TimelineQuery) TimelineResult {
	fields := map[string]interface{}{
		"user":   q.ScreenName,
		"max_id": q.MaxID,
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return TimelineResult{Err: err}
	}

	resp, err := c.get(ctx, TimelineURL(c.baseURL, q), true)
	if err != nil {
		return TimelineResult{Status: 0, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		preview := bodyPreview(resp.Body)
		fields["status"] = resp.StatusCode
		fields["body_preview"] = preview
		c.logger.WarnWithFields("timeline request failed", fields)
		return TimelineResult{Status: resp.StatusCode, Err: statusError(resp.StatusCode, preview)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return TimelineResult{
			Status: resp.StatusCode,
			Err:    errs.New(errs.ErrorTypeNetwork, resp.StatusCode, err, "failed to read timeline body"),
		}
	}

	var tweets []Tweet
	if err := json.Unmarshal(body, &tweets); err != nil {
		fields["error"] = err.Error()
		fields["body_preview"] = truncate(string(body), 200)
		c.logger.WarnWithFields("failed to parse timeline response", fields)
		return TimelineResult{
			Status: resp.StatusCode,
			Err:    errs.New(errs.ErrorTypeParsing, resp.StatusCode, err, "failed to parse timeline JSON"),
		}
	}

	fields["received"] = len(tweets)
	c.logger.DebugWithFields("timeline page received", fields)

	switch {
	case len(tweets) <= 1:
		return TimelineResult{Tweets: []Tweet{}, Status: resp.StatusCode}
	case q.MaxID != 0:
		return TimelineResult{Tweets: tweets[1:], Status: resp.StatusCode}
	default:
		return TimelineResult{Tweets: tweets, Status: resp.StatusCode}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
