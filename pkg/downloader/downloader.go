package downloader

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"twtimg/pkg/auth"
	"twtimg/pkg/checkpoint"
	"twtimg/pkg/config"
	errs "twtimg/pkg/errors"
	"twtimg/pkg/logger"
	"twtimg/pkg/ratelimit"
	"twtimg/pkg/retry"
	"twtimg/pkg/twitter"
)

const (
	DefaultSize  = "large"
	DefaultLimit = 3200
)

// Options configures a Downloader. Zero values fall back to defaults.
type Options struct {
	HTTPClient *http.Client
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	// Limiter paces timeline page requests
	Limiter  ratelimit.Limiter
	Logger   logger.Logger
	Reporter Reporter
	// CheckpointDir enables resumable runs; empty disables checkpoints
	CheckpointDir string
	// Location renders file names; nil means local time
	Location *time.Location
	// RetryAttempts is the number of tries per image on network errors; 1 means no retry
	RetryAttempts int
	RetryBackoff  retry.BackoffStrategy
	PageSize      int
}

// Request describes one download run
type Request struct {
	User            string
	Dest            string
	Size            string
	Limit           int
	IncludeRetweets bool
	// Resume continues from the stored checkpoint instead of the newest tweet
	Resume bool
}

func (r Request) withDefaults() Request {
	if r.Size == "" {
		r.Size = DefaultSize
	}
	if r.Limit <= 0 {
		r.Limit = DefaultLimit
	}
	return r
}

// StopReason explains why a run ended
type StopReason string

const (
	StopExhausted      StopReason = "exhausted"
	StopLimit          StopReason = "limit"
	StopTimelineFailed StopReason = "timeline_failed"
	StopCancelled      StopReason = "cancelled"
)

// Summary reports what a run did. Counters cover this run only; the Prior
// fields hold what a resumed checkpoint had already recorded.
type Summary struct {
	User        string
	Destination string

	Checked int
	Saved   int
	Skipped int
	Dropped int
	Failed  int
	Pages   int

	Resumed      bool
	PriorChecked int
	PriorSaved   int

	// Cursor is the id of the last tweet inspected, 0 if none
	Cursor int64
	Reason StopReason
	// TimelineStatus is the HTTP status of the last page request, 0 on transport failure
	TimelineStatus int
	TimelineErr    error
	Duration       time.Duration
}

// TotalChecked counts inspected tweets across resumed runs
func (s *Summary) TotalChecked() int {
	return s.PriorChecked + s.Checked
}

// TotalSaved counts saved images across resumed runs
func (s *Summary) TotalSaved() int {
	return s.PriorSaved + s.Saved
}

func (s *Summary) record(outcome SaveOutcome) {
	switch outcome {
	case OutcomeSaved:
		s.Saved++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeDropped:
		s.Dropped++
	case OutcomeFailed:
		s.Failed++
	}
}

// Downloader walks a user's timeline and saves the attached images.
// It holds a bearer token fetched at construction and is not safe for concurrent runs.
type Downloader struct {
	client        *twitter.Client
	logger        logger.Logger
	reporter      Reporter
	location      *time.Location
	checkpointDir string
	pageSize      int
	retryConfig   *retry.Config
}

// New validates creds and exchanges them for a bearer token. No timeline request
// is made when this fails.
func New(ctx context.Context, creds auth.Credentials, opts Options) (*Downloader, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	client := twitter.NewClient(twitter.ClientConfig{
		HTTPClient: opts.HTTPClient,
		BaseURL:    opts.BaseURL,
		UserAgent:  opts.UserAgent,
		Timeout:    opts.Timeout,
		Limiter:    opts.Limiter,
	}, log)

	if _, err := client.FetchBearerToken(ctx, creds.APIKey, creds.APISecret); err != nil {
		log.WithError(err).Error("could not obtain bearer token")
		return nil, err
	}

	reporter := opts.Reporter
	if reporter == nil {
		reporter = nopReporter{}
	}

	location := opts.Location
	if location == nil {
		location = time.Local
	}

	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > twitter.MaxPageSize {
		pageSize = twitter.DefaultPageSize
	}

	backoff := opts.RetryBackoff
	if backoff == nil {
		backoff = retry.DefaultExponentialBackoff()
	}

	return &Downloader{
		client:        client,
		logger:        log,
		reporter:      reporter,
		location:      location,
		checkpointDir: opts.CheckpointDir,
		pageSize:      pageSize,
		retryConfig: &retry.Config{
			MaxAttempts: opts.RetryAttempts,
			Backoff:     backoff,
			RetryIf:     retry.IfNetwork,
			Logger:      log,
		},
	}, nil
}

// DownloadImages pages backwards through req.User's timeline and saves every image
// into req.Dest, which must be an existing directory.
//
// The run ends on an empty page, when the inspected tweet count reaches req.Limit,
// when a page request fails, or when ctx is cancelled. A failed page is not an error:
// it is recorded in the summary. Cancellation returns the summary so far with ctx.Err().
func (d *Downloader) DownloadImages(ctx context.Context, req Request) (*Summary, error) {
	req = req.withDefaults()
	if req.User == "" {
		return nil, errs.New(errs.ErrorTypeConfig, 0, nil, "a user is required")
	}
	if !config.IsValidSize(req.Size) {
		return nil, errs.New(errs.ErrorTypeConfig, 0, nil, "unknown image size %q", req.Size)
	}

	store, err := openStore(req.Dest)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	summary := &Summary{User: req.User, Destination: req.Dest}
	cpMgr, cp := d.openCheckpoint(req, summary)

	log := d.logger.WithField("user", req.User)
	logger.LogComponentStart(log, "downloader", map[string]interface{}{
		"dest":    req.Dest,
		"size":    req.Size,
		"limit":   req.Limit,
		"rts":     req.IncludeRetweets,
		"resumed": summary.Resumed,
		"cursor":  summary.Cursor,
	})
	d.reporter.RunStarted(req.User, req.Dest)

	// completed trails summary.Cursor until every image of that tweet was handled
	completed := summary.Cursor
	fetched := 0

loop:
	for {
		if summary.TotalChecked() >= req.Limit {
			summary.Reason = StopLimit
			break
		}
		if ctx.Err() != nil {
			summary.Reason = StopCancelled
			break
		}

		d.reporter.FetchingPage(summary.Pages + 1)
		result := d.client.GetTweets(ctx, twitter.TimelineQuery{
			ScreenName:      req.User,
			MaxID:           summary.Cursor,
			Count:           d.pageSize,
			IncludeRetweets: req.IncludeRetweets,
		})
		summary.TimelineStatus = result.Status

		if !result.OK() {
			if ctx.Err() != nil {
				summary.Reason = StopCancelled
				break
			}
			summary.Reason = StopTimelineFailed
			summary.TimelineErr = result.Err
			log.WithError(result.Err).WarnWithFields("stopping on failed timeline page", map[string]interface{}{
				"status": result.Status,
				"cursor": summary.Cursor,
			})
			d.reporter.TimelineFailed(result.Status, result.Err)
			break
		}

		if result.Empty() {
			if fetched == 0 {
				d.reporter.EmptyTimeline()
			}
			summary.Reason = StopExhausted
			break
		}

		fetched++
		summary.Pages++
		d.reporter.PageFetched(summary.Pages, len(result.Tweets))

		for _, tweet := range result.Tweets {
			if summary.TotalChecked() >= req.Limit {
				break
			}
			if ctx.Err() != nil {
				summary.Reason = StopCancelled
				break loop
			}

			summary.Cursor = tweet.Cursor()
			summary.Checked++
			d.processTweet(ctx, store, tweet, req.Size, summary)

			if ctx.Err() != nil {
				summary.Reason = StopCancelled
				break loop
			}
			completed = summary.Cursor
		}

		d.saveProgress(cpMgr, cp, summary, completed)
	}

	switch summary.Reason {
	case StopExhausted:
		if cpMgr != nil {
			if err := cpMgr.Delete(); err != nil {
				log.WithError(err).Warn("failed to remove checkpoint")
			}
		}
	case StopCancelled:
		d.saveProgress(cpMgr, cp, summary, completed)
	}

	summary.Duration = time.Since(start)
	log.InfoWithFields("download run finished", map[string]interface{}{
		"reason":   summary.Reason,
		"checked":  summary.Checked,
		"saved":    summary.Saved,
		"skipped":  summary.Skipped,
		"dropped":  summary.Dropped,
		"failed":   summary.Failed,
		"pages":    summary.Pages,
		"cursor":   summary.Cursor,
		"duration": summary.Duration,
	})
	logger.LogComponentStop(log, "downloader", string(summary.Reason))
	d.reporter.RunFinished(summary)

	if summary.Reason == StopCancelled {
		return summary, ctx.Err()
	}
	return summary, nil
}

// processTweet saves the images of one tweet, naming them after its creation time
func (d *Downloader) processTweet(ctx context.Context, store imageStore, tweet twitter.Tweet, size string, summary *Summary) {
	urls, ok := twitter.ExtractImages(tweet)
	if !ok || len(urls) == 0 {
		return
	}

	created, err := tweet.CreatedTime()
	if err != nil {
		d.logger.WithError(err).WarnWithFields("cannot name images of tweet", map[string]interface{}{
			"tweet_id": tweet.Cursor(),
			"images":   len(urls),
		})
		summary.Failed += len(urls)
		return
	}

	base := FileBase(created, d.location)
	for i, mediaURL := range urls {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s_%d", base, i)
		}

		outcome, err := d.saveImage(ctx, store, mediaURL, name, size)
		if err != nil && ctx.Err() != nil {
			return
		}
		summary.record(outcome)

		fileName := FileName(name, mediaURL)
		logger.LogDownload(d.logger, summary.User, fileName, outcome.String(), err)
		d.reporter.ImageProcessed(fileName, outcome, summary.TotalSaved())
	}
}

// openCheckpoint prepares the run's checkpoint. On resume the stored cursor and
// counters seed the summary, provided the checkpoint was written for the same
// destination; otherwise any stored checkpoint is replaced.
// Checkpoint trouble never stops a download.
func (d *Downloader) openCheckpoint(req Request, summary *Summary) (*checkpoint.Manager, *checkpoint.Checkpoint) {
	if d.checkpointDir == "" {
		return nil, nil
	}

	mgr, err := checkpoint.NewManagerAt(d.checkpointDir, req.User, d.logger)
	if err != nil {
		d.logger.WithError(err).Warn("checkpoints disabled")
		return nil, nil
	}

	if req.Resume {
		cp, err := mgr.Load()
		switch {
		case err != nil:
			d.logger.WithError(err).Warn("ignoring unreadable checkpoint")
		case cp != nil && !sameDir(cp.Destination, req.Dest):
			d.logger.WithFields(map[string]interface{}{
				"checkpoint_dest": cp.Destination,
				"dest":            req.Dest,
			}).Warn("checkpoint belongs to another destination, starting from the newest tweet")
		case cp != nil:
			summary.Resumed = true
			summary.Cursor = cp.Cursor
			summary.PriorChecked = cp.TweetsChecked
			summary.PriorSaved = cp.ImagesSaved
			cp.Destination = req.Dest
			return mgr, cp
		}
	}

	cp, err := mgr.Create(req.User, req.Dest)
	if err != nil {
		d.logger.WithError(err).Warn("checkpoints disabled")
		return nil, nil
	}
	return mgr, cp
}

// sameDir reports whether a and b name the same directory. An empty a matches anything.
func sameDir(a, b string) bool {
	if a == "" {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func (d *Downloader) saveProgress(mgr *checkpoint.Manager, cp *checkpoint.Checkpoint, summary *Summary, cursor int64) {
	if mgr == nil || cp == nil {
		return
	}
	if err := mgr.UpdateProgress(cp, cursor, summary.TotalChecked(), summary.TotalSaved()); err != nil {
		d.logger.WithError(err).Warn("failed to save checkpoint")
	}
}
