package downloader

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	errs "twtimg/pkg/errors"
	"twtimg/pkg/retry"
	"twtimg/pkg/storage"
)

// FileTimeLayout names saved images after the tweet's creation second
const FileTimeLayout = "2006-01-02-15-04-05"

// SaveOutcome is what happened to a single image
type SaveOutcome int

const (
	// OutcomeNone means there was nothing to save
	OutcomeNone SaveOutcome = iota
	OutcomeSaved
	// OutcomeSkipped means a file with the target name already existed
	OutcomeSkipped
	// OutcomeDropped means the media host answered with a non-200 status
	OutcomeDropped
	// OutcomeFailed means the transfer or the write failed
	OutcomeFailed
)

func (o SaveOutcome) String() string {
	switch o {
	case OutcomeSaved:
		return "saved"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeDropped:
		return "dropped"
	case OutcomeFailed:
		return "failed"
	default:
		return "none"
	}
}

// imageStore is the part of storage.Manager the saver needs
type imageStore interface {
	Exists(name string) bool
	Save(name string, r io.Reader) (int64, error)
}

func openStore(dir string) (*storage.Manager, error) {
	return storage.NewManager(dir)
}

// FileBase renders a tweet's creation time as a file name stem in loc
func FileBase(created time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return created.In(loc).Format(FileTimeLayout)
}

// FileName appends the extension of mediaURL's path to base
func FileName(base, mediaURL string) string {
	if u, err := url.Parse(mediaURL); err == nil {
		return base + path.Ext(u.Path)
	}
	return base + path.Ext(mediaURL)
}

// SaveImage downloads mediaURL at the given size into dir as base plus the URL's
// extension. An existing file is left alone and no request is made.
// Only OutcomeFailed comes with an error.
func (d *Downloader) SaveImage(ctx context.Context, mediaURL, dir, base, size string) (SaveOutcome, error) {
	if mediaURL == "" {
		return OutcomeNone, nil
	}
	store, err := openStore(dir)
	if err != nil {
		return OutcomeNone, err
	}
	return d.saveImage(ctx, store, mediaURL, base, size)
}

func (d *Downloader) saveImage(ctx context.Context, store imageStore, mediaURL, base, size string) (SaveOutcome, error) {
	if mediaURL == "" {
		return OutcomeNone, nil
	}

	name := FileName(base, mediaURL)
	if store.Exists(name) {
		return OutcomeSkipped, nil
	}

	var status int
	err := retry.Do(ctx, func(ctx context.Context) error {
		body, code, err := d.client.OpenImage(ctx, mediaURL, size)
		status = code
		if err != nil {
			return err
		}
		if body == nil {
			return nil
		}
		defer body.Close()

		if _, err := store.Save(name, &trackingReader{r: body}); err != nil {
			var rerr *readError
			if errors.As(err, &rerr) {
				return errs.New(errs.ErrorTypeNetwork, code, rerr.err, "download of %s interrupted", name)
			}
			return errs.New(errs.ErrorTypeFilesystem, 0, err, "failed to write %s", name)
		}
		return nil
	}, d.retryConfig)

	if err != nil {
		return OutcomeFailed, err
	}
	if status != http.StatusOK {
		d.logger.DebugWithFields("image dropped", map[string]interface{}{
			"url":    mediaURL,
			"size":   size,
			"status": status,
		})
		return OutcomeDropped, nil
	}
	return OutcomeSaved, nil
}

// trackingReader tags read failures so they can be told apart from write failures
type trackingReader struct {
	r io.Reader
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		return n, &readError{err: err}
	}
	return n, err
}

type readError struct {
	err error
}

func (e *readError) Error() string { return e.err.Error() }
func (e *readError) Unwrap() error { return e.err }
