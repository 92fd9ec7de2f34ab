// Package downloader drives a complete image download for one Twitter user.
//
// New exchanges the API key pair for a bearer token. DownloadImages then pages
// backwards through the user's timeline, extracts the images of every tweet and
// saves each one as <dest>/<YYYY-MM-DD-HH-MM-SS>[_<n>]<ext>, named after the
// tweet's creation time. Files that already exist are skipped without a request,
// so repeated runs only fetch what is new.
//
// Example:
//
//	d, err := downloader.New(ctx, creds, downloader.Options{Reporter: tracker})
//	if err != nil {
//		return err
//	}
//	summary, err := d.DownloadImages(ctx, downloader.Request{User: "nasa", Dest: "nasa"})
//
// A failed timeline page ends the run without an error; check Summary.Reason
// and Summary.TimelineStatus to tell it apart from an exhausted timeline.
package downloader
