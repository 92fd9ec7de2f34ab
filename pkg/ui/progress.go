package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"twtimg/pkg/downloader"
)

// statusGlyphs rotate with the saved count on the status line
var statusGlyphs = [4]string{"-", "\\", "|", "/"}

// StatusTracker renders download progress on the console.
// It implements downloader.Reporter.
type StatusTracker struct {
	mu        sync.Mutex
	out       io.Writer
	quiet     bool
	spinner   *Spinner
	startTime time.Time
	// lineWidth is the visible width of the open status line, 0 when none
	lineWidth int
}

var _ downloader.Reporter = (*StatusTracker)(nil)

// NewStatusTracker creates a tracker writing to out. A quiet tracker prints nothing.
func NewStatusTracker(out io.Writer, quiet bool) *StatusTracker {
	return &StatusTracker{
		out:       out,
		quiet:     quiet,
		spinner:   NewSpinner(out),
		startTime: time.Now(),
	}
}

// Spinner returns the tracker's wait indicator so callers can reuse it between runs
func (st *StatusTracker) Spinner() *Spinner {
	return st.spinner
}

// Wait shows msg next to the spinner until the next event
func (st *StatusTracker) Wait(msg string) {
	if st.quiet {
		return
	}
	st.spinner.Start(msg)
}

// RunStarted announces the run
func (st *StatusTracker) RunStarted(user, dest string) {
	if st.quiet {
		return
	}
	st.mu.Lock()
	st.startTime = time.Now()
	fmt.Fprintf(st.out, "%s %s %s %s\n", Cyan("Downloading images of"), Yellow(user), Cyan("into"), Yellow(dest))
	st.mu.Unlock()
}

// FetchingPage shows the wait indicator while a timeline page is requested.
// The spinner takes over the status line, which is redrawn by the next image.
func (st *StatusTracker) FetchingPage(page int) {
	if st.quiet {
		return
	}
	msg := "fetching tweets"
	if page > 1 {
		msg = fmt.Sprintf("fetching page %d", page)
	}
	st.spinner.Start(msg)

	if st.spinner.Active() {
		st.mu.Lock()
		st.lineWidth = 0
		st.mu.Unlock()
	}
}

// PageFetched clears the wait indicator once a page arrived
func (st *StatusTracker) PageFetched(page, tweets int) {
	st.spinner.Stop()
}

// EmptyTimeline reports a timeline with nothing to download
func (st *StatusTracker) EmptyTimeline() {
	st.spinner.Stop()
	st.println(Yellow("Got an empty list of tweets"))
}

// TimelineFailed reports a failed page request
func (st *StatusTracker) TimelineFailed(status int, err error) {
	st.spinner.Stop()
	if status == 0 {
		st.println(Red(fmt.Sprintf("An error occurred with the request: %v", err)))
		return
	}
	st.println(Red(fmt.Sprintf("An error occurred with the request, the status code was %d", status)))
}

// ImageProcessed updates the status line for a saved or skipped image
func (st *StatusTracker) ImageProcessed(name string, outcome downloader.SaveOutcome, saved int) {
	switch outcome {
	case downloader.OutcomeSaved:
		st.status(saved, name+" saved")
	case downloader.OutcomeSkipped:
		st.status(saved, "Skipping "+name+": already downloaded")
	case downloader.OutcomeFailed:
		st.println(Red("Failed to download " + name))
	}
}

// RunFinished prints the closing line
func (st *StatusTracker) RunFinished(summary *downloader.Summary) {
	st.spinner.Stop()
	if st.quiet {
		return
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.lineWidth = 0
	fmt.Fprintf(st.out, "\n%s\n", Green(fmt.Sprintf("Done: %d images downloaded", summary.Saved)))

	details := fmt.Sprintf("%d tweets checked, %d skipped", summary.Checked, summary.Skipped)
	if summary.Failed > 0 {
		details += fmt.Sprintf(", %d failed", summary.Failed)
	}
	if summary.Resumed {
		details += fmt.Sprintf(", %d images in total", summary.TotalSaved())
	}
	details += fmt.Sprintf(" in %s", time.Since(st.startTime).Round(time.Second))
	fmt.Fprintln(st.out, Dim(details))
}

// status rewrites the current status line in place
func (st *StatusTracker) status(saved int, msg string) {
	if st.quiet {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	line := statusGlyphs[saved%len(statusGlyphs)] + " " + msg
	pad := ""
	if n := st.lineWidth - len(line); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	fmt.Fprintf(st.out, "\r%s%s", line, pad)
	st.lineWidth = len(line)
}

// println ends any open status line and prints msg on its own line
func (st *StatusTracker) println(msg string) {
	if st.quiet {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.lineWidth > 0 {
		fmt.Fprintln(st.out)
		st.lineWidth = 0
	}
	fmt.Fprintln(st.out, msg)
}
