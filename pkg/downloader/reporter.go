package downloader

// Reporter receives operator-facing progress events from a run.
// Calls happen on the goroutine running DownloadImages.
type Reporter interface {
	RunStarted(user, dest string)
	// FetchingPage is called before each timeline request; page counts from 1
	FetchingPage(page int)
	PageFetched(page, tweets int)
	// EmptyTimeline is called when the very first page of a run is empty
	EmptyTimeline()
	TimelineFailed(status int, err error)
	// ImageProcessed is called once per image; saved is the running saved total
	ImageProcessed(name string, outcome SaveOutcome, saved int)
	RunFinished(summary *Summary)
}

type nopReporter struct{}

func (nopReporter) RunStarted(string, string)               {}
func (nopReporter) FetchingPage(int)                        {}
func (nopReporter) PageFetched(int, int)                    {}
func (nopReporter) EmptyTimeline()                          {}
func (nopReporter) TimelineFailed(int, error)               {}
func (nopReporter) ImageProcessed(string, SaveOutcome, int) {}
func (nopReporter) RunFinished(*Summary)                    {}
