package ui

import (
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner shows an animated wait indicator on a terminal. It does nothing
// when disabled, so callers need not check.
type Spinner struct {
	mu      sync.Mutex
	s       *spinner.Spinner
	enabled bool
	active  bool
}

// NewSpinner creates a spinner writing to w. It is disabled unless w is a terminal.
func NewSpinner(w io.Writer) *Spinner {
	return newSpinner(w, IsTerminal(w))
}

func newSpinner(w io.Writer, enabled bool) *Spinner {
	if !enabled {
		return &Spinner{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
		spinner.WithWriter(w),
		spinner.WithHiddenCursor(true),
	)
	return &Spinner{s: s, enabled: true}
}

// Start shows the spinner followed by msg, replacing any message already shown
func (sp *Spinner) Start(msg string) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if !sp.enabled {
		return
	}
	sp.s.Lock()
	sp.s.Suffix = " " + msg
	sp.s.Unlock()
	if !sp.active {
		sp.s.Start()
		sp.active = true
	}
}

// Stop removes the spinner from the line
func (sp *Spinner) Stop() {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if !sp.enabled || !sp.active {
		return
	}
	sp.s.Stop()
	sp.active = false
}

// Active reports whether the spinner is currently shown
func (sp *Spinner) Active() bool {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return sp.active
}
