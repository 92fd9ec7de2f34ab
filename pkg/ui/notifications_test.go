package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twtimg/pkg/downloader"
)

type recordingSender struct {
	title, message string
	err            error
}

func (r *recordingSender) Send(title, message string) error {
	r.title, r.message = title, message
	return r.err
}

func TestNotifierRunFinished(t *testing.T) {
	tests := []struct {
		reason downloader.StopReason
		want   string
	}{
		{downloader.StopExhausted, "Done: 4 images downloaded"},
		{downloader.StopLimit, "Done: 4 images downloaded"},
		{downloader.StopTimelineFailed, "Timeline request failed after 4 images"},
		{downloader.StopCancelled, "Interrupted after 4 images"},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			sender := &recordingSender{}
			n := NewNotifierWithSender(sender)

			require.NoError(t, n.RunFinished(&downloader.Summary{User: "nasa", Saved: 4, Reason: tt.reason}))
			assert.Equal(t, "twtimg: @nasa", sender.title)
			assert.Equal(t, tt.want, sender.message)
		})
	}
}

func TestNotifierWithoutSender(t *testing.T) {
	var n *Notifier
	assert.NoError(t, n.RunFinished(&downloader.Summary{}))
	assert.NoError(t, NewNotifierWithSender(nil).RunFinished(&downloader.Summary{}))

	failing := NewNotifierWithSender(&recordingSender{err: errors.New("no display")})
	assert.Error(t, failing.RunFinished(&downloader.Summary{User: "nasa"}))
}

func TestEscaping(t *testing.T) {
	assert.Equal(t, `"say \"hi\" \\o/"`, appleScriptString(`say "hi" \o/`))
	assert.Equal(t, "a &amp; b &lt;c&gt; &apos;d&apos;", xmlText("a & b <c> 'd'"))
}
