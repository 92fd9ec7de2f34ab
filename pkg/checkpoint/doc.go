// Package checkpoint persists download progress so an interrupted run can resume.
//
// One JSON file per user lives under the data directory
// ($XDG_DATA_HOME/twtimg/checkpoints on Linux). It stores the timeline cursor
// and running counters and is rewritten atomically after every page. The
// downloader deletes it once the timeline has been exhausted.
package checkpoint
