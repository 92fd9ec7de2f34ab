// Package storage writes downloaded images to disk.
//
// Manager is bound to one existing directory. Exists is the idempotence check
// the downloader runs before any network request; Save writes through a
// temporary file and renames it into place once the copy has finished.
package storage
