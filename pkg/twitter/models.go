package twitter

import (
	"fmt"
	"strconv"
	"time"
)

// CreatedAtLayout is the format of the created_at field on v1.1 tweets
const CreatedAtLayout = time.RubyDate

// Tweet is the subset of a v1.1 status object the downloader reads
type Tweet struct {
	ID               int64     `json:"id"`
	IDStr            string    `json:"id_str"`
	CreatedAt        string    `json:"created_at"`
	FullText         string    `json:"full_text,omitempty"`
	Entities         Entities  `json:"entities"`
	ExtendedEntities *Entities `json:"extended_entities,omitempty"`
}

// Entities holds the media attached to a tweet.
// Media is nil when the field is absent and empty when present without items.
type Entities struct {
	Media []MediaEntity `json:"media,omitempty"`
}

// MediaEntity is one attached media item
type MediaEntity struct {
	ID            int64  `json:"id"`
	Type          string `json:"type"`
	MediaURL      string `json:"media_url"`
	MediaURLHTTPS string `json:"media_url_https"`
}

// URL returns the media URL, preferring the plain media_url field
func (m MediaEntity) URL() string {
	if m.MediaURL != "" {
		return m.MediaURL
	}
	return m.MediaURLHTTPS
}

// Cursor returns the tweet id used as the pagination key
func (t Tweet) Cursor() int64 {
	if t.ID != 0 {
		return t.ID
	}
	id, err := strconv.ParseInt(t.IDStr, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// CreatedTime parses created_at
func (t Tweet) CreatedTime() (time.Time, error) {
	created, err := time.Parse(CreatedAtLayout, t.CreatedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("tweet %d: invalid created_at %q: %w", t.Cursor(), t.CreatedAt, err)
	}
	return created, nil
}
