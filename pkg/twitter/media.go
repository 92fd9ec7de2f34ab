package twitter

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// ExtractImages returns the media URLs attached to t.
//
// ok is false when the tweet has no entities.media field at all, which is different
// from a media list that is present but empty. URLs from extended_entities are
// merged in after the primary ones; each URL appears once.
func ExtractImages(t Tweet) (urls []string, ok bool) {
	if t.Entities.Media == nil {
		return nil, false
	}

	seen := mapset.NewThreadUnsafeSet[string]()
	urls = make([]string, 0, len(t.Entities.Media))

	add := func(media []MediaEntity) {
		for _, m := range media {
			u := m.URL()
			if u == "" || !seen.Add(u) {
				continue
			}
			urls = append(urls, u)
		}
	}

	add(t.Entities.Media)
	if t.ExtendedEntities != nil {
		add(t.ExtendedEntities.Media)
	}

	return urls, true
}
