package feed

import (
	"time"
)

// Item is one normalized entry from the news feed. Immutable after
// creation; uniqueness is by Link within a fetch batch only.
type Item struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	Category    string    `json:"category"`
	PublishedAt time.Time `json:"published_at"`
}

// CacheEntry is the serialized form of a cached fetch result
type CacheEntry struct {
	Timestamp int64  `json:"timestamp"`
	Data      []Item `json:"data"`
}
