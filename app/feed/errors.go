package feed

import (
	"errors"
)

var (
	// ErrEmptyFeed indicates blank feed content
	ErrEmptyFeed = errors.New("feed content is empty")

	// ErrInvalidFormat indicates content without a recognizable feed structure
	ErrInvalidFormat = errors.New("invalid feed format")

	// ErrTimeout indicates a single fetch attempt exceeded its budget
	ErrTimeout = errors.New("request timed out")

	// ErrFetchFailed indicates every configured source was exhausted
	ErrFetchFailed = errors.New("all sources failed to fetch feed")
)
