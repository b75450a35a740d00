package pipeline

import "errors"

// ErrNoFeeds is returned by Run when no feed sources are configured.
var ErrNoFeeds = errors.New("no feeds configured")
