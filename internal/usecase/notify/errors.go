package notify

import "errors"

// Sentinel errors for notify use case operations.
var (
	// ErrChannelDisabled indicates that Send was called on a disabled channel.
	ErrChannelDisabled = errors.New("channel is disabled")

	// ErrInvalidPost indicates a nil post or one without a hook title.
	ErrInvalidPost = errors.New("invalid post data")

	// ErrNotificationDropped indicates that a notification was dropped because
	// no worker slot became free in time or the channel circuit was open.
	ErrNotificationDropped = errors.New("notification dropped")
)
