// Package channels has helpers for publishing to channels owned by someone
// else.
package channels

import "errors"

var (
	ErrChannelClosed = errors.New("channel closed")
	ErrChannelFull   = errors.New("channel full")
)
