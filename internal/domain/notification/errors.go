package notification

import "errors"

var (
	ErrQueueFull      = errors.New("notification queue is full")
	ErrServiceStopped = errors.New("notification service stopped")
	ErrEmptyMessage   = errors.New("notification message is empty")
)
