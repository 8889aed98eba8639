package notification

import (
	"time"
)

// Topic selects the channel (and forum topic) a message is posted to.
type Topic string

const (
	TopicAttendance Topic = "attendance"
	TopicSecurity   Topic = "security"
	TopicReport     Topic = "report"
)

// Message is a rendered, channel-ready notification.
type Message struct {
	ID        string
	Topic     Topic
	Text      string
	CreatedAt time.Time
}
