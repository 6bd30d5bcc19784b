package model

import "time"

// Severity classifies a notification for presentation.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
)

// Notification is a transient user-visible message emitted by the
// engine, e.g. the outcome of a save.
type Notification struct {
	// Message is the human-readable notification text.
	Message string `json:"message"`

	// Severity controls how the message is rendered.
	Severity Severity `json:"severity"`

	// CreatedAt is when this notification was emitted.
	CreatedAt time.Time `json:"created_at"`
}
