package timer

import (
	"context"
	"time"
)

// Notification carries everything the notifier needs to address and render a
// commitment message.
type Notification struct {
	Email          string
	FirstName      string
	DeviceName     string
	CommitmentDays int
	StartAt        time.Time
	EndAt          time.Time
	// HoursRemaining is only meaningful for expiration warnings.
	HoursRemaining int
}

// Notifier delivers commitment lifecycle messages. Delivery failures are
// reported as errors; callers log them and never let them revert a status
// transition.
type Notifier interface {
	SendTimerCompletion(ctx context.Context, n Notification) error
	SendExpirationWarning(ctx context.Context, n Notification) error
}
