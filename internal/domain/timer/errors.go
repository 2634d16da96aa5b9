package timer

import "errors"

var (
	ErrCommitmentNotFound      = errors.New("timer commitment not found")
	ErrActiveCommitmentExists  = errors.New("device already has an active timer commitment")
	ErrDeviceNotEnrolled       = errors.New("device is not enrolled with the MDM provider")
	ErrConfirmationRequired    = errors.New("commitment confirmation is required")
	ErrSubscriptionRequired    = errors.New("active subscription required for timer commitments")
	ErrInvalidStatusTransition = errors.New("invalid commitment status transition")
	ErrCommitmentConflict      = errors.New("timer commitment was modified concurrently")
)
