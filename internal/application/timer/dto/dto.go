package dto

import "time"

// TimerCommitmentDTO is the presentation shape of a commitment.
type TimerCommitmentDTO struct {
	ID                 string     `json:"id"`
	DeviceID           string     `json:"device_id"`
	DeviceName         string     `json:"device_name,omitempty"`
	Tier               string     `json:"tier"`
	CommitmentDays     int        `json:"commitment_days"`
	StartAt            time.Time  `json:"start_at"`
	EndAt              time.Time  `json:"end_at"`
	Status             string     `json:"status"`
	WarningSent        bool       `json:"warning_sent"`
	HoursRemaining     int        `json:"hours_remaining"`
	LockedCapabilities map[string]bool `json:"locked_capabilities"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// TimerLimitsDTO describes what the user's subscription tier allows.
type TimerLimitsDTO struct {
	Tier        string `json:"tier"`
	DisplayName string `json:"display_name"`
	MaxDays     int    `json:"max_days"`
	MinDays     int    `json:"min_days"`
}

// DeviceStatusDTO is the provider's read-only view of a device.
type DeviceStatusDTO struct {
	Online    bool      `json:"online"`
	Compliant bool      `json:"compliant"`
	LastSeen  time.Time `json:"last_seen"`
}

// TimerStatsDTO aggregates commitment counts by status.
type TimerStatsDTO struct {
	Active          int64 `json:"active"`
	Expired         int64 `json:"expired"`
	ManuallyExpired int64 `json:"manually_expired"`
	Failed          int64 `json:"failed"`
	Total           int64 `json:"total"`
}
