package constants

// Database table names
const (
	TableUsers            = "users"
	TableDevices          = "devices"
	TableSubscriptions    = "subscriptions"
	TableTimerCommitments = "timer_commitments"
)
