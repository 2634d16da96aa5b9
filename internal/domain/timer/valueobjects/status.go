package valueobjects

// CommitmentStatus is the closed status enumeration for timer commitments.
// Any other value is rejected at the persistence boundary.
type CommitmentStatus string

const (
	StatusActive          CommitmentStatus = "active"
	StatusExpired         CommitmentStatus = "expired"
	StatusManuallyExpired CommitmentStatus = "manually_expired"
	StatusFailed          CommitmentStatus = "failed"
)

func (s CommitmentStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status is terminal. A commitment in a
// terminal status never transitions again.
func (s CommitmentStatus) IsTerminal() bool {
	return s == StatusExpired || s == StatusManuallyExpired || s == StatusFailed
}

// CanTransitionTo enforces monotone transitions: active may move to any
// terminal status, terminal statuses move nowhere.
func (s CommitmentStatus) CanTransitionTo(target CommitmentStatus) bool {
	transitions := map[CommitmentStatus][]CommitmentStatus{
		StatusActive:          {StatusExpired, StatusManuallyExpired, StatusFailed},
		StatusExpired:         {},
		StatusManuallyExpired: {},
		StatusFailed:          {},
	}

	allowed, exists := transitions[s]
	if !exists {
		return false
	}

	for _, allowedStatus := range allowed {
		if allowedStatus == target {
			return true
		}
	}
	return false
}

var ValidStatuses = map[CommitmentStatus]bool{
	StatusActive:          true,
	StatusExpired:         true,
	StatusManuallyExpired: true,
	StatusFailed:          true,
}
