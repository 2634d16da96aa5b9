package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/amzibnewman/altrii-backend/internal/domain/timer/valueobjects"
)

// --- helpers ---

func newActiveCommitment(t *testing.T) *Commitment {
	t.Helper()
	c, err := NewCommitment("tc_test12345678", 10, 20, TierMonthly, 14)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}

func newEnforcementRef(t *testing.T) *vo.EnforcementRef {
	t.Helper()
	ref, err := vo.NewEnforcementRef("jamf-dev-1", "profile-1")
	require.NoError(t, err)
	return ref
}

func reconstructActive(t *testing.T, endAt time.Time, warningSent bool) *Commitment {
	t.Helper()
	start := endAt.Add(-14 * 24 * time.Hour)
	c, err := ReconstructCommitment(
		1, "tc_test12345678", 10, 20, TierMonthly, 14,
		start, endAt, vo.StatusActive, newEnforcementRef(t), warningSent,
		vo.DefaultLockedCapabilities(), 1, start, start,
	)
	require.NoError(t, err)
	return c
}

// --- creation ---

func TestNewCommitment(t *testing.T) {
	c := newActiveCommitment(t)

	assert.Equal(t, vo.StatusActive, c.Status())
	assert.Nil(t, c.EnforcementRef())
	assert.False(t, c.WarningSent())
	assert.Equal(t, 14, c.CommitmentDays())
	assert.Equal(t, c.StartAt().Add(14*24*time.Hour), c.EndAt())
	assert.True(t, c.EndAt().After(c.StartAt()))
}

func TestNewCommitment_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		sid      string
		userID   uint
		deviceID uint
		days     int
	}{
		{"missing sid", "", 1, 2, 14},
		{"missing user", "tc_x", 0, 2, 14},
		{"missing device", "tc_x", 1, 0, 14},
		{"zero days", "tc_x", 1, 2, 0},
		{"negative days", "tc_x", 1, 2, -5},
		{"over max days", "tc_x", 1, 2, 366},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCommitment(tt.sid, tt.userID, tt.deviceID, TierAnnual, tt.days)
			assert.Error(t, err)
		})
	}
}

// --- enforcement reference ---

func TestAttachEnforcement(t *testing.T) {
	c := newActiveCommitment(t)
	ref := newEnforcementRef(t)

	require.NoError(t, c.AttachEnforcement(ref))
	assert.Equal(t, ref, c.EnforcementRef())

	// second attach is rejected
	assert.Error(t, c.AttachEnforcement(newEnforcementRef(t)))
}

func TestAttachEnforcement_NotActive(t *testing.T) {
	c := newActiveCommitment(t)
	require.NoError(t, c.MarkExpired())

	assert.Error(t, c.AttachEnforcement(newEnforcementRef(t)))
}

// --- status transitions ---

func TestStatusTransitions_Monotone(t *testing.T) {
	tests := []struct {
		name       string
		transition func(*Commitment) error
		want       vo.CommitmentStatus
	}{
		{"expired", (*Commitment).MarkExpired, vo.StatusExpired},
		{"manually expired", (*Commitment).MarkManuallyExpired, vo.StatusManuallyExpired},
		{"failed", (*Commitment).MarkFailed, vo.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newActiveCommitment(t)
			require.NoError(t, tt.transition(c))
			assert.Equal(t, tt.want, c.Status())
			assert.True(t, c.Status().IsTerminal())

			// a terminal status never moves to a different one; re-marking
			// the same status is a no-op
			for _, other := range tests {
				if other.want == tt.want {
					assert.NoError(t, other.transition(c))
				} else {
					assert.Error(t, other.transition(c))
				}
				assert.Equal(t, tt.want, c.Status())
			}
		})
	}
}

func TestStatusTransition_Idempotent(t *testing.T) {
	c := newActiveCommitment(t)
	require.NoError(t, c.MarkExpired())
	// marking the same terminal status again is a no-op
	assert.NoError(t, c.MarkExpired())
}

// --- warning flag ---

func TestMarkWarningSent(t *testing.T) {
	c := newActiveCommitment(t)

	require.NoError(t, c.MarkWarningSent())
	assert.True(t, c.WarningSent())

	// exactly once
	assert.Error(t, c.MarkWarningSent())
}

func TestMarkWarningSent_OnlyWhileActive(t *testing.T) {
	c := newActiveCommitment(t)
	require.NoError(t, c.MarkExpired())

	assert.Error(t, c.MarkWarningSent())
}

// --- timing ---

func TestIsDue(t *testing.T) {
	now := time.Now().UTC()

	due := reconstructActive(t, now.Add(-time.Minute), false)
	assert.True(t, due.IsDue(now))

	notDue := reconstructActive(t, now.Add(time.Hour), false)
	assert.False(t, notDue.IsDue(now))
}

func TestHoursRemaining(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name string
		end  time.Time
		want int
	}{
		{"exactly ten hours", now.Add(10 * time.Hour), 10},
		{"partial hour rounds up", now.Add(9*time.Hour + 30*time.Minute), 10},
		{"just under an hour", now.Add(time.Minute), 1},
		{"already due", now.Add(-time.Minute), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := reconstructActive(t, tt.end, false)
			assert.Equal(t, tt.want, c.HoursRemaining(now))
		})
	}
}

// --- reconstruction ---

func TestReconstructCommitment_RejectsUnknownStatus(t *testing.T) {
	now := time.Now().UTC()
	_, err := ReconstructCommitment(
		1, "tc_x", 1, 2, TierMonthly, 14,
		now.Add(-time.Hour), now.Add(time.Hour), vo.CommitmentStatus("pending"), nil, false,
		vo.DefaultLockedCapabilities(), 1, now, now,
	)
	assert.Error(t, err)
}

func TestReconstructCommitment_RejectsEndBeforeStart(t *testing.T) {
	now := time.Now().UTC()
	_, err := ReconstructCommitment(
		1, "tc_x", 1, 2, TierMonthly, 14,
		now, now.Add(-time.Hour), vo.StatusActive, nil, false,
		vo.DefaultLockedCapabilities(), 1, now, now,
	)
	assert.Error(t, err)
}
