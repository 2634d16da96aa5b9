package timer

import (
	"fmt"
	"math"
	"time"

	vo "github.com/amzibnewman/altrii-backend/internal/domain/timer/valueobjects"
	"github.com/amzibnewman/altrii-backend/internal/shared/biztime"
)

const (
	// MinCommitmentDays and MaxCommitmentDays bound requested durations
	// before any tier policy is consulted.
	MinCommitmentDays = 1
	MaxCommitmentDays = 365
)

// Commitment is the timer commitment aggregate root: the durable record of a
// device being placed under timer-based restriction for a bounded period.
type Commitment struct {
	id                 uint
	sid                string
	userID             uint
	deviceID           uint
	tier               Tier
	commitmentDays     int
	startAt            time.Time
	endAt              time.Time
	status             vo.CommitmentStatus
	enforcementRef     *vo.EnforcementRef
	warningSent        bool
	lockedCapabilities vo.LockedCapabilities
	// version matches the stored row at load time. The store compares and
	// advances it on write, so a stale copy can never clobber a concurrent
	// terminal transition.
	version int
	createdAt          time.Time
	updatedAt          time.Time
}

// NewCommitment creates a new active commitment starting now. The enforcement
// reference is attached separately once the provider deployment succeeds.
func NewCommitment(sid string, userID, deviceID uint, tier Tier, commitmentDays int) (*Commitment, error) {
	if sid == "" {
		return nil, fmt.Errorf("commitment SID is required")
	}
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if deviceID == 0 {
		return nil, fmt.Errorf("device ID is required")
	}
	if commitmentDays < MinCommitmentDays || commitmentDays > MaxCommitmentDays {
		return nil, fmt.Errorf("commitment days must be between %d and %d", MinCommitmentDays, MaxCommitmentDays)
	}

	now := biztime.NowUTC()
	return &Commitment{
		sid:                sid,
		userID:             userID,
		deviceID:           deviceID,
		tier:               tier,
		commitmentDays:     commitmentDays,
		startAt:            now,
		endAt:              now.Add(time.Duration(commitmentDays) * 24 * time.Hour),
		status:             vo.StatusActive,
		lockedCapabilities: vo.DefaultLockedCapabilities(),
		version:            1,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

// ReconstructCommitment reconstructs a commitment from persistence.
func ReconstructCommitment(
	id uint,
	sid string,
	userID, deviceID uint,
	tier Tier,
	commitmentDays int,
	startAt, endAt time.Time,
	status vo.CommitmentStatus,
	enforcementRef *vo.EnforcementRef,
	warningSent bool,
	lockedCapabilities vo.LockedCapabilities,
	version int,
	createdAt, updatedAt time.Time,
) (*Commitment, error) {
	if id == 0 {
		return nil, fmt.Errorf("commitment ID cannot be zero")
	}
	if sid == "" {
		return nil, fmt.Errorf("commitment SID is required")
	}
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if deviceID == 0 {
		return nil, fmt.Errorf("device ID is required")
	}
	if !vo.ValidStatuses[status] {
		return nil, fmt.Errorf("invalid commitment status: %s", status)
	}
	if !endAt.After(startAt) {
		return nil, fmt.Errorf("commitment end must be after start")
	}

	return &Commitment{
		id:                 id,
		sid:                sid,
		userID:             userID,
		deviceID:           deviceID,
		tier:               tier,
		commitmentDays:     commitmentDays,
		startAt:            startAt,
		endAt:              endAt,
		status:             status,
		enforcementRef:     enforcementRef,
		warningSent:        warningSent,
		lockedCapabilities: lockedCapabilities,
		version:            version,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}, nil
}

func (c *Commitment) ID() uint                                  { return c.id }
func (c *Commitment) SID() string                               { return c.sid }
func (c *Commitment) UserID() uint                              { return c.userID }
func (c *Commitment) DeviceID() uint                            { return c.deviceID }
func (c *Commitment) Tier() Tier                                { return c.tier }
func (c *Commitment) CommitmentDays() int                       { return c.commitmentDays }
func (c *Commitment) StartAt() time.Time                        { return c.startAt }
func (c *Commitment) EndAt() time.Time                          { return c.endAt }
func (c *Commitment) Status() vo.CommitmentStatus               { return c.status }
func (c *Commitment) EnforcementRef() *vo.EnforcementRef        { return c.enforcementRef }
func (c *Commitment) WarningSent() bool                         { return c.warningSent }
func (c *Commitment) LockedCapabilities() vo.LockedCapabilities { return c.lockedCapabilities }
func (c *Commitment) Version() int                              { return c.version }
func (c *Commitment) CreatedAt() time.Time                      { return c.createdAt }
func (c *Commitment) UpdatedAt() time.Time                      { return c.updatedAt }

// SetID sets the commitment ID (only for persistence layer use)
func (c *Commitment) SetID(id uint) error {
	if c.id != 0 {
		return fmt.Errorf("commitment ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("commitment ID cannot be zero")
	}
	c.id = id
	return nil
}

// AttachEnforcement records the provider-side restriction artifact for this
// commitment. Only permitted while active; an active commitment without an
// enforcement reference after creation completes is a rollback condition.
func (c *Commitment) AttachEnforcement(ref *vo.EnforcementRef) error {
	if ref == nil {
		return fmt.Errorf("enforcement reference is required")
	}
	if c.status != vo.StatusActive {
		return fmt.Errorf("cannot attach enforcement to commitment with status %s", c.status)
	}
	if c.enforcementRef != nil {
		return fmt.Errorf("enforcement reference is already set")
	}

	c.enforcementRef = ref
	c.touch()
	return nil
}

// MarkExpired transitions the commitment to expired.
func (c *Commitment) MarkExpired() error {
	return c.transitionTo(vo.StatusExpired)
}

// MarkManuallyExpired transitions the commitment to manually_expired. This is
// the administrative/emergency termination path, never the scheduled one.
func (c *Commitment) MarkManuallyExpired() error {
	return c.transitionTo(vo.StatusManuallyExpired)
}

// MarkFailed flags the commitment for manual review. Used when the expiry
// status update could not be persisted; a commitment must never be left
// active past its end time indefinitely.
func (c *Commitment) MarkFailed() error {
	return c.transitionTo(vo.StatusFailed)
}

func (c *Commitment) transitionTo(target vo.CommitmentStatus) error {
	if c.status == target {
		return nil
	}
	if !c.status.CanTransitionTo(target) {
		return fmt.Errorf("invalid status transition from %s to %s", c.status, target)
	}

	c.status = target
	c.touch()
	return nil
}

// MarkWarningSent records that the expiration warning was delivered. Only
// valid while active and only once.
func (c *Commitment) MarkWarningSent() error {
	if c.status != vo.StatusActive {
		return fmt.Errorf("cannot mark warning sent for commitment with status %s", c.status)
	}
	if c.warningSent {
		return fmt.Errorf("warning already sent")
	}

	c.warningSent = true
	c.touch()
	return nil
}

// IsDue reports whether the commitment has passed its end time.
func (c *Commitment) IsDue(now time.Time) bool {
	return !c.endAt.After(now)
}

// HoursRemaining returns the whole hours remaining until the end time,
// rounded up. Returns 0 once the commitment is due.
func (c *Commitment) HoursRemaining(now time.Time) int {
	remaining := c.endAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours()))
}

func (c *Commitment) touch() {
	c.updatedAt = biztime.NowUTC()
}

// SetVersion records the version the store assigned on a successful write.
// It only moves forward.
func (c *Commitment) SetVersion(version int) error {
	if version <= c.version {
		return fmt.Errorf("commitment version can only advance")
	}
	c.version = version
	return nil
}

// Validate performs domain-level validation
func (c *Commitment) Validate() error {
	if c.userID == 0 {
		return fmt.Errorf("user ID is required")
	}
	if c.deviceID == 0 {
		return fmt.Errorf("device ID is required")
	}
	if !vo.ValidStatuses[c.status] {
		return fmt.Errorf("invalid status: %s", c.status)
	}
	if !c.endAt.After(c.startAt) {
		return fmt.Errorf("end must be after start")
	}
	if c.commitmentDays < MinCommitmentDays || c.commitmentDays > MaxCommitmentDays {
		return fmt.Errorf("commitment days out of range")
	}
	return nil
}
