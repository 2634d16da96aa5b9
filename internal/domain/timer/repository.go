package timer

import (
	"context"
	"time"
)

// CommitmentRepository is the durable store for commitments. It is the single
// source of truth for commitment state. Implementations must enforce the
// at-most-one-active-commitment-per-device invariant with a storage-level
// uniqueness constraint, not a check-then-insert.
type CommitmentRepository interface {
	Create(ctx context.Context, commitment *Commitment) error
	Update(ctx context.Context, commitment *Commitment) error
	// Delete removes a commitment row entirely. Only used for creation
	// rollback when provider deployment fails.
	Delete(ctx context.Context, id uint) error

	GetByID(ctx context.Context, id uint) (*Commitment, error)
	GetBySID(ctx context.Context, sid string) (*Commitment, error)
	GetActiveByDeviceID(ctx context.Context, deviceID uint) (*Commitment, error)

	// FindExpired returns active commitments whose end time has passed.
	FindExpired(ctx context.Context, now time.Time) ([]*Commitment, error)
	// FindNeedingWarning returns active commitments ending within the window
	// that have not yet been warned.
	FindNeedingWarning(ctx context.Context, now time.Time, window time.Duration) ([]*Commitment, error)

	ListByUserID(ctx context.Context, userID uint, filter CommitmentFilter) ([]*Commitment, int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// CommitmentFilter narrows and pages commitment listings.
type CommitmentFilter struct {
	Status   *string
	Page     int
	PageSize int
}
