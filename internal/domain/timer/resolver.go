package timer

import "context"

// TierResolver maps a user to the subscription tier bounding their commitment
// durations. Resolution failures and missing subscriptions are distinct:
// a user with no active subscription cannot create commitments at all.
type TierResolver interface {
	// ActiveTierForUser returns the tier of the user's active subscription,
	// or ErrSubscriptionRequired if none exists.
	ActiveTierForUser(ctx context.Context, userID uint) (Tier, error)
}

// Recipient is the addressing data for commitment notifications.
type Recipient struct {
	Email     string
	FirstName string
}

// UserDirectory resolves notification recipients. It is read-only; account
// management lives outside this service.
type UserDirectory interface {
	GetRecipient(ctx context.Context, userID uint) (*Recipient, error)
}
