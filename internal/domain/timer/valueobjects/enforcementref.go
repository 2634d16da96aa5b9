package valueobjects

import "fmt"

// EnforcementRef identifies the restriction artifact deployed on the MDM
// provider for a commitment. Both fields are provider-side identifiers.
type EnforcementRef struct {
	deviceHandle string
	profileID    string
}

// NewEnforcementRef creates an enforcement reference. Both identifiers are
// required; an enforcement reference with a missing half is meaningless and
// would make later removal impossible.
func NewEnforcementRef(deviceHandle, profileID string) (*EnforcementRef, error) {
	if deviceHandle == "" {
		return nil, fmt.Errorf("device handle is required")
	}
	if profileID == "" {
		return nil, fmt.Errorf("profile ID is required")
	}
	return &EnforcementRef{deviceHandle: deviceHandle, profileID: profileID}, nil
}

func (r *EnforcementRef) DeviceHandle() string {
	return r.deviceHandle
}

func (r *EnforcementRef) ProfileID() string {
	return r.profileID
}
