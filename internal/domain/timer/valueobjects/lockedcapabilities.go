package valueobjects

// LockedCapabilities describes the device capabilities denied while a
// commitment is active. It is descriptive metadata embedded in the
// restriction profile; actual enforcement is delegated to the MDM provider.
// A false value means the capability is denied.
type LockedCapabilities struct {
	ProfileRemoval  bool `json:"profileRemoval"`
	FactoryReset    bool `json:"factoryReset"`
	AppInstallation bool `json:"appInstallation"`
	SystemSettings  bool `json:"systemSettings"`
}

// DefaultLockedCapabilities returns the capability set every commitment
// locks: nothing is allowed while the timer runs.
func DefaultLockedCapabilities() LockedCapabilities {
	return LockedCapabilities{
		ProfileRemoval:  false,
		FactoryReset:    false,
		AppInstallation: false,
		SystemSettings:  false,
	}
}
