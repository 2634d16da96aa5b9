package dto

import (
	"github.com/amzibnewman/altrii-backend/internal/domain/timer"
	"github.com/amzibnewman/altrii-backend/internal/shared/biztime"
)

// ToTimerCommitmentDTO converts a commitment entity to its presentation shape.
// The device name is resolved by the caller when available.
func ToTimerCommitmentDTO(c *timer.Commitment, deviceSID, deviceName string) *TimerCommitmentDTO {
	if c == nil {
		return nil
	}

	caps := c.LockedCapabilities()
	return &TimerCommitmentDTO{
		ID:             c.SID(),
		DeviceID:       deviceSID,
		DeviceName:     deviceName,
		Tier:           c.Tier().String(),
		CommitmentDays: c.CommitmentDays(),
		StartAt:        c.StartAt(),
		EndAt:          c.EndAt(),
		Status:         c.Status().String(),
		WarningSent:    c.WarningSent(),
		HoursRemaining: c.HoursRemaining(biztime.NowUTC()),
		LockedCapabilities: map[string]bool{
			"profileRemoval":  caps.ProfileRemoval,
			"factoryReset":    caps.FactoryReset,
			"appInstallation": caps.AppInstallation,
			"systemSettings":  caps.SystemSettings,
		},
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}
}

// ToTimerLimitsDTO converts a tier's policy allowance to its presentation shape.
func ToTimerLimitsDTO(tier timer.Tier) *TimerLimitsDTO {
	limits := timer.TierLimits(tier)
	return &TimerLimitsDTO{
		Tier:        tier.String(),
		DisplayName: limits.DisplayName,
		MaxDays:     limits.MaxDays,
		MinDays:     timer.MinCommitmentDays,
	}
}

// ToDeviceStatusDTO converts the provider device view.
func ToDeviceStatusDTO(status *timer.DeviceStatus) *DeviceStatusDTO {
	if status == nil {
		return nil
	}
	return &DeviceStatusDTO{
		Online:    status.Online,
		Compliant: status.Compliant,
		LastSeen:  status.LastSeen,
	}
}
