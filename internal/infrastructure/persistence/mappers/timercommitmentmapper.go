package mappers

import (
	"encoding/json"
	"fmt"

	"github.com/amzibnewman/altrii-backend/internal/domain/timer"
	vo "github.com/amzibnewman/altrii-backend/internal/domain/timer/valueobjects"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/persistence/models"
	"github.com/amzibnewman/altrii-backend/internal/shared/mapper"
)

// activeKey is the sentinel stored alongside active commitments so the
// (device_id, active_key) unique index only bites while a commitment runs.
const activeKey = "active"

type TimerCommitmentMapper interface {
	ToEntity(model *models.TimerCommitmentModel) (*timer.Commitment, error)
	ToModel(entity *timer.Commitment) (*models.TimerCommitmentModel, error)
	ToEntities(models []*models.TimerCommitmentModel) ([]*timer.Commitment, error)
}

type TimerCommitmentMapperImpl struct{}

func NewTimerCommitmentMapper() TimerCommitmentMapper {
	return &TimerCommitmentMapperImpl{}
}

func (m *TimerCommitmentMapperImpl) ToEntity(model *models.TimerCommitmentModel) (*timer.Commitment, error) {
	if model == nil {
		return nil, nil
	}

	status := vo.CommitmentStatus(model.Status)
	if !vo.ValidStatuses[status] {
		return nil, fmt.Errorf("invalid commitment status: %s", model.Status)
	}

	var enforcementRef *vo.EnforcementRef
	if model.ProviderDeviceHandle != nil && model.ProviderProfileID != nil {
		ref, err := vo.NewEnforcementRef(*model.ProviderDeviceHandle, *model.ProviderProfileID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse enforcement reference: %w", err)
		}
		enforcementRef = ref
	}

	capabilities := vo.DefaultLockedCapabilities()
	if model.LockedCapabilities != nil {
		if err := json.Unmarshal(model.LockedCapabilities, &capabilities); err != nil {
			return nil, fmt.Errorf("failed to unmarshal locked capabilities: %w", err)
		}
	}

	entity, err := timer.ReconstructCommitment(
		model.ID,
		model.SID,
		model.UserID,
		model.DeviceID,
		timer.Tier(model.Tier),
		model.CommitmentDays,
		model.StartAt,
		model.EndAt,
		status,
		enforcementRef,
		model.WarningSent,
		capabilities,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct commitment entity: %w", err)
	}

	return entity, nil
}

func (m *TimerCommitmentMapperImpl) ToModel(entity *timer.Commitment) (*models.TimerCommitmentModel, error) {
	if entity == nil {
		return nil, nil
	}

	capabilitiesJSON, err := json.Marshal(entity.LockedCapabilities())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal locked capabilities: %w", err)
	}

	var deviceHandle, profileID *string
	if ref := entity.EnforcementRef(); ref != nil {
		h := ref.DeviceHandle()
		p := ref.ProfileID()
		deviceHandle = &h
		profileID = &p
	}

	var active *string
	if entity.Status() == vo.StatusActive {
		k := activeKey
		active = &k
	}

	return &models.TimerCommitmentModel{
		ID:                   entity.ID(),
		SID:                  entity.SID(),
		UserID:               entity.UserID(),
		DeviceID:             entity.DeviceID(),
		ActiveKey:            active,
		Tier:                 entity.Tier().String(),
		CommitmentDays:       entity.CommitmentDays(),
		StartAt:              entity.StartAt(),
		EndAt:                entity.EndAt(),
		Status:               entity.Status().String(),
		ProviderDeviceHandle: deviceHandle,
		ProviderProfileID:    profileID,
		WarningSent:          entity.WarningSent(),
		LockedCapabilities:   capabilitiesJSON,
		Version:              entity.Version(),
		CreatedAt:            entity.CreatedAt(),
		UpdatedAt:            entity.UpdatedAt(),
	}, nil
}

func (m *TimerCommitmentMapperImpl) ToEntities(modelList []*models.TimerCommitmentModel) ([]*timer.Commitment, error) {
	return mapper.MapSlicePtrWithID(modelList, m.ToEntity, func(model *models.TimerCommitmentModel) uint { return model.ID })
}
