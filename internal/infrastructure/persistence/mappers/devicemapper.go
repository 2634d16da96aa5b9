package mappers

import (
	"fmt"

	"github.com/amzibnewman/altrii-backend/internal/domain/device"
	"github.com/amzibnewman/altrii-backend/internal/infrastructure/persistence/models"
	"github.com/amzibnewman/altrii-backend/internal/shared/mapper"
)

type DeviceMapper interface {
	ToEntity(model *models.DeviceModel) (*device.Device, error)
	ToModel(entity *device.Device) (*models.DeviceModel, error)
	ToEntities(models []*models.DeviceModel) ([]*device.Device, error)
}

type DeviceMapperImpl struct{}

func NewDeviceMapper() DeviceMapper {
	return &DeviceMapperImpl{}
}

func (m *DeviceMapperImpl) ToEntity(model *models.DeviceModel) (*device.Device, error) {
	if model == nil {
		return nil, nil
	}

	entity, err := device.ReconstructDevice(
		model.ID,
		model.SID,
		model.UserID,
		model.Name,
		model.ProviderHandle,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct device entity: %w", err)
	}

	return entity, nil
}

func (m *DeviceMapperImpl) ToModel(entity *device.Device) (*models.DeviceModel, error) {
	if entity == nil {
		return nil, nil
	}

	return &models.DeviceModel{
		ID:             entity.ID(),
		SID:            entity.SID(),
		UserID:         entity.UserID(),
		Name:           entity.Name(),
		ProviderHandle: entity.ProviderHandle(),
		CreatedAt:      entity.CreatedAt(),
		UpdatedAt:      entity.UpdatedAt(),
	}, nil
}

func (m *DeviceMapperImpl) ToEntities(modelList []*models.DeviceModel) ([]*device.Device, error) {
	return mapper.MapSlicePtrWithID(modelList, m.ToEntity, func(model *models.DeviceModel) uint { return model.ID })
}
