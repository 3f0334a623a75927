package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/repairhub/repairhub-api/config"
	"github.com/repairhub/repairhub-api/models"
	"github.com/repairhub/repairhub-api/repositories"
)

// CascadeResult reports how many rows a cascade delete removed
type CascadeResult struct {
	Services      int64 `json:"services"`
	Devices       int64 `json:"devices"`
	DeviceDetails int64 `json:"device_details"`
}

// CatalogService manages the service / device / detail catalog
type CatalogService struct {
	tx      repositories.TxManager
	catalog *repositories.CatalogRepository
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{
		tx:      repositories.NewTxManager(db),
		catalog: repositories.NewCatalogRepository(db),
	}
}

// DeleteServiceCascade removes a service with all of its devices and their details.
// Either every row goes or, on any failure, none does; the failure is returned as is.
func (s *CatalogService) DeleteServiceCascade(ctx context.Context, actor Actor, serviceID uuid.UUID) (*CascadeResult, error) {
	if err := Authorize(OpDeleteService, actor); err != nil {
		return nil, err
	}

	exists, err := s.catalog.Services.Exists(ctx, serviceID)
	if err != nil {
		return nil, NewStorageError("load service", err)
	}
	if !exists {
		return nil, notFoundError("service", serviceID)
	}

	deviceIDs, err := s.catalog.DeviceIDsOfService(ctx, serviceID)
	if err != nil {
		return nil, NewStorageError("resolve service devices", err)
	}
	detailIDs, err := s.catalog.DetailIDsOfDevices(ctx, deviceIDs)
	if err != nil {
		return nil, NewStorageError("resolve device details", err)
	}

	result := &CascadeResult{}
	err = s.tx.RunInTransaction(ctx, func(tx *gorm.DB) error {
		catalog := s.catalog.WithTx(tx)

		if len(detailIDs) > 0 {
			n, err := catalog.DeviceDetails.DeleteWhere(ctx, "id IN ?", detailIDs)
			if err != nil {
				return err
			}
			result.DeviceDetails = n
		}

		n, err := catalog.ServiceDevices.DeleteWhere(ctx, "service_id = ?", serviceID)
		if err != nil {
			return err
		}
		result.Devices = n

		if err := catalog.Services.Delete(ctx, serviceID); err != nil {
			return err
		}
		result.Services = 1
		return nil
	})
	if err != nil {
		config.Logger().Error("service cascade delete rolled back",
			zap.String("service_id", serviceID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	config.Logger().Info("service deleted",
		zap.String("service_id", serviceID.String()),
		zap.Int64("devices", result.Devices),
		zap.Int64("device_details", result.DeviceDetails),
	)
	return result, nil
}

// ServiceTree loads a service with its devices and details
func (s *CatalogService) ServiceTree(ctx context.Context, serviceID uuid.UUID) (*models.Service, error) {
	var service models.Service
	err := s.catalog.Services.DB(ctx).
		Preload("ServiceDevices.DeviceDetails").
		Where("id = ?", serviceID).
		First(&service).Error
	if err != nil {
		return nil, lookupError("service", serviceID, err)
	}
	return &service, nil
}
