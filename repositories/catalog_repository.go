package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/repairhub/repairhub-api/models"
)

// CatalogRepository groups the gateways of the three catalog levels
type CatalogRepository struct {
	Services       *Repository[models.Service]
	ServiceDevices *Repository[models.ServiceDevice]
	DeviceDetails  *Repository[models.DeviceDetail]
}

// NewCatalogRepository creates a CatalogRepository over db
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{
		Services:       NewRepository[models.Service](db),
		ServiceDevices: NewRepository[models.ServiceDevice](db),
		DeviceDetails:  NewRepository[models.DeviceDetail](db),
	}
}

// WithTx returns a CatalogRepository whose statements run inside tx
func (r *CatalogRepository) WithTx(tx *gorm.DB) *CatalogRepository {
	return &CatalogRepository{
		Services:       r.Services.WithTx(tx),
		ServiceDevices: r.ServiceDevices.WithTx(tx),
		DeviceDetails:  r.DeviceDetails.WithTx(tx),
	}
}

// DeviceIDsOfService resolves the ids of every device under a service
func (r *CatalogRepository) DeviceIDsOfService(ctx context.Context, serviceID uuid.UUID) ([]uuid.UUID, error) {
	return r.ServiceDevices.PluckIDs(ctx, "service_id = ?", serviceID)
}

// DetailIDsOfDevices resolves the ids of every detail under the given devices
func (r *CatalogRepository) DetailIDsOfDevices(ctx context.Context, deviceIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(deviceIDs) == 0 {
		return nil, nil
	}
	return r.DeviceDetails.PluckIDs(ctx, "service_device_id IN ?", deviceIDs)
}
