package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/repairhub/repairhub-api/config"
	"github.com/repairhub/repairhub-api/models"
)

// NewTestDB opens a migrated in-memory SQLite database.
// The pool is limited to one connection so that every statement, including those of a
// transaction, sees the same in-memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db), "Failed to migrate test database")

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// CreateUser stores a user with the given role
func CreateUser(t *testing.T, db *gorm.DB, role models.Role, name string) models.User {
	t.Helper()

	user := models.User{
		Auth0ID:  "auth0|" + name,
		FullName: name,
		Email:    name + "@example.com",
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// Catalog is a seeded service with its devices and details
type Catalog struct {
	Service models.Service
	Devices []models.ServiceDevice
	Details []models.DeviceDetail
}

// DetailIDs returns the ids of every seeded device detail
func (c Catalog) DetailIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Details))
	for _, d := range c.Details {
		ids = append(ids, d.ID)
	}
	return ids
}

// CreateCatalog stores one service with devices devices, each carrying detailsPerDevice
// details priced 100, 200, ...
func CreateCatalog(t *testing.T, db *gorm.DB, name string, devices, detailsPerDevice int) Catalog {
	t.Helper()

	catalog := Catalog{Service: models.Service{Name: name}}
	require.NoError(t, db.Create(&catalog.Service).Error)

	for i := 0; i < devices; i++ {
		device := models.ServiceDevice{ServiceID: catalog.Service.ID, Name: name + " device"}
		require.NoError(t, db.Create(&device).Error)
		catalog.Devices = append(catalog.Devices, device)

		for j := 0; j < detailsPerDevice; j++ {
			detail := models.DeviceDetail{
				ServiceDeviceID: device.ID,
				Name:            name + " fault",
				MinPrice:        decimal.NewFromInt(int64(100 * (j + 1))),
			}
			require.NoError(t, db.Create(&detail).Error)
			catalog.Details = append(catalog.Details, detail)
		}
	}
	return catalog
}
