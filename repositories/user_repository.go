package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/repairhub/repairhub-api/models"
)

// UserRepository adds user lookups to the generic gateway
type UserRepository struct {
	*Repository[models.User]
}

// NewUserRepository creates a UserRepository over db
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{Repository: NewRepository[models.User](db)}
}

// FindByAuth0ID loads the user bound to an Auth0 subject
func (r *UserRepository) FindByAuth0ID(ctx context.Context, auth0ID string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// WithTx returns a UserRepository whose statements run inside tx
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{Repository: r.Repository.WithTx(tx)}
}
