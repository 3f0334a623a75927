package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/repairhub/repairhub-api/models"
)

// RepairmanFormFilter narrows an application listing
type RepairmanFormFilter struct {
	Status *models.RepairmanFormStatus
	Offset int
	Limit  int
}

// RepairmanFormRepository adds application queries to the generic gateway
type RepairmanFormRepository struct {
	*Repository[models.RepairmanForm]
}

// NewRepairmanFormRepository creates a RepairmanFormRepository over db
func NewRepairmanFormRepository(db *gorm.DB) *RepairmanFormRepository {
	return &RepairmanFormRepository{Repository: NewRepository[models.RepairmanForm](db)}
}

// WithTx returns a RepairmanFormRepository whose statements run inside tx
func (r *RepairmanFormRepository) WithTx(tx *gorm.DB) *RepairmanFormRepository {
	return &RepairmanFormRepository{Repository: r.Repository.WithTx(tx)}
}

// ExistsForUser reports whether userID has already applied
func (r *RepairmanFormRepository) ExistsForUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).Model(&models.RepairmanForm{}).Where("user_id = ?", userID).Count(&count).Error
	return count > 0, err
}

// CreateWithDetail inserts the form and its detail; run it inside a transaction
func (r *RepairmanFormRepository) CreateWithDetail(ctx context.Context, form *models.RepairmanForm) error {
	return r.DB(ctx).Create(form).Error
}

// FindDetail loads a form with its detail and applicant
func (r *RepairmanFormRepository) FindDetail(ctx context.Context, id uuid.UUID) (*models.RepairmanForm, error) {
	var form models.RepairmanForm
	err := r.DB(ctx).
		Preload("Detail").
		Preload("User").
		Where("id = ?", id).
		First(&form).Error
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// FindPage returns one page of forms, oldest first so the review queue is worked in order
func (r *RepairmanFormRepository) FindPage(ctx context.Context, filter RepairmanFormFilter) ([]models.RepairmanForm, int64, error) {
	query := r.DB(ctx).Model(&models.RepairmanForm{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var forms []models.RepairmanForm
	err := query.
		Preload("Detail").
		Order("created_at ASC").
		Order("id").
		Offset(normalizeOffset(filter.Offset)).
		Limit(NormalizeLimit(filter.Limit)).
		Find(&forms).Error
	if err != nil {
		return nil, 0, err
	}
	return forms, total, nil
}
