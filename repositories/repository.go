package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrRecordNotFound is returned when a lookup by id matches no row
var ErrRecordNotFound = gorm.ErrRecordNotFound

// Repository is the generic persistence gateway for one entity type.
// It has no business logic; entity specific queries live in the wrappers that embed it.
type Repository[T any] struct {
	db *gorm.DB
}

// NewRepository creates a gateway for entity type T
func NewRepository[T any](db *gorm.DB) *Repository[T] {
	return &Repository[T]{db: db}
}

// WithTx returns a gateway whose statements run inside tx
func (r *Repository[T]) WithTx(tx *gorm.DB) *Repository[T] {
	return &Repository[T]{db: tx}
}

// DB exposes the underlying handle scoped to ctx
func (r *Repository[T]) DB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// Create inserts one entity
func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	return r.DB(ctx).Create(entity).Error
}

// CreateBatch inserts many entities with a single statement set
func (r *Repository[T]) CreateBatch(ctx context.Context, entities []T) error {
	if len(entities) == 0 {
		return nil
	}
	return r.DB(ctx).Create(&entities).Error
}

// FindByID loads one entity, returning ErrRecordNotFound when absent
func (r *Repository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var entity T
	if err := r.DB(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// FindByIDs loads every entity whose id is in ids
func (r *Repository[T]) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]T, error) {
	var entities []T
	if len(ids) == 0 {
		return entities, nil
	}
	if err := r.DB(ctx).Where("id IN ?", ids).Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

// Exists reports whether an entity with id is stored
func (r *Repository[T]) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.DB(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count returns the number of stored entities
func (r *Repository[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB(ctx).Model(new(T)).Count(&count).Error
	return count, err
}

// Update saves every column of entity
func (r *Repository[T]) Update(ctx context.Context, entity *T) error {
	return r.DB(ctx).Save(entity).Error
}

// Delete removes the entity with id, returning ErrRecordNotFound when nothing was deleted
func (r *Repository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.DB(ctx).Where("id = ?", id).Delete(new(T))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// DeleteWhere bulk-deletes every row matching query and returns the number removed
func (r *Repository[T]) DeleteWhere(ctx context.Context, query interface{}, args ...interface{}) (int64, error) {
	result := r.DB(ctx).Where(query, args...).Delete(new(T))
	return result.RowsAffected, result.Error
}

// PluckIDs resolves the ids of every row matching query
func (r *Repository[T]) PluckIDs(ctx context.Context, query interface{}, args ...interface{}) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.DB(ctx).Model(new(T)).Where(query, args...).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// IsNotFound reports whether err means a missing row
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}
