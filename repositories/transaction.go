package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// TxManager demarcates explicit transactions
type TxManager interface {
	RunInTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type txManager struct {
	db *gorm.DB
}

// NewTxManager creates a TxManager over db
func NewTxManager(db *gorm.DB) TxManager {
	return &txManager{db: db}
}

// RunInTransaction runs fn inside one transaction. The transaction is rolled back when fn
// returns an error (which is returned unmodified) or panics (the panic is re-raised),
// and committed otherwise.
func (m *txManager) RunInTransaction(ctx context.Context, fn func(tx *gorm.DB) error) (err error) {
	tx := m.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
			return
		}
		if commitErr := tx.Commit().Error; commitErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", commitErr)
		}
	}()

	err = fn(tx)
	return err
}
