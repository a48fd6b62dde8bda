package repository

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/crm_backend/utils"
	"bitbucket.org/mmdatafocus/crm_backend/workflow"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// runMutation wraps one repository mutation in a transaction and hands it
// to the processor executor. The mutate closure receives the transaction it
// must write through; any processor or mutate error rolls everything back.
func runMutation(ctx context.Context, db *gorm.DB, kind workflow.EntityKind, op workflow.Operation, entityId uuid.UUID, entity any, original any, mutate func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return workflow.Default().RunMutation(ctx, tx, kind, op, entityId, entity, original, func() error {
			return mutate(tx)
		})
	})
}

// translateNotFound maps gorm's sentinel onto the repository error taxonomy.
func translateNotFound(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.NewNotFoundError(entity, id.String())
	}
	return err
}

func exists[T any](db *gorm.DB, id uuid.UUID) (bool, error) {
	var model T
	var count int64
	if err := db.Model(&model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
