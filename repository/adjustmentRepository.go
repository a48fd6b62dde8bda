package repository

import (
	"context"

	"bitbucket.org/mmdatafocus/crm_backend/models"
	"bitbucket.org/mmdatafocus/crm_backend/utils"
	"bitbucket.org/mmdatafocus/crm_backend/workflow"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type NewAdjustment struct {
	AdjustmentNumber string          `json:"adjustment_number" validate:"required"`
	FactoryId        uuid.UUID       `json:"factory_id" validate:"required"`
	Amount           decimal.Decimal `json:"amount"`
	Description      string          `json:"description"`
}

type AdjustmentRepository struct {
	db *gorm.DB
}

func NewAdjustmentRepository(db *gorm.DB) *AdjustmentRepository {
	return &AdjustmentRepository{db: db}
}

func (r *AdjustmentRepository) Create(ctx context.Context, input NewAdjustment) (*models.Adjustment, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[models.Adjustment](r.db, "adjustment_number", input.AdjustmentNumber, nil); err != nil {
		return nil, err
	}
	adjustment := &models.Adjustment{
		ID:               uuid.New(),
		AdjustmentNumber: input.AdjustmentNumber,
		Status:           models.AdjustmentStatusOpen,
		FactoryId:        input.FactoryId,
		Amount:           input.Amount,
		Description:      input.Description,
	}
	err := runMutation(ctx, r.db, workflow.KindAdjustment, workflow.OpCreate, adjustment.ID, adjustment, nil, func(tx *gorm.DB) error {
		return tx.Create(adjustment).Error
	})
	if err != nil {
		return nil, err
	}
	return adjustment, nil
}

func (r *AdjustmentRepository) Update(ctx context.Context, id uuid.UUID, input NewAdjustment) (*models.Adjustment, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	original, err := r.GetById(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[models.Adjustment](r.db, "adjustment_number", input.AdjustmentNumber, id); err != nil {
		return nil, err
	}

	updated := *original
	updated.AdjustmentNumber = input.AdjustmentNumber
	updated.FactoryId = input.FactoryId
	updated.Amount = input.Amount
	updated.Description = input.Description

	err = runMutation(ctx, r.db, workflow.KindAdjustment, workflow.OpUpdate, id, &updated, original, func(tx *gorm.DB) error {
		return tx.Model(&models.Adjustment{}).Where("id = ?", id).
			Updates(map[string]any{
				"adjustment_number": updated.AdjustmentNumber,
				"factory_id":        updated.FactoryId,
				"amount":            updated.Amount,
				"description":       updated.Description,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetById(ctx, id)
}

func (r *AdjustmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	original, err := r.GetById(ctx, id)
	if err != nil {
		return err
	}
	return runMutation(ctx, r.db, workflow.KindAdjustment, workflow.OpDelete, id, original, original, func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.CheckDetail{}).Where("adjustment_id = ?", id).Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return &utils.DeletionError{Message: "adjustment " + original.AdjustmentNumber + " is referenced by a check"}
		}
		return tx.Delete(&models.Adjustment{}, "id = ?", id).Error
	})
}

func (r *AdjustmentRepository) GetById(ctx context.Context, id uuid.UUID) (*models.Adjustment, error) {
	var adjustment models.Adjustment
	err := r.db.WithContext(ctx).First(&adjustment, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err, "adjustment", id)
	}
	return &adjustment, nil
}

func (r *AdjustmentRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists[models.Adjustment](r.db.WithContext(ctx), id)
}
