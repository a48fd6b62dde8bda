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

type NewDeduction struct {
	DeductionNumber string          `json:"deduction_number" validate:"required"`
	FactoryId       uuid.UUID       `json:"factory_id" validate:"required"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
}

// DeductionRepository mirrors the adjustment repository; deductions carry
// the same posted-status guard.
type DeductionRepository struct {
	db *gorm.DB
}

func NewDeductionRepository(db *gorm.DB) *DeductionRepository {
	return &DeductionRepository{db: db}
}

func (r *DeductionRepository) Create(ctx context.Context, input NewDeduction) (*models.Deduction, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[models.Deduction](r.db, "deduction_number", input.DeductionNumber, nil); err != nil {
		return nil, err
	}
	deduction := &models.Deduction{
		ID:              uuid.New(),
		DeductionNumber: input.DeductionNumber,
		Status:          models.AdjustmentStatusOpen,
		FactoryId:       input.FactoryId,
		Amount:          input.Amount,
		Description:     input.Description,
	}
	err := runMutation(ctx, r.db, workflow.KindDeduction, workflow.OpCreate, deduction.ID, deduction, nil, func(tx *gorm.DB) error {
		return tx.Create(deduction).Error
	})
	if err != nil {
		return nil, err
	}
	return deduction, nil
}

func (r *DeductionRepository) Update(ctx context.Context, id uuid.UUID, input NewDeduction) (*models.Deduction, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	original, err := r.GetById(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[models.Deduction](r.db, "deduction_number", input.DeductionNumber, id); err != nil {
		return nil, err
	}

	updated := *original
	updated.DeductionNumber = input.DeductionNumber
	updated.FactoryId = input.FactoryId
	updated.Amount = input.Amount
	updated.Description = input.Description

	err = runMutation(ctx, r.db, workflow.KindDeduction, workflow.OpUpdate, id, &updated, original, func(tx *gorm.DB) error {
		return tx.Model(&models.Deduction{}).Where("id = ?", id).
			Updates(map[string]any{
				"deduction_number": updated.DeductionNumber,
				"factory_id":       updated.FactoryId,
				"amount":           updated.Amount,
				"description":      updated.Description,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetById(ctx, id)
}

func (r *DeductionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	original, err := r.GetById(ctx, id)
	if err != nil {
		return err
	}
	return runMutation(ctx, r.db, workflow.KindDeduction, workflow.OpDelete, id, original, original, func(tx *gorm.DB) error {
		return tx.Delete(&models.Deduction{}, "id = ?", id).Error
	})
}

func (r *DeductionRepository) GetById(ctx context.Context, id uuid.UUID) (*models.Deduction, error) {
	var deduction models.Deduction
	err := r.db.WithContext(ctx).First(&deduction, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err, "deduction", id)
	}
	return &deduction, nil
}

func (r *DeductionRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists[models.Deduction](r.db.WithContext(ctx), id)
}
