package repository

import (
	"context"

	"bitbucket.org/mmdatafocus/crm_backend/models"
	"bitbucket.org/mmdatafocus/crm_backend/utils"
	"bitbucket.org/mmdatafocus/crm_backend/workflow"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CheckRepository struct {
	db *gorm.DB
}

func NewCheckRepository(db *gorm.DB) *CheckRepository {
	return &CheckRepository{db: db}
}

func (r *CheckRepository) Create(ctx context.Context, input models.NewCheck) (*models.Check, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[models.Check](r.db, "check_number", input.CheckNumber, nil); err != nil {
		return nil, err
	}

	check := buildCheck(input)
	err := runMutation(ctx, r.db, workflow.KindCheck, workflow.OpCreate, check.ID, check, nil, func(tx *gorm.DB) error {
		return tx.Create(check).Error
	})
	if err != nil {
		return nil, err
	}
	return check, nil
}

func (r *CheckRepository) Update(ctx context.Context, id uuid.UUID, input models.NewCheck) (*models.Check, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	original, err := models.GetCheckById(r.db, id)
	if err != nil {
		return nil, translateNotFound(err, "check", id)
	}
	if err := utils.ValidateUnique[models.Check](r.db, "check_number", input.CheckNumber, id); err != nil {
		return nil, err
	}

	check := buildCheck(input)
	check.ID = id
	check.Status = original.Status
	for i := range check.Details {
		check.Details[i].CheckId = id
	}

	err = runMutation(ctx, r.db, workflow.KindCheck, workflow.OpUpdate, id, check, original, func(tx *gorm.DB) error {
		return replaceCheckRows(tx, check)
	})
	if err != nil {
		return nil, err
	}
	return models.GetCheckById(r.db, id)
}

// Post flips an open check to posted, cascading terminal statuses onto the
// referenced invoices, credits and adjustments through the post-processors.
func (r *CheckRepository) Post(ctx context.Context, id uuid.UUID) (*models.Check, error) {
	return r.transition(ctx, id, models.CheckStatusOpen, models.CheckStatusPosted)
}

// Unpost reverts a posted check to open, restoring the referenced rows.
func (r *CheckRepository) Unpost(ctx context.Context, id uuid.UUID) (*models.Check, error) {
	return r.transition(ctx, id, models.CheckStatusPosted, models.CheckStatusOpen)
}

func (r *CheckRepository) transition(ctx context.Context, id uuid.UUID, from, to models.CheckStatus) (*models.Check, error) {
	original, err := models.GetCheckById(r.db, id)
	if err != nil {
		return nil, translateNotFound(err, "check", id)
	}
	if original.Status != from {
		return nil, utils.NewValidationError("check %s is not %s", original.CheckNumber, from)
	}

	updated := *original
	updated.Status = to
	err = runMutation(ctx, r.db, workflow.KindCheck, workflow.OpUpdate, id, &updated, original, func(tx *gorm.DB) error {
		return tx.Model(&models.Check{}).Where("id = ?", id).Update("status", to).Error
	})
	if err != nil {
		return nil, err
	}
	return models.GetCheckById(r.db, id)
}

func (r *CheckRepository) Delete(ctx context.Context, id uuid.UUID) error {
	original, err := models.GetCheckById(r.db, id)
	if err != nil {
		return translateNotFound(err, "check", id)
	}
	return runMutation(ctx, r.db, workflow.KindCheck, workflow.OpDelete, id, original, original, func(tx *gorm.DB) error {
		if err := releaseCheckLocks(tx, original); err != nil {
			return err
		}
		if err := tx.Where("check_id = ?", id).Delete(&models.CheckDetail{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Check{}, "id = ?", id).Error
	})
}

func (r *CheckRepository) GetById(ctx context.Context, id uuid.UUID) (*models.Check, error) {
	check, err := models.GetCheckById(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, translateNotFound(err, "check", id)
	}
	return check, nil
}

func (r *CheckRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists[models.Check](r.db.WithContext(ctx), id)
}

func buildCheck(input models.NewCheck) *models.Check {
	check := models.Check{
		ID:          uuid.New(),
		CheckNumber: input.CheckNumber,
		Status:      models.CheckStatusOpen,
		FactoryId:   input.FactoryId,
		EntityDate:  input.EntityDate,
		Amount:      input.Amount,
	}
	for _, d := range input.Details {
		check.Details = append(check.Details, models.CheckDetail{
			ID:           uuid.New(),
			CheckId:      check.ID,
			InvoiceId:    d.InvoiceId,
			CreditId:     d.CreditId,
			AdjustmentId: d.AdjustmentId,
			Amount:       d.Amount,
		})
	}
	return &check
}

func replaceCheckRows(tx *gorm.DB, check *models.Check) error {
	if err := tx.Where("check_id = ?", check.ID).Delete(&models.CheckDetail{}).Error; err != nil {
		return err
	}
	err := tx.Model(&models.Check{}).Where("id = ?", check.ID).
		Updates(map[string]any{
			"check_number": check.CheckNumber,
			"factory_id":   check.FactoryId,
			"entity_date":  check.EntityDate,
			"amount":       check.Amount,
		}).Error
	if err != nil {
		return err
	}
	for i := range check.Details {
		if err := tx.Create(&check.Details[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// releaseCheckLocks drops the locked flag on rows this check referenced,
// unless another check still holds them. Runs as part of the delete
// mutation, before the detail rows disappear.
func releaseCheckLocks(tx *gorm.DB, check *models.Check) error {
	for _, detail := range check.Details {
		switch {
		case detail.InvoiceId != nil:
			if err := unlockIfUnreferenced(tx, &models.Invoice{}, "invoice_id", check.ID, *detail.InvoiceId); err != nil {
				return err
			}
		case detail.CreditId != nil:
			if err := unlockIfUnreferenced(tx, &models.Credit{}, "credit_id", check.ID, *detail.CreditId); err != nil {
				return err
			}
		}
	}
	return nil
}

func unlockIfUnreferenced(tx *gorm.DB, model any, refColumn string, checkId, id uuid.UUID) error {
	var count int64
	err := tx.Model(&models.CheckDetail{}).
		Where(refColumn+" = ? AND check_id <> ?", id, checkId).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return tx.Model(model).Where("id = ?", id).Update("locked", false).Error
}
