package repository

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/crm_backend/models"
	"bitbucket.org/mmdatafocus/crm_backend/utils"
	"bitbucket.org/mmdatafocus/crm_backend/workflow"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreditRepository struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) *CreditRepository {
	return &CreditRepository{db: db}
}

func (r *CreditRepository) Create(ctx context.Context, input models.NewCredit) (*models.Credit, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[models.Credit](r.db, "credit_number", input.CreditNumber, nil); err != nil {
		return nil, err
	}
	for _, d := range input.Details {
		if err := utils.ValidateResourceId[models.OrderDetail](r.db, d.OrderDetailId); err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				return nil, utils.NewNotFoundError("order detail", d.OrderDetailId.String())
			}
			return nil, err
		}
	}

	credit := buildCredit(input)
	err := runMutation(ctx, r.db, workflow.KindCredit, workflow.OpCreate, credit.ID, credit, nil, func(tx *gorm.DB) error {
		return tx.Create(credit).Error
	})
	if err != nil {
		return nil, err
	}
	return credit, nil
}

func (r *CreditRepository) Update(ctx context.Context, id uuid.UUID, input models.NewCredit) (*models.Credit, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	original, err := models.GetCreditById(r.db, id)
	if err != nil {
		return nil, translateNotFound(err, "credit", id)
	}
	if err := utils.ValidateUnique[models.Credit](r.db, "credit_number", input.CreditNumber, id); err != nil {
		return nil, err
	}

	credit := buildCredit(input)
	credit.ID = id
	credit.Status = original.Status
	credit.Locked = original.Locked
	for i := range credit.Details {
		credit.Details[i].CreditId = id
	}
	for i := range credit.SplitRates {
		credit.SplitRates[i].CreditId = id
	}

	err = runMutation(ctx, r.db, workflow.KindCredit, workflow.OpUpdate, id, credit, original, func(tx *gorm.DB) error {
		return replaceCreditRows(tx, credit)
	})
	if err != nil {
		return nil, err
	}
	return models.GetCreditById(r.db, id)
}

func (r *CreditRepository) Delete(ctx context.Context, id uuid.UUID) error {
	original, err := models.GetCreditById(r.db, id)
	if err != nil {
		return translateNotFound(err, "credit", id)
	}
	return runMutation(ctx, r.db, workflow.KindCredit, workflow.OpDelete, id, original, original, func(tx *gorm.DB) error {
		if err := tx.Where("credit_id = ?", id).Delete(&models.CreditDetail{}).Error; err != nil {
			return err
		}
		if err := tx.Where("credit_id = ?", id).Delete(&models.CreditSplitRate{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Credit{}, "id = ?", id).Error
	})
}

func (r *CreditRepository) GetById(ctx context.Context, id uuid.UUID) (*models.Credit, error) {
	credit, err := models.GetCreditById(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, translateNotFound(err, "credit", id)
	}
	return credit, nil
}

func (r *CreditRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists[models.Credit](r.db.WithContext(ctx), id)
}

func buildCredit(input models.NewCredit) *models.Credit {
	credit := models.Credit{
		ID:           uuid.New(),
		CreditNumber: input.CreditNumber,
		Status:       models.CreditStatusPending,
		CustomerId:   input.CustomerId,
		FactoryId:    input.FactoryId,
		EntityDate:   input.EntityDate,
	}
	for _, d := range input.Details {
		credit.Details = append(credit.Details, models.CreditDetail{
			ID:            uuid.New(),
			CreditId:      credit.ID,
			OrderDetailId: d.OrderDetailId,
			ItemNumber:    d.ItemNumber,
			Total:         d.Total,
		})
	}
	for _, s := range input.SplitRates {
		credit.SplitRates = append(credit.SplitRates, models.CreditSplitRate{
			CreditId:  credit.ID,
			UserId:    s.UserId,
			SplitRate: s.SplitRate,
			Position:  s.Position,
		})
	}
	return &credit
}

func replaceCreditRows(tx *gorm.DB, credit *models.Credit) error {
	if err := tx.Where("credit_id = ?", credit.ID).Delete(&models.CreditDetail{}).Error; err != nil {
		return err
	}
	if err := tx.Where("credit_id = ?", credit.ID).Delete(&models.CreditSplitRate{}).Error; err != nil {
		return err
	}
	err := tx.Model(&models.Credit{}).Where("id = ?", credit.ID).
		Updates(map[string]any{
			"credit_number": credit.CreditNumber,
			"customer_id":   credit.CustomerId,
			"factory_id":    credit.FactoryId,
			"entity_date":   credit.EntityDate,
		}).Error
	if err != nil {
		return err
	}
	for i := range credit.Details {
		if err := tx.Create(&credit.Details[i]).Error; err != nil {
			return err
		}
	}
	for i := range credit.SplitRates {
		if err := tx.Create(&credit.SplitRates[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
