package repository

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/crm_backend/models"
	"bitbucket.org/mmdatafocus/crm_backend/utils"
	"bitbucket.org/mmdatafocus/crm_backend/workflow"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NewPreOpportunity struct {
	Name       string               `json:"name" validate:"required"`
	CustomerId *uuid.UUID           `json:"customer_id"`
	FactoryId  uuid.UUID            `json:"factory_id" validate:"required"`
	EntityDate time.Time            `json:"entity_date" validate:"required"`
	SplitRates []models.NewSplitRate `json:"split_rates"`
}

// PreOpportunityRepository drives the header-level split defaulting and
// validation that quotes run per line.
type PreOpportunityRepository struct {
	db *gorm.DB
}

func NewPreOpportunityRepository(db *gorm.DB) *PreOpportunityRepository {
	return &PreOpportunityRepository{db: db}
}

func (r *PreOpportunityRepository) Create(ctx context.Context, input NewPreOpportunity) (*models.PreOpportunity, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}

	preOpp := buildPreOpportunity(input)
	err := runMutation(ctx, r.db, workflow.KindPreOpportunity, workflow.OpCreate, preOpp.ID, preOpp, nil, func(tx *gorm.DB) error {
		return tx.Create(preOpp).Error
	})
	if err != nil {
		return nil, err
	}
	return preOpp, nil
}

func (r *PreOpportunityRepository) Update(ctx context.Context, id uuid.UUID, input NewPreOpportunity) (*models.PreOpportunity, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	original, err := r.GetById(ctx, id)
	if err != nil {
		return nil, err
	}

	preOpp := buildPreOpportunity(input)
	preOpp.ID = id
	for i := range preOpp.SplitRates {
		preOpp.SplitRates[i].PreOpportunityId = id
	}

	err = runMutation(ctx, r.db, workflow.KindPreOpportunity, workflow.OpUpdate, id, preOpp, original, func(tx *gorm.DB) error {
		if err := tx.Where("pre_opportunity_id = ?", id).Delete(&models.PreOpportunityRate{}).Error; err != nil {
			return err
		}
		err := tx.Model(&models.PreOpportunity{}).Where("id = ?", id).
			Updates(map[string]any{
				"name":        preOpp.Name,
				"customer_id": preOpp.CustomerId,
				"factory_id":  preOpp.FactoryId,
				"entity_date": preOpp.EntityDate,
			}).Error
		if err != nil {
			return err
		}
		for i := range preOpp.SplitRates {
			if err := tx.Create(&preOpp.SplitRates[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetById(ctx, id)
}

func (r *PreOpportunityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	original, err := r.GetById(ctx, id)
	if err != nil {
		return err
	}
	return runMutation(ctx, r.db, workflow.KindPreOpportunity, workflow.OpDelete, id, original, original, func(tx *gorm.DB) error {
		if err := tx.Where("pre_opportunity_id = ?", id).Delete(&models.PreOpportunityRate{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.PreOpportunity{}, "id = ?", id).Error
	})
}

func (r *PreOpportunityRepository) GetById(ctx context.Context, id uuid.UUID) (*models.PreOpportunity, error) {
	var preOpp models.PreOpportunity
	err := r.db.WithContext(ctx).Preload("SplitRates").First(&preOpp, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err, "pre-opportunity", id)
	}
	return &preOpp, nil
}

func (r *PreOpportunityRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists[models.PreOpportunity](r.db.WithContext(ctx), id)
}

func buildPreOpportunity(input NewPreOpportunity) *models.PreOpportunity {
	preOpp := models.PreOpportunity{
		ID:         uuid.New(),
		Name:       input.Name,
		CustomerId: input.CustomerId,
		FactoryId:  input.FactoryId,
		EntityDate: input.EntityDate,
	}
	for _, s := range input.SplitRates {
		preOpp.SplitRates = append(preOpp.SplitRates, models.PreOpportunityRate{
			PreOpportunityId: preOpp.ID,
			UserId:           s.UserId,
			SplitRate:        s.SplitRate,
			Position:         s.Position,
		})
	}
	return &preOpp
}
