package repository

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/crm_backend/models"
	"bitbucket.org/mmdatafocus/crm_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CampaignRepository owns the campaign family. Campaigns have no lifecycle
// processors; state transitions happen in the worker, and the repository
// enforces the few operator-facing rules directly.
type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

func (r *CampaignRepository) Create(ctx context.Context, ownerId uuid.UUID, input models.NewCampaign) (*models.Campaign, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	pace := input.SendPace
	if pace == "" {
		pace = models.SendPaceSlow
	}
	if _, ok := models.PaceLimits[pace]; !ok {
		return nil, utils.NewValidationError("unknown send pace %q", pace)
	}

	campaign := &models.Campaign{
		ID:              uuid.New(),
		Name:            input.Name,
		Status:          models.CampaignStatusDraft,
		OwnerId:         ownerId,
		EmailSubject:    input.EmailSubject,
		EmailBody:       input.EmailBody,
		ScheduledAt:     input.ScheduledAt,
		SendPace:        pace,
		MaxEmailsPerDay: input.MaxEmailsPerDay,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(campaign).Error; err != nil {
			return err
		}
		for _, contactId := range utils.UniqueSlice(input.ContactIds) {
			if err := utils.ValidateResourceId[models.Contact](tx, contactId); err != nil {
				if errors.Is(err, utils.ErrorRecordNotFound) {
					return utils.NewNotFoundError("contact", contactId.String())
				}
				return err
			}
			recipient := models.CampaignRecipient{
				ID:          uuid.New(),
				CampaignId:  campaign.ID,
				ContactId:   contactId,
				EmailStatus: models.EmailStatusPending,
			}
			if err := tx.Create(&recipient).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return campaign, nil
}

// Schedule moves a draft or paused campaign into the worker's sweep. A nil
// ScheduledAt means "start on the next tick".
func (r *CampaignRepository) Schedule(ctx context.Context, id uuid.UUID, input models.ScheduleCampaign) (*models.Campaign, error) {
	campaign, err := r.GetById(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status != models.CampaignStatusDraft && campaign.Status != models.CampaignStatusPaused {
		return nil, utils.NewValidationError("campaign %s cannot be scheduled from status %s", campaign.Name, campaign.Status)
	}
	err = r.db.WithContext(ctx).Model(&models.Campaign{}).Where("id = ?", id).
		Updates(map[string]any{
			"status":       models.CampaignStatusScheduled,
			"scheduled_at": input.ScheduledAt,
		}).Error
	if err != nil {
		return nil, err
	}
	return r.GetById(ctx, id)
}

// Pause stops an in-flight campaign; already-sent recipients stay sent.
func (r *CampaignRepository) Pause(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	campaign, err := r.GetById(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status != models.CampaignStatusSending && campaign.Status != models.CampaignStatusScheduled {
		return nil, utils.NewValidationError("campaign %s cannot be paused from status %s", campaign.Name, campaign.Status)
	}
	err = r.db.WithContext(ctx).Model(&models.Campaign{}).Where("id = ?", id).
		Update("status", models.CampaignStatusPaused).Error
	if err != nil {
		return nil, err
	}
	return r.GetById(ctx, id)
}

func (r *CampaignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	campaign, err := r.GetById(ctx, id)
	if err != nil {
		return err
	}
	if campaign.Status == models.CampaignStatusSending {
		return &utils.DeletionError{Message: "campaign " + campaign.Name + " is sending and cannot be deleted"}
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("campaign_id = ?", id).Delete(&models.CampaignRecipient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("campaign_id = ?", id).Delete(&models.CampaignSendLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Campaign{}, "id = ?", id).Error
	})
}

func (r *CampaignRepository) GetById(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.WithContext(ctx).First(&campaign, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err, "campaign", id)
	}
	return &campaign, nil
}

func (r *CampaignRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists[models.Campaign](r.db.WithContext(ctx), id)
}
