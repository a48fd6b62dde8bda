package repository

import (
	"context"

	"bitbucket.org/mmdatafocus/crm_backend/models"
	"bitbucket.org/mmdatafocus/crm_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobRepository covers the CRM job entity plus the duplicate-detection
// support tables. Jobs carry no lifecycle processors; their interesting
// behavior lives in the dedup service.
type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, input models.NewJob) (*models.Job, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	job := &models.Job{
		ID:                    uuid.New(),
		JobName:               input.JobName,
		JobType:               input.JobType,
		Description:           input.Description,
		StructuralDetails:     input.StructuralDetails,
		StructuralInformation: input.StructuralInformation,
		AdditionalInformation: input.AdditionalInformation,
		Tags:                  input.Tags,
		Status:                models.JobStatusBidding,
	}
	if input.Status != "" {
		job.Status = input.Status
	}
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

func (r *JobRepository) Update(ctx context.Context, id uuid.UUID, input models.NewJob) (*models.Job, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if _, err := models.GetJobById(r.db, id); err != nil {
		return nil, translateNotFound(err, "job", id)
	}
	updates := map[string]any{
		"job_name":               input.JobName,
		"job_type":               input.JobType,
		"description":            input.Description,
		"structural_details":     input.StructuralDetails,
		"structural_information": input.StructuralInformation,
		"additional_information": input.AdditionalInformation,
	}
	if input.Status != "" {
		updates["status"] = input.Status
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Job{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Model(&models.Job{}).Where("id = ?", id).Update("tags", input.Tags).Error
	})
	if err != nil {
		return nil, err
	}
	return models.GetJobById(r.db, id)
}

func (r *JobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", id).Delete(&models.JobEmbedding{}).Error; err != nil {
			return err
		}
		if err := tx.Where("job_id_1 = ? OR job_id_2 = ?", id, id).Delete(&models.ConfirmedDifferentJob{}).Error; err != nil {
			return err
		}
		if err := tx.Where("job_id = ?", id).Delete(&models.JobCompanyLink{}).Error; err != nil {
			return err
		}
		if err := models.DeleteAllLinkRelationsFor(tx, models.LinkEntityTypeJob, id); err != nil {
			return err
		}
		result := tx.Delete(&models.Job{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return utils.NewNotFoundError("job", id.String())
		}
		return nil
	})
}

func (r *JobRepository) GetById(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	job, err := models.GetJobById(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, translateNotFound(err, "job", id)
	}
	return job, nil
}

func (r *JobRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists[models.Job](r.db.WithContext(ctx), id)
}

// Link records a bidirectional relation between the job and another
// entity (customer, contact, company, order, quote).
func (r *JobRepository) Link(ctx context.Context, jobId uuid.UUID, entityType models.LinkEntityType, entityId uuid.UUID) error {
	ok, err := exists[models.Job](r.db.WithContext(ctx), jobId)
	if err != nil {
		return err
	}
	if !ok {
		return utils.NewNotFoundError("job", jobId.String())
	}
	return models.CreateLinkRelation(r.db.WithContext(ctx), models.LinkEntityTypeJob, jobId, entityType, entityId)
}

func (r *JobRepository) Unlink(ctx context.Context, jobId uuid.UUID, entityType models.LinkEntityType, entityId uuid.UUID) error {
	return models.DeleteLinkRelations(r.db.WithContext(ctx), models.LinkEntityTypeJob, jobId, entityType, entityId)
}

// ConfirmDifferent records the human verdict that two jobs are distinct.
// The pair is canonicalized before writing so the verdict survives either
// argument order.
func (r *JobRepository) ConfirmDifferent(ctx context.Context, jobId1, jobId2 uuid.UUID, confirmedById uuid.UUID, reason string) error {
	for _, id := range []uuid.UUID{jobId1, jobId2} {
		ok, err := exists[models.Job](r.db, id)
		if err != nil {
			return err
		}
		if !ok {
			return utils.NewNotFoundError("job", id.String())
		}
	}
	return models.ConfirmDifferentJobs(r.db.WithContext(ctx), jobId1, jobId2, confirmedById, reason)
}
