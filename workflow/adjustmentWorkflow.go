package workflow

import (
	"bitbucket.org/mmdatafocus/crm_backend/models"
	"bitbucket.org/mmdatafocus/crm_backend/utils"
)

// ValidateAdjustmentStatusProcessor rejects updates and deletes once an
// adjustment has been posted by a check.
type ValidateAdjustmentStatusProcessor struct{}

func (p *ValidateAdjustmentStatusProcessor) Events() []Event {
	return []Event{EventPreUpdate, EventPreDelete}
}

func (p *ValidateAdjustmentStatusProcessor) Process(pctx *Context) error {
	original, ok := pctx.Original.(*models.Adjustment)
	if !ok || original == nil {
		return nil
	}
	if original.Status == models.AdjustmentStatusPosted {
		return utils.NewValidationError("adjustment %s is posted and cannot be modified", original.AdjustmentNumber)
	}
	return nil
}

// ValidateDeductionStatusProcessor mirrors the adjustment guard.
type ValidateDeductionStatusProcessor struct{}

func (p *ValidateDeductionStatusProcessor) Events() []Event {
	return []Event{EventPreUpdate, EventPreDelete}
}

func (p *ValidateDeductionStatusProcessor) Process(pctx *Context) error {
	original, ok := pctx.Original.(*models.Deduction)
	if !ok || original == nil {
		return nil
	}
	if original.Status == models.AdjustmentStatusPosted {
		return utils.NewValidationError("deduction %s is posted and cannot be modified", original.DeductionNumber)
	}
	return nil
}
