package workflow

import (
	"strings"

	"bitbucket.org/mmdatafocus/crm_backend/config"
	"bitbucket.org/mmdatafocus/crm_backend/models"
	"bitbucket.org/mmdatafocus/crm_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ValidateCheckStatusProcessor guards posted checks. The only permitted
// update on a posted check is unposting it back to open; everything else,
// and any delete, is rejected.
type ValidateCheckStatusProcessor struct{}

func (p *ValidateCheckStatusProcessor) Events() []Event {
	return []Event{EventPreUpdate, EventPreDelete}
}

func (p *ValidateCheckStatusProcessor) Process(pctx *Context) error {
	original, ok := pctx.Original.(*models.Check)
	if !ok || original == nil {
		return nil
	}
	if original.Status != models.CheckStatusPosted {
		return nil
	}
	if pctx.Event == EventPreDelete {
		return utils.NewValidationError("check %s is posted and cannot be deleted", original.CheckNumber)
	}
	check, ok := pctx.Entity.(*models.Check)
	if ok && check.Status == models.CheckStatusOpen {
		return nil
	}
	return utils.NewValidationError("check %s is posted and cannot be modified", original.CheckNumber)
}

// ValidateCheckEntitiesProcessor verifies every referenced invoice, credit
// and adjustment still exists before the check is written. Missing rows
// are accumulated so the caller gets the full list at once.
type ValidateCheckEntitiesProcessor struct{}

func (p *ValidateCheckEntitiesProcessor) Events() []Event {
	return []Event{EventPreCreate, EventPreUpdate}
}

func (p *ValidateCheckEntitiesProcessor) Process(pctx *Context) error {
	check, ok := pctx.Entity.(*models.Check)
	if !ok {
		return utils.NewValidationError("check processor received a %T", pctx.Entity)
	}
	invoiceIds, creditIds, adjustmentIds := models.ReferencedEntityIds(check.Details)

	var missing []string
	appendMissing, err := collectMissing(pctx.Tx, &models.Invoice{}, "invoice", invoiceIds)
	if err != nil {
		return err
	}
	missing = append(missing, appendMissing...)
	appendMissing, err = collectMissing(pctx.Tx, &models.Credit{}, "credit", creditIds)
	if err != nil {
		return err
	}
	missing = append(missing, appendMissing...)
	appendMissing, err = collectMissing(pctx.Tx, &models.Adjustment{}, "adjustment", adjustmentIds)
	if err != nil {
		return err
	}
	missing = append(missing, appendMissing...)

	if len(missing) > 0 {
		return utils.NewValidationError("check %s references missing entities: %s", check.CheckNumber, strings.Join(missing, ", "))
	}
	return nil
}

func collectMissing(tx *gorm.DB, model any, label string, ids []uuid.UUID) ([]string, error) {
	var missing []string
	for _, id := range utils.UniqueSlice(ids) {
		var count int64
		if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
			config.LogError(config.GetLogger(), "checkWorkflow.go", "collectMissing", "Count "+label, id, err)
			return nil, err
		}
		if count == 0 {
			missing = append(missing, label+" "+id.String())
		}
	}
	return missing, nil
}

// LockCheckEntitiesProcessor keeps the locked flag on referenced invoices
// and credits in step with the check's details: newly referenced rows are
// locked, removed rows are unlocked unless another check still references
// them.
type LockCheckEntitiesProcessor struct{}

func (p *LockCheckEntitiesProcessor) Events() []Event {
	return []Event{EventPostCreate, EventPostUpdate}
}

func (p *LockCheckEntitiesProcessor) Process(pctx *Context) error {
	check, ok := pctx.Entity.(*models.Check)
	if !ok {
		return utils.NewValidationError("check processor received a %T", pctx.Entity)
	}
	if check.Status == models.CheckStatusPosted {
		return nil
	}

	currentInvoices, currentCredits, _ := models.ReferencedEntityIds(check.Details)
	var originalInvoices, originalCredits []uuid.UUID
	if original, ok := pctx.Original.(*models.Check); ok && original != nil {
		originalInvoices, originalCredits, _ = models.ReferencedEntityIds(original.Details)
	}

	if err := setLocked(pctx.Tx, &models.Invoice{}, "invoice_id", check.ID, diffIds(currentInvoices, originalInvoices), true); err != nil {
		return err
	}
	if err := setLocked(pctx.Tx, &models.Invoice{}, "invoice_id", check.ID, diffIds(originalInvoices, currentInvoices), false); err != nil {
		return err
	}
	if err := setLocked(pctx.Tx, &models.Credit{}, "credit_id", check.ID, diffIds(currentCredits, originalCredits), true); err != nil {
		return err
	}
	if err := setLocked(pctx.Tx, &models.Credit{}, "credit_id", check.ID, diffIds(originalCredits, currentCredits), false); err != nil {
		return err
	}
	return nil
}

// diffIds returns the ids in a that are absent from b.
func diffIds(a, b []uuid.UUID) []uuid.UUID {
	inB := make(map[uuid.UUID]struct{}, len(b))
	for _, id := range b {
		inB[id] = struct{}{}
	}
	var out []uuid.UUID
	for _, id := range utils.UniqueSlice(a) {
		if _, ok := inB[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func setLocked(tx *gorm.DB, model any, refColumn string, excludeCheckId uuid.UUID, ids []uuid.UUID, locked bool) error {
	for _, id := range ids {
		if !locked {
			// A removed row stays locked while any other check still
			// references it.
			var count int64
			err := tx.Model(&models.CheckDetail{}).
				Where(refColumn+" = ? AND check_id <> ?", id, excludeCheckId).
				Count(&count).Error
			if err != nil {
				config.LogError(config.GetLogger(), "checkWorkflow.go", "setLocked", "CountOtherReferences", id, err)
				return err
			}
			if count > 0 {
				continue
			}
		}
		if err := tx.Model(model).Where("id = ?", id).Update("locked", locked).Error; err != nil {
			config.LogError(config.GetLogger(), "checkWorkflow.go", "setLocked", "UpdateLocked", id, err)
			return err
		}
	}
	return nil
}

// PostCheckProcessor applies the open-to-posted transition: referenced
// invoices become paid, credits and adjustments become posted, and the
// locks drop since the terminal statuses now guard them.
type PostCheckProcessor struct{}

func (p *PostCheckProcessor) Events() []Event {
	return []Event{EventPostUpdate}
}

func (p *PostCheckProcessor) Process(pctx *Context) error {
	check, ok := pctx.Entity.(*models.Check)
	if !ok {
		return utils.NewValidationError("check processor received a %T", pctx.Entity)
	}
	original, ok := pctx.Original.(*models.Check)
	if !ok || original == nil {
		return nil
	}
	if !(original.Status == models.CheckStatusOpen && check.Status == models.CheckStatusPosted) {
		return nil
	}

	for _, detail := range check.Details {
		switch {
		case detail.InvoiceId != nil:
			err := pctx.Tx.Model(&models.Invoice{}).Where("id = ?", *detail.InvoiceId).
				Updates(map[string]any{
					"status":       models.InvoiceStatusPaid,
					"locked":       false,
					"paid_balance": detail.Amount,
				}).Error
			if err != nil {
				config.LogError(config.GetLogger(), "checkWorkflow.go", "PostCheckProcessor", "PayInvoice", *detail.InvoiceId, err)
				return err
			}
		case detail.CreditId != nil:
			err := pctx.Tx.Model(&models.Credit{}).Where("id = ?", *detail.CreditId).
				Updates(map[string]any{
					"status": models.CreditStatusPosted,
					"locked": false,
				}).Error
			if err != nil {
				config.LogError(config.GetLogger(), "checkWorkflow.go", "PostCheckProcessor", "PostCredit", *detail.CreditId, err)
				return err
			}
		case detail.AdjustmentId != nil:
			err := pctx.Tx.Model(&models.Adjustment{}).Where("id = ?", *detail.AdjustmentId).
				Update("status", models.AdjustmentStatusPosted).Error
			if err != nil {
				config.LogError(config.GetLogger(), "checkWorkflow.go", "PostCheckProcessor", "PostAdjustment", *detail.AdjustmentId, err)
				return err
			}
		}
	}
	return nil
}

// UnpostCheckProcessor reverts the posted-to-open transition: invoices go
// back to open with a zeroed paid balance, credits back to pending, and
// the rows re-lock since the check still references them.
type UnpostCheckProcessor struct{}

func (p *UnpostCheckProcessor) Events() []Event {
	return []Event{EventPostUpdate}
}

func (p *UnpostCheckProcessor) Process(pctx *Context) error {
	check, ok := pctx.Entity.(*models.Check)
	if !ok {
		return utils.NewValidationError("check processor received a %T", pctx.Entity)
	}
	original, ok := pctx.Original.(*models.Check)
	if !ok || original == nil {
		return nil
	}
	if !(original.Status == models.CheckStatusPosted && check.Status == models.CheckStatusOpen) {
		return nil
	}

	for _, detail := range check.Details {
		switch {
		case detail.InvoiceId != nil:
			err := pctx.Tx.Model(&models.Invoice{}).Where("id = ?", *detail.InvoiceId).
				Updates(map[string]any{
					"status":       models.InvoiceStatusOpen,
					"locked":       true,
					"paid_balance": decimal.Zero,
				}).Error
			if err != nil {
				config.LogError(config.GetLogger(), "checkWorkflow.go", "UnpostCheckProcessor", "ReopenInvoice", *detail.InvoiceId, err)
				return err
			}
		case detail.CreditId != nil:
			err := pctx.Tx.Model(&models.Credit{}).Where("id = ?", *detail.CreditId).
				Updates(map[string]any{
					"status": models.CreditStatusPending,
					"locked": true,
				}).Error
			if err != nil {
				config.LogError(config.GetLogger(), "checkWorkflow.go", "UnpostCheckProcessor", "ReopenCredit", *detail.CreditId, err)
				return err
			}
		case detail.AdjustmentId != nil:
			err := pctx.Tx.Model(&models.Adjustment{}).Where("id = ?", *detail.AdjustmentId).
				Update("status", models.AdjustmentStatusOpen).Error
			if err != nil {
				config.LogError(config.GetLogger(), "checkWorkflow.go", "UnpostCheckProcessor", "ReopenAdjustment", *detail.AdjustmentId, err)
				return err
			}
		}
	}
	return nil
}
