package workflow

import (
	"fmt"

	"bitbucket.org/mmdatafocus/crm_backend/models"
	"bitbucket.org/mmdatafocus/crm_backend/utils"
	"github.com/google/uuid"
)

// ValidateInvoiceStatusProcessor rejects updates and deletes on paid or
// locked invoices. Reads the pre-mutation snapshot, not the merged input,
// so a caller cannot bypass the guard by flipping the fields in the same
// request.
type ValidateInvoiceStatusProcessor struct{}

func (p *ValidateInvoiceStatusProcessor) Events() []Event {
	return []Event{EventPreUpdate, EventPreDelete}
}

func (p *ValidateInvoiceStatusProcessor) Process(pctx *Context) error {
	original, ok := pctx.Original.(*models.Invoice)
	if !ok || original == nil {
		return nil
	}
	if original.Status == models.InvoiceStatusPaid {
		return utils.NewValidationError("invoice %s is paid and cannot be modified", original.InvoiceNumber)
	}
	if original.Locked {
		return utils.NewValidationError("invoice %s is locked by a check and cannot be modified", original.InvoiceNumber)
	}
	return nil
}

// ValidateInvoiceSplitRatesProcessor checks the header-level splits.
type ValidateInvoiceSplitRatesProcessor struct{}

func (p *ValidateInvoiceSplitRatesProcessor) Events() []Event {
	return []Event{EventPreCreate, EventPreUpdate}
}

func (p *ValidateInvoiceSplitRatesProcessor) Process(pctx *Context) error {
	invoice, ok := pctx.Entity.(*models.Invoice)
	if !ok {
		return utils.NewValidationError("invoice processor received a %T", pctx.Entity)
	}
	if len(invoice.SplitRates) == 0 {
		return nil
	}
	splits := make([]SplitAssignment, len(invoice.SplitRates))
	for i, s := range invoice.SplitRates {
		splits[i] = SplitAssignment{UserId: s.UserId, SplitRate: s.SplitRate, Position: s.Position}
	}
	label := fmt.Sprintf("invoice %s", invoice.InvoiceNumber)
	return ValidateSplitRates(label, splits)
}

// UpdateOrderOnInvoiceProcessor propagates invoice consumption back onto
// the orders it draws from: shipping balances, line statuses and the order
// status rollup. On update the original's lines are included so lines
// dropped from the invoice are released too.
type UpdateOrderOnInvoiceProcessor struct{}

func (p *UpdateOrderOnInvoiceProcessor) Events() []Event {
	return []Event{EventPostCreate, EventPostUpdate, EventPostDelete}
}

func (p *UpdateOrderOnInvoiceProcessor) Process(pctx *Context) error {
	invoice, ok := pctx.Entity.(*models.Invoice)
	if !ok {
		return utils.NewValidationError("invoice processor received a %T", pctx.Entity)
	}
	detailIds := invoice.OrderDetailIds()
	if original, ok := pctx.Original.(*models.Invoice); ok && original != nil {
		detailIds = append(detailIds, original.OrderDetailIds()...)
	}
	return RecalculateOrdersForDetails(pctx.Ctx, pctx.Tx, utils.UniqueSlice(detailIds))
}

// InvoiceHistoryProcessor writes the audit trail in the same transaction
// as the mutation.
type InvoiceHistoryProcessor struct{}

func (p *InvoiceHistoryProcessor) Events() []Event {
	return []Event{EventPostCreate, EventPostUpdate, EventPostDelete}
}

func (p *InvoiceHistoryProcessor) Process(pctx *Context) error {
	invoice, ok := pctx.Entity.(*models.Invoice)
	if !ok {
		return nil
	}
	return saveEntityHistory(pctx, invoice.ID, "Invoice", invoice.InvoiceNumber)
}

func saveEntityHistory(pctx *Context, refId uuid.UUID, refType string, number string) error {
	description := fmt.Sprintf("%s %s", refType, number)
	switch pctx.Event {
	case EventPostCreate:
		return models.SaveHistoryCreate(pctx.Ctx, pctx.Tx, refId, refType, description)
	case EventPostUpdate:
		return models.SaveHistoryUpdate(pctx.Ctx, pctx.Tx, refId, refType, description)
	case EventPostDelete:
		return models.SaveHistoryDelete(pctx.Ctx, pctx.Tx, refId, refType, description)
	}
	return nil
}
