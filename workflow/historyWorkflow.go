package workflow

import (
	"bitbucket.org/mmdatafocus/crm_backend/models"
)

// The history processors write one audit row per mutation, in the same
// transaction, tagged with the acting user from the request context.

type OrderHistoryProcessor struct{}

func (p *OrderHistoryProcessor) Events() []Event {
	return []Event{EventPostCreate, EventPostUpdate, EventPostDelete}
}

func (p *OrderHistoryProcessor) Process(pctx *Context) error {
	order, ok := pctx.Entity.(*models.Order)
	if !ok {
		return nil
	}
	return saveEntityHistory(pctx, order.ID, "Order", order.OrderNumber)
}

type CreditHistoryProcessor struct{}

func (p *CreditHistoryProcessor) Events() []Event {
	return []Event{EventPostCreate, EventPostUpdate, EventPostDelete}
}

func (p *CreditHistoryProcessor) Process(pctx *Context) error {
	credit, ok := pctx.Entity.(*models.Credit)
	if !ok {
		return nil
	}
	return saveEntityHistory(pctx, credit.ID, "Credit", credit.CreditNumber)
}

type CheckHistoryProcessor struct{}

func (p *CheckHistoryProcessor) Events() []Event {
	return []Event{EventPostCreate, EventPostUpdate, EventPostDelete}
}

func (p *CheckHistoryProcessor) Process(pctx *Context) error {
	check, ok := pctx.Entity.(*models.Check)
	if !ok {
		return nil
	}
	return saveEntityHistory(pctx, check.ID, "Check", check.CheckNumber)
}
