package workflow

import (
	"fmt"

	"bitbucket.org/mmdatafocus/crm_backend/config"
	"bitbucket.org/mmdatafocus/crm_backend/models"
	"bitbucket.org/mmdatafocus/crm_backend/utils"
)

// ValidateCreditStatusProcessor rejects updates and deletes on posted or
// locked credits.
type ValidateCreditStatusProcessor struct{}

func (p *ValidateCreditStatusProcessor) Events() []Event {
	return []Event{EventPreUpdate, EventPreDelete}
}

func (p *ValidateCreditStatusProcessor) Process(pctx *Context) error {
	original, ok := pctx.Original.(*models.Credit)
	if !ok || original == nil {
		return nil
	}
	if original.Status == models.CreditStatusPosted {
		return utils.NewValidationError("credit %s is posted and cannot be modified", original.CreditNumber)
	}
	if original.Locked {
		return utils.NewValidationError("credit %s is locked by a check and cannot be modified", original.CreditNumber)
	}
	return nil
}

// CreditDefaultRepSplitProcessor fills empty header splits from the
// customer-factory defaults, falling back to the customer's outside reps.
// Unlike orders, a credit with no defaults stays split-free.
type CreditDefaultRepSplitProcessor struct{}

func (p *CreditDefaultRepSplitProcessor) Events() []Event {
	return []Event{EventPreCreate, EventPreUpdate}
}

func (p *CreditDefaultRepSplitProcessor) Process(pctx *Context) error {
	credit, ok := pctx.Entity.(*models.Credit)
	if !ok {
		return utils.NewValidationError("credit processor received a %T", pctx.Entity)
	}
	if len(credit.SplitRates) > 0 {
		return nil
	}
	defaults, err := LookupOutsideSplitDefaults(pctx.Tx, credit.CustomerId, credit.FactoryId)
	if err != nil {
		config.LogError(config.GetLogger(), "creditWorkflow.go", "CreditDefaultRepSplitProcessor", "LookupOutsideSplitDefaults", credit.CustomerId, err)
		return err
	}
	for _, d := range defaults {
		credit.SplitRates = append(credit.SplitRates, models.CreditSplitRate{
			CreditId:  credit.ID,
			UserId:    d.UserId,
			SplitRate: d.SplitRate,
			Position:  d.Position,
		})
	}
	return nil
}

// ValidateCreditSplitRatesProcessor checks the header splits. An empty
// list is tolerated; a non-empty list must total 100.00.
type ValidateCreditSplitRatesProcessor struct{}

func (p *ValidateCreditSplitRatesProcessor) Events() []Event {
	return []Event{EventPreCreate, EventPreUpdate}
}

func (p *ValidateCreditSplitRatesProcessor) Process(pctx *Context) error {
	credit, ok := pctx.Entity.(*models.Credit)
	if !ok {
		return utils.NewValidationError("credit processor received a %T", pctx.Entity)
	}
	if len(credit.SplitRates) == 0 {
		return nil
	}
	splits := make([]SplitAssignment, len(credit.SplitRates))
	for i, s := range credit.SplitRates {
		splits[i] = SplitAssignment{UserId: s.UserId, SplitRate: s.SplitRate, Position: s.Position}
	}
	label := fmt.Sprintf("credit %s", credit.CreditNumber)
	return ValidateSplitRates(label, splits)
}
