package workflow

import (
	"fmt"

	"bitbucket.org/mmdatafocus/crm_backend/config"
	"bitbucket.org/mmdatafocus/crm_backend/models"
	"bitbucket.org/mmdatafocus/crm_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultRepSplitProcessor fills empty outside splits on quote lines from
// the customer's defaults. Quotes tolerate lines with no defaults; the
// split requirement only hardens once the quote becomes an order.
type DefaultRepSplitProcessor struct{}

func (p *DefaultRepSplitProcessor) Events() []Event {
	return []Event{EventPreCreate, EventPreUpdate}
}

func (p *DefaultRepSplitProcessor) Process(pctx *Context) error {
	quote, ok := pctx.Entity.(*models.Quote)
	if !ok {
		return utils.NewValidationError("quote processor received a %T", pctx.Entity)
	}

	var defaults []SplitAssignment
	loaded := false
	for i := range quote.Details {
		detail := &quote.Details[i]
		if len(detail.SplitRates) > 0 {
			continue
		}
		if !loaded {
			var err error
			defaults, err = LookupOutsideSplitDefaults(pctx.Tx, quote.CustomerId, quote.FactoryId)
			if err != nil {
				config.LogError(config.GetLogger(), "quoteWorkflow.go", "DefaultRepSplitProcessor", "LookupOutsideSplitDefaults", quote.CustomerId, err)
				return err
			}
			loaded = true
		}
		for _, d := range defaults {
			detail.SplitRates = append(detail.SplitRates, models.QuoteSplitRate{
				QuoteDetailId: detail.ID,
				UserId:        d.UserId,
				SplitRate:     d.SplitRate,
				Position:      d.Position,
			})
		}
	}
	return nil
}

// ValidateQuoteSplitRatesProcessor checks each line's splits when present.
type ValidateQuoteSplitRatesProcessor struct{}

func (p *ValidateQuoteSplitRatesProcessor) Events() []Event {
	return []Event{EventPreCreate, EventPreUpdate}
}

func (p *ValidateQuoteSplitRatesProcessor) Process(pctx *Context) error {
	quote, ok := pctx.Entity.(*models.Quote)
	if !ok {
		return utils.NewValidationError("quote processor received a %T", pctx.Entity)
	}
	for _, detail := range quote.Details {
		if len(detail.SplitRates) == 0 {
			continue
		}
		splits := make([]SplitAssignment, len(detail.SplitRates))
		for i, s := range detail.SplitRates {
			splits[i] = SplitAssignment{UserId: s.UserId, SplitRate: s.SplitRate, Position: s.Position}
		}
		label := fmt.Sprintf("quote %s line %s", quote.QuoteNumber, detail.ItemNumber)
		if err := ValidateSplitRates(label, splits); err != nil {
			return err
		}
	}
	return nil
}

// ValidateQuoteReferences verifies that every row a quote points at still
// exists before it is duplicated. Missing rows are accumulated so the
// caller can present the full list.
func ValidateQuoteReferences(tx *gorm.DB, quote *models.Quote) error {
	var missing []string

	if err := appendIfMissing(tx, &models.Customer{}, "customer", quote.CustomerId, &missing); err != nil {
		return err
	}
	if err := appendIfMissing(tx, &models.Factory{}, "factory", quote.FactoryId, &missing); err != nil {
		return err
	}
	for _, detail := range quote.Details {
		for _, s := range detail.SplitRates {
			if err := appendIfMissing(tx, &models.User{}, "user", s.UserId, &missing); err != nil {
				return err
			}
		}
	}

	if len(missing) > 0 {
		return &utils.QuoteDuplicationError{Missing: utils.UniqueSlice(missing)}
	}
	return nil
}

func appendIfMissing(tx *gorm.DB, model any, label string, id uuid.UUID, missing *[]string) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		config.LogError(config.GetLogger(), "quoteWorkflow.go", "appendIfMissing", "Count "+label, id, err)
		return err
	}
	if count == 0 {
		*missing = append(*missing, label+" "+id.String())
	}
	return nil
}

// PreOpportunityDefaultRepSplitProcessor fills the header-level splits
// when the pre-opportunity has a customer with configured defaults.
type PreOpportunityDefaultRepSplitProcessor struct{}

func (p *PreOpportunityDefaultRepSplitProcessor) Events() []Event {
	return []Event{EventPreCreate, EventPreUpdate}
}

func (p *PreOpportunityDefaultRepSplitProcessor) Process(pctx *Context) error {
	preOpp, ok := pctx.Entity.(*models.PreOpportunity)
	if !ok {
		return utils.NewValidationError("pre-opportunity processor received a %T", pctx.Entity)
	}
	if len(preOpp.SplitRates) > 0 || preOpp.CustomerId == nil {
		return nil
	}
	defaults, err := LookupOutsideSplitDefaults(pctx.Tx, *preOpp.CustomerId, preOpp.FactoryId)
	if err != nil {
		config.LogError(config.GetLogger(), "quoteWorkflow.go", "PreOpportunityDefaultRepSplitProcessor", "LookupOutsideSplitDefaults", preOpp.CustomerId, err)
		return err
	}
	for _, d := range defaults {
		preOpp.SplitRates = append(preOpp.SplitRates, models.PreOpportunityRate{
			PreOpportunityId: preOpp.ID,
			UserId:           d.UserId,
			SplitRate:        d.SplitRate,
			Position:         d.Position,
		})
	}
	return nil
}

type ValidatePreOpportunitySplitRatesProcessor struct{}

func (p *ValidatePreOpportunitySplitRatesProcessor) Events() []Event {
	return []Event{EventPreCreate, EventPreUpdate}
}

func (p *ValidatePreOpportunitySplitRatesProcessor) Process(pctx *Context) error {
	preOpp, ok := pctx.Entity.(*models.PreOpportunity)
	if !ok {
		return utils.NewValidationError("pre-opportunity processor received a %T", pctx.Entity)
	}
	if len(preOpp.SplitRates) == 0 {
		return nil
	}
	splits := make([]SplitAssignment, len(preOpp.SplitRates))
	for i, s := range preOpp.SplitRates {
		splits[i] = SplitAssignment{UserId: s.UserId, SplitRate: s.SplitRate, Position: s.Position}
	}
	label := fmt.Sprintf("pre-opportunity %s", preOpp.Name)
	return ValidateSplitRates(label, splits)
}
