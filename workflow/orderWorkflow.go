package workflow

import (
	"fmt"

	"bitbucket.org/mmdatafocus/crm_backend/config"
	"bitbucket.org/mmdatafocus/crm_backend/models"
	"bitbucket.org/mmdatafocus/crm_backend/utils"
)

// OrderDefaultRepSplitProcessor fills empty outside splits per line and
// empty inside reps at the header from the tenant's configured defaults.
// Runs before validation so defaulted splits are validated like explicit
// ones.
type OrderDefaultRepSplitProcessor struct{}

func (p *OrderDefaultRepSplitProcessor) Events() []Event {
	return []Event{EventPreCreate, EventPreUpdate}
}

func (p *OrderDefaultRepSplitProcessor) Process(pctx *Context) error {
	order, ok := pctx.Entity.(*models.Order)
	if !ok {
		return utils.NewValidationError("order processor received a %T", pctx.Entity)
	}

	var outsideDefaults []SplitAssignment
	for i := range order.Details {
		detail := &order.Details[i]
		if len(detail.SplitRates) > 0 {
			continue
		}
		if outsideDefaults == nil {
			defaults, err := LookupOutsideSplitDefaults(pctx.Tx, order.SoldToCustomerId, order.FactoryId)
			if err != nil {
				config.LogError(config.GetLogger(), "orderWorkflow.go", "OrderDefaultRepSplitProcessor", "LookupOutsideSplitDefaults", order.SoldToCustomerId, err)
				return err
			}
			outsideDefaults = defaults
		}
		if len(outsideDefaults) == 0 {
			return &utils.OutsideRepsRequiredError{Entity: fmt.Sprintf("order %s line %s", order.OrderNumber, detail.ItemNumber)}
		}
		for _, d := range outsideDefaults {
			detail.SplitRates = append(detail.SplitRates, models.OrderSplitRate{
				OrderDetailId: detail.ID,
				UserId:        d.UserId,
				SplitRate:     d.SplitRate,
				Position:      d.Position,
			})
		}
	}

	if len(order.InsideReps) == 0 {
		defaults, err := LookupInsideSplitDefaults(pctx.Tx, order.FactoryId)
		if err != nil {
			config.LogError(config.GetLogger(), "orderWorkflow.go", "OrderDefaultRepSplitProcessor", "LookupInsideSplitDefaults", order.FactoryId, err)
			return err
		}
		for _, d := range defaults {
			order.InsideReps = append(order.InsideReps, models.OrderInsideRep{
				OrderId:   order.ID,
				UserId:    d.UserId,
				SplitRate: d.SplitRate,
				Position:  d.Position,
			})
		}
	}
	return nil
}

// OrderValidateRepSplitProcessor checks the split invariants per line and
// for the header inside reps. Must run after defaulting.
type OrderValidateRepSplitProcessor struct{}

func (p *OrderValidateRepSplitProcessor) Events() []Event {
	return []Event{EventPreCreate, EventPreUpdate}
}

func (p *OrderValidateRepSplitProcessor) Process(pctx *Context) error {
	order, ok := pctx.Entity.(*models.Order)
	if !ok {
		return utils.NewValidationError("order processor received a %T", pctx.Entity)
	}
	for _, detail := range order.Details {
		if len(detail.SplitRates) == 0 {
			continue
		}
		splits := make([]SplitAssignment, len(detail.SplitRates))
		for i, s := range detail.SplitRates {
			splits[i] = SplitAssignment{UserId: s.UserId, SplitRate: s.SplitRate, Position: s.Position}
		}
		label := fmt.Sprintf("order %s line %s", order.OrderNumber, detail.ItemNumber)
		if err := ValidateSplitRates(label, splits); err != nil {
			return err
		}
	}
	if len(order.InsideReps) > 0 {
		splits := make([]SplitAssignment, len(order.InsideReps))
		for i, s := range order.InsideReps {
			splits[i] = SplitAssignment{UserId: s.UserId, SplitRate: s.SplitRate, Position: s.Position}
		}
		label := fmt.Sprintf("order %s inside reps", order.OrderNumber)
		if err := ValidateSplitRates(label, splits); err != nil {
			return err
		}
	}
	return nil
}

// OrderSetShippingBalanceProcessor seeds new lines with a full shipping
// balance on create and recomputes the order rollup after any write.
type OrderSetShippingBalanceProcessor struct{}

func (p *OrderSetShippingBalanceProcessor) Events() []Event {
	return []Event{EventPreCreate, EventPostCreate, EventPostUpdate}
}

func (p *OrderSetShippingBalanceProcessor) Process(pctx *Context) error {
	order, ok := pctx.Entity.(*models.Order)
	if !ok {
		return utils.NewValidationError("order processor received a %T", pctx.Entity)
	}
	switch pctx.Event {
	case EventPreCreate:
		for i := range order.Details {
			order.Details[i].ShippingBalance = order.Details[i].Total
			order.Details[i].Status = models.OrderStatusOpen
		}
		return nil
	case EventPostCreate:
		return RecalculateOrderBalance(pctx.Tx, order)
	default:
		// Totals may have changed; shipping balances and line statuses
		// must be rebuilt from the surviving invoice consumption.
		if err := RecalculateOrder(pctx.Ctx, pctx.Tx, order.ID); err != nil {
			return err
		}
		return RecalculateOrderBalance(pctx.Tx, order)
	}
}
