package workflow

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Registry maps (entity kind, event) to an ordered processor list.
// Registration order is preserved and is the execution order. The registry
// is populated once at startup by RegisterAll and is read-only afterwards,
// so no locking is needed at request time.
type Registry struct {
	processors map[EntityKind]map[Event][]Processor
}

func NewRegistry() *Registry {
	return &Registry{processors: map[EntityKind]map[Event][]Processor{}}
}

// Register appends the processor under every event it declares.
func (r *Registry) Register(kind EntityKind, p Processor) {
	byEvent, ok := r.processors[kind]
	if !ok {
		byEvent = map[Event][]Processor{}
		r.processors[kind] = byEvent
	}
	for _, event := range p.Events() {
		byEvent[event] = append(byEvent[event], p)
	}
}

func (r *Registry) ProcessorsFor(kind EntityKind, event Event) []Processor {
	byEvent, ok := r.processors[kind]
	if !ok {
		return nil
	}
	return byEvent[event]
}

// RunMutation executes the full lifecycle of one repository mutation:
// PRE processors in registration order, the database operation, then POST
// processors. The first error aborts; the caller's transaction rolls back
// and no partial effects survive. POST processors may read and write
// through the same transaction and later POSTs see earlier POSTs' effects.
func (r *Registry) RunMutation(ctx context.Context, tx *gorm.DB, kind EntityKind, op Operation, entityId uuid.UUID, entity any, original any, mutate func() error) error {
	pctx := &Context{
		Ctx:      ctx,
		Tx:       tx,
		Event:    op.PreEvent(),
		EntityId: entityId,
		Entity:   entity,
		Original: original,
	}
	for _, p := range r.ProcessorsFor(kind, op.PreEvent()) {
		if err := p.Process(pctx); err != nil {
			return err
		}
	}

	if err := mutate(); err != nil {
		return err
	}

	pctx.Event = op.PostEvent()
	for _, p := range r.ProcessorsFor(kind, op.PostEvent()) {
		if err := p.Process(pctx); err != nil {
			return err
		}
	}
	return nil
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by the repositories.
func Default() *Registry {
	return defaultRegistry
}

// RegisterAll wires every lifecycle processor in its declared order.
// Order matters within a family: for orders the composition is
// [default rep split, validate rep split, set shipping balance] and it is
// not commutative.
func RegisterAll() {
	r := defaultRegistry

	// Orders
	r.Register(KindOrder, &OrderDefaultRepSplitProcessor{})
	r.Register(KindOrder, &OrderValidateRepSplitProcessor{})
	r.Register(KindOrder, &OrderSetShippingBalanceProcessor{})
	r.Register(KindOrder, &OrderHistoryProcessor{})

	// Invoices
	r.Register(KindInvoice, &ValidateInvoiceStatusProcessor{})
	r.Register(KindInvoice, &ValidateInvoiceSplitRatesProcessor{})
	r.Register(KindInvoice, &UpdateOrderOnInvoiceProcessor{})
	r.Register(KindInvoice, &InvoiceHistoryProcessor{})

	// Credits
	r.Register(KindCredit, &ValidateCreditStatusProcessor{})
	r.Register(KindCredit, &CreditDefaultRepSplitProcessor{})
	r.Register(KindCredit, &ValidateCreditSplitRatesProcessor{})
	r.Register(KindCredit, &CreditHistoryProcessor{})

	// Checks
	r.Register(KindCheck, &ValidateCheckStatusProcessor{})
	r.Register(KindCheck, &ValidateCheckEntitiesProcessor{})
	r.Register(KindCheck, &LockCheckEntitiesProcessor{})
	r.Register(KindCheck, &PostCheckProcessor{})
	r.Register(KindCheck, &UnpostCheckProcessor{})
	r.Register(KindCheck, &CheckHistoryProcessor{})

	// Adjustments and deductions share the posted-status guard.
	r.Register(KindAdjustment, &ValidateAdjustmentStatusProcessor{})
	r.Register(KindDeduction, &ValidateDeductionStatusProcessor{})

	// Quotes
	r.Register(KindQuote, &DefaultRepSplitProcessor{})
	r.Register(KindQuote, &ValidateQuoteSplitRatesProcessor{})

	// Pre-opportunities carry the same split structure as quotes.
	r.Register(KindPreOpportunity, &PreOpportunityDefaultRepSplitProcessor{})
	r.Register(KindPreOpportunity, &ValidatePreOpportunitySplitRatesProcessor{})
}
