package workflow

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is one of the six lifecycle points a processor can hook.
type Event string

const (
	EventPreCreate  Event = "PreCreate"
	EventPostCreate Event = "PostCreate"
	EventPreUpdate  Event = "PreUpdate"
	EventPostUpdate Event = "PostUpdate"
	EventPreDelete  Event = "PreDelete"
	EventPostDelete Event = "PostDelete"
)

// Operation is a repository-level mutation. Each operation maps to one
// pre event and one post event.
type Operation string

const (
	OpCreate Operation = "Create"
	OpUpdate Operation = "Update"
	OpDelete Operation = "Delete"
)

func (op Operation) PreEvent() Event {
	switch op {
	case OpCreate:
		return EventPreCreate
	case OpUpdate:
		return EventPreUpdate
	default:
		return EventPreDelete
	}
}

func (op Operation) PostEvent() Event {
	switch op {
	case OpCreate:
		return EventPostCreate
	case OpUpdate:
		return EventPostUpdate
	default:
		return EventPostDelete
	}
}

// EntityKind identifies one entity family in the processor registry.
type EntityKind string

const (
	KindOrder          EntityKind = "Order"
	KindInvoice        EntityKind = "Invoice"
	KindCredit         EntityKind = "Credit"
	KindCheck          EntityKind = "Check"
	KindAdjustment     EntityKind = "Adjustment"
	KindDeduction      EntityKind = "Deduction"
	KindQuote          EntityKind = "Quote"
	KindPreOpportunity EntityKind = "PreOpportunity"
	KindJob            EntityKind = "Job"
	KindCampaign       EntityKind = "Campaign"
)

// Context carries one mutation through its processor chain. Original is the
// row as it existed before input was applied; it is nil for creates.
type Context struct {
	Ctx      context.Context
	Tx       *gorm.DB
	Event    Event
	EntityId uuid.UUID
	Entity   any
	Original any
}

// Processor is a pluggable hook scoped to an entity kind. Events declares
// which lifecycle points it handles; Process runs inside the mutation's
// transaction and any returned error rolls the whole mutation back.
type Processor interface {
	Events() []Event
	Process(pctx *Context) error
}
