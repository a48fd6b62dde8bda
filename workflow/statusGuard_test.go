package workflow

import (
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/crm_backend/models"
	"bitbucket.org/mmdatafocus/crm_backend/utils"
	"github.com/google/uuid"
)

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	var validationErr *utils.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestValidateCheckStatus_PostedDeleteRejected(t *testing.T) {
	p := &ValidateCheckStatusProcessor{}
	err := p.Process(&Context{
		Event:    EventPreDelete,
		Original: &models.Check{CheckNumber: "CHK-9", Status: models.CheckStatusPosted},
	})
	assertValidationError(t, err)
}

func TestValidateCheckStatus_PostedUpdateRejected(t *testing.T) {
	p := &ValidateCheckStatusProcessor{}
	err := p.Process(&Context{
		Event:    EventPreUpdate,
		Entity:   &models.Check{CheckNumber: "CHK-9", Status: models.CheckStatusPosted},
		Original: &models.Check{CheckNumber: "CHK-9", Status: models.CheckStatusPosted},
	})
	assertValidationError(t, err)
}

func TestValidateCheckStatus_UnpostIsTheOnlyPermittedUpdate(t *testing.T) {
	p := &ValidateCheckStatusProcessor{}
	err := p.Process(&Context{
		Event:    EventPreUpdate,
		Entity:   &models.Check{CheckNumber: "CHK-9", Status: models.CheckStatusOpen},
		Original: &models.Check{CheckNumber: "CHK-9", Status: models.CheckStatusPosted},
	})
	if err != nil {
		t.Fatalf("unposting a posted check must be allowed, got %v", err)
	}
}

func TestValidateCheckStatus_OpenCheckIsFree(t *testing.T) {
	p := &ValidateCheckStatusProcessor{}
	for _, event := range []Event{EventPreUpdate, EventPreDelete} {
		err := p.Process(&Context{
			Event:    event,
			Entity:   &models.Check{Status: models.CheckStatusOpen},
			Original: &models.Check{Status: models.CheckStatusOpen},
		})
		if err != nil {
			t.Fatalf("%s on an open check must be allowed, got %v", event, err)
		}
	}
}

func TestValidateInvoiceStatus_PaidAndLockedRejected(t *testing.T) {
	p := &ValidateInvoiceStatusProcessor{}

	err := p.Process(&Context{
		Event:    EventPreUpdate,
		Original: &models.Invoice{InvoiceNumber: "INV-1", Status: models.InvoiceStatusPaid},
	})
	assertValidationError(t, err)

	err = p.Process(&Context{
		Event:    EventPreDelete,
		Original: &models.Invoice{InvoiceNumber: "INV-2", Status: models.InvoiceStatusOpen, Locked: true},
	})
	assertValidationError(t, err)

	err = p.Process(&Context{
		Event:    EventPreUpdate,
		Original: &models.Invoice{InvoiceNumber: "INV-3", Status: models.InvoiceStatusOpen},
	})
	if err != nil {
		t.Fatalf("open unlocked invoice must be modifiable, got %v", err)
	}
}

func TestValidateCreditStatus_PostedAndLockedRejected(t *testing.T) {
	p := &ValidateCreditStatusProcessor{}

	err := p.Process(&Context{
		Event:    EventPreUpdate,
		Original: &models.Credit{CreditNumber: "CR-1", Status: models.CreditStatusPosted},
	})
	assertValidationError(t, err)

	err = p.Process(&Context{
		Event:    EventPreUpdate,
		Original: &models.Credit{CreditNumber: "CR-2", Status: models.CreditStatusPending, Locked: true},
	})
	assertValidationError(t, err)
}

func TestValidateAdjustmentStatus_PostedRejected(t *testing.T) {
	p := &ValidateAdjustmentStatusProcessor{}

	err := p.Process(&Context{
		Event:    EventPreDelete,
		Original: &models.Adjustment{AdjustmentNumber: "ADJ-1", Status: models.AdjustmentStatusPosted},
	})
	assertValidationError(t, err)

	err = p.Process(&Context{
		Event:    EventPreUpdate,
		Original: &models.Adjustment{AdjustmentNumber: "ADJ-2", Status: models.AdjustmentStatusOpen},
	})
	if err != nil {
		t.Fatalf("open adjustment must be modifiable, got %v", err)
	}
}

func TestStatusGuards_CreatesPassThrough(t *testing.T) {
	// Creates carry no original row; every guard must treat that as a pass.
	guards := []Processor{
		&ValidateCheckStatusProcessor{},
		&ValidateInvoiceStatusProcessor{},
		&ValidateCreditStatusProcessor{},
		&ValidateAdjustmentStatusProcessor{},
		&ValidateDeductionStatusProcessor{},
	}
	for _, guard := range guards {
		if err := guard.Process(&Context{Event: EventPreUpdate}); err != nil {
			t.Fatalf("%T: expected nil for a missing original, got %v", guard, err)
		}
	}
}

func TestDiffIds(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	out := diffIds([]uuid.UUID{a, b, a}, []uuid.UUID{b})
	if len(out) != 1 || out[0] != a {
		t.Fatalf("expected [%s], got %v", a, out)
	}
	if out := diffIds(nil, []uuid.UUID{c}); len(out) != 0 {
		t.Fatalf("expected empty diff, got %v", out)
	}
}
