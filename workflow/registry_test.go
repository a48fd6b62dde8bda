package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

// recordingProcessor appends a tag to a shared trace so tests can assert
// execution order. failOn makes it error at one specific event.
type recordingProcessor struct {
	tag    string
	events []Event
	trace  *[]string
	failOn Event
}

func (p *recordingProcessor) Events() []Event { return p.events }

func (p *recordingProcessor) Process(pctx *Context) error {
	*p.trace = append(*p.trace, p.tag+":"+string(pctx.Event))
	if p.failOn != "" && pctx.Event == p.failOn {
		return errors.New(p.tag + " failed")
	}
	return nil
}

func TestRunMutation_OrderIsPreMutatePost(t *testing.T) {
	r := NewRegistry()
	var trace []string
	r.Register(KindOrder, &recordingProcessor{tag: "first", events: []Event{EventPreCreate, EventPostCreate}, trace: &trace})
	r.Register(KindOrder, &recordingProcessor{tag: "second", events: []Event{EventPreCreate, EventPostCreate}, trace: &trace})

	err := r.RunMutation(context.Background(), nil, KindOrder, OpCreate, uuid.New(), nil, nil, func() error {
		trace = append(trace, "mutate")
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"first:PreCreate", "second:PreCreate", "mutate", "first:PostCreate", "second:PostCreate"}
	if len(trace) != len(expected) {
		t.Fatalf("expected trace %v, got %v", expected, trace)
	}
	for i := range expected {
		if trace[i] != expected[i] {
			t.Fatalf("expected trace %v, got %v", expected, trace)
		}
	}
}

func TestRunMutation_PreErrorPreventsMutation(t *testing.T) {
	r := NewRegistry()
	var trace []string
	r.Register(KindOrder, &recordingProcessor{tag: "guard", events: []Event{EventPreUpdate}, trace: &trace, failOn: EventPreUpdate})
	r.Register(KindOrder, &recordingProcessor{tag: "later", events: []Event{EventPreUpdate, EventPostUpdate}, trace: &trace})

	mutated := false
	err := r.RunMutation(context.Background(), nil, KindOrder, OpUpdate, uuid.New(), nil, nil, func() error {
		mutated = true
		return nil
	})
	if err == nil {
		t.Fatal("expected the guard's error")
	}
	if mutated {
		t.Fatal("mutation ran despite a failing pre processor")
	}
	if len(trace) != 1 || trace[0] != "guard:PreUpdate" {
		t.Fatalf("expected only the guard to run, got %v", trace)
	}
}

func TestRunMutation_MutateErrorSkipsPost(t *testing.T) {
	r := NewRegistry()
	var trace []string
	r.Register(KindOrder, &recordingProcessor{tag: "post", events: []Event{EventPostDelete}, trace: &trace})

	err := r.RunMutation(context.Background(), nil, KindOrder, OpDelete, uuid.New(), nil, nil, func() error {
		return errors.New("mutation failed")
	})
	if err == nil || err.Error() != "mutation failed" {
		t.Fatalf("expected the mutation's error, got %v", err)
	}
	if len(trace) != 0 {
		t.Fatalf("post processors ran after a failed mutation: %v", trace)
	}
}

func TestRunMutation_PostErrorPropagates(t *testing.T) {
	r := NewRegistry()
	var trace []string
	r.Register(KindOrder, &recordingProcessor{tag: "post", events: []Event{EventPostCreate}, trace: &trace, failOn: EventPostCreate})

	err := r.RunMutation(context.Background(), nil, KindOrder, OpCreate, uuid.New(), nil, nil, func() error {
		return nil
	})
	if err == nil {
		t.Fatal("expected the post processor's error to propagate")
	}
}

func TestRunMutation_EventOnlyReachesDeclaredProcessors(t *testing.T) {
	r := NewRegistry()
	var trace []string
	r.Register(KindOrder, &recordingProcessor{tag: "createOnly", events: []Event{EventPreCreate}, trace: &trace})
	r.Register(KindInvoice, &recordingProcessor{tag: "otherKind", events: []Event{EventPreUpdate}, trace: &trace})

	err := r.RunMutation(context.Background(), nil, KindOrder, OpUpdate, uuid.New(), nil, nil, func() error {
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trace) != 0 {
		t.Fatalf("processors ran for undeclared kind/event: %v", trace)
	}
}

func TestOperationEventMapping(t *testing.T) {
	cases := []struct {
		op   Operation
		pre  Event
		post Event
	}{
		{OpCreate, EventPreCreate, EventPostCreate},
		{OpUpdate, EventPreUpdate, EventPostUpdate},
		{OpDelete, EventPreDelete, EventPostDelete},
	}
	for _, tc := range cases {
		if tc.op.PreEvent() != tc.pre {
			t.Fatalf("%s: expected pre event %s, got %s", tc.op, tc.pre, tc.op.PreEvent())
		}
		if tc.op.PostEvent() != tc.post {
			t.Fatalf("%s: expected post event %s, got %s", tc.op, tc.post, tc.op.PostEvent())
		}
	}
}
