package utils

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestUniqueSlice_PreservesFirstOccurrenceOrder(t *testing.T) {
	out := UniqueSlice([]string{"b", "a", "b", "c", "a"})
	expected := []string{"b", "a", "c"}
	if len(out) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, out)
	}
	for i := range expected {
		if out[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, out)
		}
	}
}

func TestQuantize2(t *testing.T) {
	cases := []struct {
		in       float64
		expected string
	}{
		{10.004, "10"},
		{10.005, "10.01"},
		{10.006, "10.01"},
		{-0.005, "-0.01"},
		{100, "100"},
	}
	for _, tc := range cases {
		got := Quantize2(decimal.NewFromFloat(tc.in))
		if got.String() != tc.expected {
			t.Fatalf("Quantize2(%v): expected %s, got %s", tc.in, tc.expected, got)
		}
	}
}

func TestDereferencePtr(t *testing.T) {
	v := 42
	if got := DereferencePtr(&v); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	if got := DereferencePtr[int](nil); got != 0 {
		t.Fatalf("expected zero value, got %d", got)
	}
}

func TestValidateInput_RequiredField(t *testing.T) {
	type input struct {
		Name string `validate:"required"`
	}
	err := ValidateInput(input{})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if err := ValidateInput(input{Name: "ok"}); err != nil {
		t.Fatalf("expected valid input to pass, got %v", err)
	}
}

func TestNewRemoteApiError_ExtractsRemoteMessage(t *testing.T) {
	err := NewRemoteApiError(401, []byte(`{"message":"token expired"}`), "o365 send")
	if err.StatusCode != 401 {
		t.Fatalf("expected status 401, got %d", err.StatusCode)
	}
	if err.Message != "o365 send: token expired" {
		t.Fatalf("unexpected message %q", err.Message)
	}

	err = NewRemoteApiError(500, []byte("not json"), "")
	if err.Message != "Remote API error: 500" {
		t.Fatalf("expected the generic fallback, got %q", err.Message)
	}
}
