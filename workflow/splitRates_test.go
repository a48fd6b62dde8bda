package workflow

import (
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/crm_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestDistributeSplitRates_RemainderGoesToFirst(t *testing.T) {
	rates := DistributeSplitRates(3)
	if len(rates) != 3 {
		t.Fatalf("expected 3 rates, got %d", len(rates))
	}
	if !rates[0].Equal(decimal.NewFromFloat(33.34)) {
		t.Fatalf("expected first rate 33.34, got %s", rates[0])
	}
	if !rates[1].Equal(decimal.NewFromFloat(33.33)) || !rates[2].Equal(decimal.NewFromFloat(33.33)) {
		t.Fatalf("expected trailing rates 33.33, got %s and %s", rates[1], rates[2])
	}
}

func TestDistributeSplitRates_AlwaysSumsToHundred(t *testing.T) {
	for n := 1; n <= 12; n++ {
		rates := DistributeSplitRates(n)
		sum := decimal.Zero
		for _, r := range rates {
			sum = sum.Add(r)
		}
		if !sum.Equal(utils.Hundred) {
			t.Fatalf("n=%d: expected sum 100.00, got %s", n, sum)
		}
	}
}

func TestDistributeSplitRates_NonPositiveCount(t *testing.T) {
	if rates := DistributeSplitRates(0); len(rates) != 0 {
		t.Fatalf("expected no rates for n=0, got %d", len(rates))
	}
	if rates := DistributeSplitRates(-2); len(rates) != 0 {
		t.Fatalf("expected no rates for n=-2, got %d", len(rates))
	}
}

func TestDistributeSplitRates_SingleRep(t *testing.T) {
	rates := DistributeSplitRates(1)
	if len(rates) != 1 || !rates[0].Equal(utils.Hundred) {
		t.Fatalf("expected [100.00], got %v", rates)
	}
}

func TestValidateSplitRates_Valid(t *testing.T) {
	splits := []SplitAssignment{
		{UserId: uuid.New(), SplitRate: decimal.NewFromFloat(50)},
		{UserId: uuid.New(), SplitRate: decimal.NewFromFloat(50)},
	}
	if err := ValidateSplitRates("order line 1", splits); err != nil {
		t.Fatalf("expected valid splits, got %v", err)
	}
}

func TestValidateSplitRates_DistributedRatesValidate(t *testing.T) {
	// The defaulter's own output must pass the validator.
	rates := DistributeSplitRates(3)
	splits := make([]SplitAssignment, len(rates))
	for i, r := range rates {
		splits[i] = SplitAssignment{UserId: uuid.New(), SplitRate: r}
	}
	if err := ValidateSplitRates("order line 1", splits); err != nil {
		t.Fatalf("expected distributed rates to validate, got %v", err)
	}
}

func TestValidateSplitRates_DuplicateUser(t *testing.T) {
	userId := uuid.New()
	splits := []SplitAssignment{
		{UserId: userId, SplitRate: decimal.NewFromFloat(50)},
		{UserId: userId, SplitRate: decimal.NewFromFloat(50)},
	}
	err := ValidateSplitRates("order line 1", splits)
	var dup *utils.DuplicateUserInSplitRatesError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateUserInSplitRatesError, got %v", err)
	}
	if dup.UserId != userId.String() {
		t.Fatalf("expected offending user %s, got %s", userId, dup.UserId)
	}
}

func TestValidateSplitRates_RateOutOfRange(t *testing.T) {
	var validationErr *utils.ValidationError

	err := ValidateSplitRates("order line 1", []SplitAssignment{
		{UserId: uuid.New(), SplitRate: decimal.NewFromFloat(-5)},
		{UserId: uuid.New(), SplitRate: decimal.NewFromFloat(105)},
	})
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for negative rate, got %v", err)
	}

	err = ValidateSplitRates("order line 1", []SplitAssignment{
		{UserId: uuid.New(), SplitRate: decimal.NewFromFloat(100.01)},
	})
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for rate above 100, got %v", err)
	}
}

func TestValidateSplitRates_SumMustBeHundred(t *testing.T) {
	err := ValidateSplitRates("order line 1", []SplitAssignment{
		{UserId: uuid.New(), SplitRate: decimal.NewFromFloat(60)},
		{UserId: uuid.New(), SplitRate: decimal.NewFromFloat(30)},
	})
	var validationErr *utils.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for sum 90, got %v", err)
	}
}

func TestValidateSplitRates_EmptyListFailsSum(t *testing.T) {
	// An empty list sums to zero; families that tolerate the empty list
	// skip the validator rather than relaxing it.
	err := ValidateSplitRates("credit C-1", nil)
	var validationErr *utils.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError for empty splits, got %v", err)
	}
}
