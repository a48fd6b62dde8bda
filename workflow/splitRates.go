package workflow

import (
	"time"

	"bitbucket.org/mmdatafocus/crm_backend/config"
	"bitbucket.org/mmdatafocus/crm_backend/models"
	"bitbucket.org/mmdatafocus/crm_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// splitDefaultsTTL bounds how stale a cached default lookup may be.
const splitDefaultsTTL = 5 * time.Minute

// SplitAssignment is the family-neutral shape a default lookup produces.
// Each processor copies it into its own split row type.
type SplitAssignment struct {
	UserId    uuid.UUID
	SplitRate decimal.Decimal
	Position  int
}

// DistributeSplitRates divides 100.00 into n rates quantized to 0.01.
// Every rate gets the floored even share; the rounding remainder goes to
// the first rate so the list always sums to exactly 100.00.
func DistributeSplitRates(n int) []decimal.Decimal {
	if n <= 0 {
		return []decimal.Decimal{}
	}
	share := utils.Hundred.Div(decimal.NewFromInt(int64(n))).RoundDown(2)
	rates := make([]decimal.Decimal, n)
	for i := range rates {
		rates[i] = share
	}
	remainder := utils.Hundred.Sub(share.Mul(decimal.NewFromInt(int64(n))))
	rates[0] = rates[0].Add(remainder)
	return rates
}

// ValidateSplitRates enforces the per-line split invariants: no user twice,
// every rate within [0, 100], and the quantized sum equal to 100.00. The
// label names the offending entity or line in the returned error.
func ValidateSplitRates(label string, splits []SplitAssignment) error {
	seen := make(map[uuid.UUID]struct{}, len(splits))
	sum := decimal.Zero
	for _, s := range splits {
		if _, ok := seen[s.UserId]; ok {
			return &utils.DuplicateUserInSplitRatesError{UserId: s.UserId.String()}
		}
		seen[s.UserId] = struct{}{}
		if s.SplitRate.IsNegative() || s.SplitRate.GreaterThan(utils.Hundred) {
			return utils.NewValidationError("split rate %s for %s must be between 0 and 100", s.SplitRate.String(), label)
		}
		sum = sum.Add(s.SplitRate)
	}
	if !utils.Quantize2(sum).Equal(utils.Hundred) {
		return utils.NewValidationError("split rates for %s must total 100.00, got %s", label, utils.Quantize2(sum).String())
	}
	return nil
}

// LookupOutsideSplitDefaults resolves default outside splits in priority
// order: customer-factory split rates first, then the customer's generic
// outside reps with an even distribution. Returns an empty slice when the
// customer has neither configured.
func LookupOutsideSplitDefaults(tx *gorm.DB, customerId, factoryId uuid.UUID) ([]SplitAssignment, error) {
	cacheKey := "SplitDefaults:" + customerId.String() + ":" + factoryId.String()
	var cached []SplitAssignment
	if hit, err := config.GetRedisObject(cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	rates, err := models.FindCustomerFactorySplitRates(tx, customerId, factoryId)
	if err != nil {
		return nil, err
	}
	if len(rates) > 0 {
		splits := make([]SplitAssignment, len(rates))
		for i, r := range rates {
			splits[i] = SplitAssignment{UserId: r.UserId, SplitRate: r.SplitRate, Position: r.Position}
		}
		_ = config.SetRedisObject(cacheKey, splits, splitDefaultsTTL)
		return splits, nil
	}

	reps, err := models.FindCustomerOutsideReps(tx, customerId)
	if err != nil {
		return nil, err
	}
	if len(reps) == 0 {
		return nil, nil
	}
	distributed := DistributeSplitRates(len(reps))
	splits := make([]SplitAssignment, len(reps))
	for i, rep := range reps {
		splits[i] = SplitAssignment{UserId: rep.UserId, SplitRate: distributed[i], Position: rep.Position}
	}
	_ = config.SetRedisObject(cacheKey, splits, splitDefaultsTTL)
	return splits, nil
}

// LookupInsideSplitDefaults resolves default inside splits from the
// factory's inside reps.
func LookupInsideSplitDefaults(tx *gorm.DB, factoryId uuid.UUID) ([]SplitAssignment, error) {
	reps, err := models.FindFactoryInsideReps(tx, factoryId)
	if err != nil {
		return nil, err
	}
	splits := make([]SplitAssignment, len(reps))
	for i, rep := range reps {
		splits[i] = SplitAssignment{UserId: rep.UserId, SplitRate: rep.SplitRate, Position: rep.Position}
	}
	return splits, nil
}
