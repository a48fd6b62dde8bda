package campaign

import (
	"testing"

	"bitbucket.org/mmdatafocus/crm_backend/models"
)

func TestComputeBatchSize_SpreadsPaceOverMinutes(t *testing.T) {
	cases := []struct {
		name           string
		pace           models.SendPace
		remainingToday int
		expected       int
	}{
		{"fast pace full cap", models.SendPaceFast, 10000, 8},   // 500/hr
		{"medium pace full cap", models.SendPaceMedium, 10000, 3}, // 200/hr
		{"slow pace rounds up to one", models.SendPaceSlow, 10000, 1}, // 50/hr
		{"cap clamps the batch", models.SendPaceFast, 5, 5},
		{"cap of one", models.SendPaceFast, 1, 1},
		{"unknown pace falls back to slow", models.SendPace("Turbo"), 10000, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeBatchSize(tc.pace, tc.remainingToday)
			if got != tc.expected {
				t.Fatalf("pace=%s remaining=%d: expected %d, got %d", tc.pace, tc.remainingToday, tc.expected, got)
			}
		})
	}
}

func TestComputeBatchSize_NeverExceedsRemaining(t *testing.T) {
	for _, pace := range []models.SendPace{models.SendPaceSlow, models.SendPaceMedium, models.SendPaceFast} {
		for remaining := 1; remaining <= 10; remaining++ {
			if got := ComputeBatchSize(pace, remaining); got > remaining {
				t.Fatalf("pace=%s remaining=%d: batch %d exceeds the daily cap remainder", pace, remaining, got)
			}
		}
	}
}
