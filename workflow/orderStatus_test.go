package workflow

import (
	"testing"

	"bitbucket.org/mmdatafocus/crm_backend/models"
	"github.com/shopspring/decimal"
)

func TestClassifyOrderDetail(t *testing.T) {
	total := decimal.NewFromFloat(500)
	cases := []struct {
		name     string
		balance  decimal.Decimal
		expected models.OrderStatus
	}{
		{"negative balance is over-shipped", decimal.NewFromFloat(-0.5), models.OrderStatusOverShipped},
		{"zero balance is shipped complete", decimal.Zero, models.OrderStatusShippedComplete},
		{"balance within tolerance is shipped complete", decimal.NewFromFloat(0.01), models.OrderStatusShippedComplete},
		{"rounding drift within tolerance is shipped complete", decimal.NewFromFloat(0.004), models.OrderStatusShippedComplete},
		{"untouched balance stays open", decimal.NewFromFloat(500), models.OrderStatusOpen},
		{"consumed balance is partial", decimal.NewFromFloat(120.50), models.OrderStatusPartialShipped},
		{"just above tolerance is partial", decimal.NewFromFloat(0.02), models.OrderStatusPartialShipped},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyOrderDetail(total, tc.balance)
			if got != tc.expected {
				t.Fatalf("balance %s: expected %s, got %s", tc.balance, tc.expected, got)
			}
		})
	}
}

func TestDeriveOrderStatus(t *testing.T) {
	details := func(statuses ...models.OrderStatus) []models.OrderDetail {
		out := make([]models.OrderDetail, len(statuses))
		for i, s := range statuses {
			out[i].Status = s
		}
		return out
	}

	cases := []struct {
		name     string
		details  []models.OrderDetail
		expected models.OrderStatus
	}{
		{"no lines stays open", nil, models.OrderStatusOpen},
		{"all open", details(models.OrderStatusOpen, models.OrderStatusOpen), models.OrderStatusOpen},
		{"all shipped complete", details(models.OrderStatusShippedComplete, models.OrderStatusShippedComplete), models.OrderStatusShippedComplete},
		{"mixed is partial", details(models.OrderStatusOpen, models.OrderStatusShippedComplete), models.OrderStatusPartialShipped},
		{"partial line is partial", details(models.OrderStatusPartialShipped, models.OrderStatusOpen), models.OrderStatusPartialShipped},
		{"over-shipped wins over complete", details(models.OrderStatusShippedComplete, models.OrderStatusOverShipped), models.OrderStatusOverShipped},
		{"over-shipped wins over open", details(models.OrderStatusOpen, models.OrderStatusOverShipped, models.OrderStatusPartialShipped), models.OrderStatusOverShipped},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveOrderStatus(tc.details)
			if got != tc.expected {
				t.Fatalf("expected %s, got %s", tc.expected, got)
			}
		})
	}
}
