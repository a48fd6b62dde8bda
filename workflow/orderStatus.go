package workflow

import (
	"context"

	"bitbucket.org/mmdatafocus/crm_backend/config"
	"bitbucket.org/mmdatafocus/crm_backend/models"
	"bitbucket.org/mmdatafocus/crm_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var shippedTolerance = decimal.NewFromFloat(0.01)

// ClassifyOrderDetail derives a line status from its fixed total and the
// recomputed shipping balance. Balances within 0.01 of zero count as fully
// shipped; this tolerance absorbs rounding drift from partial invoicing.
func ClassifyOrderDetail(total, shippingBalance decimal.Decimal) models.OrderStatus {
	if shippingBalance.IsNegative() {
		return models.OrderStatusOverShipped
	}
	if utils.Quantize2(shippingBalance).LessThanOrEqual(shippedTolerance) {
		return models.OrderStatusShippedComplete
	}
	if shippingBalance.Equal(total) {
		return models.OrderStatusOpen
	}
	return models.OrderStatusPartialShipped
}

// DeriveOrderStatus rolls the line statuses up to the header:
// all open stays open, all shipped-complete completes the order, any
// over-shipped line wins over everything else, any other mix is partial.
func DeriveOrderStatus(details []models.OrderDetail) models.OrderStatus {
	if len(details) == 0 {
		return models.OrderStatusOpen
	}
	allOpen := true
	allComplete := true
	for _, d := range details {
		if d.Status == models.OrderStatusOverShipped {
			return models.OrderStatusOverShipped
		}
		if d.Status != models.OrderStatusOpen {
			allOpen = false
		}
		if d.Status != models.OrderStatusShippedComplete {
			allComplete = false
		}
	}
	if allOpen {
		return models.OrderStatusOpen
	}
	if allComplete {
		return models.OrderStatusShippedComplete
	}
	return models.OrderStatusPartialShipped
}

// RecalculateOrder recomputes every line's shipping balance from the
// surviving invoice consumption, reclassifies the lines, rolls the order
// status up and closes the header when the order is fully shipped. Both the
// invoice post-processors and the order recalculation path go through here
// so they cannot drift apart.
func RecalculateOrder(ctx context.Context, tx *gorm.DB, orderId uuid.UUID) error {
	logger := config.GetLogger()
	order, err := models.GetOrderById(tx, orderId)
	if err != nil {
		config.LogError(logger, "orderStatus.go", "RecalculateOrder", "GetOrderById", orderId, err)
		return err
	}

	for i := range order.Details {
		detail := &order.Details[i]
		invoiced, err := models.GetOrderDetailInvoicedTotal(tx, detail.ID)
		if err != nil {
			config.LogError(logger, "orderStatus.go", "RecalculateOrder", "GetOrderDetailInvoicedTotal", detail.ID, err)
			return err
		}
		detail.ShippingBalance = detail.Total.Sub(invoiced)
		detail.Status = ClassifyOrderDetail(detail.Total, detail.ShippingBalance)
		err = tx.Model(&models.OrderDetail{}).Where("id = ?", detail.ID).
			Updates(map[string]any{
				"shipping_balance": detail.ShippingBalance,
				"status":           detail.Status,
			}).Error
		if err != nil {
			config.LogError(logger, "orderStatus.go", "RecalculateOrder", "UpdateOrderDetail", detail.ID, err)
			return err
		}
	}

	status := DeriveOrderStatus(order.Details)
	updates := map[string]any{"status": status}
	if status == models.OrderStatusShippedComplete && order.HeaderStatus == models.HeaderStatusOpen {
		updates["header_status"] = models.HeaderStatusClosed
	}
	err = tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(updates).Error
	if err != nil {
		config.LogError(logger, "orderStatus.go", "RecalculateOrder", "UpdateOrder", order.ID, err)
		return err
	}
	return nil
}

// RecalculateOrdersForDetails resolves the distinct orders owning the given
// order lines and recalculates each once.
func RecalculateOrdersForDetails(ctx context.Context, tx *gorm.DB, orderDetailIds []uuid.UUID) error {
	if len(orderDetailIds) == 0 {
		return nil
	}
	var orderIds []uuid.UUID
	err := tx.Model(&models.OrderDetail{}).
		Where("id IN ?", orderDetailIds).
		Distinct("order_id").Pluck("order_id", &orderIds).Error
	if err != nil {
		config.LogError(config.GetLogger(), "orderStatus.go", "RecalculateOrdersForDetails", "PluckOrderIds", orderDetailIds, err)
		return err
	}
	for _, orderId := range orderIds {
		if err := RecalculateOrder(ctx, tx, orderId); err != nil {
			return err
		}
	}
	return nil
}

// RecalculateOrderBalance refreshes the aggregated money rollup: subtotal
// and total from the lines, commission from the outside splits.
func RecalculateOrderBalance(tx *gorm.DB, order *models.Order) error {
	subtotal := decimal.Zero
	commission := decimal.Zero
	for _, d := range order.Details {
		subtotal = subtotal.Add(d.Total)
		for _, s := range d.SplitRates {
			commission = commission.Add(d.Total.Mul(s.SplitRate).Div(utils.Hundred))
		}
	}
	var balance models.OrderBalance
	err := tx.Where(models.OrderBalance{OrderId: order.ID}).
		Assign(map[string]any{
			"subtotal":   utils.Quantize2(subtotal),
			"total":      utils.Quantize2(subtotal),
			"commission": utils.Quantize2(commission),
		}).FirstOrCreate(&balance).Error
	if err != nil {
		config.LogError(config.GetLogger(), "orderStatus.go", "RecalculateOrderBalance", "UpsertOrderBalance", order.ID, err)
		return err
	}
	return nil
}
