package repository

import (
	"context"

	"bitbucket.org/mmdatafocus/crm_backend/models"
	"bitbucket.org/mmdatafocus/crm_backend/utils"
	"bitbucket.org/mmdatafocus/crm_backend/workflow"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository exposes the order family's mutations. Every mutation runs
// the order processor chain inside one transaction.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, input models.NewOrder) (*models.Order, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[models.Order](r.db, "order_number", input.OrderNumber, nil); err != nil {
		return nil, err
	}

	order := buildOrder(input)
	err := runMutation(ctx, r.db, workflow.KindOrder, workflow.OpCreate, order.ID, order, nil, func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepository) Update(ctx context.Context, id uuid.UUID, input models.NewOrder) (*models.Order, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	original, err := models.GetOrderById(r.db, id)
	if err != nil {
		return nil, translateNotFound(err, "order", id)
	}
	if err := utils.ValidateUnique[models.Order](r.db, "order_number", input.OrderNumber, id); err != nil {
		return nil, err
	}

	order := buildOrder(input)
	order.ID = id
	order.Status = original.Status
	order.HeaderStatus = original.HeaderStatus
	for i := range order.Details {
		order.Details[i].OrderId = id
	}
	for i := range order.InsideReps {
		order.InsideReps[i].OrderId = id
	}

	err = runMutation(ctx, r.db, workflow.KindOrder, workflow.OpUpdate, id, order, original, func(tx *gorm.DB) error {
		return replaceOrderRows(tx, order)
	})
	if err != nil {
		return nil, err
	}
	return models.GetOrderById(r.db, id)
}

func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	original, err := models.GetOrderById(r.db, id)
	if err != nil {
		return translateNotFound(err, "order", id)
	}
	return runMutation(ctx, r.db, workflow.KindOrder, workflow.OpDelete, id, original, original, func(tx *gorm.DB) error {
		return deleteOrderRows(tx, id)
	})
}

func (r *OrderRepository) GetById(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := models.GetOrderById(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, translateNotFound(err, "order", id)
	}
	return order, nil
}

func (r *OrderRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists[models.Order](r.db.WithContext(ctx), id)
}

// Recalculate rebuilds the order's shipping balances and status rollup
// outside the invoice lifecycle, for operator-triggered repair.
func (r *OrderRepository) Recalculate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return workflow.RecalculateOrder(ctx, tx, id)
	})
	if err != nil {
		return nil, translateNotFound(err, "order", id)
	}
	return models.GetOrderById(r.db, id)
}

func buildOrder(input models.NewOrder) *models.Order {
	order := models.Order{
		ID:               uuid.New(),
		OrderNumber:      input.OrderNumber,
		Status:           models.OrderStatusOpen,
		HeaderStatus:     models.HeaderStatusOpen,
		SoldToCustomerId: input.SoldToCustomerId,
		FactoryId:        input.FactoryId,
		EntityDate:       input.EntityDate,
		DueDate:          input.DueDate,
	}
	for _, d := range input.Details {
		detail := models.OrderDetail{
			ID:         uuid.New(),
			OrderId:    order.ID,
			ItemNumber: d.ItemNumber,
			Quantity:   d.Quantity,
			Total:      d.Total,
			Status:     models.OrderStatusOpen,
		}
		for _, s := range d.SplitRates {
			detail.SplitRates = append(detail.SplitRates, models.OrderSplitRate{
				OrderDetailId: detail.ID,
				UserId:        s.UserId,
				SplitRate:     s.SplitRate,
				Position:      s.Position,
			})
		}
		order.Details = append(order.Details, detail)
	}
	for _, rep := range input.InsideReps {
		order.InsideReps = append(order.InsideReps, models.OrderInsideRep{
			OrderId:   order.ID,
			UserId:    rep.UserId,
			SplitRate: rep.SplitRate,
			Position:  rep.Position,
		})
	}
	return &order
}

// replaceOrderRows persists an updated order by replacing its child rows.
// The balance row is preserved; the post-processors refresh it.
func replaceOrderRows(tx *gorm.DB, order *models.Order) error {
	var detailIds []uuid.UUID
	err := tx.Model(&models.OrderDetail{}).Where("order_id = ?", order.ID).
		Pluck("id", &detailIds).Error
	if err != nil {
		return err
	}
	if len(detailIds) > 0 {
		if err := tx.Where("order_detail_id IN ?", detailIds).Delete(&models.OrderSplitRate{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderDetail{}).Error; err != nil {
		return err
	}
	if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderInsideRep{}).Error; err != nil {
		return err
	}

	err = tx.Model(&models.Order{}).Where("id = ?", order.ID).
		Updates(map[string]any{
			"order_number":        order.OrderNumber,
			"sold_to_customer_id": order.SoldToCustomerId,
			"factory_id":          order.FactoryId,
			"entity_date":         order.EntityDate,
			"due_date":            order.DueDate,
		}).Error
	if err != nil {
		return err
	}

	for i := range order.Details {
		if err := tx.Create(&order.Details[i]).Error; err != nil {
			return err
		}
	}
	for i := range order.InsideReps {
		if err := tx.Create(&order.InsideReps[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func deleteOrderRows(tx *gorm.DB, orderId uuid.UUID) error {
	var detailIds []uuid.UUID
	err := tx.Model(&models.OrderDetail{}).Where("order_id = ?", orderId).
		Pluck("id", &detailIds).Error
	if err != nil {
		return err
	}
	if len(detailIds) > 0 {
		if err := tx.Where("order_detail_id IN ?", detailIds).Delete(&models.OrderSplitRate{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("order_id = ?", orderId).Delete(&models.OrderDetail{}).Error; err != nil {
		return err
	}
	if err := tx.Where("order_id = ?", orderId).Delete(&models.OrderInsideRep{}).Error; err != nil {
		return err
	}
	if err := tx.Where("order_id = ?", orderId).Delete(&models.OrderBalance{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Order{}, "id = ?", orderId).Error
}
