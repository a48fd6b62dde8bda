package repository

import (
	"context"
	"errors"

	"bitbucket.org/mmdatafocus/crm_backend/models"
	"bitbucket.org/mmdatafocus/crm_backend/utils"
	"bitbucket.org/mmdatafocus/crm_backend/workflow"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, input models.NewInvoice) (*models.Invoice, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[models.Invoice](r.db, "invoice_number", input.InvoiceNumber, nil); err != nil {
		return nil, err
	}
	for _, d := range input.Details {
		if err := utils.ValidateResourceId[models.OrderDetail](r.db, d.OrderDetailId); err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				return nil, utils.NewNotFoundError("order detail", d.OrderDetailId.String())
			}
			return nil, err
		}
	}

	invoice := buildInvoice(input)
	err := runMutation(ctx, r.db, workflow.KindInvoice, workflow.OpCreate, invoice.ID, invoice, nil, func(tx *gorm.DB) error {
		return tx.Create(invoice).Error
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *InvoiceRepository) Update(ctx context.Context, id uuid.UUID, input models.NewInvoice) (*models.Invoice, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	original, err := models.GetInvoiceById(r.db, id)
	if err != nil {
		return nil, translateNotFound(err, "invoice", id)
	}
	if err := utils.ValidateUnique[models.Invoice](r.db, "invoice_number", input.InvoiceNumber, id); err != nil {
		return nil, err
	}

	invoice := buildInvoice(input)
	invoice.ID = id
	invoice.Status = original.Status
	invoice.Locked = original.Locked
	invoice.PaidBalance = original.PaidBalance
	for i := range invoice.Details {
		invoice.Details[i].InvoiceId = id
	}
	for i := range invoice.SplitRates {
		invoice.SplitRates[i].InvoiceId = id
	}

	err = runMutation(ctx, r.db, workflow.KindInvoice, workflow.OpUpdate, id, invoice, original, func(tx *gorm.DB) error {
		return replaceInvoiceRows(tx, invoice)
	})
	if err != nil {
		return nil, err
	}
	return models.GetInvoiceById(r.db, id)
}

func (r *InvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	original, err := models.GetInvoiceById(r.db, id)
	if err != nil {
		return translateNotFound(err, "invoice", id)
	}
	return runMutation(ctx, r.db, workflow.KindInvoice, workflow.OpDelete, id, original, original, func(tx *gorm.DB) error {
		return deleteInvoiceRows(tx, id)
	})
}

func (r *InvoiceRepository) GetById(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := models.GetInvoiceById(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, translateNotFound(err, "invoice", id)
	}
	return invoice, nil
}

func (r *InvoiceRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists[models.Invoice](r.db.WithContext(ctx), id)
}

func buildInvoice(input models.NewInvoice) *models.Invoice {
	invoice := models.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: input.InvoiceNumber,
		Status:        models.InvoiceStatusOpen,
		CustomerId:    input.CustomerId,
		FactoryId:     input.FactoryId,
		EntityDate:    input.EntityDate,
		DueDate:       input.DueDate,
	}
	for _, d := range input.Details {
		invoice.Details = append(invoice.Details, models.InvoiceDetail{
			ID:            uuid.New(),
			InvoiceId:     invoice.ID,
			OrderDetailId: d.OrderDetailId,
			ItemNumber:    d.ItemNumber,
			Quantity:      d.Quantity,
			Total:         d.Total,
		})
	}
	for _, s := range input.SplitRates {
		invoice.SplitRates = append(invoice.SplitRates, models.InvoiceSplitRate{
			InvoiceId: invoice.ID,
			UserId:    s.UserId,
			SplitRate: s.SplitRate,
			Position:  s.Position,
		})
	}
	return &invoice
}

func replaceInvoiceRows(tx *gorm.DB, invoice *models.Invoice) error {
	if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceDetail{}).Error; err != nil {
		return err
	}
	if err := tx.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceSplitRate{}).Error; err != nil {
		return err
	}
	err := tx.Model(&models.Invoice{}).Where("id = ?", invoice.ID).
		Updates(map[string]any{
			"invoice_number": invoice.InvoiceNumber,
			"customer_id":    invoice.CustomerId,
			"factory_id":     invoice.FactoryId,
			"entity_date":    invoice.EntityDate,
			"due_date":       invoice.DueDate,
		}).Error
	if err != nil {
		return err
	}
	for i := range invoice.Details {
		if err := tx.Create(&invoice.Details[i]).Error; err != nil {
			return err
		}
	}
	for i := range invoice.SplitRates {
		if err := tx.Create(&invoice.SplitRates[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func deleteInvoiceRows(tx *gorm.DB, invoiceId uuid.UUID) error {
	if err := tx.Where("invoice_id = ?", invoiceId).Delete(&models.InvoiceDetail{}).Error; err != nil {
		return err
	}
	if err := tx.Where("invoice_id = ?", invoiceId).Delete(&models.InvoiceSplitRate{}).Error; err != nil {
		return err
	}
	if err := tx.Where("invoice_id = ?", invoiceId).Delete(&models.InvoiceBalance{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Invoice{}, "id = ?", invoiceId).Error
}
