package repository

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/crm_backend/models"
	"bitbucket.org/mmdatafocus/crm_backend/utils"
	"bitbucket.org/mmdatafocus/crm_backend/workflow"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, input models.NewQuote) (*models.Quote, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[models.Quote](r.db, "quote_number", input.QuoteNumber, nil); err != nil {
		return nil, err
	}

	quote := buildQuote(input)
	err := runMutation(ctx, r.db, workflow.KindQuote, workflow.OpCreate, quote.ID, quote, nil, func(tx *gorm.DB) error {
		return tx.Create(quote).Error
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

func (r *QuoteRepository) Update(ctx context.Context, id uuid.UUID, input models.NewQuote) (*models.Quote, error) {
	if err := utils.ValidateInput(input); err != nil {
		return nil, err
	}
	original, err := models.GetQuoteById(r.db, id)
	if err != nil {
		return nil, translateNotFound(err, "quote", id)
	}
	if err := utils.ValidateUnique[models.Quote](r.db, "quote_number", input.QuoteNumber, id); err != nil {
		return nil, err
	}

	quote := buildQuote(input)
	quote.ID = id
	for i := range quote.Details {
		quote.Details[i].QuoteId = id
	}

	err = runMutation(ctx, r.db, workflow.KindQuote, workflow.OpUpdate, id, quote, original, func(tx *gorm.DB) error {
		return replaceQuoteRows(tx, quote)
	})
	if err != nil {
		return nil, err
	}
	return models.GetQuoteById(r.db, id)
}

// Duplicate copies an existing quote under a new number. Every row the
// source quote references must still exist; missing references surface as
// a QuoteDuplicationError carrying the full list.
func (r *QuoteRepository) Duplicate(ctx context.Context, id uuid.UUID, newNumber string) (*models.Quote, error) {
	source, err := models.GetQuoteById(r.db, id)
	if err != nil {
		return nil, translateNotFound(err, "quote", id)
	}
	if err := workflow.ValidateQuoteReferences(r.db, source); err != nil {
		return nil, err
	}
	if newNumber == "" {
		newNumber = fmt.Sprintf("%s-copy", source.QuoteNumber)
	}
	if err := utils.ValidateUnique[models.Quote](r.db, "quote_number", newNumber, nil); err != nil {
		return nil, err
	}

	copyQuote := &models.Quote{
		ID:          uuid.New(),
		QuoteNumber: newNumber,
		CustomerId:  source.CustomerId,
		FactoryId:   source.FactoryId,
		EntityDate:  source.EntityDate,
		ExpiresAt:   source.ExpiresAt,
	}
	for _, d := range source.Details {
		detail := models.QuoteDetail{
			ID:         uuid.New(),
			QuoteId:    copyQuote.ID,
			ProductId:  d.ProductId,
			ItemNumber: d.ItemNumber,
			Quantity:   d.Quantity,
			Total:      d.Total,
		}
		for _, s := range d.SplitRates {
			detail.SplitRates = append(detail.SplitRates, models.QuoteSplitRate{
				QuoteDetailId: detail.ID,
				UserId:        s.UserId,
				SplitRate:     s.SplitRate,
				Position:      s.Position,
			})
		}
		copyQuote.Details = append(copyQuote.Details, detail)
	}

	err = runMutation(ctx, r.db, workflow.KindQuote, workflow.OpCreate, copyQuote.ID, copyQuote, nil, func(tx *gorm.DB) error {
		return tx.Create(copyQuote).Error
	})
	if err != nil {
		return nil, err
	}
	return copyQuote, nil
}

func (r *QuoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	original, err := models.GetQuoteById(r.db, id)
	if err != nil {
		return translateNotFound(err, "quote", id)
	}
	return runMutation(ctx, r.db, workflow.KindQuote, workflow.OpDelete, id, original, original, func(tx *gorm.DB) error {
		return deleteQuoteRows(tx, id)
	})
}

func (r *QuoteRepository) GetById(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	quote, err := models.GetQuoteById(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, translateNotFound(err, "quote", id)
	}
	return quote, nil
}

func (r *QuoteRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists[models.Quote](r.db.WithContext(ctx), id)
}

func buildQuote(input models.NewQuote) *models.Quote {
	quote := models.Quote{
		ID:          uuid.New(),
		QuoteNumber: input.QuoteNumber,
		CustomerId:  input.CustomerId,
		FactoryId:   input.FactoryId,
		EntityDate:  input.EntityDate,
		ExpiresAt:   input.ExpiresAt,
	}
	for _, d := range input.Details {
		detail := models.QuoteDetail{
			ID:         uuid.New(),
			QuoteId:    quote.ID,
			ProductId:  d.ProductId,
			ItemNumber: d.ItemNumber,
			Quantity:   d.Quantity,
			Total:      d.Total,
		}
		for _, s := range d.SplitRates {
			detail.SplitRates = append(detail.SplitRates, models.QuoteSplitRate{
				QuoteDetailId: detail.ID,
				UserId:        s.UserId,
				SplitRate:     s.SplitRate,
				Position:      s.Position,
			})
		}
		quote.Details = append(quote.Details, detail)
	}
	return &quote
}

func replaceQuoteRows(tx *gorm.DB, quote *models.Quote) error {
	var detailIds []uuid.UUID
	err := tx.Model(&models.QuoteDetail{}).Where("quote_id = ?", quote.ID).
		Pluck("id", &detailIds).Error
	if err != nil {
		return err
	}
	if len(detailIds) > 0 {
		if err := tx.Where("quote_detail_id IN ?", detailIds).Delete(&models.QuoteSplitRate{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("quote_id = ?", quote.ID).Delete(&models.QuoteDetail{}).Error; err != nil {
		return err
	}
	err = tx.Model(&models.Quote{}).Where("id = ?", quote.ID).
		Updates(map[string]any{
			"quote_number": quote.QuoteNumber,
			"customer_id":  quote.CustomerId,
			"factory_id":   quote.FactoryId,
			"entity_date":  quote.EntityDate,
			"expires_at":   quote.ExpiresAt,
		}).Error
	if err != nil {
		return err
	}
	for i := range quote.Details {
		if err := tx.Create(&quote.Details[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func deleteQuoteRows(tx *gorm.DB, quoteId uuid.UUID) error {
	var detailIds []uuid.UUID
	err := tx.Model(&models.QuoteDetail{}).Where("quote_id = ?", quoteId).
		Pluck("id", &detailIds).Error
	if err != nil {
		return err
	}
	if len(detailIds) > 0 {
		if err := tx.Where("quote_detail_id IN ?", detailIds).Delete(&models.QuoteSplitRate{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("quote_id = ?", quoteId).Delete(&models.QuoteDetail{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Quote{}, "id = ?", quoteId).Error
}
