package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Quote is order-shaped but upstream of fulfillment.
type Quote struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	QuoteNumber string        `gorm:"size:255;not null;index" json:"quote_number" binding:"required"`
	CustomerId  uuid.UUID     `gorm:"type:uuid;index;not null" json:"customer_id"`
	FactoryId   uuid.UUID     `gorm:"type:uuid;index;not null" json:"factory_id"`
	EntityDate  time.Time     `gorm:"not null" json:"entity_date"`
	ExpiresAt   *time.Time    `gorm:"default:null" json:"expires_at"`
	Details     []QuoteDetail `gorm:"foreignKey:QuoteId;constraint:OnDelete:CASCADE" json:"details"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

type QuoteDetail struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	QuoteId    uuid.UUID        `gorm:"type:uuid;index;not null" json:"quote_id"`
	ProductId  *uuid.UUID       `gorm:"type:uuid;index;default:null" json:"product_id"`
	ItemNumber string           `gorm:"size:255" json:"item_number"`
	Quantity   decimal.Decimal  `gorm:"type:decimal(20,2);default:0" json:"quantity"`
	Total      decimal.Decimal  `gorm:"type:decimal(20,2);default:0" json:"total"`
	SplitRates []QuoteSplitRate `gorm:"foreignKey:QuoteDetailId;constraint:OnDelete:CASCADE" json:"split_rates"`
	CreatedAt  time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type QuoteSplitRate struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	QuoteDetailId uuid.UUID       `gorm:"type:uuid;index;not null" json:"quote_detail_id"`
	UserId        uuid.UUID       `gorm:"type:uuid;not null" json:"user_id"`
	SplitRate     decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"split_rate"`
	Position      int             `gorm:"default:0" json:"position"`
}

// PreOpportunity holds the same split-rate structure as a quote but sits
// earlier in the pipeline.
type PreOpportunity struct {
	ID         uuid.UUID            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name       string               `gorm:"size:255;not null" json:"name" binding:"required"`
	CustomerId *uuid.UUID           `gorm:"type:uuid;index;default:null" json:"customer_id"`
	FactoryId  uuid.UUID            `gorm:"type:uuid;index;not null" json:"factory_id"`
	EntityDate time.Time            `gorm:"not null" json:"entity_date"`
	SplitRates []PreOpportunityRate `gorm:"foreignKey:PreOpportunityId;constraint:OnDelete:CASCADE" json:"split_rates"`
	CreatedAt  time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

type PreOpportunityRate struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PreOpportunityId uuid.UUID       `gorm:"type:uuid;index;not null" json:"pre_opportunity_id"`
	UserId           uuid.UUID       `gorm:"type:uuid;not null" json:"user_id"`
	SplitRate        decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"split_rate"`
	Position         int             `gorm:"default:0" json:"position"`
}

type NewQuote struct {
	QuoteNumber string           `json:"quote_number" validate:"required"`
	CustomerId  uuid.UUID        `json:"customer_id" validate:"required"`
	FactoryId   uuid.UUID        `json:"factory_id" validate:"required"`
	EntityDate  time.Time        `json:"entity_date" validate:"required"`
	ExpiresAt   *time.Time       `json:"expires_at"`
	Details     []NewQuoteDetail `json:"details" validate:"required,min=1,dive"`
}

type NewQuoteDetail struct {
	ProductId  *uuid.UUID      `json:"product_id"`
	ItemNumber string          `json:"item_number"`
	Quantity   decimal.Decimal `json:"quantity"`
	Total      decimal.Decimal `json:"total"`
	SplitRates []NewSplitRate  `json:"split_rates"`
}

func (q Quote) GetId() uuid.UUID {
	return q.ID
}

func (q Quote) EntityNumber() string {
	return q.QuoteNumber
}

func GetQuoteById(tx *gorm.DB, id uuid.UUID) (*Quote, error) {
	var quote Quote
	err := tx.Preload("Details.SplitRates").First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}
