package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Credit struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreditNumber string            `gorm:"size:255;not null;index" json:"credit_number" binding:"required"`
	Status       CreditStatus      `gorm:"type:varchar(32);not null;default:'Pending'" json:"status"`
	Locked       bool              `gorm:"default:false" json:"locked"`
	CustomerId   uuid.UUID         `gorm:"type:uuid;index;not null" json:"customer_id"`
	FactoryId    uuid.UUID         `gorm:"type:uuid;index;not null" json:"factory_id"`
	EntityDate   time.Time         `gorm:"not null" json:"entity_date"`
	Details      []CreditDetail    `gorm:"foreignKey:CreditId;constraint:OnDelete:CASCADE" json:"details"`
	SplitRates   []CreditSplitRate `gorm:"foreignKey:CreditId;constraint:OnDelete:CASCADE" json:"split_rates"`
	CreatedAt    time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

// CreditDetail consumes one order line, like an invoice detail but with
// negative financial effect.
type CreditDetail struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreditId      uuid.UUID       `gorm:"type:uuid;index;not null" json:"credit_id"`
	OrderDetailId uuid.UUID       `gorm:"type:uuid;index;not null" json:"order_detail_id"`
	ItemNumber    string          `gorm:"size:255" json:"item_number"`
	Total         decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"total"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type CreditSplitRate struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreditId  uuid.UUID       `gorm:"type:uuid;index;not null" json:"credit_id"`
	UserId    uuid.UUID       `gorm:"type:uuid;not null" json:"user_id"`
	SplitRate decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"split_rate"`
	Position  int             `gorm:"default:0" json:"position"`
}

type NewCredit struct {
	CreditNumber string            `json:"credit_number" validate:"required"`
	CustomerId   uuid.UUID         `json:"customer_id" validate:"required"`
	FactoryId    uuid.UUID         `json:"factory_id" validate:"required"`
	EntityDate   time.Time         `json:"entity_date" validate:"required"`
	Details      []NewCreditDetail `json:"details" validate:"required,min=1,dive"`
	SplitRates   []NewSplitRate    `json:"split_rates"`
}

type NewCreditDetail struct {
	OrderDetailId uuid.UUID       `json:"order_detail_id" validate:"required"`
	ItemNumber    string          `json:"item_number"`
	Total         decimal.Decimal `json:"total"`
}

func (c Credit) GetId() uuid.UUID {
	return c.ID
}

func (c Credit) EntityNumber() string {
	return c.CreditNumber
}

func GetCreditById(tx *gorm.DB, id uuid.UUID) (*Credit, error) {
	var credit Credit
	err := tx.Preload("Details").Preload("SplitRates").
		First(&credit, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &credit, nil
}
