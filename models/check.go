package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Check struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CheckNumber string          `gorm:"size:255;not null;index" json:"check_number" binding:"required"`
	Status      CheckStatus     `gorm:"type:varchar(32);not null;default:'Open'" json:"status"`
	FactoryId   uuid.UUID       `gorm:"type:uuid;index;not null" json:"factory_id"`
	EntityDate  time.Time       `gorm:"not null" json:"entity_date"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"amount"`
	Details     []CheckDetail   `gorm:"foreignKey:CheckId;constraint:OnDelete:CASCADE" json:"details"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// CheckDetail points to exactly one of invoice, credit or adjustment.
type CheckDetail struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CheckId      uuid.UUID       `gorm:"type:uuid;index;not null" json:"check_id"`
	InvoiceId    *uuid.UUID      `gorm:"type:uuid;index;default:null" json:"invoice_id"`
	CreditId     *uuid.UUID      `gorm:"type:uuid;index;default:null" json:"credit_id"`
	AdjustmentId *uuid.UUID      `gorm:"type:uuid;index;default:null" json:"adjustment_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"amount"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// Adjustment is a ledger entry owned by a check.
type Adjustment struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AdjustmentNumber string           `gorm:"size:255;not null;index" json:"adjustment_number"`
	Status           AdjustmentStatus `gorm:"type:varchar(32);not null;default:'Open'" json:"status"`
	FactoryId        uuid.UUID        `gorm:"type:uuid;index;not null" json:"factory_id"`
	Amount           decimal.Decimal  `gorm:"type:decimal(20,2);default:0" json:"amount"`
	Description      string           `gorm:"type:text;default:null" json:"description"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// Deduction shares the Posted status semantics with Adjustment.
type Deduction struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DeductionNumber string           `gorm:"size:255;not null;index" json:"deduction_number"`
	Status          AdjustmentStatus `gorm:"type:varchar(32);not null;default:'Open'" json:"status"`
	FactoryId       uuid.UUID        `gorm:"type:uuid;index;not null" json:"factory_id"`
	Amount          decimal.Decimal  `gorm:"type:decimal(20,2);default:0" json:"amount"`
	Description     string           `gorm:"type:text;default:null" json:"description"`
	CreatedAt       time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCheck struct {
	CheckNumber string           `json:"check_number" validate:"required"`
	FactoryId   uuid.UUID        `json:"factory_id" validate:"required"`
	EntityDate  time.Time        `json:"entity_date" validate:"required"`
	Amount      decimal.Decimal  `json:"amount"`
	Details     []NewCheckDetail `json:"details" validate:"required,min=1,dive"`
}

type NewCheckDetail struct {
	InvoiceId    *uuid.UUID      `json:"invoice_id"`
	CreditId     *uuid.UUID      `json:"credit_id"`
	AdjustmentId *uuid.UUID      `json:"adjustment_id"`
	Amount       decimal.Decimal `json:"amount"`
}

func (c Check) GetId() uuid.UUID {
	return c.ID
}

func (c Check) EntityNumber() string {
	return c.CheckNumber
}

func GetCheckById(tx *gorm.DB, id uuid.UUID) (*Check, error) {
	var check Check
	err := tx.Preload("Details").First(&check, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &check, nil
}

// ReferencedEntityIds splits the check's details into the three referenced
// id sets. A detail with no reference set is skipped.
func ReferencedEntityIds(details []CheckDetail) (invoices, credits, adjustments []uuid.UUID) {
	for _, d := range details {
		switch {
		case d.InvoiceId != nil:
			invoices = append(invoices, *d.InvoiceId)
		case d.CreditId != nil:
			credits = append(credits, *d.CreditId)
		case d.AdjustmentId != nil:
			adjustments = append(adjustments, *d.AdjustmentId)
		}
	}
	return invoices, credits, adjustments
}
