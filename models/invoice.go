package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Invoice struct {
	ID            uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	InvoiceNumber string             `gorm:"size:255;not null;index" json:"invoice_number" binding:"required"`
	Status        InvoiceStatus      `gorm:"type:varchar(32);not null;default:'Open'" json:"status"`
	Locked        bool               `gorm:"default:false" json:"locked"`
	CustomerId    uuid.UUID          `gorm:"type:uuid;index;not null" json:"customer_id"`
	FactoryId     uuid.UUID          `gorm:"type:uuid;index;not null" json:"factory_id"`
	EntityDate    time.Time          `gorm:"not null" json:"entity_date"`
	DueDate       *time.Time         `gorm:"default:null" json:"due_date"`
	PaidBalance   decimal.Decimal    `gorm:"type:decimal(20,2);default:0" json:"paid_balance"`
	Details       []InvoiceDetail    `gorm:"foreignKey:InvoiceId;constraint:OnDelete:CASCADE" json:"details"`
	Balance       *InvoiceBalance    `gorm:"foreignKey:InvoiceId;constraint:OnDelete:CASCADE" json:"balance"`
	SplitRates    []InvoiceSplitRate `gorm:"foreignKey:InvoiceId;constraint:OnDelete:CASCADE" json:"split_rates"`
	CreatedAt     time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

// InvoiceDetail is a partial consumption of one order line.
type InvoiceDetail struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	InvoiceId     uuid.UUID       `gorm:"type:uuid;index;not null" json:"invoice_id"`
	OrderDetailId uuid.UUID       `gorm:"type:uuid;index;not null" json:"order_detail_id"`
	ItemNumber    string          `gorm:"size:255" json:"item_number"`
	Quantity      decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"quantity"`
	Total         decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"total"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type InvoiceSplitRate struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	InvoiceId uuid.UUID       `gorm:"type:uuid;index;not null" json:"invoice_id"`
	UserId    uuid.UUID       `gorm:"type:uuid;not null" json:"user_id"`
	SplitRate decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"split_rate"`
	Position  int             `gorm:"default:0" json:"position"`
}

type InvoiceBalance struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	InvoiceId  uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"invoice_id"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"subtotal"`
	Total      decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"total"`
	Commission decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"commission"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInvoice struct {
	InvoiceNumber string             `json:"invoice_number" validate:"required"`
	CustomerId    uuid.UUID          `json:"customer_id" validate:"required"`
	FactoryId     uuid.UUID          `json:"factory_id" validate:"required"`
	EntityDate    time.Time          `json:"entity_date" validate:"required"`
	DueDate       *time.Time         `json:"due_date"`
	Details       []NewInvoiceDetail `json:"details" validate:"required,min=1,dive"`
	SplitRates    []NewSplitRate     `json:"split_rates"`
}

type NewInvoiceDetail struct {
	OrderDetailId uuid.UUID       `json:"order_detail_id" validate:"required"`
	ItemNumber    string          `json:"item_number"`
	Quantity      decimal.Decimal `json:"quantity"`
	Total         decimal.Decimal `json:"total"`
}

func (i Invoice) GetId() uuid.UUID {
	return i.ID
}

func (i Invoice) EntityNumber() string {
	return i.InvoiceNumber
}

func GetInvoiceById(tx *gorm.DB, id uuid.UUID) (*Invoice, error) {
	var invoice Invoice
	err := tx.Preload("Details").Preload("Balance").Preload("SplitRates").
		First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// OrderDetailIds returns the distinct order lines this invoice consumes.
func (i *Invoice) OrderDetailIds() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(i.Details))
	var ids []uuid.UUID
	for _, d := range i.Details {
		if _, ok := seen[d.OrderDetailId]; ok {
			continue
		}
		seen[d.OrderDetailId] = struct{}{}
		ids = append(ids, d.OrderDetailId)
	}
	return ids
}
