package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Order struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OrderNumber      string           `gorm:"size:255;not null;index" json:"order_number" binding:"required"`
	Status           OrderStatus      `gorm:"type:varchar(32);not null;default:'Open'" json:"status"`
	HeaderStatus     HeaderStatus     `gorm:"type:varchar(32);not null;default:'Open'" json:"header_status"`
	SoldToCustomerId uuid.UUID        `gorm:"type:uuid;index;not null" json:"sold_to_customer_id" binding:"required"`
	FactoryId        uuid.UUID        `gorm:"type:uuid;index;not null" json:"factory_id" binding:"required"`
	EntityDate       time.Time        `gorm:"not null" json:"entity_date" binding:"required"`
	DueDate          *time.Time       `gorm:"default:null" json:"due_date"`
	Details          []OrderDetail    `gorm:"foreignKey:OrderId;constraint:OnDelete:CASCADE" json:"details"`
	Balance          *OrderBalance    `gorm:"foreignKey:OrderId;constraint:OnDelete:CASCADE" json:"balance"`
	InsideReps       []OrderInsideRep `gorm:"foreignKey:OrderId;constraint:OnDelete:CASCADE" json:"inside_reps"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type OrderDetail struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OrderId         uuid.UUID        `gorm:"type:uuid;index;not null" json:"order_id"`
	ItemNumber      string           `gorm:"size:255;not null" json:"item_number"`
	Quantity        decimal.Decimal  `gorm:"type:decimal(20,2);default:0" json:"quantity"`
	Total           decimal.Decimal  `gorm:"type:decimal(20,2);default:0" json:"total"`
	ShippingBalance decimal.Decimal  `gorm:"type:decimal(20,2);default:0" json:"shipping_balance"`
	Status          OrderStatus      `gorm:"type:varchar(32);not null;default:'Open'" json:"status"`
	SplitRates      []OrderSplitRate `gorm:"foreignKey:OrderDetailId;constraint:OnDelete:CASCADE" json:"split_rates"`
	CreatedAt       time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// OrderSplitRate is an outside-rep commission split for one order line.
type OrderSplitRate struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OrderDetailId uuid.UUID       `gorm:"type:uuid;index;not null" json:"order_detail_id"`
	UserId        uuid.UUID       `gorm:"type:uuid;not null" json:"user_id"`
	SplitRate     decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"split_rate"`
	Position      int             `gorm:"default:0" json:"position"`
}

// OrderInsideRep is an inside-rep commission split at the order header.
type OrderInsideRep struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OrderId   uuid.UUID       `gorm:"type:uuid;index;not null" json:"order_id"`
	UserId    uuid.UUID       `gorm:"type:uuid;not null" json:"user_id"`
	SplitRate decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"split_rate"`
	Position  int             `gorm:"default:0" json:"position"`
}

// OrderBalance is the aggregated money rollup, recomputed on update.
type OrderBalance struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OrderId    uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"order_id"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"subtotal"`
	Total      decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"total"`
	Commission decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"commission"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewOrder struct {
	OrderNumber      string           `json:"order_number" validate:"required"`
	SoldToCustomerId uuid.UUID        `json:"sold_to_customer_id" validate:"required"`
	FactoryId        uuid.UUID        `json:"factory_id" validate:"required"`
	EntityDate       time.Time        `json:"entity_date" validate:"required"`
	DueDate          *time.Time       `json:"due_date"`
	Details          []NewOrderDetail `json:"details" validate:"required,min=1,dive"`
	InsideReps       []NewSplitRate   `json:"inside_reps"`
}

type NewOrderDetail struct {
	ItemNumber string          `json:"item_number" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
	Total      decimal.Decimal `json:"total"`
	SplitRates []NewSplitRate  `json:"split_rates"`
}

// NewSplitRate is the shared split input shape across orders, quotes,
// invoices and credits.
type NewSplitRate struct {
	UserId    uuid.UUID       `json:"user_id" validate:"required"`
	SplitRate decimal.Decimal `json:"split_rate"`
	Position  int             `json:"position"`
}

func (o Order) GetId() uuid.UUID {
	return o.ID
}

func (o Order) EntityNumber() string {
	return o.OrderNumber
}

func GetOrderById(tx *gorm.DB, id uuid.UUID) (*Order, error) {
	var order Order
	err := tx.Preload("Details.SplitRates").Preload("Balance").Preload("InsideReps").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderDetailInvoicedTotal sums the surviving invoice consumption of one
// order line. Used by the shipping-balance recomputation.
func GetOrderDetailInvoicedTotal(tx *gorm.DB, orderDetailId uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := tx.Model(&InvoiceDetail{}).
		Where("order_detail_id = ?", orderDetailId).
		Select("SUM(total)").Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
