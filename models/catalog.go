package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tenant lives in the shared public schema and drives the per-tenant pools.
type Tenant struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Tenant) TableName() string { return "public.tenants" }

type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"size:255;not null;index" json:"name" binding:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Factory struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"size:255;not null;index" json:"name" binding:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Company struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"size:255;not null;index" json:"name" binding:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Contact struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CompanyId *uuid.UUID `gorm:"type:uuid;index;default:null" json:"company_id"`
	FirstName string     `gorm:"size:255" json:"first_name"`
	LastName  string     `gorm:"size:255" json:"last_name"`
	Email     string     `gorm:"size:255;not null;index" json:"email" binding:"required"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserName     string    `gorm:"size:255;not null;index" json:"user_name"`
	Email        string    `gorm:"size:255;not null" json:"email"`
	IsOutsideRep bool      `gorm:"default:false" json:"is_outside_rep"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// CustomerFactorySplitRate is the first-priority default for outside splits
// on a (customer, factory) pair.
type CustomerFactorySplitRate struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CustomerId uuid.UUID       `gorm:"type:uuid;not null;index:idx_customer_factory,priority:1" json:"customer_id"`
	FactoryId  uuid.UUID       `gorm:"type:uuid;not null;index:idx_customer_factory,priority:2" json:"factory_id"`
	UserId     uuid.UUID       `gorm:"type:uuid;not null" json:"user_id"`
	SplitRate  decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"split_rate"`
	Position   int             `gorm:"default:0" json:"position"`
}

// CustomerOutsideRep is the fallback default when no customer-factory rates
// exist.
type CustomerOutsideRep struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CustomerId uuid.UUID `gorm:"type:uuid;index;not null" json:"customer_id"`
	UserId     uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	Position   int       `gorm:"default:0" json:"position"`
}

// FactoryInsideRep provides the defaults for inside splits.
type FactoryInsideRep struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FactoryId uuid.UUID       `gorm:"type:uuid;index;not null" json:"factory_id"`
	UserId    uuid.UUID       `gorm:"type:uuid;not null" json:"user_id"`
	SplitRate decimal.Decimal `gorm:"type:decimal(5,2);default:0" json:"split_rate"`
	Position  int             `gorm:"default:0" json:"position"`
}

func FindCustomerFactorySplitRates(tx *gorm.DB, customerId, factoryId uuid.UUID) ([]*CustomerFactorySplitRate, error) {
	var rates []*CustomerFactorySplitRate
	err := tx.Where("customer_id = ? AND factory_id = ?", customerId, factoryId).
		Order("position").Find(&rates).Error
	if err != nil {
		return nil, err
	}
	return rates, nil
}

func FindCustomerOutsideReps(tx *gorm.DB, customerId uuid.UUID) ([]*CustomerOutsideRep, error) {
	var reps []*CustomerOutsideRep
	err := tx.Where("customer_id = ?", customerId).Order("position").Find(&reps).Error
	if err != nil {
		return nil, err
	}
	return reps, nil
}

func FindFactoryInsideReps(tx *gorm.DB, factoryId uuid.UUID) ([]*FactoryInsideRep, error) {
	var reps []*FactoryInsideRep
	err := tx.Where("factory_id = ?", factoryId).Order("position").Find(&reps).Error
	if err != nil {
		return nil, err
	}
	return reps, nil
}
