package models

import (
	"gorm.io/gorm"
)

// MigrateTenant creates the per-tenant tables. The control-plane tenants
// table is managed separately.
func MigrateTenant(db *gorm.DB) error {
	return db.AutoMigrate(
		&Customer{},
		&Factory{},
		&Company{},
		&Contact{},
		&User{},
		&CustomerFactorySplitRate{},
		&CustomerOutsideRep{},
		&FactoryInsideRep{},

		&Order{},
		&OrderDetail{},
		&OrderSplitRate{},
		&OrderInsideRep{},
		&OrderBalance{},

		&Invoice{},
		&InvoiceDetail{},
		&InvoiceSplitRate{},
		&InvoiceBalance{},

		&Credit{},
		&CreditDetail{},
		&CreditSplitRate{},

		&Check{},
		&CheckDetail{},
		&Adjustment{},
		&Deduction{},

		&Quote{},
		&QuoteDetail{},
		&QuoteSplitRate{},
		&PreOpportunity{},
		&PreOpportunityRate{},

		&Job{},
		&JobEmbedding{},
		&ConfirmedDifferentJob{},
		&JobCompanyLink{},
		&LinkRelation{},

		&Campaign{},
		&CampaignRecipient{},
		&CampaignSendLog{},

		&O365UserToken{},
		&GmailUserToken{},

		&History{},
	)
}

func MigrateControl(db *gorm.DB) error {
	return db.AutoMigrate(&Tenant{})
}
