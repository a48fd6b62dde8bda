package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/crm_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// History is an audit row written inside the same transaction as the
// mutation it describes.
type History struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ReferenceId   uuid.UUID `gorm:"type:uuid;index;not null" json:"reference_id"`
	ReferenceType string    `gorm:"size:64;not null;index" json:"reference_type"`
	Action        string    `gorm:"size:32;not null" json:"action"`
	Description   string    `gorm:"type:text" json:"description"`
	UserName      string    `gorm:"size:255" json:"user_name"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func saveHistory(ctx context.Context, tx *gorm.DB, refId uuid.UUID, refType string, action string, description string) error {
	userName, _ := utils.GetUserNameFromContext(ctx)
	record := History{
		ReferenceId:   refId,
		ReferenceType: refType,
		Action:        action,
		Description:   description,
		UserName:      userName,
	}
	return tx.Create(&record).Error
}

func SaveHistoryCreate(ctx context.Context, tx *gorm.DB, refId uuid.UUID, refType string, description string) error {
	return saveHistory(ctx, tx, refId, refType, "*CREATE*", description)
}

func SaveHistoryUpdate(ctx context.Context, tx *gorm.DB, refId uuid.UUID, refType string, description string) error {
	return saveHistory(ctx, tx, refId, refType, "*UPDATE*", description)
}

func SaveHistoryDelete(ctx context.Context, tx *gorm.DB, refId uuid.UUID, refType string, description string) error {
	return saveHistory(ctx, tx, refId, refType, "*DELETE*", description)
}
