package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// O365UserToken holds one user's Microsoft OAuth state. Tokens are
// deactivated, never deleted, on unrecoverable refresh failure.
type O365UserToken struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserId         uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	MicrosoftEmail string    `gorm:"size:255;not null" json:"microsoft_email"`
	AccessToken    string    `gorm:"type:text;not null" json:"-"`
	RefreshToken   string    `gorm:"type:text;not null" json:"-"`
	ExpiresAt      time.Time `gorm:"not null" json:"expires_at"`
	Scope          string    `gorm:"type:text" json:"scope"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type GmailUserToken struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserId       uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	GoogleEmail  string    `gorm:"size:255;not null" json:"google_email"`
	AccessToken  string    `gorm:"type:text;not null" json:"-"`
	RefreshToken string    `gorm:"type:text;not null" json:"-"`
	ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
	Scope        string    `gorm:"type:text" json:"scope"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func GetActiveO365Token(tx *gorm.DB, userId uuid.UUID) (*O365UserToken, error) {
	var token O365UserToken
	err := tx.Where("user_id = ? AND is_active = ?", userId, true).First(&token).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func GetActiveGmailToken(tx *gorm.DB, userId uuid.UUID) (*GmailUserToken, error) {
	var token GmailUserToken
	err := tx.Where("user_id = ? AND is_active = ?", userId, true).First(&token).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}
