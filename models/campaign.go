package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultMaxEmailsPerDay = 1000

type Campaign struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name            string         `gorm:"size:255;not null" json:"name" binding:"required"`
	Status          CampaignStatus `gorm:"type:varchar(32);not null;default:'Draft'" json:"status"`
	OwnerId         uuid.UUID      `gorm:"type:uuid;index;not null" json:"owner_id"`
	EmailSubject    string         `gorm:"size:255;not null" json:"email_subject"`
	EmailBody       string         `gorm:"type:text;not null" json:"email_body"`
	ScheduledAt     *time.Time     `gorm:"default:null" json:"scheduled_at"`
	SendPace        SendPace       `gorm:"type:varchar(16);not null;default:'Slow'" json:"send_pace"`
	MaxEmailsPerDay *int           `gorm:"default:null" json:"max_emails_per_day"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

type CampaignRecipient struct {
	ID                  uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CampaignId          uuid.UUID   `gorm:"type:uuid;index;not null" json:"campaign_id"`
	ContactId           uuid.UUID   `gorm:"type:uuid;index;not null" json:"contact_id"`
	EmailStatus         EmailStatus `gorm:"type:varchar(16);not null;default:'Pending';index" json:"email_status"`
	SentAt              *time.Time  `gorm:"default:null" json:"sent_at"`
	PersonalizedContent string      `gorm:"type:text;default:null" json:"personalized_content"`
	Contact             *Contact    `gorm:"foreignKey:ContactId" json:"contact"`
	CreatedAt           time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// CampaignSendLog is the daily-cap accounting record, unique per campaign
// and UTC send date.
type CampaignSendLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CampaignId uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_campaign_send_date" json:"campaign_id"`
	SendDate   time.Time  `gorm:"type:date;not null;uniqueIndex:idx_campaign_send_date" json:"send_date"`
	EmailsSent int        `gorm:"default:0" json:"emails_sent"`
	LastSentAt *time.Time `gorm:"default:null" json:"last_sent_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCampaign struct {
	Name            string     `json:"name" validate:"required"`
	EmailSubject    string     `json:"email_subject" validate:"required"`
	EmailBody       string     `json:"email_body" validate:"required"`
	ScheduledAt     *time.Time `json:"scheduled_at"`
	SendPace        SendPace   `json:"send_pace"`
	MaxEmailsPerDay *int       `json:"max_emails_per_day"`
	ContactIds      []uuid.UUID `json:"contact_ids" validate:"required,min=1"`
}

type ScheduleCampaign struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
}

func (c Campaign) GetId() uuid.UUID {
	return c.ID
}

// DailyCap returns the configured daily cap or the default.
func (c *Campaign) DailyCap() int {
	if c.MaxEmailsPerDay == nil {
		return DefaultMaxEmailsPerDay
	}
	return *c.MaxEmailsPerDay
}

// FindActiveCampaigns selects campaigns the worker must consider on a tick.
func FindActiveCampaigns(tx *gorm.DB) ([]*Campaign, error) {
	var campaigns []*Campaign
	err := tx.Where("status IN ?", []CampaignStatus{CampaignStatusSending, CampaignStatusScheduled}).
		Order("created_at").Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

// GetOrCreateSendLog reads or creates today's accounting row for a campaign.
func GetOrCreateSendLog(tx *gorm.DB, campaignId uuid.UUID, sendDate time.Time) (*CampaignSendLog, error) {
	day := sendDate.UTC().Truncate(24 * time.Hour)
	row := CampaignSendLog{CampaignId: campaignId, SendDate: day}
	err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	if err != nil {
		return nil, err
	}
	var log CampaignSendLog
	if err := tx.Where("campaign_id = ? AND send_date = ?", campaignId, day).First(&log).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

// FindPendingRecipients selects up to limit recipients still awaiting a send,
// with their contact eagerly loaded.
func FindPendingRecipients(tx *gorm.DB, campaignId uuid.UUID, limit int) ([]*CampaignRecipient, error) {
	var recipients []*CampaignRecipient
	err := tx.Preload("Contact").
		Where("campaign_id = ? AND email_status = ?", campaignId, EmailStatusPending).
		Order("created_at").Limit(limit).Find(&recipients).Error
	if err != nil {
		return nil, err
	}
	return recipients, nil
}

func CountPendingRecipients(tx *gorm.DB, campaignId uuid.UUID) (int64, error) {
	var count int64
	err := tx.Model(&CampaignRecipient{}).
		Where("campaign_id = ? AND email_status = ?", campaignId, EmailStatusPending).
		Count(&count).Error
	return count, err
}
